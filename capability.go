package strongbox

import (
	"context"
	"reflect"
)

// CipherID names a symmetric algorithm, key length, and mode.
// Use these constants when configuring a Strongbox: `WithDataCipher(AES256GCM)`.
type CipherID string

const (
	// AES128CBC uses AES-128 in CBC mode with PKCS#7 padding and an
	// HMAC-SHA256 tag (encrypt-then-MAC).
	AES128CBC CipherID = "AES-128-CBC"

	// AES192CBC uses AES-192 in CBC mode with PKCS#7 padding and an
	// HMAC-SHA256 tag (encrypt-then-MAC).
	AES192CBC CipherID = "AES-192-CBC"

	// AES256CBC uses AES-256 in CBC mode with PKCS#7 padding and an
	// HMAC-SHA256 tag (encrypt-then-MAC).
	AES256CBC CipherID = "AES-256-CBC"

	// AES128GCM uses AES-128 in GCM mode (AEAD).
	AES128GCM CipherID = "AES-128-GCM"

	// AES256GCM uses AES-256 in GCM mode (AEAD).
	AES256GCM CipherID = "AES-256-GCM"

	// ChaCha20Poly1305 uses ChaCha20-Poly1305 (AEAD, 256-bit key).
	ChaCha20Poly1305 CipherID = "CHACHA20-POLY1305"
)

// IsValidCipher returns true if id resolves to a supported cipher.
func IsValidCipher(id CipherID) bool {
	_, ok := cipherSpecs[id]
	return ok
}

// Encryptable is the capability granted to host types: the pipeline
// operations plus a cached key slot. Crypto is the provided implementation;
// embed one to opt a type in without reimplementing the pipeline.
type Encryptable interface {
	// Key returns the slot's cached key, generating and caching one sized
	// for the data cipher on first use.
	Key() ([]byte, error)

	// SetKey overwrites the slot's cached key unconditionally.
	SetKey(key []byte)

	// Encrypt encrypts v under the slot's cached key.
	Encrypt(ctx context.Context, v any) (string, error)

	// Decrypt recovers a value encrypted under the slot's cached key into v.
	Decrypt(ctx context.Context, token string, v any) error

	// EncryptWithPassword encrypts v under a password-derived key.
	EncryptWithPassword(ctx context.Context, v any, password string) (string, error)

	// DecryptWithPassword recovers a password-encrypted value into v.
	DecryptWithPassword(ctx context.Context, token string, password string, v any) error
}

// Crypto is an embeddable helper binding one keychain slot to a Strongbox.
// The zero value is not usable; obtain one from Strongbox.Bind or BindFor.
//
//	type Account struct {
//	    strongbox.Crypto
//	    ...
//	}
//
//	acct := Account{Crypto: strongbox.BindFor[Account](box)}
type Crypto struct {
	box      *Strongbox
	identity string
}

// Bind returns a Crypto bound to the named keychain slot.
func (s *Strongbox) Bind(identity string) Crypto {
	return Crypto{box: s, identity: identity}
}

// BindFor returns a Crypto bound to a slot keyed by T's type identity.
// All values of T share one cached key.
func BindFor[T any](box *Strongbox) Crypto {
	return box.Bind(reflect.TypeFor[T]().String())
}

// Identity returns the keychain slot this Crypto is bound to.
func (c Crypto) Identity() string {
	return c.identity
}

// Key implements Encryptable.
func (c Crypto) Key() ([]byte, error) {
	return c.box.keys.GetOrCreate(c.identity, c.box.data.spec.keySize*8)
}

// SetKey implements Encryptable.
func (c Crypto) SetKey(key []byte) {
	c.box.keys.Set(c.identity, key)
}

// Encrypt implements Encryptable.
func (c Crypto) Encrypt(ctx context.Context, v any) (string, error) {
	key, err := c.Key()
	if err != nil {
		return "", err
	}
	return c.box.EncryptWithKey(ctx, v, key)
}

// Decrypt implements Encryptable.
func (c Crypto) Decrypt(ctx context.Context, token string, v any) error {
	key, err := c.Key()
	if err != nil {
		return err
	}
	return c.box.DecryptWithKey(ctx, token, key, v)
}

// EncryptWithPassword implements Encryptable.
func (c Crypto) EncryptWithPassword(ctx context.Context, v any, password string) (string, error) {
	return c.box.EncryptWithPassword(ctx, v, password)
}

// DecryptWithPassword implements Encryptable.
func (c Crypto) DecryptWithPassword(ctx context.Context, token string, password string, v any) error {
	return c.box.DecryptWithPassword(ctx, token, password, v)
}
