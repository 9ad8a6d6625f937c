package strongbox

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"sync"

	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2 parameters for password-derived keys. The salt is fixed and bound
// to the cipher identifier: derivation must be reproducible from the
// password alone, with nothing stored alongside the token. The iteration
// count follows the OWASP minimum for PBKDF2-HMAC-SHA256.
const (
	kdfIterations = 210000
	kdfSaltPrefix = "strongbox/v1/"
)

// GenerateKey returns bits/8 cryptographically secure random bytes. Fails
// with a ConfigError if bits is not a positive multiple of 8.
func GenerateKey(bits int) ([]byte, error) {
	if bits <= 0 || bits%8 != 0 {
		return nil, newConfigError(ErrInvalidKeySize, fmt.Sprintf("%d bits", bits))
	}
	key := make([]byte, bits/8)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, err
	}
	return key, nil
}

// DeriveKey derives a key from password, sized for the named cipher, via
// PBKDF2-HMAC-SHA256. Deterministic: the same (password, cipher) pair always
// yields the same key, so a password can decrypt anything it encrypted.
// Fails with a ConfigError on an empty password or unknown cipher.
func DeriveKey(password string, id CipherID) ([]byte, error) {
	spec, err := resolveCipher(id)
	if err != nil {
		return nil, err
	}
	if password == "" {
		return nil, newConfigError(ErrEmptyPassword, "")
	}
	salt := []byte(kdfSaltPrefix + string(spec.id))
	return pbkdf2.Key([]byte(password), salt, kdfIterations, spec.keySize, sha256.New), nil
}

// Keychain caches one key per identity. A Strongbox owns one; host types
// reach it through Crypto key slots. Safe for concurrent use: concurrent
// first access for the same identity yields a single key. Keys cross the
// cache boundary as copies in both directions, so mutating a returned or
// previously assigned slice never corrupts the cache.
type Keychain struct {
	mu   sync.RWMutex
	keys map[string][]byte
}

// NewKeychain returns an empty keychain.
func NewKeychain() *Keychain {
	return &Keychain{keys: make(map[string][]byte)}
}

// GetOrCreate returns the cached key for identity, generating and caching a
// fresh bits-sized key on first access.
func (k *Keychain) GetOrCreate(identity string, bits int) ([]byte, error) {
	// Fast path: read-lock cache check
	k.mu.RLock()
	if key, ok := k.keys[identity]; ok {
		k.mu.RUnlock()
		return bytes.Clone(key), nil
	}
	k.mu.RUnlock()

	// Slow path: generate and cache with write-lock
	k.mu.Lock()
	defer k.mu.Unlock()

	// Double-check pattern
	if key, ok := k.keys[identity]; ok {
		return bytes.Clone(key), nil
	}

	key, err := GenerateKey(bits)
	if err != nil {
		return nil, err
	}
	k.keys[identity] = key
	return bytes.Clone(key), nil
}

// Lookup returns the cached key for identity, if any.
func (k *Keychain) Lookup(identity string) ([]byte, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	key, ok := k.keys[identity]
	if !ok {
		return nil, false
	}
	return bytes.Clone(key), true
}

// Set overwrites the cached key for identity unconditionally
// (last write wins).
func (k *Keychain) Set(identity string, key []byte) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.keys[identity] = bytes.Clone(key)
}

// Reset clears all cached keys.
// This is primarily useful for test isolation.
func (k *Keychain) Reset() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.keys = make(map[string][]byte)
}
