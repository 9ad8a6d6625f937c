package strongbox

import (
	"context"
	"time"
)

// Strongbox is the pipeline facade: serialize, optionally compress, encrypt,
// transport-encode, and the mirror path back.
//
// A Strongbox is immutable after New and safe for concurrent use. All
// operations are synchronous, in-memory transformations; the ctx parameter
// carries observability signals, not cancellation.
type Strongbox struct {
	codec    Codec
	settings Settings
	keys     *Keychain

	// Engines resolved once at construction, per cipher role.
	data       *engine
	password   *engine
	privateKey *engine

	compressor *compressor
}

// New builds a Strongbox over codec with the given options applied to
// DefaultSettings. Every configured cipher identifier is resolved and the
// compression level validated here, before any key material exists; a bad
// configuration never produces a partially working pipeline.
func New(codec Codec, opts ...Option) (*Strongbox, error) {
	settings := DefaultSettings()
	for _, opt := range opts {
		opt(&settings)
	}
	settings = settings.normalize()

	if err := settings.validate(); err != nil {
		return nil, err
	}

	data, err := newEngine(settings.DataCipher)
	if err != nil {
		return nil, err
	}
	password, err := newEngine(settings.PasswordCipher)
	if err != nil {
		return nil, err
	}
	privateKey, err := newEngine(settings.PrivateKeyCipher)
	if err != nil {
		return nil, err
	}
	comp, err := newCompressor(settings.CompressionLevel)
	if err != nil {
		return nil, err
	}

	s := &Strongbox{
		codec:      codec,
		settings:   settings,
		keys:       NewKeychain(),
		data:       data,
		password:   password,
		privateKey: privateKey,
		compressor: comp,
	}

	emitPipelineCreated(context.Background(), codec.ContentType(), settings.DataCipher)
	return s, nil
}

// Settings returns the immutable configuration snapshot this Strongbox was
// built from.
func (s *Strongbox) Settings() Settings {
	return s.settings
}

// Keychain returns the key cache shared by this Strongbox's key slots.
func (s *Strongbox) Keychain() *Keychain {
	return s.keys
}

// GenerateKey returns a fresh random key sized for the data cipher.
func (s *Strongbox) GenerateKey() ([]byte, error) {
	return GenerateKey(s.data.spec.keySize * 8)
}

// EncryptWithKey serializes v, compresses it if enabled, seals it under key
// with the data cipher, and returns the transport-encoded token. No token is
// emitted on any failure.
func (s *Strongbox) EncryptWithKey(ctx context.Context, v any, key []byte) (string, error) {
	return s.encrypt(ctx, v, key, s.data)
}

// DecryptWithKey reverses EncryptWithKey, decoding the recovered value into
// v (which must be a non-nil pointer). The cipher and compression flag are
// read from the token itself, so key is the only thing the caller must
// remember.
func (s *Strongbox) DecryptWithKey(ctx context.Context, tokenText string, key []byte, v any) error {
	start := time.Now()
	emitDecryptStart(ctx, s.codec.ContentType(), len(tokenText))

	tok, err := parseToken(tokenText)
	if err != nil {
		emitDecryptComplete(ctx, s.codec.ContentType(), "", 0, time.Since(start), err)
		return err
	}

	size, err := s.open(tok, key, v)
	emitDecryptComplete(ctx, s.codec.ContentType(), tok.spec.id, size, time.Since(start), err)
	return err
}

// EncryptWithPassword derives a key from password for the password cipher,
// then follows the EncryptWithKey path with that cipher, so the token is
// tagged with the cipher the key actually fits.
func (s *Strongbox) EncryptWithPassword(ctx context.Context, v any, password string) (string, error) {
	key, err := DeriveKey(password, s.settings.PasswordCipher)
	if err != nil {
		return "", err
	}
	return s.encrypt(ctx, v, key, s.password)
}

// DecryptWithPassword re-derives the key from password and reverses
// EncryptWithPassword. The derivation is bound to the cipher tagged in the
// token, so tokens written under older settings still decrypt.
func (s *Strongbox) DecryptWithPassword(ctx context.Context, tokenText string, password string, v any) error {
	start := time.Now()
	emitDecryptStart(ctx, s.codec.ContentType(), len(tokenText))

	tok, err := parseToken(tokenText)
	if err != nil {
		emitDecryptComplete(ctx, s.codec.ContentType(), "", 0, time.Since(start), err)
		return err
	}

	key, err := DeriveKey(password, tok.spec.id)
	if err != nil {
		emitDecryptComplete(ctx, s.codec.ContentType(), tok.spec.id, 0, time.Since(start), err)
		return err
	}

	size, err := s.open(tok, key, v)
	emitDecryptComplete(ctx, s.codec.ContentType(), tok.spec.id, size, time.Since(start), err)
	return err
}

// ExportKey seals a private key under a password-derived key using the
// private-key cipher and returns a normal token. The inverse is ImportKey.
// Key bytes are sealed as-is: no serialization, no compression.
func (s *Strongbox) ExportKey(key []byte, password string) (string, error) {
	wrapKey, err := DeriveKey(password, s.privateKey.spec.id)
	if err != nil {
		return "", err
	}

	iv, ciphertext, mac, err := s.privateKey.encrypt(wrapKey, key)
	if err != nil {
		return "", err
	}
	return encodeToken(s.privateKey.spec, false, iv, ciphertext, mac), nil
}

// ImportKey recovers a private key from an ExportKey token.
func (s *Strongbox) ImportKey(tokenText string, password string) ([]byte, error) {
	tok, err := parseToken(tokenText)
	if err != nil {
		return nil, err
	}

	wrapKey, err := DeriveKey(password, tok.spec.id)
	if err != nil {
		return nil, err
	}

	eng := &engine{spec: tok.spec}
	key, err := eng.decrypt(wrapKey, tok.iv, tok.ciphertext, tok.mac)
	if err != nil {
		return nil, err
	}
	if tok.compressed {
		return decompress(key)
	}
	return key, nil
}

// encrypt is the shared encode path: serialize, compress if enabled, seal,
// assemble token.
func (s *Strongbox) encrypt(ctx context.Context, v any, key []byte, eng *engine) (string, error) {
	start := time.Now()
	emitEncryptStart(ctx, s.codec.ContentType(), eng.spec.id)

	var retErr error
	var retToken string
	defer func() {
		emitEncryptComplete(ctx, s.codec.ContentType(), eng.spec.id,
			len(retToken), time.Since(start), retErr)
	}()

	plaintext, err := s.codec.Marshal(v)
	if err != nil {
		retErr = newCodecError(ErrMarshal, err)
		return "", retErr
	}

	compressed := false
	if s.settings.Compression {
		plaintext, err = s.compressor.compress(plaintext)
		if err != nil {
			retErr = err
			return "", retErr
		}
		compressed = true
	}

	iv, ciphertext, mac, err := eng.encrypt(key, plaintext)
	if err != nil {
		retErr = err
		return "", retErr
	}

	retToken = encodeToken(eng.spec, compressed, iv, ciphertext, mac)
	return retToken, nil
}

// open is the shared decode path for an already parsed token: unseal,
// decompress if flagged, deserialize into v. Returns the plaintext size for
// signal emission.
func (s *Strongbox) open(tok *token, key []byte, v any) (int, error) {
	eng := &engine{spec: tok.spec}
	plaintext, err := eng.decrypt(key, tok.iv, tok.ciphertext, tok.mac)
	if err != nil {
		return 0, err
	}

	if tok.compressed {
		plaintext, err = decompress(plaintext)
		if err != nil {
			return 0, err
		}
	}

	if err := s.codec.Unmarshal(plaintext, v); err != nil {
		return len(plaintext), newCodecError(ErrUnmarshal, err)
	}
	return len(plaintext), nil
}
