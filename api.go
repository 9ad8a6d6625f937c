// Package strongbox turns arbitrary serializable values into self-contained,
// transport-safe encrypted tokens and back again.
//
// A Strongbox composes four stages: a pluggable Codec serializes the value,
// an optional DEFLATE compressor shrinks it, a symmetric cipher seals it, and
// a base64url transport encoding makes the result safe for JSON fields, URLs,
// and environment variables. The mirror path recovers the exact original
// value.
//
// # Basic Usage
//
//	box, _ := strongbox.New(msgpack.New())
//
//	key, _ := box.GenerateKey()
//
//	token, _ := box.EncryptWithKey(ctx, record, key)
//
//	var out Record
//	_ = box.DecryptWithKey(ctx, token, key, &out)
//
// Password-based operations derive the key deterministically, so the same
// password always decrypts data it encrypted:
//
//	token, _ := box.EncryptWithPassword(ctx, record, "correct-horse")
//	_ = box.DecryptWithPassword(ctx, token, "correct-horse", &out)
//
// # Token Format
//
// Tokens are base64url (unpadded, no line wrapping) over a versioned binary
// layout:
//
//	version (1) || cipher tag (1) || compression flag (1) || iv || ciphertext [|| mac]
//
// The token is fully self-describing: decode reads the cipher and the
// compression flag from the token itself, never from live settings, so a
// consumer configured differently from the producer still decodes correctly.
// Unknown versions and unknown cipher tags fail explicitly.
//
// # Ciphers
//
// Cipher identifiers name algorithm, key length, and mode, e.g. "AES-256-CBC".
// AEAD modes (AES-GCM, ChaCha20-Poly1305) authenticate via their own tag.
// CBC modes carry an HMAC-SHA256 tag (encrypt-then-MAC); the cipher and MAC
// subkeys are split from the caller's key with HKDF, so callers still manage
// exactly one key per token. Every decode is authenticated: tampering with
// any byte of a token fails, it never yields wrong data.
//
// # Keys
//
// Keys are raw random bytes sized to their cipher. The Keychain caches one
// key per identity with locked get-or-create semantics; BindFor gives a host
// type its own slot keyed by type identity. ExportKey and ImportKey move a
// key through a password-protected token for backup; storage and rotation
// remain the caller's responsibility.
//
// # Configuration
//
// New applies functional options over defaults (AES-256-CBC data cipher,
// AES-128-CBC password cipher, compression on at the maximum level). The
// resulting settings are immutable; reconfiguration means constructing a new
// Strongbox. SettingsFromEnv loads a settings snapshot from STRONGBOX_*
// environment variables.
//
// # Errors
//
// Failures surface as typed errors wrapping sentinels: *ConfigError for bad
// configuration (unknown cipher, invalid compression level, empty password),
// *CodecError for marshal/unmarshal failures, *FormatError for malformed
// tokens. All decrypt-path failures surface as the single opaque
// ErrDecryptionFailed, which deliberately does not say which check failed.
//
// # Codec Providers
//
// The following Codec implementations are available as subpackages:
//
//   - msgpack - MessagePack (application/msgpack), structure- and
//     type-preserving; the recommended default
//   - json - JSON (application/json)
//   - yaml - YAML (application/yaml)
package strongbox

// Codec provides content-type aware marshaling.
type Codec interface {
	// ContentType returns the MIME type for this codec (e.g., "application/msgpack").
	ContentType() string

	// Marshal encodes v into bytes.
	Marshal(v any) ([]byte, error)

	// Unmarshal decodes data into v.
	Unmarshal(data []byte, v any) error
}
