package strongbox

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Compression level bounds. Levels map directly to DEFLATE levels:
// 0 stores input uncompressed, 9 compresses hardest.
const (
	MinCompressionLevel = 0
	MaxCompressionLevel = 9
)

// Settings is the immutable configuration snapshot a Strongbox is built
// from. Construct one through Option values passed to New, or load one from
// the environment with SettingsFromEnv. A Settings value is never mutated
// after New returns; reconfiguration means constructing a new Strongbox.
type Settings struct {
	// DataCipher seals values encrypted with an explicit key.
	DataCipher CipherID `env:"DATA_CIPHER"`

	// PasswordCipher seals values encrypted with a password-derived key.
	// Its key size also fixes the derived key length.
	PasswordCipher CipherID `env:"PASSWORD_CIPHER"`

	// PrivateKeyCipher seals private keys in ExportKey/ImportKey tokens.
	// Empty means "same as DataCipher".
	PrivateKeyCipher CipherID `env:"PRIVATE_KEY_CIPHER"`

	// Compression enables DEFLATE compression of serialized values.
	Compression bool `env:"COMPRESSION"`

	// CompressionLevel is the DEFLATE level, MinCompressionLevel to
	// MaxCompressionLevel.
	CompressionLevel int `env:"COMPRESSION_LEVEL"`
}

// DefaultSettings returns the default configuration: AES-256-CBC for data
// and private keys, AES-128-CBC for password-derived keys, compression
// enabled at the maximum level.
func DefaultSettings() Settings {
	return Settings{
		DataCipher:       AES256CBC,
		PasswordCipher:   AES128CBC,
		PrivateKeyCipher: "",
		Compression:      true,
		CompressionLevel: MaxCompressionLevel,
	}
}

// SettingsFromEnv loads a Settings snapshot from STRONGBOX_* environment
// variables (STRONGBOX_DATA_CIPHER, STRONGBOX_PASSWORD_CIPHER,
// STRONGBOX_PRIVATE_KEY_CIPHER, STRONGBOX_COMPRESSION,
// STRONGBOX_COMPRESSION_LEVEL). Unset variables keep their defaults.
// Validation happens in New, not here.
func SettingsFromEnv() (Settings, error) {
	cfg := DefaultSettings()
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "STRONGBOX_"}); err != nil {
		return Settings{}, fmt.Errorf("parse settings from env: %w", err)
	}
	return cfg, nil
}

// validate checks that every cipher resolves and the compression level is in
// range. Runs once, inside New, before any key material is touched.
func (s Settings) validate() error {
	for _, id := range []CipherID{s.DataCipher, s.PasswordCipher, s.PrivateKeyCipher} {
		if id == "" {
			continue
		}
		if _, err := resolveCipher(id); err != nil {
			return err
		}
	}
	if s.CompressionLevel < MinCompressionLevel || s.CompressionLevel > MaxCompressionLevel {
		return newConfigError(ErrInvalidCompressionLevel, fmt.Sprintf("%d", s.CompressionLevel))
	}
	return nil
}

// normalize fills defaulted fields: an empty private-key cipher follows the
// data cipher.
func (s Settings) normalize() Settings {
	if s.PrivateKeyCipher == "" {
		s.PrivateKeyCipher = s.DataCipher
	}
	return s
}

// Option configures a Strongbox at construction time.
type Option func(*Settings)

// WithSettings replaces the entire settings snapshot. Later options still
// apply on top.
func WithSettings(settings Settings) Option {
	return func(s *Settings) {
		*s = settings
	}
}

// WithDataCipher sets the cipher for key-based encryption.
func WithDataCipher(id CipherID) Option {
	return func(s *Settings) {
		s.DataCipher = id
	}
}

// WithPasswordCipher sets the cipher for password-based encryption.
func WithPasswordCipher(id CipherID) Option {
	return func(s *Settings) {
		s.PasswordCipher = id
	}
}

// WithPrivateKeyCipher sets the cipher for key export tokens.
func WithPrivateKeyCipher(id CipherID) Option {
	return func(s *Settings) {
		s.PrivateKeyCipher = id
	}
}

// WithCompression toggles compression of serialized values.
func WithCompression(enabled bool) Option {
	return func(s *Settings) {
		s.Compression = enabled
	}
}

// WithCompressionLevel sets the DEFLATE level used when compression is
// enabled.
func WithCompressionLevel(level int) Option {
	return func(s *Settings) {
		s.CompressionLevel = level
	}
}
