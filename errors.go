package strongbox

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrUnknownCipher indicates a cipher identifier that does not resolve
	// to a supported algorithm.
	ErrUnknownCipher = errors.New("unknown cipher")

	// ErrInvalidKeySize indicates a key whose length does not match the
	// cipher it is used with.
	ErrInvalidKeySize = errors.New("invalid key size")

	// ErrInvalidCompressionLevel indicates a compression level outside 0-9.
	ErrInvalidCompressionLevel = errors.New("invalid compression level")

	// ErrEmptyPassword indicates a password-based operation was given an
	// empty password.
	ErrEmptyPassword = errors.New("empty password")

	// ErrMarshal indicates the codec failed to marshal a value.
	ErrMarshal = errors.New("marshal failed")

	// ErrUnmarshal indicates the codec failed to unmarshal recovered bytes.
	ErrUnmarshal = errors.New("unmarshal failed")

	// ErrInvalidToken indicates transport text that is not a valid token.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenTooShort indicates a token truncated below its fixed layout.
	ErrTokenTooShort = errors.New("token too short")

	// ErrUnknownVersion indicates a token written in an unsupported format
	// version.
	ErrUnknownVersion = errors.New("unknown token version")

	// ErrUnknownCipherTag indicates a token tagged with a cipher this
	// build does not support.
	ErrUnknownCipherTag = errors.New("unknown cipher tag")

	// ErrDecryptionFailed indicates a decrypt could not be completed.
	// It is deliberately opaque: wrong key, wrong IV length, truncated
	// ciphertext, bad padding, and tag mismatch all surface as this same
	// error so the failure mode cannot be used as an oracle.
	ErrDecryptionFailed = errors.New("decryption failed")
)

// ConfigError represents a configuration error: a cipher identifier,
// compression level, key size, or password that cannot be used. Configuration
// errors are surfaced before any key material is touched and are never
// retried.
type ConfigError struct {
	Err    error  // Underlying sentinel error (ErrUnknownCipher, etc.)
	Detail string // Offending value (cipher id, level, size)
}

func (e *ConfigError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Detail)
	}
	return e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// CodecError represents a serialization failure: a value the codec cannot
// represent, or recovered bytes that do not decode.
type CodecError struct {
	Err   error // Underlying sentinel error (ErrMarshal, ErrUnmarshal)
	Cause error // Original error from the codec
}

func (e *CodecError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Err.Error(), e.Cause)
	}
	return e.Err.Error()
}

func (e *CodecError) Unwrap() error {
	return e.Err
}

// FormatError represents malformed transport text or a malformed token
// layout. Format errors occur before any cryptographic processing.
type FormatError struct {
	Err    error  // Underlying sentinel error (ErrInvalidToken, etc.)
	Detail string // Additional context (field, offending byte)
	Cause  error  // Original error from the transport decoder, if any
}

func (e *FormatError) Error() string {
	switch {
	case e.Detail != "" && e.Cause != nil:
		return fmt.Sprintf("%s: %s: %v", e.Err.Error(), e.Detail, e.Cause)
	case e.Detail != "":
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Detail)
	case e.Cause != nil:
		return fmt.Sprintf("%s: %v", e.Err.Error(), e.Cause)
	}
	return e.Err.Error()
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// newConfigError creates a ConfigError for unusable configuration values.
func newConfigError(sentinel error, detail string) error {
	return &ConfigError{
		Err:    sentinel,
		Detail: detail,
	}
}

// newCodecError creates a CodecError for marshal/unmarshal failures.
func newCodecError(sentinel error, cause error) error {
	return &CodecError{
		Err:   sentinel,
		Cause: cause,
	}
}

// newFormatError creates a FormatError for malformed tokens.
func newFormatError(sentinel error, detail string, cause error) error {
	return &FormatError{
		Err:    sentinel,
		Detail: detail,
		Cause:  cause,
	}
}
