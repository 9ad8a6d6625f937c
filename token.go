package strongbox

import (
	"encoding/base64"
	"fmt"
)

// tokenVersion is the current token format version. Bump it, and keep the
// old parser, whenever the byte layout changes; decode rejects versions it
// does not know instead of misreading them.
const tokenVersion = 0x01

// Compression flag values. Anything else is a malformed token.
const (
	flagPlain      = 0x00
	flagCompressed = 0x01
)

// transport is the base64url alphabet used for token text: URL- and
// filename-safe, unpadded, no line wrapping.
var transport = base64.RawURLEncoding

// token is the parsed form of one encrypted value:
//
//	version (1) || cipher tag (1) || compression flag (1) || iv || ciphertext [|| mac]
//
// The iv and mac lengths are fixed by the cipher spec named in the tag; the
// ciphertext is everything in between.
type token struct {
	spec       cipherSpec
	compressed bool
	iv         []byte
	ciphertext []byte
	mac        []byte
}

// encodeToken assembles the binary layout and transport-encodes it.
func encodeToken(spec cipherSpec, compressed bool, iv, ciphertext, mac []byte) string {
	flag := byte(flagPlain)
	if compressed {
		flag = flagCompressed
	}

	raw := make([]byte, 0, 3+len(iv)+len(ciphertext)+len(mac))
	raw = append(raw, tokenVersion, spec.tag, flag)
	raw = append(raw, iv...)
	raw = append(raw, ciphertext...)
	raw = append(raw, mac...)
	return transport.EncodeToString(raw)
}

// parseToken transport-decodes text and splits it into token fields.
// Malformed transport text, unknown versions, unknown cipher tags, and
// truncated layouts all fail with a FormatError; parseToken touches no key
// material.
func parseToken(text string) (*token, error) {
	raw, err := transport.DecodeString(text)
	if err != nil {
		return nil, newFormatError(ErrInvalidToken, "transport text", err)
	}

	if len(raw) < 3 {
		return nil, newFormatError(ErrTokenTooShort, "missing header", nil)
	}
	if raw[0] != tokenVersion {
		return nil, newFormatError(ErrUnknownVersion, fmt.Sprintf("0x%02x", raw[0]), nil)
	}

	spec, ok := cipherByTag(raw[1])
	if !ok {
		return nil, newFormatError(ErrUnknownCipherTag, fmt.Sprintf("0x%02x", raw[1]), nil)
	}

	var compressed bool
	switch raw[2] {
	case flagPlain:
	case flagCompressed:
		compressed = true
	default:
		return nil, newFormatError(ErrInvalidToken, fmt.Sprintf("compression flag 0x%02x", raw[2]), nil)
	}

	body := raw[3:]
	if len(body) <= spec.ivSize+spec.macSize {
		return nil, newFormatError(ErrTokenTooShort, "missing ciphertext", nil)
	}

	return &token{
		spec:       spec,
		compressed: compressed,
		iv:         body[:spec.ivSize],
		ciphertext: body[spec.ivSize : len(body)-spec.macSize],
		mac:        body[len(body)-spec.macSize:],
	}, nil
}
