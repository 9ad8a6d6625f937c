package strongbox

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
)

// compressor applies DEFLATE at a fixed, validated level. Whether a given
// token's payload is compressed is recorded in the token itself, so the
// decode side never consults the encoder's settings.
type compressor struct {
	level int
}

// newCompressor validates level and returns a compressor for it.
func newCompressor(level int) (*compressor, error) {
	if level < MinCompressionLevel || level > MaxCompressionLevel {
		return nil, newConfigError(ErrInvalidCompressionLevel, fmt.Sprintf("%d", level))
	}
	return &compressor{level: level}, nil
}

// compress returns data as a DEFLATE stream at the configured level.
func (c *compressor) compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, c.level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decompress inflates a DEFLATE stream produced by compress. The input has
// already been authenticated by the cipher engine, so a failure here means
// the token's compression flag lies about the payload.
func decompress(data []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, newFormatError(ErrInvalidToken, "compressed payload", err)
	}
	return out, nil
}
