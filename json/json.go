// Package json provides a JSON codec for strongbox pipelines.
//
// JSON decodes numbers in untyped values as float64; decode into typed
// targets when exact integer round trips matter, or use the msgpack codec.
package json

import (
	"encoding/json"

	"github.com/zoobzio/strongbox"
)

// jsonCodec implements strongbox.Codec for JSON.
type jsonCodec struct{}

// New returns a JSON codec.
func New() strongbox.Codec {
	return &jsonCodec{}
}

// ContentType returns the MIME type for JSON.
func (c *jsonCodec) ContentType() string {
	return "application/json"
}

// Marshal encodes v as JSON.
func (c *jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal decodes JSON data into v.
func (c *jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
