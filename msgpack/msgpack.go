// Package msgpack provides a MessagePack codec for strongbox pipelines.
//
// MessagePack preserves value structure and primitive types exactly (ints
// stay ints, []byte stays []byte), making it the recommended serializer for
// round-tripping arbitrary values.
package msgpack

import (
	"github.com/vmihailenco/msgpack/v5"
	"github.com/zoobzio/strongbox"
)

// msgpackCodec implements strongbox.Codec for MessagePack.
type msgpackCodec struct{}

// New returns a MessagePack codec.
func New() strongbox.Codec {
	return &msgpackCodec{}
}

// ContentType returns the MIME type for MessagePack.
func (c *msgpackCodec) ContentType() string {
	return "application/msgpack"
}

// Marshal encodes v as MessagePack.
func (c *msgpackCodec) Marshal(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

// Unmarshal decodes MessagePack data into v.
func (c *msgpackCodec) Unmarshal(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}
