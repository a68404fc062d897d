// Package server provides gRPC plumbing for the facewire services: the
// wire codec, hand-written service descriptors, and server lifecycle
// management.
package server

import (
	"fmt"

	"google.golang.org/protobuf/proto"

	"github.com/facewire/facewire/internal/wire"
)

// Codec marshals wire.Message values for gRPC. The wire surface is
// hand-encoded rather than protoc-generated, so the default proto codec
// does not apply; both server and all clients must force this codec.
// Generated proto messages (the health service) fall back to the proto
// marshaler so forcing the codec server-wide stays safe.
type Codec struct{}

// Name identifies the codec in content subtypes.
func (Codec) Name() string { return "facewire" }

// Marshal encodes a wire message.
func (Codec) Marshal(v interface{}) ([]byte, error) {
	switch m := v.(type) {
	case wire.Message:
		return m.MarshalWire()
	case proto.Message:
		return proto.Marshal(m)
	default:
		return nil, fmt.Errorf("%w: %T", wire.ErrNotWireMessage, v)
	}
}

// Unmarshal decodes into a wire message.
func (Codec) Unmarshal(data []byte, v interface{}) error {
	switch m := v.(type) {
	case wire.Message:
		return m.UnmarshalWire(data)
	case proto.Message:
		return proto.Unmarshal(data, m)
	default:
		return fmt.Errorf("%w: %T", wire.ErrNotWireMessage, v)
	}
}
