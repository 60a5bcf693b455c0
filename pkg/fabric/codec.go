// Package fabric carries waves and search wind between stars over
// mTLS gRPC lanes. It never references a generated protobuf stub —
// every wave and wind message already has its own wire envelope
// (pkg/wave, pkg/search), so the only thing gRPC needs to move is an
// opaque byte frame. rawCodec is the glue that lets gRPC's streaming
// machinery carry those frames without a .proto file.
package fabric

import (
	"fmt"

	"google.golang.org/grpc/encoding"
)

// rawCodecName is the gRPC content-subtype both ends negotiate so the
// server picks rawCodec back up on the other side of the wire.
const rawCodecName = "starlane-raw"

// rawMessage is the only message type the Lane service ever sends or
// receives: a single opaque frame, already encoded by pkg/wave or
// pkg/search's own codec.
type rawMessage struct {
	data []byte
}

// rawCodec hands rawMessage.data straight to the wire with no further
// encoding — the payload framing gRPC already provides (one message per
// Send/Recv) is all the structure these frames need.
type rawCodec struct{}

func (rawCodec) Name() string { return rawCodecName }

func (rawCodec) Marshal(v interface{}) ([]byte, error) {
	m, ok := v.(*rawMessage)
	if !ok {
		return nil, fmt.Errorf("fabric: rawCodec.Marshal got %T, want *rawMessage", v)
	}
	return m.data, nil
}

func (rawCodec) Unmarshal(data []byte, v interface{}) error {
	m, ok := v.(*rawMessage)
	if !ok {
		return fmt.Errorf("fabric: rawCodec.Unmarshal got %T, want *rawMessage", v)
	}
	m.data = append([]byte(nil), data...)
	return nil
}

func init() {
	encoding.RegisterCodec(rawCodec{})
}
