package fabric

import (
	"context"

	"google.golang.org/grpc"
)

// serviceName is the gRPC service path every lane dials; there is no
// .proto file behind it, so the path is just a string both ends agree
// on, the same way rawCodecName is an agreed-on content-subtype rather
// than something generated code enforces.
const serviceName = "starlane.fabric.Lane"

// LaneServer is what a Star's fabric listener implements: one bidi
// stream per incoming lane connection, carrying rawMessage frames for
// as long as the neighbour stays connected.
type LaneServer interface {
	Stream(LaneStreamServer) error
}

// LaneStreamServer is the server-side half of one lane's bidi stream.
type LaneStreamServer interface {
	Send(*rawMessage) error
	Recv() (*rawMessage, error)
	grpc.ServerStream
}

type laneStreamServer struct{ grpc.ServerStream }

func (x *laneStreamServer) Send(m *rawMessage) error { return x.ServerStream.SendMsg(m) }

func (x *laneStreamServer) Recv() (*rawMessage, error) {
	m := new(rawMessage)
	if err := x.ServerStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func streamHandler(srv interface{}, stream grpc.ServerStream) error {
	return srv.(LaneServer).Stream(&laneStreamServer{stream})
}

// serviceDesc is the hand-rolled equivalent of what protoc-gen-go-grpc
// would emit for a single bidi-streaming RPC named Stream.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*LaneServer)(nil),
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Stream",
			Handler:       streamHandler,
			ServerStreams: true,
			ClientStreams: true,
		},
	},
	Metadata: "pkg/fabric/service.go",
}

// LaneStreamClient is the client-side half of one lane's bidi stream.
type LaneStreamClient interface {
	Send(*rawMessage) error
	Recv() (*rawMessage, error)
	grpc.ClientStream
}

type laneStreamClient struct{ grpc.ClientStream }

func (x *laneStreamClient) Send(m *rawMessage) error { return x.ClientStream.SendMsg(m) }

func (x *laneStreamClient) Recv() (*rawMessage, error) {
	m := new(rawMessage)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

// dialStream opens the one Lane.Stream RPC against cc, requesting
// rawCodec via its content-subtype so the peer decodes frames the same
// way this process encodes them.
func dialStream(ctx context.Context, cc *grpc.ClientConn) (LaneStreamClient, error) {
	stream, err := cc.NewStream(ctx, &serviceDesc.Streams[0], "/"+serviceName+"/Stream",
		grpc.CallContentSubtype(rawCodecName))
	if err != nil {
		return nil, err
	}
	return &laneStreamClient{stream}, nil
}
