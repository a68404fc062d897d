package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/facewire/facewire/internal/types"
	"github.com/facewire/facewire/internal/wire"
)

// UpdateManagerServer is the facewire.v1.UpdateManager service surface: the
// platform-side endpoint receiving asynchronous complication results.
type UpdateManagerServer interface {
	// Deliver accepts one updateComplicationData call. A request without a
	// payload means "no change".
	Deliver(ctx context.Context, req *wire.DeliveryRequest) (*wire.Ack, error)
}

const (
	managerServiceName   = "facewire.v1.UpdateManager"
	managerDeliverMethod = "/" + managerServiceName + "/Deliver"
)

// ManagerServiceDesc is the hand-written grpc.ServiceDesc for
// UpdateManager.
var ManagerServiceDesc = grpc.ServiceDesc{
	ServiceName: managerServiceName,
	HandlerType: (*UpdateManagerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Deliver", Handler: deliverHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "facewire/v1/manager.proto",
}

func deliverHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wire.DeliveryRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(UpdateManagerServer).Deliver(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: managerDeliverMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(UpdateManagerServer).Deliver(ctx, req.(*wire.DeliveryRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// RegisterManager registers an UpdateManager implementation.
func RegisterManager(s *grpc.Server, srv UpdateManagerServer) {
	s.RegisterService(&ManagerServiceDesc, srv)
}

// ManagerClient is the outbound stub a source uses to deliver asynchronous
// results. Implements source.UpdateManager.
type ManagerClient struct {
	cc *grpc.ClientConn
}

// DialManager connects to an update manager. Plaintext transport; deploy
// behind the platform's own channel security.
func DialManager(addr string) (*ManagerClient, error) {
	cc, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(Codec{})),
	)
	if err != nil {
		return nil, err
	}
	return &ManagerClient{cc: cc}, nil
}

// UpdateComplicationData delivers one result. A nil payload propagates as
// an empty delivery, preserving "no change" end to end.
func (c *ManagerClient) UpdateComplicationData(ctx context.Context, instanceID types.InstanceID, data *wire.Data) error {
	req := &wire.DeliveryRequest{InstanceID: int32(instanceID), Data: data}
	return c.cc.Invoke(ctx, managerDeliverMethod, req, &wire.Ack{})
}

// Close tears down the underlying connection.
func (c *ManagerClient) Close() error {
	return c.cc.Close()
}
