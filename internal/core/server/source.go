package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/facewire/facewire/internal/core/auth"
	"github.com/facewire/facewire/internal/core/config"
	"github.com/facewire/facewire/internal/source"
	"github.com/facewire/facewire/internal/types"
	"github.com/facewire/facewire/internal/wire"
)

// ComplicationSourceServer is the facewire.v1.ComplicationSource service
// surface: the binder entry points of the platform protocol, one unary
// method each.
type ComplicationSourceServer interface {
	// Update requests fresh data asynchronously; the result arrives at the
	// update manager, not in the ack.
	Update(ctx context.Context, req *wire.UpdateRequest) (*wire.Ack, error)

	// SynchronousUpdate requests fresh data and blocks until it is ready.
	SynchronousUpdate(ctx context.Context, req *wire.UpdateRequest) (*wire.DataResponse, error)

	// Activated, Deactivated, StartImmediate and StopImmediate are the
	// per-instance lifecycle notifications.
	Activated(ctx context.Context, req *wire.InstanceRef) (*wire.Ack, error)
	Deactivated(ctx context.Context, req *wire.InstanceRef) (*wire.Ack, error)
	StartImmediate(ctx context.Context, req *wire.InstanceRef) (*wire.Ack, error)
	StopImmediate(ctx context.Context, req *wire.InstanceRef) (*wire.Ack, error)

	// Preview returns representative static data for editor UIs.
	Preview(ctx context.Context, req *wire.PreviewRequest) (*wire.DataResponse, error)

	// ApiVersion reports the protocol revision the source speaks.
	ApiVersion(ctx context.Context, req *wire.Ack) (*wire.ApiVersionResponse, error)
}

const sourceServiceName = "facewire.v1.ComplicationSource"

// SourceServiceDesc is the hand-written grpc.ServiceDesc for
// ComplicationSource. Kept in the generated-code shape so the method table
// reads like any other gRPC service registration.
var SourceServiceDesc = grpc.ServiceDesc{
	ServiceName: sourceServiceName,
	HandlerType: (*ComplicationSourceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Update", Handler: updateHandler},
		{MethodName: "SynchronousUpdate", Handler: synchronousUpdateHandler},
		{MethodName: "Activated", Handler: activatedHandler},
		{MethodName: "Deactivated", Handler: deactivatedHandler},
		{MethodName: "StartImmediate", Handler: startImmediateHandler},
		{MethodName: "StopImmediate", Handler: stopImmediateHandler},
		{MethodName: "Preview", Handler: previewHandler},
		{MethodName: "ApiVersion", Handler: apiVersionHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "facewire/v1/source.proto",
}

// RegisterSource registers a ComplicationSource implementation.
func RegisterSource(s *grpc.Server, srv ComplicationSourceServer) {
	s.RegisterService(&SourceServiceDesc, srv)
}

func unaryHandler[Req any, PReq interface {
	*Req
	wire.Message
}](method string, invoke func(ComplicationSourceServer, context.Context, PReq) (interface{}, error)) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := PReq(new(Req))
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return invoke(srv.(ComplicationSourceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + sourceServiceName + "/" + method}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return invoke(srv.(ComplicationSourceServer), ctx, req.(PReq))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var (
	updateHandler = unaryHandler[wire.UpdateRequest]("Update",
		func(s ComplicationSourceServer, ctx context.Context, req *wire.UpdateRequest) (interface{}, error) {
			return s.Update(ctx, req)
		})
	synchronousUpdateHandler = unaryHandler[wire.UpdateRequest]("SynchronousUpdate",
		func(s ComplicationSourceServer, ctx context.Context, req *wire.UpdateRequest) (interface{}, error) {
			return s.SynchronousUpdate(ctx, req)
		})
	activatedHandler = unaryHandler[wire.InstanceRef]("Activated",
		func(s ComplicationSourceServer, ctx context.Context, req *wire.InstanceRef) (interface{}, error) {
			return s.Activated(ctx, req)
		})
	deactivatedHandler = unaryHandler[wire.InstanceRef]("Deactivated",
		func(s ComplicationSourceServer, ctx context.Context, req *wire.InstanceRef) (interface{}, error) {
			return s.Deactivated(ctx, req)
		})
	startImmediateHandler = unaryHandler[wire.InstanceRef]("StartImmediate",
		func(s ComplicationSourceServer, ctx context.Context, req *wire.InstanceRef) (interface{}, error) {
			return s.StartImmediate(ctx, req)
		})
	stopImmediateHandler = unaryHandler[wire.InstanceRef]("StopImmediate",
		func(s ComplicationSourceServer, ctx context.Context, req *wire.InstanceRef) (interface{}, error) {
			return s.StopImmediate(ctx, req)
		})
	previewHandler = unaryHandler[wire.PreviewRequest]("Preview",
		func(s ComplicationSourceServer, ctx context.Context, req *wire.PreviewRequest) (interface{}, error) {
			return s.Preview(ctx, req)
		})
	apiVersionHandler = unaryHandler[wire.Ack]("ApiVersion",
		func(s ComplicationSourceServer, ctx context.Context, req *wire.Ack) (interface{}, error) {
			return s.ApiVersion(ctx, req)
		})
)

// SourceService adapts a source.Dispatcher to the ComplicationSource RPC
// surface: request decode, supported-type gating, safety-tier merge, and
// error-to-status mapping.
type SourceService struct {
	dispatcher     *source.Dispatcher
	supportedTypes map[types.ComplicationType]bool
	syncTimeout    time.Duration
	log            zerolog.Logger
}

// NewSourceService creates the RPC adapter for a dispatcher.
func NewSourceService(dispatcher *source.Dispatcher, cfg *config.SourceConfig, log zerolog.Logger) (*SourceService, error) {
	if dispatcher == nil {
		return nil, fmt.Errorf("dispatcher cannot be nil")
	}
	if cfg == nil {
		return nil, fmt.Errorf("cfg cannot be nil")
	}
	supported, err := cfg.SupportedTypeSet()
	if err != nil {
		return nil, err
	}
	return &SourceService{
		dispatcher:     dispatcher,
		supportedTypes: supported,
		syncTimeout:    cfg.RequestTimeout,
		log:            log,
	}, nil
}

// decodeRequest builds the dispatcher request, merging the wire safety
// field with the tier the auth layer resolved. The wire field wins when it
// says anything definite; otherwise the interceptor's verdict applies.
func (s *SourceService) decodeRequest(ctx context.Context, req *wire.UpdateRequest, immediate bool) (source.Request, error) {
	r, err := source.RequestFromWire(req, immediate)
	if err != nil {
		return source.Request{}, status.Error(codes.InvalidArgument, err.Error())
	}
	if r.SafeWatchFace == source.SafeWatchFaceUnknown {
		r.SafeWatchFace = auth.SafetyFromContext(ctx)
	}
	if !s.supportedTypes[r.Type] {
		return source.Request{}, status.Error(codes.InvalidArgument,
			fmt.Sprintf("%v: %s", types.ErrUnsupportedType, r.Type))
	}
	return r, nil
}

// Update dispatches an asynchronous request and acks immediately; the
// result goes out through the update manager.
func (s *SourceService) Update(ctx context.Context, req *wire.UpdateRequest) (*wire.Ack, error) {
	r, err := s.decodeRequest(ctx, req, false)
	if err != nil {
		return nil, err
	}
	s.log.Debug().Stringer("request", r).Msg("dispatching update")
	if err := s.dispatcher.HandleUpdate(r); err != nil {
		return nil, statusFromError(err)
	}
	return &wire.Ack{}, nil
}

// SynchronousUpdate blocks the RPC until the handler responds, bounded by
// the caller's deadline or the configured request timeout.
func (s *SourceService) SynchronousUpdate(ctx context.Context, req *wire.UpdateRequest) (*wire.DataResponse, error) {
	r, err := s.decodeRequest(ctx, req, true)
	if err != nil {
		return nil, err
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.syncTimeout)
		defer cancel()
	}

	data, err := s.dispatcher.HandleSyncRequest(ctx, r)
	if err != nil {
		return nil, statusFromError(err)
	}
	return &wire.DataResponse{Data: data}, nil
}

// Activated forwards the activation notification.
func (s *SourceService) Activated(ctx context.Context, req *wire.InstanceRef) (*wire.Ack, error) {
	t := types.ComplicationType(req.Type)
	if !t.Valid() {
		return nil, status.Error(codes.InvalidArgument, fmt.Sprintf("%v: %d", types.ErrUnknownType, req.Type))
	}
	if err := s.dispatcher.NotifyActivated(types.InstanceID(req.InstanceID), t); err != nil {
		return nil, statusFromError(err)
	}
	return &wire.Ack{}, nil
}

// Deactivated forwards the deactivation notification.
func (s *SourceService) Deactivated(ctx context.Context, req *wire.InstanceRef) (*wire.Ack, error) {
	if err := s.dispatcher.NotifyDeactivated(types.InstanceID(req.InstanceID)); err != nil {
		return nil, statusFromError(err)
	}
	return &wire.Ack{}, nil
}

// StartImmediate forwards the start of immediate mode.
func (s *SourceService) StartImmediate(ctx context.Context, req *wire.InstanceRef) (*wire.Ack, error) {
	if err := s.dispatcher.NotifyStartImmediate(types.InstanceID(req.InstanceID)); err != nil {
		return nil, statusFromError(err)
	}
	return &wire.Ack{}, nil
}

// StopImmediate forwards the end of immediate mode.
func (s *SourceService) StopImmediate(ctx context.Context, req *wire.InstanceRef) (*wire.Ack, error) {
	if err := s.dispatcher.NotifyStopImmediate(types.InstanceID(req.InstanceID)); err != nil {
		return nil, statusFromError(err)
	}
	return &wire.Ack{}, nil
}

// Preview serves editor preview data on the calling goroutine.
func (s *SourceService) Preview(ctx context.Context, req *wire.PreviewRequest) (*wire.DataResponse, error) {
	t := types.ComplicationType(req.Type)
	if !t.Valid() {
		return nil, status.Error(codes.InvalidArgument, fmt.Sprintf("%v: %d", types.ErrUnknownType, req.Type))
	}
	data, err := s.dispatcher.Preview(t)
	if err != nil {
		return nil, statusFromError(err)
	}
	return &wire.DataResponse{Data: data}, nil
}

// ApiVersion reports the enforced protocol revision.
func (s *SourceService) ApiVersion(ctx context.Context, req *wire.Ack) (*wire.ApiVersionResponse, error) {
	return &wire.ApiVersionResponse{Version: s.dispatcher.APIVersion()}, nil
}

// statusFromError maps protocol errors to status codes. Contract violations
// are INVALID_ARGUMENT: programmer errors in the data source meant to fail
// loudly during development, never retried.
func statusFromError(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, types.ErrExecutorClosed):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, types.ErrTypeMismatch),
		errors.Is(err, types.ErrReservedType),
		errors.Is(err, types.ErrPlaceholderFields),
		errors.Is(err, types.ErrDynamicPreview),
		errors.Is(err, types.ErrInvalidInterval),
		errors.Is(err, types.ErrUnknownType):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
