package source

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/facewire/facewire/internal/complication"
	"github.com/facewire/facewire/internal/types"
	"github.com/facewire/facewire/internal/wire"
)

// DefaultResponseTimeout is the asynchronous response budget. The platform
// historically documented ~20 seconds without enforcing it; here the budget
// is first-class and late responses are dropped.
const DefaultResponseTimeout = 20 * time.Second

// ProtocolVersion is the newest request/response protocol revision this
// package implements. Version 2 adds safety metadata and forbids dynamic
// value expressions in preview data.
const ProtocolVersion = 2

// Responder delivers a handler's result for one request. It must be called
// exactly once; the second call returns ErrAlreadyResponded and is ignored.
// May be called from any goroutine, during the handler invocation or later.
// The returned error reports validation or delivery failure and is always a
// programmer error in the data source, not a transient condition.
type Responder func(Response) error

// Source is the developer-supplied handler a Dispatcher drives. All methods
// are invoked on the dispatcher's confined executor, in the order the
// platform issued the underlying calls.
type Source interface {
	// OnComplicationRequest answers one request by calling respond with a
	// payload, a timeline, or NoUpdate. respond need not be called before
	// returning, but the asynchronous budget applies.
	OnComplicationRequest(ctx context.Context, req Request, respond Responder)

	// OnComplicationActivated reports a slot entering use with the type the
	// user configured.
	OnComplicationActivated(instanceID types.InstanceID, t types.ComplicationType)

	// OnComplicationDeactivated reports a slot leaving use.
	OnComplicationDeactivated(instanceID types.InstanceID)

	// OnStartImmediateRequests reports the watch face becoming visible:
	// requests switch to the blocking synchronous path until the matching
	// stop notification.
	OnStartImmediateRequests(instanceID types.InstanceID)

	// OnStopImmediateRequests ends immediate mode for the instance.
	OnStopImmediateRequests(instanceID types.InstanceID)

	// PreviewData returns representative static data for a type, shown by
	// editor UIs. Must not depend on wall-clock time or any other dynamic
	// state, and is invoked on the caller's goroutine, not the executor.
	PreviewData(t types.ComplicationType) *complication.Data
}

// UpdateManager is the platform collaborator receiving asynchronous
// results. A nil payload means "no change".
type UpdateManager interface {
	UpdateComplicationData(ctx context.Context, instanceID types.InstanceID, data *wire.Data) error
}

// DispatcherConfig carries construction-time settings.
type DispatcherConfig struct {
	// ResponseTimeout bounds asynchronous responses. Zero means
	// DefaultResponseTimeout.
	ResponseTimeout time.Duration

	// APIVersion is the protocol revision to enforce. Zero means
	// ProtocolVersion.
	APIVersion int32

	// QueueSize bounds the executor queue. Zero picks a default.
	QueueSize int

	Logger zerolog.Logger
}

// Dispatcher bridges the platform's RPC surface to a Source, enforcing the
// protocol invariants uniformly across delivery modes. The executor is
// injected at construction; there is no global main-thread lookup.
type Dispatcher struct {
	src        Source
	manager    UpdateManager
	exec       *Executor
	timeout    time.Duration
	apiVersion int32
	log        zerolog.Logger
}

// NewDispatcher creates a dispatcher and starts its confined executor.
func NewDispatcher(src Source, manager UpdateManager, cfg DispatcherConfig) (*Dispatcher, error) {
	if src == nil {
		return nil, fmt.Errorf("src cannot be nil")
	}
	if manager == nil {
		return nil, fmt.Errorf("manager cannot be nil")
	}
	timeout := cfg.ResponseTimeout
	if timeout <= 0 {
		timeout = DefaultResponseTimeout
	}
	apiVersion := cfg.APIVersion
	if apiVersion <= 0 {
		apiVersion = ProtocolVersion
	}
	return &Dispatcher{
		src:        src,
		manager:    manager,
		exec:       NewExecutor(cfg.QueueSize),
		timeout:    timeout,
		apiVersion: apiVersion,
		log:        cfg.Logger,
	}, nil
}

// APIVersion returns the protocol revision the dispatcher enforces.
func (d *Dispatcher) APIVersion() int32 { return d.apiVersion }

// validateResponse runs the protocol checks every delivery mode shares and
// serializes on success. Nil passthrough: a no-update response serializes
// to a nil payload.
func (d *Dispatcher) validateResponse(req Request, resp Response) (*wire.Data, error) {
	dataType := resp.dataType()
	if dataType.Reserved() {
		return nil, fmt.Errorf("%w: cannot return complication data of type %s; return %s instead",
			types.ErrReservedType, dataType, types.TypeNoData)
	}
	if dataType != types.TypeNoData && dataType != req.Type {
		return nil, fmt.Errorf("%w: Complication data should match the requested type. Expected %s got %s.",
			types.ErrTypeMismatch, req.Type, dataType)
	}
	if err := resp.validate(); err != nil {
		return nil, err
	}
	return resp.toWire(), nil
}

// HandleUpdate runs the asynchronous request path: the handler is invoked
// on the executor and the validated result goes out through the update
// manager in a separate outbound call. The response budget starts now and
// is detached from the inbound RPC, which acks immediately.
func (d *Dispatcher) HandleUpdate(req Request) error {
	reqCtx, cancel := context.WithTimeout(context.Background(), d.timeout)

	var done atomic.Bool
	respond := func(resp Response) error {
		if !done.CompareAndSwap(false, true) {
			return types.ErrAlreadyResponded
		}
		defer cancel()

		data, err := d.validateResponse(req, resp)
		if err != nil {
			d.log.Error().Err(err).Int32("instance", int32(req.InstanceID)).
				Stringer("type", req.Type).Msg("complication response rejected")
			return err
		}
		if ctxErr := reqCtx.Err(); ctxErr != nil {
			d.log.Warn().Int32("instance", int32(req.InstanceID)).
				Dur("budget", d.timeout).Msg("late complication response dropped")
			return fmt.Errorf("response after budget: %w", ctxErr)
		}
		if err := d.manager.UpdateComplicationData(reqCtx, req.InstanceID, data); err != nil {
			d.log.Error().Err(err).Int32("instance", int32(req.InstanceID)).
				Msg("complication delivery failed")
			return err
		}
		return nil
	}

	return d.exec.Post(func() {
		d.src.OnComplicationRequest(reqCtx, req, respond)
	})
}

// HandleSyncRequest runs the synchronous (immediate) path: the handler
// invocation is posted to the same executor, but the calling goroutine, an
// RPC thread and never the executor itself, blocks until the result is in
// and gets the wire payload directly. Validation failures surface here, on
// the calling goroutine, since there is no separate outbound call to fail
// on. ctx carries the caller's deadline.
func (d *Dispatcher) HandleSyncRequest(ctx context.Context, req Request) (*wire.Data, error) {
	type outcome struct {
		data *wire.Data
		err  error
	}
	result := make(chan outcome, 1)

	var done atomic.Bool
	respond := func(resp Response) error {
		if !done.CompareAndSwap(false, true) {
			return types.ErrAlreadyResponded
		}
		data, err := d.validateResponse(req, resp)
		result <- outcome{data: data, err: err}
		return err
	}

	if err := d.exec.Post(func() {
		d.src.OnComplicationRequest(ctx, req, respond)
	}); err != nil {
		return nil, err
	}

	select {
	case out := <-result:
		return out.data, out.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Preview runs the stateless preview path on the calling goroutine. Preview
// data carries no validity window, so it is always-valid by construction;
// on protocol version 2 and newer it must also be free of dynamic value
// expressions. A nil result is allowed and means the editor shows nothing.
func (d *Dispatcher) Preview(t types.ComplicationType) (*wire.Data, error) {
	data := d.src.PreviewData(t)
	if data == nil {
		return nil, nil
	}
	if data.Type() != t {
		return nil, fmt.Errorf("%w: Preview data should match the requested type. Expected %s got %s.",
			types.ErrTypeMismatch, t, data.Type())
	}
	if err := data.Validate(); err != nil {
		return nil, err
	}
	if d.apiVersion >= 2 && data.HasDynamicValues() {
		return nil, fmt.Errorf("%w: %s", types.ErrDynamicPreview, t)
	}
	return data.ToWire(), nil
}

// NotifyActivated forwards an activation to the handler in arrival order.
func (d *Dispatcher) NotifyActivated(instanceID types.InstanceID, t types.ComplicationType) error {
	return d.exec.Post(func() { d.src.OnComplicationActivated(instanceID, t) })
}

// NotifyDeactivated forwards a deactivation to the handler.
func (d *Dispatcher) NotifyDeactivated(instanceID types.InstanceID) error {
	return d.exec.Post(func() { d.src.OnComplicationDeactivated(instanceID) })
}

// NotifyStartImmediate forwards the start of immediate mode.
func (d *Dispatcher) NotifyStartImmediate(instanceID types.InstanceID) error {
	return d.exec.Post(func() { d.src.OnStartImmediateRequests(instanceID) })
}

// NotifyStopImmediate forwards the end of immediate mode.
func (d *Dispatcher) NotifyStopImmediate(instanceID types.InstanceID) error {
	return d.exec.Post(func() { d.src.OnStopImmediateRequests(instanceID) })
}

// Close drains the executor and stops accepting work.
func (d *Dispatcher) Close() {
	d.exec.Close()
}
