// Package source implements the complication data source protocol: request
// dispatch onto a confined executor, response validation, and delivery in
// asynchronous, synchronous and preview modes.
package source

import (
	"fmt"

	"github.com/facewire/facewire/internal/types"
	"github.com/facewire/facewire/internal/wire"
)

// SafeWatchFace is the tri-state safety tier of the watch face behind a
// request.
type SafeWatchFace int32

const (
	// SafeWatchFaceUnknown means the platform could not or did not attest
	// the caller. Absent or malformed safety metadata maps here, never to
	// an error.
	SafeWatchFaceUnknown SafeWatchFace = 0

	// SafeWatchFaceSafe means the caller is on the source's allowlist.
	SafeWatchFaceSafe SafeWatchFace = 1

	// SafeWatchFaceUnsafe means the caller was identified and is not on the
	// allowlist.
	SafeWatchFaceUnsafe SafeWatchFace = 2
)

// String returns UNKNOWN, SAFE or UNSAFE.
func (s SafeWatchFace) String() string {
	switch s {
	case SafeWatchFaceSafe:
		return "SAFE"
	case SafeWatchFaceUnsafe:
		return "UNSAFE"
	default:
		return "UNKNOWN"
	}
}

// SafetyFromWire decodes the wire tri-state, mapping anything out of range
// to unknown.
func SafetyFromWire(v int32) SafeWatchFace {
	switch SafeWatchFace(v) {
	case SafeWatchFaceSafe, SafeWatchFaceUnsafe:
		return SafeWatchFace(v)
	default:
		return SafeWatchFaceUnknown
	}
}

// Request describes one inbound complication request. Read-only to the
// handler; the dispatcher constructs one per inbound call.
type Request struct {
	InstanceID    types.InstanceID
	Type          types.ComplicationType
	SafeWatchFace SafeWatchFace

	// Immediate is set when the request came through the blocking
	// synchronous path, meaning the watch face is actively visible.
	Immediate bool
}

// RequestFromWire builds a Request from its wire envelope. The requested
// type must be valid; safety metadata is clamped, not validated.
func RequestFromWire(w *wire.UpdateRequest, immediate bool) (Request, error) {
	typ := types.ComplicationType(w.Type)
	if !typ.Valid() {
		return Request{}, fmt.Errorf("%w: %d", types.ErrUnknownType, w.Type)
	}
	return Request{
		InstanceID:    types.InstanceID(w.InstanceID),
		Type:          typ,
		SafeWatchFace: SafetyFromWire(w.SafeWatchFace),
		Immediate:     immediate,
	}, nil
}

// String renders a compact debug form.
func (r Request) String() string {
	return fmt.Sprintf("Request(instance=%d type=%s safe=%s immediate=%t)",
		r.InstanceID, r.Type, r.SafeWatchFace, r.Immediate)
}
