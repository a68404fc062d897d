package source

import (
	"github.com/facewire/facewire/internal/complication"
	"github.com/facewire/facewire/internal/types"
	"github.com/facewire/facewire/internal/wire"
)

type responseKind int

const (
	responseNoUpdate responseKind = iota
	responseData
	responseTimeline
)

// Response is the tagged result of one complication request: a single
// payload, a timeline, or "no update". Exactly one variant per response is
// enforced by construction; a handler produces it through one of the three
// constructors below and hands it to the Responder once.
type Response struct {
	kind     responseKind
	data     *complication.Data
	timeline *complication.Timeline
}

// DataResponse wraps a single payload. A nil payload is the same as
// NoUpdate.
func DataResponse(d *complication.Data) Response {
	if d == nil {
		return NoUpdate()
	}
	return Response{kind: responseData, data: d}
}

// TimelineResponse wraps a timeline. A nil timeline is the same as
// NoUpdate.
func TimelineResponse(t *complication.Timeline) Response {
	if t == nil {
		return NoUpdate()
	}
	return Response{kind: responseTimeline, timeline: t}
}

// NoUpdate signals the previously delivered data is still current. Always a
// valid outcome, never an error.
func NoUpdate() Response {
	return Response{kind: responseNoUpdate}
}

// dataType returns the type tag the protocol checks validate against.
// No-update responses count as the NO_DATA sentinel.
func (r Response) dataType() types.ComplicationType {
	switch r.kind {
	case responseData:
		return r.data.Type()
	case responseTimeline:
		return r.timeline.DefaultData().Type()
	default:
		return types.TypeNoData
	}
}

// validate runs the payload-level checks the response kind requires.
// Timeline responses validate the whole timeline; single payloads validate
// themselves; no-update has nothing to check.
func (r Response) validate() error {
	switch r.kind {
	case responseData:
		return r.data.Validate()
	case responseTimeline:
		return r.timeline.Validate()
	default:
		return nil
	}
}

// toWire serializes the response, preserving nil for no-update.
func (r Response) toWire() *wire.Data {
	switch r.kind {
	case responseData:
		return r.data.ToWire()
	case responseTimeline:
		return r.timeline.ToWire()
	default:
		return nil
	}
}
