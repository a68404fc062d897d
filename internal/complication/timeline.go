package complication

import (
	"fmt"
	"time"

	"github.com/facewire/facewire/internal/types"
	"github.com/facewire/facewire/internal/wire"
)

// TimelineEntry pairs a validity window with the payload to show during it.
// Plain aggregate; type consistency is a cross-entry concern checked by the
// owning Timeline.
type TimelineEntry struct {
	validity TimeInterval
	data     *Data
}

// NewTimelineEntry builds an entry. The payload must be non-nil; everything
// else is deferred to Timeline.Validate.
func NewTimelineEntry(validity TimeInterval, data *Data) TimelineEntry {
	return TimelineEntry{validity: validity, data: data}
}

// Validity returns the entry's window.
func (e TimelineEntry) Validity() TimeInterval { return e.validity }

// Data returns the entry's payload.
func (e TimelineEntry) Data() *Data { return e.data }

// Equal reports value equality over both fields.
func (e TimelineEntry) Equal(o TimelineEntry) bool {
	return e.validity.Equal(o.validity) && e.data.Equal(o.data)
}

// String renders a compact debug form.
func (e TimelineEntry) String() string {
	return fmt.Sprintf("TimelineEntry(%s %s)", e.validity, e.data)
}

// Timeline is an ordered set of time-scoped payloads overriding a default
// payload. Constructed once per request-response cycle, validated, then
// serialized; never cached here.
type Timeline struct {
	defaultData *Data
	entries     []TimelineEntry
}

// NewTimeline builds a timeline around a mandatory default payload. The
// entry slice is copied; collection order is preserved through serialization
// and used as the selection tie-break.
func NewTimeline(defaultData *Data, entries []TimelineEntry) (*Timeline, error) {
	if defaultData == nil {
		return nil, fmt.Errorf("timeline requires a default payload")
	}
	tl := &Timeline{defaultData: defaultData}
	if len(entries) > 0 {
		tl.entries = make([]TimelineEntry, len(entries))
		copy(tl.entries, entries)
	}
	return tl, nil
}

// DefaultData returns the payload shown outside every entry's window.
func (t *Timeline) DefaultData() *Data { return t.defaultData }

// Entries returns the entries in collection order. Callers must not mutate
// the returned slice.
func (t *Timeline) Entries() []TimelineEntry { return t.entries }

// Validate checks the whole timeline:
//
//   - the default payload and every entry payload validate individually
//   - a NO_DATA entry's placeholder, if present, matches the default type
//   - any other entry matches the default type exactly
//   - placeholder-marked fields appear only inside NO_DATA placeholders
//
// Invoked by the dispatcher before serialization; failures propagate to the
// caller unrecovered.
func (t *Timeline) Validate() error {
	if err := t.defaultData.Validate(); err != nil {
		return fmt.Errorf("default data: %w", err)
	}
	defaultType := t.defaultData.Type()

	for i, entry := range t.entries {
		data := entry.data
		if data == nil {
			return fmt.Errorf("timeline entry %d has no payload", i)
		}
		if err := data.Validate(); err != nil {
			return fmt.Errorf("timeline entry %d: %w", i, err)
		}

		if data.IsNoData() {
			if p := data.Placeholder(); p != nil && p.Type() != defaultType {
				return fmt.Errorf("%w: timeline entry %d placeholder type %s does not match the default type %s",
					types.ErrTypeMismatch, i, p.Type(), defaultType)
			}
			continue
		}

		if data.Type() != defaultType {
			return fmt.Errorf("%w: timeline entry %d has type %s but the default type is %s",
				types.ErrTypeMismatch, i, data.Type(), defaultType)
		}
		if data.hasPlaceholderFields() {
			return fmt.Errorf("%w: timeline entry %d", types.ErrPlaceholderFields, i)
		}
	}
	return nil
}

// ActiveData selects the payload to render at instant t: among entries whose
// window contains t, the shortest window wins, so a long-lived default can
// be transiently overridden by short precise windows. Entries of equal
// shortest duration tie-break to the earliest in collection order, the only
// ordering both sides of the wire agree on. With no containing entry the
// default payload is returned.
func (t *Timeline) ActiveData(at time.Time) *Data {
	var best *TimelineEntry
	for i := range t.entries {
		entry := &t.entries[i]
		if !entry.validity.Contains(at) {
			continue
		}
		if best == nil || entry.validity.Duration() < best.validity.Duration() {
			best = entry
		}
	}
	if best == nil {
		return t.defaultData
	}
	return best.data
}

// ToWire serializes the timeline: the default payload's wire record carries
// the entries as nested records stamped with epoch-second bounds. Entry
// order in the output matches collection order; selection, not order,
// determines precedence.
func (t *Timeline) ToWire() *wire.Data {
	w := t.defaultData.ToWire()
	for _, entry := range t.entries {
		ew := entry.data.ToWire()
		start := entry.validity.Start().Unix()
		end := entry.validity.End().Unix()
		ew.TimelineStart = &start
		ew.TimelineEnd = &end
		w.TimelineEntries = append(w.TimelineEntries, ew)
	}
	return w
}

// TimelineFromWire reconstructs a timeline from a wire record carrying
// nested entries. Entries without both bounds are rejected.
func TimelineFromWire(w *wire.Data) (*Timeline, error) {
	defaultData, err := FromWire(w)
	if err != nil {
		return nil, err
	}
	tl := &Timeline{defaultData: defaultData}
	for i, ew := range w.TimelineEntries {
		if ew.TimelineStart == nil || ew.TimelineEnd == nil {
			return nil, fmt.Errorf("wire timeline entry %d missing validity bounds", i)
		}
		interval, err := NewTimeInterval(time.Unix(*ew.TimelineStart, 0).UTC(), time.Unix(*ew.TimelineEnd, 0).UTC())
		if err != nil {
			return nil, fmt.Errorf("wire timeline entry %d: %w", i, err)
		}
		data, err := FromWire(ew)
		if err != nil {
			return nil, fmt.Errorf("wire timeline entry %d: %w", i, err)
		}
		tl.entries = append(tl.entries, TimelineEntry{validity: interval, data: data})
	}
	return tl, nil
}

// Equal reports structural equality over the default payload and the entry
// list, order included.
func (t *Timeline) Equal(o *Timeline) bool {
	if t == nil || o == nil {
		return t == o
	}
	if !t.defaultData.Equal(o.defaultData) || len(t.entries) != len(o.entries) {
		return false
	}
	for i := range t.entries {
		if !t.entries[i].Equal(o.entries[i]) {
			return false
		}
	}
	return true
}

// String renders a compact debug form.
func (t *Timeline) String() string {
	return fmt.Sprintf("Timeline(default=%s entries=%d)", t.defaultData, len(t.entries))
}
