// Package wire implements the binary cross-process representation of
// complication payloads and the RPC envelope messages around them.
//
// Messages are encoded by hand with protobuf/encoding/protowire rather than
// generated code: the surface is a handful of small messages, and owning the
// field plumbing keeps the wire contract explicit in one file. Field numbers
// are part of the protocol and must never be reused or renumbered.
package wire

import (
	"errors"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

var (
	// ErrTruncated indicates a message that ended mid-field.
	ErrTruncated = errors.New("wire: truncated message")

	// ErrNotWireMessage indicates a codec value that is not a wire Message.
	ErrNotWireMessage = errors.New("wire: value does not implement Message")
)

// Message is implemented by every wire-encodable type in this package.
// The gRPC codec round-trips values through this interface.
type Message interface {
	MarshalWire() ([]byte, error)
	UnmarshalWire(b []byte) error
}

// Data field numbers.
const (
	fType          = 1
	fShortText     = 2
	fLongText      = 3
	fTitle         = 4
	fRangedValue   = 5
	fRangedMin     = 6
	fRangedMax     = 7
	fDynamicText   = 8
	fPlaceholder   = 9
	fTimelineStart = 10
	fTimelineEnd   = 11
	fTimelineEntry = 12
)

// Data is the wire form of one complication payload. Timeline bounds are
// epoch seconds; sub-second precision is truncated at serialization. A
// payload with attached TimelineEntries is a serialized timeline whose own
// fields hold the default data.
type Data struct {
	Type        int32
	ShortText   string
	LongText    string
	Title       string
	RangedValue float64
	RangedMin   float64
	RangedMax   float64
	DynamicText string

	// Placeholder is only meaningful on NO_DATA payloads.
	Placeholder *Data

	// TimelineStart/TimelineEnd are set on nested timeline entries only.
	// nil means unset; 0 is a valid epoch second.
	TimelineStart *int64
	TimelineEnd   *int64

	TimelineEntries []*Data
}

// MarshalWire encodes d. Zero-valued scalar fields are omitted, matching
// proto3 presence semantics.
func (d *Data) MarshalWire() ([]byte, error) {
	return d.append(nil), nil
}

func (d *Data) append(b []byte) []byte {
	if d.Type != 0 {
		b = protowire.AppendTag(b, fType, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(d.Type))
	}
	if d.ShortText != "" {
		b = protowire.AppendTag(b, fShortText, protowire.BytesType)
		b = protowire.AppendString(b, d.ShortText)
	}
	if d.LongText != "" {
		b = protowire.AppendTag(b, fLongText, protowire.BytesType)
		b = protowire.AppendString(b, d.LongText)
	}
	if d.Title != "" {
		b = protowire.AppendTag(b, fTitle, protowire.BytesType)
		b = protowire.AppendString(b, d.Title)
	}
	if d.RangedValue != 0 {
		b = protowire.AppendTag(b, fRangedValue, protowire.Fixed64Type)
		b = protowire.AppendFixed64(b, math.Float64bits(d.RangedValue))
	}
	if d.RangedMin != 0 {
		b = protowire.AppendTag(b, fRangedMin, protowire.Fixed64Type)
		b = protowire.AppendFixed64(b, math.Float64bits(d.RangedMin))
	}
	if d.RangedMax != 0 {
		b = protowire.AppendTag(b, fRangedMax, protowire.Fixed64Type)
		b = protowire.AppendFixed64(b, math.Float64bits(d.RangedMax))
	}
	if d.DynamicText != "" {
		b = protowire.AppendTag(b, fDynamicText, protowire.BytesType)
		b = protowire.AppendString(b, d.DynamicText)
	}
	if d.Placeholder != nil {
		b = protowire.AppendTag(b, fPlaceholder, protowire.BytesType)
		b = protowire.AppendBytes(b, d.Placeholder.append(nil))
	}
	if d.TimelineStart != nil {
		b = protowire.AppendTag(b, fTimelineStart, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(*d.TimelineStart))
	}
	if d.TimelineEnd != nil {
		b = protowire.AppendTag(b, fTimelineEnd, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(*d.TimelineEnd))
	}
	for _, entry := range d.TimelineEntries {
		b = protowire.AppendTag(b, fTimelineEntry, protowire.BytesType)
		b = protowire.AppendBytes(b, entry.append(nil))
	}
	return b
}

// UnmarshalWire decodes into d, which must be zero-valued. Unknown fields
// are skipped so older binaries tolerate newer payloads.
func (d *Data) UnmarshalWire(b []byte) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return ErrTruncated
		}
		b = b[n:]

		switch {
		case num == fType && typ == protowire.VarintType:
			v, m := protowire.ConsumeVarint(b)
			if m < 0 {
				return ErrTruncated
			}
			d.Type = int32(v)
			b = b[m:]
		case num == fShortText && typ == protowire.BytesType:
			v, m := protowire.ConsumeString(b)
			if m < 0 {
				return ErrTruncated
			}
			d.ShortText = v
			b = b[m:]
		case num == fLongText && typ == protowire.BytesType:
			v, m := protowire.ConsumeString(b)
			if m < 0 {
				return ErrTruncated
			}
			d.LongText = v
			b = b[m:]
		case num == fTitle && typ == protowire.BytesType:
			v, m := protowire.ConsumeString(b)
			if m < 0 {
				return ErrTruncated
			}
			d.Title = v
			b = b[m:]
		case num == fRangedValue && typ == protowire.Fixed64Type:
			v, m := protowire.ConsumeFixed64(b)
			if m < 0 {
				return ErrTruncated
			}
			d.RangedValue = math.Float64frombits(v)
			b = b[m:]
		case num == fRangedMin && typ == protowire.Fixed64Type:
			v, m := protowire.ConsumeFixed64(b)
			if m < 0 {
				return ErrTruncated
			}
			d.RangedMin = math.Float64frombits(v)
			b = b[m:]
		case num == fRangedMax && typ == protowire.Fixed64Type:
			v, m := protowire.ConsumeFixed64(b)
			if m < 0 {
				return ErrTruncated
			}
			d.RangedMax = math.Float64frombits(v)
			b = b[m:]
		case num == fDynamicText && typ == protowire.BytesType:
			v, m := protowire.ConsumeString(b)
			if m < 0 {
				return ErrTruncated
			}
			d.DynamicText = v
			b = b[m:]
		case num == fPlaceholder && typ == protowire.BytesType:
			v, m := protowire.ConsumeBytes(b)
			if m < 0 {
				return ErrTruncated
			}
			nested := new(Data)
			if err := nested.UnmarshalWire(v); err != nil {
				return err
			}
			d.Placeholder = nested
			b = b[m:]
		case num == fTimelineStart && typ == protowire.VarintType:
			v, m := protowire.ConsumeVarint(b)
			if m < 0 {
				return ErrTruncated
			}
			start := int64(v)
			d.TimelineStart = &start
			b = b[m:]
		case num == fTimelineEnd && typ == protowire.VarintType:
			v, m := protowire.ConsumeVarint(b)
			if m < 0 {
				return ErrTruncated
			}
			end := int64(v)
			d.TimelineEnd = &end
			b = b[m:]
		case num == fTimelineEntry && typ == protowire.BytesType:
			v, m := protowire.ConsumeBytes(b)
			if m < 0 {
				return ErrTruncated
			}
			entry := new(Data)
			if err := entry.UnmarshalWire(v); err != nil {
				return err
			}
			d.TimelineEntries = append(d.TimelineEntries, entry)
			b = b[m:]
		default:
			m := protowire.ConsumeFieldValue(num, typ, b)
			if m < 0 {
				return ErrTruncated
			}
			b = b[m:]
		}
	}
	return nil
}
