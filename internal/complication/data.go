// Package complication models complication payloads, validity intervals and
// timelines, and their conversion to wire form.
package complication

import (
	"fmt"

	"github.com/facewire/facewire/internal/types"
	"github.com/facewire/facewire/internal/wire"
)

// PlaceholderText is the sentinel marking a field as "render a stand-in
// shape here". Legal only inside the placeholder of a NO_DATA payload.
const PlaceholderText = "__placeholder__"

// Data is one complication payload: a type tag plus the fields that type
// uses. It is a tagged union; the NO_DATA variant may carry a nested typed
// placeholder, every other variant carries concrete fields. Values are
// immutable after construction.
type Data struct {
	typ         types.ComplicationType
	text        string
	title       string
	rangedValue float64
	rangedMin   float64
	rangedMax   float64
	dynamicText string
	placeholder *Data
}

// NewShortText builds a SHORT_TEXT payload.
func NewShortText(text string) *Data {
	return &Data{typ: types.TypeShortText, text: text}
}

// NewShortTextWithTitle builds a SHORT_TEXT payload with a title line.
func NewShortTextWithTitle(text, title string) *Data {
	return &Data{typ: types.TypeShortText, text: text, title: title}
}

// NewLongText builds a LONG_TEXT payload.
func NewLongText(text string) *Data {
	return &Data{typ: types.TypeLongText, text: text}
}

// NewRangedValue builds a RANGED_VALUE payload. Bounds are validated by
// Validate, not here, so a timeline can be assembled before being checked
// as a whole.
func NewRangedValue(value, min, max float64, text string) *Data {
	return &Data{typ: types.TypeRangedValue, rangedValue: value, rangedMin: min, rangedMax: max, text: text}
}

// NewNoData builds the "no data available" sentinel without a placeholder.
func NewNoData() *Data {
	return &Data{typ: types.TypeNoData}
}

// NewNoDataWithPlaceholder builds the sentinel with a typed stand-in that
// renderers may show until real data arrives.
func NewNoDataWithPlaceholder(placeholder *Data) *Data {
	return &Data{typ: types.TypeNoData, placeholder: placeholder}
}

// NewNoPermission builds a NO_PERMISSION payload.
func NewNoPermission() *Data {
	return &Data{typ: types.TypeNoPermission}
}

// WithDynamicText returns a copy of d whose text is a dynamic value
// expression evaluated by the platform at render time.
func (d *Data) WithDynamicText(expression string) *Data {
	c := *d
	c.dynamicText = expression
	return &c
}

// Type returns the payload's type tag.
func (d *Data) Type() types.ComplicationType { return d.typ }

// Text returns the primary text field.
func (d *Data) Text() string { return d.text }

// Title returns the title field, empty if unset.
func (d *Data) Title() string { return d.title }

// IsNoData reports whether d is the "no data available" sentinel.
func (d *Data) IsNoData() bool { return d.typ == types.TypeNoData }

// Placeholder returns the nested stand-in payload, nil if absent. Only
// NO_DATA payloads carry one.
func (d *Data) Placeholder() *Data { return d.placeholder }

// HasDynamicValues reports whether d or its placeholder carries a dynamic
// value expression.
func (d *Data) HasDynamicValues() bool {
	if d.dynamicText != "" {
		return true
	}
	return d.placeholder != nil && d.placeholder.HasDynamicValues()
}

// hasPlaceholderFields reports whether any field carries the placeholder
// sentinel marker.
func (d *Data) hasPlaceholderFields() bool {
	return d.text == PlaceholderText || d.title == PlaceholderText
}

// Validate checks d's internal consistency. Cross-payload rules (type
// agreement across a timeline) live on Timeline, since they are not a
// single payload's concern.
func (d *Data) Validate() error {
	if !d.typ.Valid() {
		return fmt.Errorf("%w: %d", types.ErrUnknownType, int32(d.typ))
	}
	if d.placeholder != nil && d.typ != types.TypeNoData {
		return fmt.Errorf("%w: only NO_DATA may carry a placeholder, got %s", types.ErrPlaceholderFields, d.typ)
	}
	if d.typ == types.TypeRangedValue {
		if d.rangedMin > d.rangedMax {
			return fmt.Errorf("ranged value min %v exceeds max %v", d.rangedMin, d.rangedMax)
		}
		if d.rangedValue < d.rangedMin || d.rangedValue > d.rangedMax {
			return fmt.Errorf("ranged value %v outside [%v, %v]", d.rangedValue, d.rangedMin, d.rangedMax)
		}
	}
	if d.placeholder != nil {
		if err := d.placeholder.Validate(); err != nil {
			return fmt.Errorf("placeholder: %w", err)
		}
	}
	return nil
}

// Equal reports structural equality over every field, placeholder included.
func (d *Data) Equal(o *Data) bool {
	if d == nil || o == nil {
		return d == o
	}
	if d.typ != o.typ || d.text != o.text || d.title != o.title ||
		d.rangedValue != o.rangedValue || d.rangedMin != o.rangedMin ||
		d.rangedMax != o.rangedMax || d.dynamicText != o.dynamicText {
		return false
	}
	return d.placeholder.Equal(o.placeholder)
}

// String renders a compact debug form.
func (d *Data) String() string {
	if d == nil {
		return "Data(nil)"
	}
	if d.placeholder != nil {
		return fmt.Sprintf("Data(%s placeholder=%s)", d.typ, d.placeholder)
	}
	if d.text != "" {
		return fmt.Sprintf("Data(%s %q)", d.typ, d.text)
	}
	return fmt.Sprintf("Data(%s)", d.typ)
}

// ToWire converts d to its cross-process representation.
func (d *Data) ToWire() *wire.Data {
	w := &wire.Data{
		Type:        int32(d.typ),
		Title:       d.title,
		RangedValue: d.rangedValue,
		RangedMin:   d.rangedMin,
		RangedMax:   d.rangedMax,
		DynamicText: d.dynamicText,
	}
	switch d.typ {
	case types.TypeLongText:
		w.LongText = d.text
	default:
		w.ShortText = d.text
	}
	if d.placeholder != nil {
		w.Placeholder = d.placeholder.ToWire()
	}
	return w
}

// FromWire reconstructs a payload from wire form. Timeline fields on w are
// ignored; timelines are reassembled by TimelineFromWire.
func FromWire(w *wire.Data) (*Data, error) {
	if w == nil {
		return nil, nil
	}
	typ := types.ComplicationType(w.Type)
	if !typ.Valid() {
		return nil, fmt.Errorf("%w: %d", types.ErrUnknownType, w.Type)
	}
	d := &Data{
		typ:         typ,
		title:       w.Title,
		rangedValue: w.RangedValue,
		rangedMin:   w.RangedMin,
		rangedMax:   w.RangedMax,
		dynamicText: w.DynamicText,
	}
	if typ == types.TypeLongText {
		d.text = w.LongText
	} else {
		d.text = w.ShortText
	}
	if w.Placeholder != nil {
		p, err := FromWire(w.Placeholder)
		if err != nil {
			return nil, fmt.Errorf("placeholder: %w", err)
		}
		d.placeholder = p
	}
	return d, nil
}
