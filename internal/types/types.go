// Package types provides domain models shared across facewire components.
//
// Zero-dependency design: types.go and errors.go use only the standard
// library so that data-source implementations embedding the SDK do not pull
// in transport or storage dependencies. ID utilities in ids.go import uuid
// but are isolated for selective inclusion.
package types

import "fmt"

// ComplicationType tags a complication payload. Values match the platform's
// wire enum and must never be renumbered.
type ComplicationType int32

const (
	// TypeNotConfigured marks a slot the user has not configured yet.
	// Reserved for platform use; data sources must never return it.
	TypeNotConfigured ComplicationType = 1

	// TypeEmpty marks a deliberately blank slot.
	// Reserved for platform use; data sources must never return it.
	TypeEmpty ComplicationType = 2

	// TypeShortText is a brief text payload, optionally with a title.
	TypeShortText ComplicationType = 3

	// TypeLongText is a longer text payload for wide slots.
	TypeLongText ComplicationType = 4

	// TypeRangedValue is a numeric value within a min/max range.
	TypeRangedValue ComplicationType = 5

	// TypeMonochromaticImage is a single-color icon payload.
	TypeMonochromaticImage ComplicationType = 6

	// TypeSmallImage is a small full-color image payload.
	TypeSmallImage ComplicationType = 7

	// TypeNoPermission signals the source needs a permission grant.
	TypeNoPermission ComplicationType = 9

	// TypeNoData signals no data is currently available. The one sentinel a
	// data source may return in place of the requested type, optionally
	// carrying a typed placeholder to render as a stand-in.
	TypeNoData ComplicationType = 10
)

var typeNames = map[ComplicationType]string{
	TypeNotConfigured:      "NOT_CONFIGURED",
	TypeEmpty:              "EMPTY",
	TypeShortText:          "SHORT_TEXT",
	TypeLongText:           "LONG_TEXT",
	TypeRangedValue:        "RANGED_VALUE",
	TypeMonochromaticImage: "MONOCHROMATIC_IMAGE",
	TypeSmallImage:         "SMALL_IMAGE",
	TypeNoPermission:       "NO_PERMISSION",
	TypeNoData:             "NO_DATA",
}

// String returns the canonical upper-snake name used in protocol errors.
func (t ComplicationType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int32(t))
}

// Valid reports whether t is a known complication type.
func (t ComplicationType) Valid() bool {
	_, ok := typeNames[t]
	return ok
}

// Reserved reports whether t is one of the sentinel types the platform keeps
// for itself. Data sources signalling absence must use TypeNoData instead.
func (t ComplicationType) Reserved() bool {
	return t == TypeNotConfigured || t == TypeEmpty
}

// ParseComplicationType resolves an upper-snake type name, as used in
// configuration files, to its enum value.
func ParseComplicationType(name string) (ComplicationType, error) {
	for t, n := range typeNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownType, name)
}

// InstanceID identifies one complication slot on one watch face. Assigned by
// the platform; opaque to data sources beyond equality.
type InstanceID int32
