package types

import (
	"errors"
	"testing"
)

func TestComplicationType_String(t *testing.T) {
	tests := []struct {
		typ  ComplicationType
		want string
	}{
		{TypeNotConfigured, "NOT_CONFIGURED"},
		{TypeEmpty, "EMPTY"},
		{TypeShortText, "SHORT_TEXT"},
		{TypeLongText, "LONG_TEXT"},
		{TypeRangedValue, "RANGED_VALUE"},
		{TypeMonochromaticImage, "MONOCHROMATIC_IMAGE"},
		{TypeSmallImage, "SMALL_IMAGE"},
		{TypeNoPermission, "NO_PERMISSION"},
		{TypeNoData, "NO_DATA"},
		{ComplicationType(8), "UNKNOWN(8)"},
		{ComplicationType(0), "UNKNOWN(0)"},
	}

	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("ComplicationType(%d).String() = %q, want %q", int32(tt.typ), got, tt.want)
		}
	}
}

func TestComplicationType_Valid(t *testing.T) {
	for _, typ := range []ComplicationType{1, 2, 3, 4, 5, 6, 7, 9, 10} {
		if !typ.Valid() {
			t.Errorf("ComplicationType(%d).Valid() = false", int32(typ))
		}
	}
	// 8 is a hole in the enum, kept unassigned.
	for _, typ := range []ComplicationType{0, 8, 11, -1} {
		if typ.Valid() {
			t.Errorf("ComplicationType(%d).Valid() = true", int32(typ))
		}
	}
}

func TestComplicationType_Reserved(t *testing.T) {
	if !TypeNotConfigured.Reserved() || !TypeEmpty.Reserved() {
		t.Errorf("platform sentinels not reserved")
	}
	for _, typ := range []ComplicationType{TypeShortText, TypeNoData, TypeNoPermission} {
		if typ.Reserved() {
			t.Errorf("%s.Reserved() = true", typ)
		}
	}
}

func TestParseComplicationType(t *testing.T) {
	got, err := ParseComplicationType("RANGED_VALUE")
	if err != nil || got != TypeRangedValue {
		t.Errorf("ParseComplicationType(RANGED_VALUE) = %v, %v", got, err)
	}
	if _, err := ParseComplicationType("ranged_value"); !errors.Is(err, ErrUnknownType) {
		t.Errorf("lower-case name accepted, error = %v", err)
	}
	if _, err := ParseComplicationType("BOGUS"); !errors.Is(err, ErrUnknownType) {
		t.Errorf("ParseComplicationType(BOGUS) error = %v, want ErrUnknownType", err)
	}
}

func TestParse_StringRoundTrip(t *testing.T) {
	for typ := range map[ComplicationType]struct{}{
		TypeNotConfigured: {}, TypeEmpty: {}, TypeShortText: {}, TypeLongText: {},
		TypeRangedValue: {}, TypeMonochromaticImage: {}, TypeSmallImage: {},
		TypeNoPermission: {}, TypeNoData: {},
	} {
		got, err := ParseComplicationType(typ.String())
		if err != nil || got != typ {
			t.Errorf("round trip of %s = %v, %v", typ, got, err)
		}
	}
}
