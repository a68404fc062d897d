package complication

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/facewire/facewire/internal/types"
)

func mustTimeline(t *testing.T, defaultData *Data, entries []TimelineEntry) *Timeline {
	t.Helper()
	tl, err := NewTimeline(defaultData, entries)
	if err != nil {
		t.Fatalf("NewTimeline() error = %v", err)
	}
	return tl
}

func TestNewTimeline_RequiresDefault(t *testing.T) {
	if _, err := NewTimeline(nil, nil); err == nil {
		t.Fatalf("NewTimeline(nil, nil) = nil error, want failure")
	}
}

func TestTimeline_Validate(t *testing.T) {
	window := MustTimeInterval(epoch, epoch.Add(time.Hour))

	tests := []struct {
		name        string
		defaultData *Data
		entries     []TimelineEntry
		wantErr     error
		wantMsg     []string
	}{
		{
			name:        "empty timeline",
			defaultData: NewShortText("75°"),
		},
		{
			name:        "matching entry types",
			defaultData: NewShortText("75°"),
			entries: []TimelineEntry{
				NewTimelineEntry(window, NewShortText("80°")),
			},
		},
		{
			name:        "entry type differs from default",
			defaultData: NewShortText("75°"),
			entries: []TimelineEntry{
				NewTimelineEntry(window, NewLongText("a longer forecast")),
			},
			wantErr: types.ErrTypeMismatch,
			wantMsg: []string{"SHORT_TEXT", "LONG_TEXT"},
		},
		{
			name:        "no-data entry always admitted",
			defaultData: NewShortText("75°"),
			entries: []TimelineEntry{
				NewTimelineEntry(window, NewNoData()),
			},
		},
		{
			name:        "no-data placeholder matching default type",
			defaultData: NewShortText("75°"),
			entries: []TimelineEntry{
				NewTimelineEntry(window, NewNoDataWithPlaceholder(NewShortText(PlaceholderText))),
			},
		},
		{
			name:        "no-data placeholder type differs from default",
			defaultData: NewShortText("75°"),
			entries: []TimelineEntry{
				NewTimelineEntry(window, NewNoDataWithPlaceholder(NewLongText(PlaceholderText))),
			},
			wantErr: types.ErrTypeMismatch,
			wantMsg: []string{"placeholder"},
		},
		{
			name:        "placeholder sentinel outside a placeholder",
			defaultData: NewShortText("75°"),
			entries: []TimelineEntry{
				NewTimelineEntry(window, NewShortText(PlaceholderText)),
			},
			wantErr: types.ErrPlaceholderFields,
		},
		{
			name:        "entry without a payload",
			defaultData: NewShortText("75°"),
			entries: []TimelineEntry{
				NewTimelineEntry(window, nil),
			},
		},
		{
			name:        "invalid default payload",
			defaultData: &Data{typ: types.ComplicationType(42)},
			wantErr:     types.ErrUnknownType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tl := mustTimeline(t, tt.defaultData, tt.entries)
			err := tl.Validate()

			if tt.name == "entry without a payload" {
				if err == nil {
					t.Fatalf("Validate() = nil, want payload error")
				}
				return
			}
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() error = %v, want %v", err, tt.wantErr)
			}
			for _, frag := range tt.wantMsg {
				if !strings.Contains(err.Error(), frag) {
					t.Errorf("Validate() error %q missing %q", err, frag)
				}
			}
		})
	}
}

func TestTimeline_ActiveData(t *testing.T) {
	defaultData := NewShortText("default")
	long := NewTimelineEntry(MustTimeInterval(epoch, epoch.Add(4*time.Hour)), NewShortText("long"))
	short := NewTimelineEntry(MustTimeInterval(epoch.Add(time.Hour), epoch.Add(2*time.Hour)), NewShortText("short"))

	tl := mustTimeline(t, defaultData, []TimelineEntry{long, short})

	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"before every window", epoch.Add(-time.Minute), "default"},
		{"only long window covers", epoch.Add(30 * time.Minute), "long"},
		{"shortest containing window wins", epoch.Add(90 * time.Minute), "short"},
		{"short window end is exclusive", epoch.Add(2 * time.Hour), "long"},
		{"after every window", epoch.Add(5 * time.Hour), "default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tl.ActiveData(tt.at).Text(); got != tt.want {
				t.Errorf("ActiveData(%v) = %q, want %q", tt.at, got, tt.want)
			}
		})
	}
}

func TestTimeline_ActiveData_TieBreaksToCollectionOrder(t *testing.T) {
	window := MustTimeInterval(epoch, epoch.Add(time.Hour))
	first := NewTimelineEntry(window, NewShortText("first"))
	second := NewTimelineEntry(window, NewShortText("second"))

	tl := mustTimeline(t, NewShortText("default"), []TimelineEntry{first, second})
	if got := tl.ActiveData(epoch.Add(30 * time.Minute)).Text(); got != "first" {
		t.Errorf("ActiveData() = %q, want the earliest of equal-length windows", got)
	}

	// Swapping collection order must swap the winner.
	tl = mustTimeline(t, NewShortText("default"), []TimelineEntry{second, first})
	if got := tl.ActiveData(epoch.Add(30 * time.Minute)).Text(); got != "second" {
		t.Errorf("ActiveData() after reorder = %q, want %q", got, "second")
	}
}

func TestTimeline_ToWire_DefaultOnly(t *testing.T) {
	tl := mustTimeline(t, NewShortText("Hello"), nil)
	w := tl.ToWire()
	if w.ShortText != "Hello" {
		t.Errorf("ShortText = %q, want %q", w.ShortText, "Hello")
	}
	if len(w.TimelineEntries) != 0 {
		t.Errorf("TimelineEntries = %d, want none", len(w.TimelineEntries))
	}
	if w.TimelineStart != nil || w.TimelineEnd != nil {
		t.Errorf("default payload carries validity bounds")
	}
}

func TestTimeline_ToWire_StampsEpochBounds(t *testing.T) {
	entries := []TimelineEntry{
		NewTimelineEntry(MustTimeInterval(epoch, epoch.Add(time.Hour)), NewShortText("a")),
		NewTimelineEntry(MustTimeInterval(epoch.Add(time.Hour), epoch.Add(2*time.Hour)), NewShortText("b")),
	}
	tl := mustTimeline(t, NewShortText("default"), entries)

	w := tl.ToWire()
	if len(w.TimelineEntries) != len(entries) {
		t.Fatalf("TimelineEntries = %d, want %d", len(w.TimelineEntries), len(entries))
	}
	for i, ew := range w.TimelineEntries {
		wantStart := entries[i].Validity().Start().Unix()
		wantEnd := entries[i].Validity().End().Unix()
		if ew.TimelineStart == nil || *ew.TimelineStart != wantStart {
			t.Errorf("entry %d start = %v, want %d", i, ew.TimelineStart, wantStart)
		}
		if ew.TimelineEnd == nil || *ew.TimelineEnd != wantEnd {
			t.Errorf("entry %d end = %v, want %d", i, ew.TimelineEnd, wantEnd)
		}
		if ew.ShortText != entries[i].Data().Text() {
			t.Errorf("entry %d payload order not preserved: got %q, want %q", i, ew.ShortText, entries[i].Data().Text())
		}
	}
}

func TestTimeline_WireRoundTrip(t *testing.T) {
	entries := []TimelineEntry{
		NewTimelineEntry(MustTimeInterval(epoch, epoch.Add(time.Hour)), NewShortText("a")),
		NewTimelineEntry(MustTimeInterval(epoch.Add(2*time.Hour), epoch.Add(3*time.Hour)), NewNoDataWithPlaceholder(NewShortText(PlaceholderText))),
	}
	tl := mustTimeline(t, NewShortTextWithTitle("75°", "Temp"), entries)

	got, err := TimelineFromWire(tl.ToWire())
	if err != nil {
		t.Fatalf("TimelineFromWire() error = %v", err)
	}
	if !got.Equal(tl) {
		t.Errorf("round trip changed timeline: got %s, want %s", got, tl)
	}
}

func TestTimelineFromWire_MissingBounds(t *testing.T) {
	w := NewShortText("default").ToWire()
	entry := NewShortText("a").ToWire()
	start := epoch.Unix()
	entry.TimelineStart = &start
	w.TimelineEntries = append(w.TimelineEntries, entry)

	if _, err := TimelineFromWire(w); err == nil {
		t.Fatalf("TimelineFromWire() = nil error, want missing-bounds failure")
	}
}

// Property: timelines built from the same fields are equal and serialize to
// identical bytes; perturbing any entry breaks both.
func TestTimeline_PropertyEquality(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("equal timelines share wire bytes", prop.ForAll(
		func(texts []string) bool {
			build := func() *Timeline {
				entries := make([]TimelineEntry, len(texts))
				for i, text := range texts {
					window := MustTimeInterval(
						epoch.Add(time.Duration(i)*time.Hour),
						epoch.Add(time.Duration(i+1)*time.Hour),
					)
					entries[i] = NewTimelineEntry(window, NewShortText(text))
				}
				tl, err := NewTimeline(NewShortText("default"), entries)
				if err != nil {
					return nil
				}
				return tl
			}

			a, b := build(), build()
			if a == nil || b == nil || !a.Equal(b) {
				return false
			}
			aw, err := a.ToWire().MarshalWire()
			if err != nil {
				return false
			}
			bw, err := b.ToWire().MarshalWire()
			if err != nil {
				return false
			}
			if !bytes.Equal(aw, bw) {
				return false
			}

			if len(texts) == 0 {
				return true
			}
			perturbed := build()
			perturbed.entries[0] = NewTimelineEntry(perturbed.entries[0].Validity(), NewShortText(texts[0]+"!"))
			pw, err := perturbed.ToWire().MarshalWire()
			if err != nil {
				return false
			}
			return !a.Equal(perturbed) && !bytes.Equal(aw, pw)
		},
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t)
}

// Property: the selected payload always comes from a window containing the
// probe instant, and no containing window is strictly shorter than the
// winner's.
func TestTimeline_PropertySelection(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	type span struct{ start, length int64 }

	genSpan := gopter.CombineGens(
		gen.Int64Range(0, 1000),
		gen.Int64Range(1, 500),
	).Map(func(vals []interface{}) span {
		return span{start: vals[0].(int64), length: vals[1].(int64)}
	})

	properties.Property("shortest containing window wins", prop.ForAll(
		func(spans []span, probe int64) bool {
			entries := make([]TimelineEntry, len(spans))
			for i, s := range spans {
				window := MustTimeInterval(
					epoch.Add(time.Duration(s.start)*time.Second),
					epoch.Add(time.Duration(s.start+s.length)*time.Second),
				)
				entries[i] = NewTimelineEntry(window, NewShortText(window.String()))
			}
			tl, err := NewTimeline(NewShortText("default"), entries)
			if err != nil {
				return false
			}

			at := epoch.Add(time.Duration(probe) * time.Second)
			got := tl.ActiveData(at)

			var shortest time.Duration = -1
			for _, entry := range entries {
				if !entry.Validity().Contains(at) {
					continue
				}
				if shortest < 0 || entry.Validity().Duration() < shortest {
					shortest = entry.Validity().Duration()
				}
			}
			if shortest < 0 {
				return got == tl.DefaultData()
			}
			for _, entry := range entries {
				if entry.Validity().Contains(at) && entry.Data().Text() == got.Text() {
					return entry.Validity().Duration() == shortest
				}
			}
			return false
		},
		gen.SliceOf(genSpan),
		gen.Int64Range(0, 1500),
	))

	properties.TestingRun(t)
}
