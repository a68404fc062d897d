package complication

import (
	"errors"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/facewire/facewire/internal/types"
)

var epoch = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func TestNewTimeInterval_Valid(t *testing.T) {
	interval, err := NewTimeInterval(epoch, epoch.Add(time.Hour))
	if err != nil {
		t.Fatalf("NewTimeInterval() error = %v, want nil", err)
	}
	if !interval.Start().Equal(epoch) {
		t.Errorf("Start() = %v, want %v", interval.Start(), epoch)
	}
	if !interval.End().Equal(epoch.Add(time.Hour)) {
		t.Errorf("End() = %v, want %v", interval.End(), epoch.Add(time.Hour))
	}
	if interval.Duration() != time.Hour {
		t.Errorf("Duration() = %v, want 1h", interval.Duration())
	}
}

func TestNewTimeInterval_RejectsBadBounds(t *testing.T) {
	tests := []struct {
		name       string
		start, end time.Time
	}{
		{"equal bounds", epoch, epoch},
		{"inverted bounds", epoch.Add(time.Hour), epoch},
		{"inverted by a nanosecond", epoch.Add(time.Nanosecond), epoch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTimeInterval(tt.start, tt.end)
			if !errors.Is(err, types.ErrInvalidInterval) {
				t.Errorf("NewTimeInterval() error = %v, want ErrInvalidInterval", err)
			}
		})
	}
}

func TestTimeInterval_Contains(t *testing.T) {
	interval := MustTimeInterval(epoch, epoch.Add(time.Hour))

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"before start", epoch.Add(-time.Second), false},
		{"at start (inclusive)", epoch, true},
		{"inside", epoch.Add(30 * time.Minute), true},
		{"at end (exclusive)", epoch.Add(time.Hour), false},
		{"after end", epoch.Add(2 * time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := interval.Contains(tt.at); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestTimeInterval_Equal(t *testing.T) {
	a := MustTimeInterval(epoch, epoch.Add(time.Hour))
	b := MustTimeInterval(epoch, epoch.Add(time.Hour))
	c := MustTimeInterval(epoch, epoch.Add(2*time.Hour))

	if !a.Equal(b) {
		t.Errorf("identical intervals not Equal")
	}
	if a.Equal(c) {
		t.Errorf("intervals with different ends Equal")
	}

	// Monotonic clock readings must not affect value equality.
	now := time.Now()
	d := MustTimeInterval(now, now.Add(time.Hour))
	e := MustTimeInterval(now.Round(0), now.Add(time.Hour).Round(0))
	if !d.Equal(e) {
		t.Errorf("monotonic clock reading broke Equal")
	}
}

// Property: construction fails iff start >= end, and every constructed
// interval has positive duration containing its start but not its end.
func TestTimeInterval_PropertyBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("construction fails iff start >= end", prop.ForAll(
		func(startOffset int64, endOffset int64) bool {
			start := epoch.Add(time.Duration(startOffset) * time.Second)
			end := epoch.Add(time.Duration(endOffset) * time.Second)

			interval, err := NewTimeInterval(start, end)
			if startOffset >= endOffset {
				return errors.Is(err, types.ErrInvalidInterval)
			}
			if err != nil {
				return false
			}
			return interval.Duration() > 0 &&
				interval.Contains(start) &&
				!interval.Contains(end)
		},
		gen.Int64Range(-1e6, 1e6),
		gen.Int64Range(-1e6, 1e6),
	))

	properties.TestingRun(t)
}

// Property: equality is reflexive and agrees across independently built
// values from the same fields.
func TestTimeInterval_PropertyEquality(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("same fields build equal intervals", prop.ForAll(
		func(startOffset int64, length int64) bool {
			start := epoch.Add(time.Duration(startOffset) * time.Second)
			end := start.Add(time.Duration(length) * time.Second)

			a := MustTimeInterval(start, end)
			b := MustTimeInterval(start, end)
			shifted := MustTimeInterval(start.Add(time.Second), end.Add(time.Second))

			return a.Equal(a) && a.Equal(b) && b.Equal(a) && !a.Equal(shifted)
		},
		gen.Int64Range(-1e6, 1e6),
		gen.Int64Range(1, 1e6),
	))

	properties.TestingRun(t)
}
