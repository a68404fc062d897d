package complication

import (
	"fmt"
	"time"

	"github.com/facewire/facewire/internal/types"
)

// TimeInterval is a half-open validity window [start, end). Immutable after
// construction; the constructor rejects equal or inverted bounds.
type TimeInterval struct {
	start time.Time
	end   time.Time
}

// NewTimeInterval builds an interval, failing unless start is strictly
// before end.
func NewTimeInterval(start, end time.Time) (TimeInterval, error) {
	if !start.Before(end) {
		return TimeInterval{}, fmt.Errorf("%w: start %s, end %s", types.ErrInvalidInterval, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return TimeInterval{start: start, end: end}, nil
}

// MustTimeInterval is NewTimeInterval panicking on error, for statically
// known bounds in tests and examples.
func MustTimeInterval(start, end time.Time) TimeInterval {
	i, err := NewTimeInterval(start, end)
	if err != nil {
		panic(err)
	}
	return i
}

// Start returns the inclusive lower bound.
func (i TimeInterval) Start() time.Time { return i.start }

// End returns the exclusive upper bound.
func (i TimeInterval) End() time.Time { return i.end }

// Contains reports whether t falls in [start, end).
func (i TimeInterval) Contains(t time.Time) bool {
	return !t.Before(i.start) && t.Before(i.end)
}

// Duration returns end minus start. Always positive for a constructed
// interval.
func (i TimeInterval) Duration() time.Duration {
	return i.end.Sub(i.start)
}

// Equal reports value equality over both bounds. time.Time comparison must
// go through Equal, not ==, so monotonic-clock readings don't break it.
func (i TimeInterval) Equal(o TimeInterval) bool {
	return i.start.Equal(o.start) && i.end.Equal(o.end)
}

// String renders the window in RFC 3339.
func (i TimeInterval) String() string {
	return fmt.Sprintf("[%s, %s)", i.start.Format(time.RFC3339), i.end.Format(time.RFC3339))
}
