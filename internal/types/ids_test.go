package types

import (
	"testing"
	"time"
)

func TestNewDeliveryID_Monotonic(t *testing.T) {
	prev := NewDeliveryID()
	for i := 0; i < 100; i++ {
		id := NewDeliveryID()
		if string(id) <= string(prev) {
			t.Fatalf("delivery IDs not monotonically increasing: %s then %s", prev, id)
		}
		prev = id
	}
}

func TestParseDeliveryID(t *testing.T) {
	id := NewDeliveryID()
	got, err := ParseDeliveryID(string(id))
	if err != nil || got != id {
		t.Errorf("ParseDeliveryID() = %v, %v", got, err)
	}
	if _, err := ParseDeliveryID("not-a-uuid"); err == nil {
		t.Errorf("ParseDeliveryID(not-a-uuid) = nil error")
	}
}

func TestDeliveryIDTime(t *testing.T) {
	before := time.Now().Add(-time.Second)
	id := NewDeliveryID()
	after := time.Now().Add(time.Second)

	got := DeliveryIDTime(id)
	if got.Before(before) || got.After(after) {
		t.Errorf("DeliveryIDTime() = %v, want within [%v, %v]", got, before, after)
	}
	if !DeliveryIDTime("bogus").IsZero() {
		t.Errorf("DeliveryIDTime(bogus) not zero")
	}
}
