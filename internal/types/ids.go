package types

import (
	"time"

	"github.com/google/uuid"
)

// DeliveryID identifies one delivery record in the update manager's store.
// String alias keeps JSON and SQL serialization plain.
type DeliveryID string

// NewDeliveryID generates a UUIDv7 delivery identifier.
// Time-ordered IDs keep sequential inserts clustered in B-tree pages and
// make "latest delivery" queries a simple ORDER BY.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewDeliveryID() DeliveryID {
	return DeliveryID(uuid.Must(uuid.NewV7()).String())
}

// ParseDeliveryID validates and converts a string to DeliveryID.
func ParseDeliveryID(s string) (DeliveryID, error) {
	if _, err := uuid.Parse(s); err != nil {
		return "", err
	}
	return DeliveryID(s), nil
}

// DeliveryIDTime extracts the timestamp embedded in a UUIDv7 ID.
// Returns zero time for invalid UUIDs; caller should check IsZero().
func DeliveryIDTime(id DeliveryID) time.Time {
	u, err := uuid.Parse(string(id))
	if err != nil {
		return time.Time{}
	}
	sec, nsec := u.Time().UnixTime()
	return time.Unix(sec, nsec)
}
