// Package manager implements the platform-side update manager: it receives
// updateComplicationData deliveries from data sources and persists them so
// watch faces can fetch the latest payload after a restart. Caching wire
// bytes here keeps the timeline core stateless.
package manager

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/facewire/facewire/internal/core/db"
	"github.com/facewire/facewire/internal/types"
	"github.com/facewire/facewire/internal/wire"
)

// Service implements the UpdateManager RPC surface over a delivery store.
type Service struct {
	queries *db.Queries
	log     zerolog.Logger
}

// NewService creates a manager service backed by the given queries.
func NewService(queries *db.Queries, log zerolog.Logger) (*Service, error) {
	if queries == nil {
		return nil, fmt.Errorf("queries cannot be nil")
	}
	return &Service{queries: queries, log: log}, nil
}

// Deliver records one delivery. A payloadless request is recorded as a
// "no change" event and does not displace the latest data.
func (s *Service) Deliver(ctx context.Context, req *wire.DeliveryRequest) (*wire.Ack, error) {
	var payload []byte
	var complicationType int32
	if req.Data != nil {
		complicationType = req.Data.Type
		encoded, err := req.Data.MarshalWire()
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, fmt.Sprintf("unencodable payload: %v", err))
		}
		payload = encoded
	}

	id := types.NewDeliveryID()
	deliveredAt := time.Now().UTC().Format(time.RFC3339)

	var payloadArg interface{}
	if payload != nil {
		payloadArg = payload
	}
	if _, err := s.queries.Exec("insert-delivery", string(id), req.InstanceID, complicationType, payloadArg, deliveredAt); err != nil {
		return nil, status.Error(codes.Unavailable, fmt.Sprintf("failed to record delivery: %v", err))
	}

	s.log.Debug().Int32("instance", req.InstanceID).
		Bool("no_change", req.Data == nil).
		Str("delivery_id", string(id)).
		Msg("recorded delivery")
	return &wire.Ack{}, nil
}

// DeliveryRecord is one persisted delivery.
type DeliveryRecord struct {
	DeliveryID       string `db:"delivery_id"`
	InstanceID       int32  `db:"instance_id"`
	ComplicationType int32  `db:"complication_type"`
	Payload          []byte `db:"payload"`
	DeliveredAt      string `db:"delivered_at"`
}

// Latest returns the most recent delivery carrying a payload for an
// instance, decoded to wire form. Returns nil without error when nothing
// has been delivered yet.
func (s *Service) Latest(instanceID types.InstanceID) (*wire.Data, error) {
	var rec DeliveryRecord
	err := s.queries.Get("get-latest-delivery", &rec, int32(instanceID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest delivery: %w", err)
	}

	data := new(wire.Data)
	if err := data.UnmarshalWire(rec.Payload); err != nil {
		return nil, fmt.Errorf("corrupt stored payload %s: %w", rec.DeliveryID, err)
	}
	return data, nil
}

// History returns up to limit recent deliveries for an instance, newest
// first, "no change" events included.
func (s *Service) History(instanceID types.InstanceID, limit int) ([]DeliveryRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var records []DeliveryRecord
	if err := s.queries.Select("list-deliveries", &records, int32(instanceID), limit); err != nil {
		return nil, fmt.Errorf("failed to list deliveries: %w", err)
	}
	return records, nil
}
