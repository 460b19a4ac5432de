package ingestion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/VXerys/artconnect-crm-sub001/internal/domain"
	"github.com/VXerys/artconnect-crm-sub001/internal/observability"
)

// maxClockSkew bounds how far in the future an event timestamp may be.
const maxClockSkew = 5 * time.Minute

// Event is a portfolio visit as published on the stream.
type Event struct {
	EventID    string    `json:"event_id"`
	ArtistID   string    `json:"artist_id"`
	Source     string    `json:"source"`
	ArtworkID  string    `json:"artwork_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventStore persists traffic events, skipping duplicates.
type EventStore interface {
	InsertTrafficEvents(ctx context.Context, events []domain.TrafficEvent) (int, error)
}

// Processor validates and persists batches of events.
type Processor struct {
	store  EventStore
	logger *zap.Logger
	now    func() time.Time
}

// NewProcessor creates a new event processor.
func NewProcessor(store EventStore, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{store: store, logger: logger, now: time.Now}
}

// ProcessBatch converts events and inserts the valid ones. Invalid events are
// logged and dropped; duplicates are counted but not an error.
func (p *Processor) ProcessBatch(ctx context.Context, events []Event) error {
	if len(events) == 0 {
		return nil
	}

	received := p.now().UTC()
	records := make([]domain.TrafficEvent, 0, len(events))
	for _, e := range events {
		record, err := convertEvent(e, received)
		if err != nil {
			p.logger.Warn("skipping invalid traffic event", zap.String("event_id", e.EventID), zap.Error(err))
			continue
		}
		records = append(records, record)
	}
	observability.RecordTrafficEvents("invalid", len(events)-len(records))

	inserted, err := p.store.InsertTrafficEvents(ctx, records)
	if err != nil {
		observability.RecordTrafficEvents("failed", len(records)-inserted)
		return fmt.Errorf("insert traffic events: %w", err)
	}

	duplicates := len(records) - inserted
	observability.RecordTrafficEvents("inserted", inserted)
	observability.RecordTrafficEvents("duplicate", duplicates)

	p.logger.Info("processed traffic batch",
		zap.Int("total_events", len(events)),
		zap.Int("inserted", inserted),
		zap.Int("duplicates", duplicates),
	)
	return nil
}

// convertEvent validates e. A missing timestamp becomes the receive time and
// a missing source becomes "direct".
func convertEvent(e Event, received time.Time) (domain.TrafficEvent, error) {
	eventID, err := uuid.Parse(e.EventID)
	if err != nil {
		return domain.TrafficEvent{}, fmt.Errorf("invalid event_id: %w", err)
	}
	artistID, err := uuid.Parse(e.ArtistID)
	if err != nil {
		return domain.TrafficEvent{}, fmt.Errorf("invalid artist_id: %w", err)
	}

	var artworkID *uuid.UUID
	if e.ArtworkID != "" {
		id, err := uuid.Parse(e.ArtworkID)
		if err != nil {
			return domain.TrafficEvent{}, fmt.Errorf("invalid artwork_id: %w", err)
		}
		artworkID = &id
	}

	occurred := e.OccurredAt.UTC()
	if e.OccurredAt.IsZero() {
		occurred = received
	}
	if occurred.After(received.Add(maxClockSkew)) {
		return domain.TrafficEvent{}, errors.New("occurred_at is in the future")
	}

	return domain.TrafficEvent{
		EventID:    eventID,
		ArtistID:   artistID,
		Source:     NormalizeSource(e.Source),
		ArtworkID:  artworkID,
		OccurredAt: occurred,
	}, nil
}

// NormalizeSource lower-cases and trims a traffic source label.
func NormalizeSource(source string) string {
	source = strings.ToLower(strings.TrimSpace(source))
	if source == "" {
		return "direct"
	}
	if len(source) > 64 {
		source = source[:64]
	}
	return source
}
