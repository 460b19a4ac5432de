package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/VXerys/artconnect-crm-sub001/internal/domain"
)

// insertTrafficEvent inserts one event, ignoring duplicates, and bumps the
// view counter of the visited artwork when the event is new.
const insertTrafficEvent = `
	WITH ins AS (
		INSERT INTO traffic_events (event_id, artist_id, source, artwork_id, occurred_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (event_id, artist_id) DO NOTHING
		RETURNING artwork_id
	), bump AS (
		UPDATE artworks SET views = views + 1
		FROM ins
		WHERE artworks.id = ins.artwork_id AND artworks.artist_id = $2
	)
	SELECT COUNT(*) FROM ins`

// InsertTrafficEvents persists events in one batch round-trip and returns how
// many were new. Duplicates (same event id and artist) are skipped.
func (s *Store) InsertTrafficEvents(ctx context.Context, events []domain.TrafficEvent) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, e := range events {
		batch.Queue(insertTrafficEvent, e.EventID, e.ArtistID, e.Source, e.ArtworkID, e.OccurredAt)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for range events {
		var n int
		if err := results.QueryRow().Scan(&n); err != nil {
			return inserted, fmt.Errorf("insert traffic event: %w", err)
		}
		inserted += n
	}
	return inserted, nil
}

// RollupTrafficDaily recomputes per-source daily visit counts for every day
// touched by events occurring in [start, end).
func (s *Store) RollupTrafficDaily(ctx context.Context, start, end time.Time) (int64, error) {
	ct, err := s.pool.Exec(ctx, `
		INSERT INTO traffic_daily_rollups (artist_id, day, source, visits, updated_at)
		SELECT artist_id, (occurred_at AT TIME ZONE 'UTC')::date AS day, source, COUNT(*), NOW()
		FROM traffic_events
		WHERE (occurred_at AT TIME ZONE 'UTC')::date >= ($1::TIMESTAMPTZ AT TIME ZONE 'UTC')::date
		  AND occurred_at < $2
		GROUP BY 1, 2, 3
		ON CONFLICT (artist_id, day, source)
		DO UPDATE SET visits = EXCLUDED.visits, updated_at = NOW()`, start, end)
	if err != nil {
		return 0, fmt.Errorf("rollup traffic: %w", err)
	}
	return ct.RowsAffected(), nil
}

// SourceVisits is the visit total for one traffic source.
type SourceVisits struct {
	Source string
	Visits int64
}

// TrafficBySource sums rolled-up visits per source for days in [start, end),
// largest first.
func (s *Store) TrafficBySource(ctx context.Context, artistID uuid.UUID, start, end time.Time) ([]SourceVisits, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT source, SUM(visits)::BIGINT
		FROM traffic_daily_rollups
		WHERE artist_id = $1
		  AND day >= ($2::TIMESTAMPTZ AT TIME ZONE 'UTC')::date
		  AND day < ($3::TIMESTAMPTZ AT TIME ZONE 'UTC')::date
		GROUP BY source
		ORDER BY 2 DESC, source`, artistID, start, end)
	if err != nil {
		return nil, fmt.Errorf("traffic by source: %w", err)
	}
	defer rows.Close()

	var sources []SourceVisits
	for rows.Next() {
		var sv SourceVisits
		if err := rows.Scan(&sv.Source, &sv.Visits); err != nil {
			return nil, fmt.Errorf("scan traffic source: %w", err)
		}
		sources = append(sources, sv)
	}
	return sources, rows.Err()
}
