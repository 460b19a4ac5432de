package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/VXerys/artconnect-crm-sub001/internal/domain"
)

// ListPipeline returns every card on the artist's board ordered by stage
// (board order) then position.
func (s *Store) ListPipeline(ctx context.Context, artistID uuid.UUID) ([]domain.PipelineItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT p.id, p.artist_id, p.artwork_id, a.title, p.contact_id, COALESCE(c.name, ''),
		       p.stage, p.position, p.expected_value::FLOAT8, p.notes, p.updated_at
		FROM pipeline_items p
		JOIN artworks a ON a.id = p.artwork_id
		LEFT JOIN contacts c ON c.id = p.contact_id
		WHERE p.artist_id = $1
		ORDER BY array_position(ARRAY['concept', 'in_progress', 'finished', 'sold'], p.stage), p.position, p.id`,
		artistID)
	if err != nil {
		return nil, fmt.Errorf("list pipeline: %w", err)
	}
	defer rows.Close()

	var items []domain.PipelineItem
	for rows.Next() {
		var item domain.PipelineItem
		var stage string
		if err := rows.Scan(
			&item.ID, &item.ArtistID, &item.ArtworkID, &item.ArtworkTitle, &item.ContactID,
			&item.ContactName, &stage, &item.Position, &item.ExpectedValue, &item.Notes, &item.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan pipeline item: %w", err)
		}
		item.Stage = domain.ArtworkStatus(stage)
		items = append(items, item)
	}
	return items, rows.Err()
}

// CountActivePipeline counts cards not yet in the sold column.
func (s *Store) CountActivePipeline(ctx context.Context, artistID uuid.UUID) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM pipeline_items WHERE artist_id = $1 AND stage <> 'sold'`, artistID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count active pipeline: %w", err)
	}
	return count, nil
}

// MovePipelineItem moves a card to stage at position. Positions in the source
// and target columns are renumbered so each column stays contiguous from 0.
// A position past the end of the target column appends. The linked artwork
// takes the new stage as its status; entering sold stamps sold_at and
// sold_price, leaving sold clears them.
func (s *Store) MovePipelineItem(ctx context.Context, artistID, itemID uuid.UUID, stage domain.ArtworkStatus, position int) (*domain.PipelineItem, error) {
	if !stage.Valid() {
		return nil, fmt.Errorf("invalid stage %q", stage)
	}
	if position < 0 {
		position = 0
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var fromStage string
	var fromPosition int
	var artworkID uuid.UUID
	err = tx.QueryRow(ctx, `
		SELECT stage, position, artwork_id FROM pipeline_items
		WHERE artist_id = $1 AND id = $2 FOR UPDATE`, artistID, itemID).
		Scan(&fromStage, &fromPosition, &artworkID)
	if err != nil {
		return nil, fmt.Errorf("lock pipeline item: %w", notFound(err))
	}

	// Close the gap in the source column.
	if _, err := tx.Exec(ctx, `
		UPDATE pipeline_items SET position = position - 1
		WHERE artist_id = $1 AND stage = $2 AND position > $3 AND id <> $4`,
		artistID, fromStage, fromPosition, itemID); err != nil {
		return nil, fmt.Errorf("compact source column: %w", err)
	}

	var size int
	if err := tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM pipeline_items
		WHERE artist_id = $1 AND stage = $2 AND id <> $3`,
		artistID, string(stage), itemID).Scan(&size); err != nil {
		return nil, fmt.Errorf("measure target column: %w", err)
	}
	if position > size {
		position = size
	}

	// Open a slot in the target column.
	if _, err := tx.Exec(ctx, `
		UPDATE pipeline_items SET position = position + 1
		WHERE artist_id = $1 AND stage = $2 AND position >= $3 AND id <> $4`,
		artistID, string(stage), position, itemID); err != nil {
		return nil, fmt.Errorf("shift target column: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE pipeline_items SET stage = $3, position = $4, updated_at = NOW()
		WHERE artist_id = $1 AND id = $2`,
		artistID, itemID, string(stage), position); err != nil {
		return nil, fmt.Errorf("place pipeline item: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE artworks SET
			status = $3,
			sold_at = CASE WHEN $3::TEXT = 'sold' THEN COALESCE(sold_at, NOW()) ELSE NULL END,
			sold_price = CASE WHEN $3::TEXT = 'sold' THEN COALESCE(sold_price, price) ELSE NULL END,
			updated_at = NOW()
		WHERE artist_id = $1 AND id = $2`,
		artistID, artworkID, string(stage)); err != nil {
		return nil, fmt.Errorf("sync artwork status: %w", err)
	}

	var item domain.PipelineItem
	var itemStage string
	err = tx.QueryRow(ctx, `
		SELECT p.id, p.artist_id, p.artwork_id, a.title, p.contact_id, COALESCE(c.name, ''),
		       p.stage, p.position, p.expected_value::FLOAT8, p.notes, p.updated_at
		FROM pipeline_items p
		JOIN artworks a ON a.id = p.artwork_id
		LEFT JOIN contacts c ON c.id = p.contact_id
		WHERE p.artist_id = $1 AND p.id = $2`, artistID, itemID).
		Scan(&item.ID, &item.ArtistID, &item.ArtworkID, &item.ArtworkTitle, &item.ContactID,
			&item.ContactName, &itemStage, &item.Position, &item.ExpectedValue, &item.Notes, &item.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("reload pipeline item: %w", err)
	}
	item.Stage = domain.ArtworkStatus(itemStage)

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &item, nil
}
