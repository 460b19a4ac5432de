package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/VXerys/artconnect-crm-sub001/internal/domain"
)

// ArtworkFilter narrows ListArtworks.
type ArtworkFilter struct {
	Status *domain.ArtworkStatus
	Search string
	Sort   string // created_at, price, views, title
	Order  Order
	Limit  int
}

var artworkSortColumns = map[string]string{
	"":           "created_at",
	"created_at": "created_at",
	"price":      "price",
	"views":      "views",
	"title":      "title",
}

// ValidArtworkSort reports whether ListArtworks can sort by column.
func ValidArtworkSort(column string) bool {
	_, ok := artworkSortColumns[column]
	return ok
}

const artworkColumns = `
	id, artist_id, title, medium, dimensions, year, description, image_url,
	price, status, views, sold_price, sold_at, created_at, updated_at`

func scanArtwork(row pgx.Row) (*domain.Artwork, error) {
	var a domain.Artwork
	var status string
	err := row.Scan(
		&a.ID, &a.ArtistID, &a.Title, &a.Medium, &a.Dimensions, &a.Year,
		&a.Description, &a.ImageURL, &a.Price, &status, &a.Views,
		&a.SoldPrice, &a.SoldAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Status = domain.ArtworkStatus(status)
	return &a, nil
}

// ListArtworks returns an artist's artworks matching filter.
func (s *Store) ListArtworks(ctx context.Context, artistID uuid.UUID, filter ArtworkFilter) ([]domain.Artwork, error) {
	column, ok := artworkSortColumns[filter.Sort]
	if !ok {
		return nil, fmt.Errorf("unsupported sort column %q", filter.Sort)
	}

	query := `SELECT` + artworkColumns + ` FROM artworks WHERE artist_id = $1`
	args := []interface{}{artistID}
	argIdx := 2

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, string(*filter.Status))
		argIdx++
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query += fmt.Sprintf(" AND (title ILIKE $%d OR medium ILIKE $%d)", argIdx, argIdx)
		args = append(args, "%"+search+"%")
		argIdx++
	}

	query += fmt.Sprintf(" ORDER BY %s %s, id LIMIT $%d", column, filter.Order.sql(), argIdx)
	args = append(args, clampLimit(filter.Limit))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list artworks: %w", err)
	}
	defer rows.Close()

	var artworks []domain.Artwork
	for rows.Next() {
		a, err := scanArtwork(rows)
		if err != nil {
			return nil, fmt.Errorf("scan artwork: %w", err)
		}
		artworks = append(artworks, *a)
	}
	return artworks, rows.Err()
}

// GetArtwork returns one artwork owned by artistID.
func (s *Store) GetArtwork(ctx context.Context, artistID, artworkID uuid.UUID) (*domain.Artwork, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT`+artworkColumns+` FROM artworks WHERE artist_id = $1 AND id = $2`,
		artistID, artworkID)
	a, err := scanArtwork(row)
	if err != nil {
		return nil, fmt.Errorf("get artwork: %w", notFound(err))
	}
	return a, nil
}

// CreateArtwork inserts an artwork and places its card at the end of the
// matching pipeline column.
func (s *Store) CreateArtwork(ctx context.Context, a domain.Artwork) (*domain.Artwork, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if a.Status == domain.StatusSold && a.SoldAt == nil {
		now := time.Now().UTC()
		a.SoldAt = &now
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO artworks (
			artist_id, title, medium, dimensions, year, description, image_url,
			price, status, views, sold_price, sold_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING`+artworkColumns,
		a.ArtistID, a.Title, a.Medium, a.Dimensions, a.Year, a.Description, a.ImageURL,
		a.Price, string(a.Status), a.Views, a.SoldPrice, a.SoldAt,
	)
	created, err := scanArtwork(row)
	if err != nil {
		return nil, fmt.Errorf("insert artwork: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO pipeline_items (artist_id, artwork_id, stage, position, expected_value)
		VALUES ($1, $2, $3,
			(SELECT COALESCE(MAX(position) + 1, 0) FROM pipeline_items WHERE artist_id = $1 AND stage = $3),
			$4)`,
		created.ArtistID, created.ID, string(created.Status), created.Price,
	)
	if err != nil {
		return nil, fmt.Errorf("insert pipeline item: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return created, nil
}

// UpdateArtwork overwrites the mutable fields of an artwork. A status change
// moves its pipeline card to the end of the new column.
func (s *Store) UpdateArtwork(ctx context.Context, a domain.Artwork) (*domain.Artwork, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var previous string
	err = tx.QueryRow(ctx,
		`SELECT status FROM artworks WHERE artist_id = $1 AND id = $2 FOR UPDATE`,
		a.ArtistID, a.ID).Scan(&previous)
	if err != nil {
		return nil, fmt.Errorf("lock artwork: %w", notFound(err))
	}

	row := tx.QueryRow(ctx, `
		UPDATE artworks SET
			title = $3, medium = $4, dimensions = $5, year = $6, description = $7,
			image_url = $8, price = $9, status = $10,
			sold_price = CASE WHEN $10::TEXT = 'sold' THEN COALESCE($11, sold_price, price) ELSE NULL END,
			sold_at = CASE WHEN $10::TEXT = 'sold' THEN COALESCE(sold_at, NOW()) ELSE NULL END,
			updated_at = NOW()
		WHERE artist_id = $1 AND id = $2
		RETURNING`+artworkColumns,
		a.ArtistID, a.ID, a.Title, a.Medium, a.Dimensions, a.Year, a.Description,
		a.ImageURL, a.Price, string(a.Status), a.SoldPrice,
	)
	updated, err := scanArtwork(row)
	if err != nil {
		return nil, fmt.Errorf("update artwork: %w", notFound(err))
	}

	if previous != string(updated.Status) {
		_, err = tx.Exec(ctx, `
			UPDATE pipeline_items SET position = position - 1
			WHERE artist_id = $1 AND stage = $3 AND position > (
				SELECT position FROM pipeline_items WHERE artist_id = $1 AND artwork_id = $2
			)`,
			updated.ArtistID, updated.ID, previous)
		if err != nil {
			return nil, fmt.Errorf("compact pipeline column: %w", err)
		}

		_, err = tx.Exec(ctx, `
			UPDATE pipeline_items SET
				stage = $3,
				position = (SELECT COALESCE(MAX(position) + 1, 0) FROM pipeline_items WHERE artist_id = $1 AND stage = $3),
				updated_at = NOW()
			WHERE artist_id = $1 AND artwork_id = $2`,
			updated.ArtistID, updated.ID, string(updated.Status))
		if err != nil {
			return nil, fmt.Errorf("move pipeline item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return updated, nil
}

// DeleteArtwork removes an artwork and its pipeline card.
func (s *Store) DeleteArtwork(ctx context.Context, artistID, artworkID uuid.UUID) error {
	ct, err := s.pool.Exec(ctx, `DELETE FROM artworks WHERE artist_id = $1 AND id = $2`, artistID, artworkID)
	if err != nil {
		return fmt.Errorf("delete artwork: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountArtworksByStatus returns counts keyed by status. Statuses with no
// artworks are absent.
func (s *Store) CountArtworksByStatus(ctx context.Context, artistID uuid.UUID) (map[domain.ArtworkStatus]int64, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT status, COUNT(*) FROM artworks WHERE artist_id = $1 GROUP BY status`, artistID)
	if err != nil {
		return nil, fmt.Errorf("count artworks by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.ArtworkStatus]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[domain.ArtworkStatus(status)] = count
	}
	return counts, rows.Err()
}

// TopArtworks returns the most viewed artworks.
func (s *Store) TopArtworks(ctx context.Context, artistID uuid.UUID, limit int) ([]domain.TopArtwork, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, title, views, price, status
		FROM artworks
		WHERE artist_id = $1
		ORDER BY views DESC, created_at DESC
		LIMIT $2`, artistID, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("top artworks: %w", err)
	}
	defer rows.Close()

	var top []domain.TopArtwork
	for rows.Next() {
		var t domain.TopArtwork
		var status string
		if err := rows.Scan(&t.ID, &t.Title, &t.Views, &t.Price, &status); err != nil {
			return nil, fmt.Errorf("scan top artwork: %w", err)
		}
		t.Status = domain.ArtworkStatus(status)
		top = append(top, t)
	}
	return top, rows.Err()
}

// TotalViews sums views across all of an artist's artworks.
func (s *Store) TotalViews(ctx context.Context, artistID uuid.UUID) (int64, error) {
	var views int64
	err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(views), 0)::BIGINT FROM artworks WHERE artist_id = $1`, artistID).Scan(&views)
	if err != nil {
		return 0, fmt.Errorf("total views: %w", err)
	}
	return views, nil
}

// MonthlySales is the sales aggregate for one calendar month.
type MonthlySales struct {
	Month   time.Time
	Count   int64
	Revenue float64
}

// SalesByMonth aggregates sold artworks per month with sold_at in [start, end).
// Months without sales are absent.
func (s *Store) SalesByMonth(ctx context.Context, artistID uuid.UUID, start, end time.Time) ([]MonthlySales, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT date_trunc('month', sold_at) AS month,
		       COUNT(*),
		       COALESCE(SUM(COALESCE(sold_price, price)), 0)::FLOAT8
		FROM artworks
		WHERE artist_id = $1 AND status = 'sold'
		  AND sold_at >= $2 AND sold_at < $3
		GROUP BY 1
		ORDER BY 1`, artistID, start, end)
	if err != nil {
		return nil, fmt.Errorf("sales by month: %w", err)
	}
	defer rows.Close()

	var months []MonthlySales
	for rows.Next() {
		var m MonthlySales
		if err := rows.Scan(&m.Month, &m.Count, &m.Revenue); err != nil {
			return nil, fmt.Errorf("scan monthly sales: %w", err)
		}
		months = append(months, m)
	}
	return months, rows.Err()
}

// SalesTotals is the sales aggregate over a window.
type SalesTotals struct {
	Count      int64
	Revenue    float64
	MaxPrice   float64
	FirstSale  *time.Time
	LatestSale *time.Time
}

// SalesTotals aggregates sold artworks with sold_at in [start, end).
func (s *Store) SalesTotals(ctx context.Context, artistID uuid.UUID, start, end time.Time) (SalesTotals, error) {
	var t SalesTotals
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(COALESCE(sold_price, price)), 0)::FLOAT8,
		       COALESCE(MAX(COALESCE(sold_price, price)), 0)::FLOAT8,
		       MIN(sold_at),
		       MAX(sold_at)
		FROM artworks
		WHERE artist_id = $1 AND status = 'sold'
		  AND sold_at >= $2 AND sold_at < $3`, artistID, start, end).
		Scan(&t.Count, &t.Revenue, &t.MaxPrice, &t.FirstSale, &t.LatestSale)
	if err != nil {
		return SalesTotals{}, fmt.Errorf("sales totals: %w", err)
	}
	return t, nil
}

// InventoryValue sums list prices of unsold artworks.
func (s *Store) InventoryValue(ctx context.Context, artistID uuid.UUID) (float64, error) {
	var value float64
	err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(price), 0)::FLOAT8
		FROM artworks WHERE artist_id = $1 AND status <> 'sold'`, artistID).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("inventory value: %w", err)
	}
	return value, nil
}
