package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/VXerys/artconnect-crm-sub001/internal/domain"
)

const reportColumns = `
	id, artist_id, report_type, period_start, period_end, content,
	ai_generated, model, created_at`

func scanReport(row pgx.Row) (*domain.Report, error) {
	var r domain.Report
	var reportType string
	var content []byte
	if err := row.Scan(
		&r.ID, &r.ArtistID, &reportType, &r.PeriodStart, &r.PeriodEnd, &content,
		&r.AIGenerated, &r.Model, &r.CreatedAt,
	); err != nil {
		return nil, err
	}
	r.Type = domain.ReportType(reportType)
	if err := json.Unmarshal(content, &r.Content); err != nil {
		return nil, fmt.Errorf("decode report content: %w", err)
	}
	return &r, nil
}

// CreateReport persists a generated report.
func (s *Store) CreateReport(ctx context.Context, r domain.Report) (*domain.Report, error) {
	content, err := json.Marshal(r.Content)
	if err != nil {
		return nil, fmt.Errorf("encode report content: %w", err)
	}
	row := s.pool.QueryRow(ctx, `
		INSERT INTO reports (artist_id, report_type, period_start, period_end, content, ai_generated, model)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING`+reportColumns,
		r.ArtistID, string(r.Type), r.PeriodStart, r.PeriodEnd, content, r.AIGenerated, r.Model,
	)
	created, err := scanReport(row)
	if err != nil {
		return nil, fmt.Errorf("insert report: %w", err)
	}
	return created, nil
}

// GetReport returns one report owned by artistID.
func (s *Store) GetReport(ctx context.Context, artistID, reportID uuid.UUID) (*domain.Report, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT`+reportColumns+` FROM reports WHERE artist_id = $1 AND id = $2`, artistID, reportID)
	r, err := scanReport(row)
	if err != nil {
		return nil, fmt.Errorf("get report: %w", notFound(err))
	}
	return r, nil
}

// ListReports returns the artist's reports, newest first.
func (s *Store) ListReports(ctx context.Context, artistID uuid.UUID, reportType *domain.ReportType, limit int) ([]domain.Report, error) {
	query := `SELECT` + reportColumns + ` FROM reports WHERE artist_id = $1`
	args := []interface{}{artistID}
	if reportType != nil {
		query += " AND report_type = $2"
		args = append(args, string(*reportType))
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC, id LIMIT $%d", len(args)+1)
	args = append(args, clampLimit(limit))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var reports []domain.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		reports = append(reports, *r)
	}
	return reports, rows.Err()
}

// CountReportsByType returns counts keyed by report type.
func (s *Store) CountReportsByType(ctx context.Context, artistID uuid.UUID) (map[domain.ReportType]int64, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT report_type, COUNT(*) FROM reports WHERE artist_id = $1 GROUP BY report_type`, artistID)
	if err != nil {
		return nil, fmt.Errorf("count reports: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.ReportType]int64)
	for rows.Next() {
		var t string
		var n int64
		if err := rows.Scan(&t, &n); err != nil {
			return nil, fmt.Errorf("scan report count: %w", err)
		}
		counts[domain.ReportType(t)] = n
	}
	return counts, rows.Err()
}

// DeleteReport removes a report and its export jobs.
func (s *Store) DeleteReport(ctx context.Context, artistID, reportID uuid.UUID) error {
	ct, err := s.pool.Exec(ctx, `DELETE FROM reports WHERE artist_id = $1 AND id = $2`, artistID, reportID)
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
