// Package exports renders stored reports asynchronously and delivers the
// artifacts through S3-compatible object storage.
package exports

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/VXerys/artconnect-crm-sub001/internal/domain"
)

// ErrJobNotFound is returned when no job matches the artist and job id.
var ErrJobNotFound = errors.New("export job not found")

const jobColumns = `
	job_id, artist_id, report_id, format, status, requested_by,
	output_uri, checksum, size_bytes, error_message, created_at, completed_at`

// JobRepository manages export job lifecycle in the database.
type JobRepository struct {
	pool *pgxpool.Pool
}

// NewJobRepository creates a new export job repository.
func NewJobRepository(pool *pgxpool.Pool) *JobRepository {
	return &JobRepository{pool: pool}
}

// CreateJobRequest specifies a new export job.
type CreateJobRequest struct {
	ArtistID    uuid.UUID
	ReportID    uuid.UUID
	Format      domain.ExportFormat
	RequestedBy string
}

func scanJob(row pgx.Row) (*domain.ExportJob, error) {
	var job domain.ExportJob
	err := row.Scan(
		&job.JobID,
		&job.ArtistID,
		&job.ReportID,
		&job.Format,
		&job.Status,
		&job.RequestedBy,
		&job.OutputURI,
		&job.Checksum,
		&job.SizeBytes,
		&job.ErrorMessage,
		&job.CreatedAt,
		&job.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func collectJobs(rows pgx.Rows) ([]domain.ExportJob, error) {
	defer rows.Close()
	jobs := []domain.ExportJob{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan export job: %w", err)
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

// Create inserts a pending export job.
func (r *JobRepository) Create(ctx context.Context, req CreateJobRequest) (*domain.ExportJob, error) {
	query := `
		INSERT INTO export_jobs (artist_id, report_id, format, requested_by, status)
		VALUES ($1, $2, $3, $4, 'pending')
		RETURNING` + jobColumns

	job, err := scanJob(r.pool.QueryRow(ctx, query, req.ArtistID, req.ReportID, req.Format, req.RequestedBy))
	if err != nil {
		return nil, fmt.Errorf("create export job: %w", err)
	}
	return job, nil
}

// Get retrieves an export job owned by artistID.
func (r *JobRepository) Get(ctx context.Context, artistID, jobID uuid.UUID) (*domain.ExportJob, error) {
	query := `SELECT` + jobColumns + `
		FROM export_jobs
		WHERE job_id = $1 AND artist_id = $2`

	job, err := scanJob(r.pool.QueryRow(ctx, query, jobID, artistID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get export job: %w", err)
	}
	return job, nil
}

// List returns an artist's most recent export jobs, optionally filtered by status.
func (r *JobRepository) List(ctx context.Context, artistID uuid.UUID, statusFilter *string) ([]domain.ExportJob, error) {
	query := `SELECT` + jobColumns + `
		FROM export_jobs
		WHERE artist_id = $1`
	args := []any{artistID}

	if statusFilter != nil {
		query += " AND status = $2"
		args = append(args, *statusFilter)
	}
	query += " ORDER BY created_at DESC LIMIT 100"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list export jobs: %w", err)
	}
	jobs, err := collectJobs(rows)
	if err != nil {
		return nil, fmt.Errorf("list export jobs: %w", err)
	}
	return jobs, nil
}

// ClaimPending marks up to limit of the oldest pending jobs as running and
// returns them. Concurrent workers never claim the same job.
func (r *JobRepository) ClaimPending(ctx context.Context, limit int) ([]domain.ExportJob, error) {
	query := `
		UPDATE export_jobs
		SET status = 'running'
		WHERE job_id IN (
			SELECT job_id FROM export_jobs
			WHERE status = 'pending'
			ORDER BY created_at ASC
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING` + jobColumns

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("claim pending jobs: %w", err)
	}
	jobs, err := collectJobs(rows)
	if err != nil {
		return nil, fmt.Errorf("claim pending jobs: %w", err)
	}
	return jobs, nil
}

// SetOutput records the stored object of a finished job and marks it succeeded.
func (r *JobRepository) SetOutput(ctx context.Context, jobID uuid.UUID, outputURI, checksum string, sizeBytes int64) error {
	query := `
		UPDATE export_jobs
		SET output_uri = $1, checksum = $2, size_bytes = $3, completed_at = NOW(), status = 'succeeded'
		WHERE job_id = $4`

	if _, err := r.pool.Exec(ctx, query, outputURI, checksum, sizeBytes, jobID); err != nil {
		return fmt.Errorf("set export job output: %w", err)
	}
	return nil
}

// SetError marks a job as failed with an error message.
func (r *JobRepository) SetError(ctx context.Context, jobID uuid.UUID, errorMessage string) error {
	query := `
		UPDATE export_jobs
		SET status = 'failed', error_message = $1, completed_at = NOW()
		WHERE job_id = $2`

	if _, err := r.pool.Exec(ctx, query, errorMessage, jobID); err != nil {
		return fmt.Errorf("set export job error: %w", err)
	}
	return nil
}
