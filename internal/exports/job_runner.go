package exports

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/VXerys/artconnect-crm-sub001/internal/domain"
	"github.com/VXerys/artconnect-crm-sub001/internal/observability"
	"github.com/VXerys/artconnect-crm-sub001/internal/reports"
)

// JobStore is the job persistence the runner needs.
type JobStore interface {
	ClaimPending(ctx context.Context, limit int) ([]domain.ExportJob, error)
	SetOutput(ctx context.Context, jobID uuid.UUID, outputURI, checksum string, sizeBytes int64) error
	SetError(ctx context.Context, jobID uuid.UUID, errorMessage string) error
}

// ReportLoader loads the report a job renders.
type ReportLoader interface {
	GetReport(ctx context.Context, artistID, reportID uuid.UUID) (*domain.Report, error)
}

// Uploader stores rendered artifacts.
type Uploader interface {
	Upload(ctx context.Context, job domain.ExportJob, artifact reports.Artifact, downloadName string) (Object, error)
}

// JobRunner polls for pending export jobs and processes them with a fixed
// number of workers.
type JobRunner struct {
	jobs     JobStore
	reports  ReportLoader
	uploader Uploader
	logger   *zap.Logger
	interval time.Duration
	workers  int
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// RunnerConfig holds job runner configuration.
type RunnerConfig struct {
	Jobs     JobStore
	Reports  ReportLoader
	Uploader Uploader
	Logger   *zap.Logger
	Interval time.Duration
	Workers  int
}

// NewJobRunner creates a new export job runner.
func NewJobRunner(cfg RunnerConfig) *JobRunner {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Second
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &JobRunner{
		jobs:     cfg.Jobs,
		reports:  cfg.Reports,
		uploader: cfg.Uploader,
		logger:   cfg.Logger,
		interval: cfg.Interval,
		workers:  cfg.Workers,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs the workers until ctx is cancelled or Stop is called.
func (r *JobRunner) Start(ctx context.Context) error {
	r.logger.Info("starting export job runner",
		zap.Duration("interval", r.interval),
		zap.Int("workers", r.workers),
	)

	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			r.worker(ctx, id)
		}(i)
	}
	wg.Wait()
	close(r.doneCh)

	r.logger.Info("export job runner stopped")
	return nil
}

// Stop signals the workers to exit and waits for them.
func (r *JobRunner) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
	<-r.doneCh
}

func (r *JobRunner) worker(ctx context.Context, id int) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopCh:
			return
		case <-ticker.C:
			r.poll(ctx, id)
		}
	}
}

// poll claims one job and processes it.
func (r *JobRunner) poll(ctx context.Context, workerID int) {
	jobs, err := r.jobs.ClaimPending(ctx, 1)
	if err != nil {
		r.logger.Error("failed to claim pending export jobs", zap.Error(err), zap.Int("worker_id", workerID))
		return
	}
	for _, job := range jobs {
		r.run(ctx, job, workerID)
	}
}

func (r *JobRunner) run(ctx context.Context, job domain.ExportJob, workerID int) {
	if err := r.ProcessJob(ctx, job); err != nil {
		r.logger.Error("failed to process export job",
			zap.String("job_id", job.JobID.String()),
			zap.Int("worker_id", workerID),
			zap.Error(err),
		)
		observability.RecordExportJob(string(job.Format), domain.JobFailed)
		if err := r.jobs.SetError(ctx, job.JobID, err.Error()); err != nil {
			r.logger.Error("failed to mark export job as failed",
				zap.String("job_id", job.JobID.String()),
				zap.Error(err),
			)
		}
		return
	}
	observability.RecordExportJob(string(job.Format), domain.JobSucceeded)
}

// ProcessJob renders, uploads and records a single claimed job.
func (r *JobRunner) ProcessJob(ctx context.Context, job domain.ExportJob) error {
	r.logger.Info("processing export job",
		zap.String("job_id", job.JobID.String()),
		zap.String("artist_id", job.ArtistID.String()),
		zap.String("report_id", job.ReportID.String()),
		zap.String("format", string(job.Format)),
	)

	report, err := r.reports.GetReport(ctx, job.ArtistID, job.ReportID)
	if err != nil {
		return fmt.Errorf("load report: %w", err)
	}

	doc := reports.DocumentFromReport(*report)
	artifact, err := reports.Render(job.Format, doc)
	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	obj, err := r.uploader.Upload(ctx, job, artifact, reports.Filename(doc, job.Format, artifact.Extension))
	if err != nil {
		return err
	}

	if err := r.jobs.SetOutput(ctx, job.JobID, obj.Key, obj.Checksum, obj.SizeBytes); err != nil {
		return err
	}

	r.logger.Info("export job completed",
		zap.String("job_id", job.JobID.String()),
		zap.String("key", obj.Key),
		zap.Int64("size_bytes", obj.SizeBytes),
	)
	return nil
}
