package exports

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VXerys/artconnect-crm-sub001/internal/domain"
	"github.com/VXerys/artconnect-crm-sub001/internal/storage/postgres"
	"github.com/VXerys/artconnect-crm-sub001/internal/testutil"
)

func TestJobRepositoryLifecycle(t *testing.T) {
	pool := testutil.StartPostgres(t)
	ctx := context.Background()
	store := postgres.NewStoreFromPool(pool)
	repo := NewJobRepository(pool)

	artist := uuid.New()
	report, err := store.CreateReport(ctx, domain.Report{
		ArtistID:    artist,
		Type:        domain.ReportSales,
		PeriodStart: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Content: domain.FormattedReport{
			Title:    "Laporan Penjualan",
			Summary:  "Ringkas.",
			Sections: []domain.ReportSection{{Title: "A", Content: "B"}},
		},
	})
	require.NoError(t, err)

	first, err := repo.Create(ctx, CreateJobRequest{ArtistID: artist, ReportID: report.ID, Format: domain.FormatCSV, RequestedBy: artist.String()})
	require.NoError(t, err)
	assert.Equal(t, domain.JobPending, first.Status)
	second, err := repo.Create(ctx, CreateJobRequest{ArtistID: artist, ReportID: report.ID, Format: domain.FormatExcel})
	require.NoError(t, err)

	claimed, err := repo.ClaimPending(ctx, 1)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, first.JobID, claimed[0].JobID)
	assert.Equal(t, domain.JobRunning, claimed[0].Status)

	require.NoError(t, repo.SetOutput(ctx, first.JobID, "reports/key.csv", "abc123", 42))
	got, err := repo.Get(ctx, artist, first.JobID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobSucceeded, got.Status)
	require.NotNil(t, got.OutputURI)
	assert.Equal(t, "reports/key.csv", *got.OutputURI)
	require.NotNil(t, got.CompletedAt)

	claimed, err = repo.ClaimPending(ctx, 5)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	require.NoError(t, repo.SetError(ctx, second.JobID, "upload failed"))

	failed := domain.JobFailed
	jobs, err := repo.List(ctx, artist, &failed)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.NotNil(t, jobs[0].ErrorMessage)
	assert.Equal(t, "upload failed", *jobs[0].ErrorMessage)

	_, err = repo.Get(ctx, uuid.New(), first.JobID)
	require.ErrorIs(t, err, ErrJobNotFound)
}
