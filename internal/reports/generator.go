package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/VXerys/artconnect-crm-sub001/internal/domain"
	"github.com/VXerys/artconnect-crm-sub001/internal/groq"
	"github.com/VXerys/artconnect-crm-sub001/internal/observability"
	apperrors "github.com/VXerys/artconnect-crm-sub001/internal/shared/errors"
	"github.com/VXerys/artconnect-crm-sub001/internal/stats"
)

// Completer produces free-text completions for a chat conversation.
type Completer interface {
	Complete(ctx context.Context, messages []groq.Message) (string, error)
	Model() string
}

// Repository persists generated reports.
type Repository interface {
	CreateReport(ctx context.Context, r domain.Report) (*domain.Report, error)
}

// Request asks for one report. A zero period defaults to the last six months.
type Request struct {
	ArtistID    uuid.UUID
	Type        domain.ReportType
	PeriodStart time.Time
	PeriodEnd   time.Time
}

// Generator runs the report pipeline: gather, complete, parse, persist.
type Generator struct {
	source DataSource
	repo   Repository
	ai     Completer
	logger *zap.Logger
	now    func() time.Time
}

// NewGenerator creates a Generator. A nil ai makes every report a fallback
// report.
func NewGenerator(source DataSource, repo Repository, ai Completer, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		source: source,
		repo:   repo,
		ai:     ai,
		logger: logger,
		now:    time.Now,
	}
}

// Generate builds and stores a report. Errors carry a localised code:
// INVALID_REQUEST, FETCH_FAILED when no data could be loaded, AI_UNAUTHORIZED
// or AI_UNAVAILABLE when the completion call failed, and
// REPORT_GENERATION_FAILED when the report could not be stored. Unusable
// model output is not an error; it yields a fallback report.
func (g *Generator) Generate(ctx context.Context, req Request) (*domain.Report, error) {
	ctx, span := otel.Tracer("artconnect/reports").Start(ctx, "reports.generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("artist.id", req.ArtistID.String()),
		attribute.String("report.type", string(req.Type)),
	)

	report, outcome, err := g.generate(ctx, req)
	observability.RecordReportGeneration(string(req.Type), outcome)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, apperrors.CodeOf(err))
		return nil, err
	}
	span.SetAttributes(attribute.Bool("report.ai_generated", report.AIGenerated))
	return report, nil
}

func (g *Generator) generate(ctx context.Context, req Request) (*domain.Report, string, error) {
	if !domain.ValidReportType(req.Type) {
		return nil, "error", apperrors.Wrap(apperrors.CodeInvalidRequest,
			fmt.Errorf("unknown report type %q", req.Type),
			apperrors.WithDetail("type must be one of sales, inventory, network, comprehensive"))
	}

	window := stats.Window{Start: req.PeriodStart, End: req.PeriodEnd}
	if window.Start.IsZero() && window.End.IsZero() {
		window = stats.LastMonths(g.now(), 6)
	}
	if !window.Valid() {
		return nil, "error", apperrors.Wrap(apperrors.CodeInvalidRequest,
			errors.New("period end must be after period start"),
			apperrors.WithDetail("periodEnd must be after periodStart"))
	}

	logger := g.logger.With(
		zap.String("artist_id", req.ArtistID.String()),
		zap.String("report_type", string(req.Type)),
	)

	data, err := Gather(ctx, g.source, logger, req.ArtistID, req.Type, window)
	if err != nil {
		return nil, "error", apperrors.Wrap(apperrors.CodeFetchFailed, err)
	}

	content, aiGenerated, model, err := g.compose(ctx, logger, data)
	if err != nil {
		return nil, "error", err
	}

	saved, err := g.repo.CreateReport(ctx, domain.Report{
		ArtistID:    req.ArtistID,
		Type:        req.Type,
		PeriodStart: window.Start,
		PeriodEnd:   window.End,
		Content:     content,
		AIGenerated: aiGenerated,
		Model:       model,
	})
	if err != nil {
		return nil, "error", apperrors.Wrap(apperrors.CodeReportFailed, fmt.Errorf("store report: %w", err))
	}

	outcome := "fallback"
	if aiGenerated {
		outcome = "ai"
	}
	logger.Info("report generated",
		zap.String("report_id", saved.ID.String()),
		zap.Bool("ai_generated", aiGenerated),
		zap.Int("sections", len(content.Sections)),
	)
	return saved, outcome, nil
}

// compose asks the model for the report. It returns the fallback report when
// no model is configured or the model's output is unusable.
func (g *Generator) compose(ctx context.Context, logger *zap.Logger, data ReportData) (domain.FormattedReport, bool, string, error) {
	if g.ai == nil {
		logger.Warn("AI completion not configured; using fallback report")
		return Fallback(data), false, "", nil
	}

	messages, err := BuildMessages(data)
	if err != nil {
		return domain.FormattedReport{}, false, "", apperrors.Wrap(apperrors.CodeReportFailed, err)
	}

	raw, err := g.ai.Complete(ctx, messages)
	switch {
	case errors.Is(err, groq.ErrEmptyChoices):
		logger.Warn("AI returned no choices; using fallback report")
		return Fallback(data), false, "", nil
	case groq.IsAuthError(err):
		return domain.FormattedReport{}, false, "", apperrors.Wrap(apperrors.CodeAIUnauthorized, err)
	case err != nil:
		return domain.FormattedReport{}, false, "", apperrors.Wrap(apperrors.CodeAIUnavailable, err)
	}

	content, ok := Parse(raw, data)
	if !ok {
		logger.Warn("AI output could not be parsed; using fallback report",
			zap.Int("raw_length", len(raw)))
		return content, false, "", nil
	}
	return content, true, g.ai.Model(), nil
}
