// Package api provides the HTTP server and handlers for the ArtConnect API.
//
// Purpose:
//
//	This package sets up the chi router with middleware, health/readiness
//	probes, Prometheus metrics and the artist-scoped API routes. Handlers
//	depend on small interfaces so they can be tested with httptest.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/VXerys/artconnect-crm-sub001/internal/audit"
	"github.com/VXerys/artconnect-crm-sub001/internal/dashboard"
	"github.com/VXerys/artconnect-crm-sub001/internal/domain"
	"github.com/VXerys/artconnect-crm-sub001/internal/exports"
	rbacmiddleware "github.com/VXerys/artconnect-crm-sub001/internal/middleware"
	"github.com/VXerys/artconnect-crm-sub001/internal/reports"
	"github.com/VXerys/artconnect-crm-sub001/internal/stats"
	"github.com/VXerys/artconnect-crm-sub001/internal/storage/postgres"
)

// Store is the persistence the handlers use.
type Store interface {
	ListArtworks(ctx context.Context, artistID uuid.UUID, filter postgres.ArtworkFilter) ([]domain.Artwork, error)
	GetArtwork(ctx context.Context, artistID, artworkID uuid.UUID) (*domain.Artwork, error)
	CreateArtwork(ctx context.Context, a domain.Artwork) (*domain.Artwork, error)
	UpdateArtwork(ctx context.Context, a domain.Artwork) (*domain.Artwork, error)
	DeleteArtwork(ctx context.Context, artistID, artworkID uuid.UUID) error

	ListContacts(ctx context.Context, artistID uuid.UUID, filter postgres.ContactFilter) ([]domain.Contact, error)
	GetContact(ctx context.Context, artistID, contactID uuid.UUID) (*domain.Contact, error)
	CreateContact(ctx context.Context, c domain.Contact) (*domain.Contact, error)
	UpdateContact(ctx context.Context, c domain.Contact) (*domain.Contact, error)
	DeleteContact(ctx context.Context, artistID, contactID uuid.UUID) error

	ListPipeline(ctx context.Context, artistID uuid.UUID) ([]domain.PipelineItem, error)
	MovePipelineItem(ctx context.Context, artistID, itemID uuid.UUID, stage domain.ArtworkStatus, position int) (*domain.PipelineItem, error)

	ListReports(ctx context.Context, artistID uuid.UUID, reportType *domain.ReportType, limit int) ([]domain.Report, error)
	GetReport(ctx context.Context, artistID, reportID uuid.UUID) (*domain.Report, error)
	DeleteReport(ctx context.Context, artistID, reportID uuid.UUID) error
}

// Dashboard assembles the dashboard payloads.
type Dashboard interface {
	Overview(ctx context.Context, artistID uuid.UUID) (*dashboard.Overview, error)
	Analytics(ctx context.Context, artistID uuid.UUID, window stats.Window) (*dashboard.Analytics, error)
	ReportsOverview(ctx context.Context, artistID uuid.UUID) (*dashboard.ReportsOverview, error)
	Invalidate(ctx context.Context, artistID uuid.UUID)
}

// ReportGenerator runs the report pipeline.
type ReportGenerator interface {
	Generate(ctx context.Context, req reports.Request) (*domain.Report, error)
}

// ExportJobs is the export job persistence.
type ExportJobs interface {
	Create(ctx context.Context, req exports.CreateJobRequest) (*domain.ExportJob, error)
	Get(ctx context.Context, artistID, jobID uuid.UUID) (*domain.ExportJob, error)
	List(ctx context.Context, artistID uuid.UUID, statusFilter *string) ([]domain.ExportJob, error)
}

// URLSigner presigns download URLs for stored export objects.
type URLSigner interface {
	SignedURL(ctx context.Context, key string) (string, error)
}

// Check is a readiness probe for one dependency.
type Check func(ctx context.Context) error

// Server wraps the HTTP router.
type Server struct {
	router *chi.Mux
	logger *zap.Logger
	checks map[string]Check
}

// Config holds server configuration. Exports and Signer may be nil when
// object storage is not configured; export routes then answer
// EXPORT_FAILED.
type Config struct {
	Logger     *zap.Logger
	EnableRBAC bool
	Timeout    time.Duration

	Store     Store
	Dashboard Dashboard
	Generator ReportGenerator
	Exports   ExportJobs
	Signer    URLSigner

	// Checks are run by /readyz; every check must pass for a 200.
	Checks map[string]Check
}

// NewServer creates the router with middleware and every route registered.
func NewServer(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}

	audit.NewLogger(cfg.Logger).Setup()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Timeout))

	s := &Server{router: r, logger: cfg.Logger, checks: cfg.Checks}

	r.Route("/api/v1/status", func(r chi.Router) {
		r.Get("/healthz", healthzHandler)
		r.Get("/readyz", s.readyzHandler)
	})
	r.Handle("/metrics", promhttp.Handler())

	dash := &dashboardHandler{dashboard: cfg.Dashboard, logger: cfg.Logger}
	artworks := &artworksHandler{store: cfg.Store, dashboard: cfg.Dashboard, logger: cfg.Logger}
	contacts := &contactsHandler{store: cfg.Store, dashboard: cfg.Dashboard, logger: cfg.Logger}
	pipeline := &pipelineHandler{store: cfg.Store, dashboard: cfg.Dashboard, logger: cfg.Logger}
	reportsH := &reportsHandler{store: cfg.Store, dashboard: cfg.Dashboard, generator: cfg.Generator, logger: cfg.Logger}
	exportsH := &exportsHandler{store: cfg.Store, jobs: cfg.Exports, signer: cfg.Signer, logger: cfg.Logger}

	r.Route("/api/v1/artists/{artistId}", func(r chi.Router) {
		r.Use(rbacmiddleware.RBAC(rbacmiddleware.RBACConfig{Logger: cfg.Logger, EnableRBAC: cfg.EnableRBAC}))
		r.Use(rbacmiddleware.RequireArtistOwner(cfg.EnableRBAC))

		r.Get("/dashboard", dash.overview)
		r.Get("/analytics", dash.analytics)

		r.Route("/artworks", func(r chi.Router) {
			r.Get("/", artworks.list)
			r.Post("/", artworks.create)
			r.Get("/{artworkId}", artworks.get)
			r.Put("/{artworkId}", artworks.update)
			r.Delete("/{artworkId}", artworks.delete)
		})

		r.Route("/contacts", func(r chi.Router) {
			r.Get("/", contacts.list)
			r.Post("/", contacts.create)
			r.Get("/{contactId}", contacts.get)
			r.Put("/{contactId}", contacts.update)
			r.Delete("/{contactId}", contacts.delete)
		})

		r.Get("/pipeline", pipeline.board)
		r.Post("/pipeline/{itemId}/move", pipeline.move)

		r.Route("/reports", func(r chi.Router) {
			r.Get("/", reportsH.list)
			r.Post("/", reportsH.create)
			r.Get("/overview", dash.reportsOverview)
			r.Get("/{reportId}", reportsH.get)
			r.Delete("/{reportId}", reportsH.delete)
			r.Get("/{reportId}/download", reportsH.download)
			r.Post("/{reportId}/exports", exportsH.create)
		})

		r.Route("/exports", func(r chi.Router) {
			r.Get("/", exportsH.list)
			r.Get("/{jobId}", exportsH.get)
			r.Get("/{jobId}/download", exportsH.download)
		})
	})

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func healthzHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) readyzHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	components := make(map[string]string, len(s.checks))
	healthy := true
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			components[name] = "unhealthy"
			healthy = false
			s.logger.Debug("readiness check failed", zap.String("component", name), zap.Error(err))
			continue
		}
		components[name] = "healthy"
	}

	response := map[string]any{
		"status":     "ready",
		"components": components,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	}
	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
		response["status"] = "degraded"
	}
	respondJSON(s.logger, w, status, response)
}

// requestLogger logs one line per request at info, or warn for 5xx.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			}
			if ww.Status() >= http.StatusInternalServerError {
				logger.Warn("http request", fields...)
				return
			}
			logger.Info("http request", fields...)
		})
	}
}
