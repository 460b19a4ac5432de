package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	telemetryExporterFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artconnect_telemetry_export_failures_total",
			Help: "Number of telemetry exporter initialization failures by exporter protocol.",
		},
		[]string{"exporter"},
	)

	reportGenerations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artconnect_report_generations_total",
			Help: "Report generation attempts by report type and outcome (ai, fallback, error).",
		},
		[]string{"report_type", "outcome"},
	)

	completionRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artconnect_completion_requests_total",
			Help: "AI completion requests by outcome.",
		},
		[]string{"outcome"},
	)

	completionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "artconnect_completion_duration_seconds",
			Help:    "Latency of AI completion requests.",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
		},
	)

	exportJobs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artconnect_export_jobs_total",
			Help: "Finished export jobs by format and status.",
		},
		[]string{"format", "status"},
	)

	trafficEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artconnect_traffic_events_total",
			Help: "Portfolio traffic events by ingestion result (inserted, duplicate, invalid).",
		},
		[]string{"result"},
	)

	dashboardCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artconnect_dashboard_cache_total",
			Help: "Dashboard snapshot cache lookups by result (hit, miss, error).",
		},
		[]string{"result"},
	)
)

func recordExporterFailure(exporter string) {
	if exporter == "" {
		exporter = "grpc"
	}
	telemetryExporterFailures.WithLabelValues(exporter).Inc()
}

// RecordReportGeneration counts one report generation attempt.
func RecordReportGeneration(reportType, outcome string) {
	reportGenerations.WithLabelValues(reportType, outcome).Inc()
}

// RecordCompletion records the latency and outcome of one AI completion call.
func RecordCompletion(outcome string, elapsed time.Duration) {
	completionRequests.WithLabelValues(outcome).Inc()
	completionDuration.Observe(elapsed.Seconds())
}

// RecordExportJob counts a finished export job.
func RecordExportJob(format, status string) {
	exportJobs.WithLabelValues(format, status).Inc()
}

// RecordTrafficEvents adds n events with the given ingestion result.
func RecordTrafficEvents(result string, n int) {
	if n <= 0 {
		return
	}
	trafficEvents.WithLabelValues(result).Add(float64(n))
}

// RecordCacheLookup counts a dashboard cache lookup.
func RecordCacheLookup(result string) {
	dashboardCache.WithLabelValues(result).Inc()
}

// ReportGenerations exposes the generation counter for tests and dashboards.
func ReportGenerations() *prometheus.CounterVec {
	return reportGenerations
}

// CompletionRequests exposes the completion counter for tests and dashboards.
func CompletionRequests() *prometheus.CounterVec {
	return completionRequests
}
