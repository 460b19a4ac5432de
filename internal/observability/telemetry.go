// Package observability wires OpenTelemetry tracing, structured logging and
// Prometheus collectors for the ArtConnect service.
//
// Key Responsibilities:
//   - Initialize the OpenTelemetry tracer provider (gRPC, HTTP fallback, no-op when degraded)
//   - Configure the zap logger through the shared logging package
//   - Provide shutdown hooks for graceful teardown
package observability

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/VXerys/artconnect-crm-sub001/internal/shared/logging"
)

// Observability bundles initialized telemetry components.
type Observability struct {
	TracerProvider *Provider
	Logger         *zap.Logger
}

// Config controls observability initialization.
type Config struct {
	ServiceName string
	Environment string
	Endpoint    string
	Protocol    string
	Headers     map[string]string
	Insecure    bool
	LogLevel    string
}

// Init initializes OpenTelemetry and structured logging.
func Init(ctx context.Context, cfg Config) (*Observability, error) {
	loggingCfg := logging.DefaultConfig().
		WithServiceName(cfg.ServiceName).
		WithEnvironment(cfg.Environment).
		WithLogLevel(cfg.LogLevel)

	loggerWrapper, err := logging.New(loggingCfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	logger := loggerWrapper.Logger

	tracerProvider := InitTracing(ctx, TracingConfig{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Endpoint:    cfg.Endpoint,
		Protocol:    cfg.Protocol,
		Headers:     cfg.Headers,
		Insecure:    cfg.Insecure,
	})
	if tracerProvider.Fallback() {
		logger.Warn("tracing disabled or degraded; using no-op tracer provider",
			zap.String("endpoint", cfg.Endpoint))
	}

	return &Observability{
		TracerProvider: tracerProvider,
		Logger:         logger,
	}, nil
}

// MustInit exits the process if Init returns an error.
func MustInit(ctx context.Context, cfg Config) *Observability {
	obs, err := Init(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize observability: %v\n", err)
		os.Exit(1)
	}
	return obs
}

// Shutdown gracefully shuts down observability components.
func (o *Observability) Shutdown(ctx context.Context) error {
	var firstErr error

	if o.TracerProvider != nil {
		if err := o.TracerProvider.Shutdown(ctx); err != nil {
			firstErr = err
		}
	}

	if o.Logger != nil {
		if err := o.Logger.Sync(); err != nil {
			// Ignore sync errors on stdout/stderr
			if !strings.Contains(err.Error(), "sync /dev/stdout") &&
				!strings.Contains(err.Error(), "sync /dev/stderr") {
				if firstErr == nil {
					firstErr = err
				}
			}
		}
	}

	return firstErr
}
