package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	otelpyroscope "github.com/grafana/otel-profiling-go"
	"github.com/grafana/pyroscope-go"
	"github.com/pharmapos/backend/internal/infrastructure/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const shutdownTimeout = 10 * time.Second

// Providers holds whichever OTEL providers and profiler the configuration
// enabled. Disabled parts stay nil and the globals keep their no-op
// defaults.
type Providers struct {
	Tracer   *sdktrace.TracerProvider
	Meter    *sdkmetric.MeterProvider
	Logs     *sdklog.LoggerProvider
	Profiler *pyroscope.Profiler

	serviceName string
	logger      *zap.Logger
}

// Setup starts the providers cfg asks for. The profiler starts before span
// profiles are attached to the tracer provider.
func Setup(ctx context.Context, cfg config.TelemetryConfig, version string, logger *zap.Logger) (*Providers, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Providers{serviceName: cfg.ServiceName, logger: logger}

	if cfg.ProfilingEnabled {
		prof, err := startProfiler(cfg.ServiceName, cfg.PyroscopeAddress, version, logger)
		if err != nil {
			return nil, err
		}
		p.Profiler = prof
		logger.Info("Pyroscope profiler started", zap.String("address", cfg.PyroscopeAddress))
	}

	if !cfg.Enabled {
		logger.Info("Telemetry disabled")
		return p, nil
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(version),
	))
	if err != nil {
		_ = p.Shutdown(ctx)
		return nil, fmt.Errorf("build telemetry resource: %w", err)
	}

	if p.Tracer, err = newTracerProvider(ctx, cfg, res); err != nil {
		_ = p.Shutdown(ctx)
		return nil, err
	}
	if p.Profiler != nil {
		otel.SetTracerProvider(otelpyroscope.NewTracerProvider(p.Tracer))
	}

	if cfg.MetricsEnabled {
		if p.Meter, err = newMeterProvider(ctx, cfg, res); err != nil {
			_ = p.Shutdown(ctx)
			return nil, err
		}
	}
	if cfg.LogsEnabled {
		if p.Logs, err = newLoggerProvider(ctx, cfg, res); err != nil {
			_ = p.Shutdown(ctx)
			return nil, err
		}
	}

	logger.Info("Telemetry initialized",
		zap.String("collector_endpoint", cfg.CollectorEndpoint),
		zap.String("service_name", cfg.ServiceName),
		zap.Float64("sampling_ratio", cfg.SamplingRatio),
		zap.Bool("metrics", p.Meter != nil),
		zap.Bool("logs", p.Logs != nil),
		zap.Bool("span_profiles", p.Profiler != nil),
	)
	return p, nil
}

// MeterProvider returns the SDK provider when metrics export is on and the
// global one otherwise.
func (p *Providers) MeterProvider() metric.MeterProvider {
	if p == nil || p.Meter == nil {
		return otel.GetMeterProvider()
	}
	return p.Meter
}

// LogCore returns the zap core feeding the OTEL log pipeline, or a no-op
// core when log export is off.
func (p *Providers) LogCore(minLevel zapcore.Level) zapcore.Core {
	if p == nil {
		return zapcore.NewNopCore()
	}
	return NewZapOTELCore(p.serviceName, p.Logs, minLevel)
}

// Shutdown flushes and stops everything Setup started.
func (p *Providers) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	var errs []error
	if p.Tracer != nil {
		if err := p.Tracer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider: %w", err))
		}
	}
	if p.Meter != nil {
		if err := p.Meter.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider: %w", err))
		}
	}
	if p.Logs != nil {
		if err := p.Logs.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("logger provider: %w", err))
		}
	}
	if p.Profiler != nil {
		if err := p.Profiler.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("profiler: %w", err))
		}
	}
	err := errors.Join(errs...)
	if err != nil {
		p.logger.Error("Telemetry shutdown failed", zap.Error(err))
	}
	return err
}
