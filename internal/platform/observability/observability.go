// Package observability provides lightweight span and metric instrumentation
// that writes through slog. Spans and metrics become debug-level log lines;
// there is no exporter behind them. StartSpan and RecordMetric are no-ops
// until Setup installs a logger.
package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Config toggles instrumentation output.
type Config struct {
	Enabled bool
}

// ShutdownFunc tears down instrumentation state.
type ShutdownFunc func(context.Context) error

var (
	sinkMu sync.RWMutex
	sink   *slog.Logger
)

func activeSink() *slog.Logger {
	sinkMu.RLock()
	defer sinkMu.RUnlock()
	return sink
}

// Setup installs the slog target for span and metric output. A disabled
// config (or a nil logger) turns instrumentation off.
func Setup(ctx context.Context, cfg Config, logger *slog.Logger) (ShutdownFunc, error) {
	sinkMu.Lock()
	if cfg.Enabled {
		sink = logger
	} else {
		sink = nil
	}
	sinkMu.Unlock()

	if logger != nil {
		if cfg.Enabled {
			logger.InfoContext(ctx, "[OBS] instrumentation enabled")
		} else {
			logger.DebugContext(ctx, "[OBS] instrumentation disabled")
		}
	}

	return func(context.Context) error {
		sinkMu.Lock()
		sink = nil
		sinkMu.Unlock()
		return nil
	}, nil
}

// Enabled reports whether a sink is installed.
func Enabled() bool {
	return activeSink() != nil
}

// StartSpan logs the start of an operation and returns the func that closes
// the span, recording duration and the error passed to it.
func StartSpan(ctx context.Context, component, operation string) func(error) {
	logger := activeSink()
	if logger == nil {
		return func(error) {}
	}

	start := time.Now()
	logger.LogAttrs(ctx, slog.LevelDebug, "span start",
		slog.String("component", component),
		slog.String("operation", operation),
	)

	return func(err error) {
		level := slog.LevelDebug
		attrs := []slog.Attr{
			slog.String("component", component),
			slog.String("operation", operation),
			slog.Duration("duration", time.Since(start)),
		}
		if err != nil {
			level = slog.LevelError
			attrs = append(attrs, slog.Any("error", err))
		}
		logger.LogAttrs(ctx, level, "span end", attrs...)
	}
}

// RecordMetric emits one datapoint as a debug log line.
func RecordMetric(ctx context.Context, name string, value float64, labels map[string]string) {
	logger := activeSink()
	if logger == nil {
		return
	}

	attrs := make([]slog.Attr, 0, len(labels)+2)
	attrs = append(attrs,
		slog.String("metric", name),
		slog.Float64("value", value),
	)
	for k, v := range labels {
		attrs = append(attrs, slog.String(k, v))
	}
	logger.LogAttrs(ctx, slog.LevelDebug, "metric", attrs...)
}
