package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/knit/internal/core/ports"
)

var _ sdktrace.SpanProcessor = (*Bridge)(nil)

// Bridge implements sdktrace.SpanProcessor and reports every ended span as a
// log line with its duration and attributes.
type Bridge struct {
	logger ports.Logger
}

// spanLogger is implemented by loggers that render span attributes themselves.
type spanLogger interface {
	LogSpan(name string, elapsed time.Duration, failure string, attrs ...slog.Attr)
}

// NewBridge returns a new Bridge.
func NewBridge(logger ports.Logger) *Bridge {
	return &Bridge{logger: logger}
}

// OnStart does nothing.
func (b *Bridge) OnStart(_ context.Context, _ sdktrace.ReadWriteSpan) {}

// OnEnd logs the finished span.
func (b *Bridge) OnEnd(s sdktrace.ReadOnlySpan) {
	if b.logger == nil || !s.SpanContext().IsValid() {
		return
	}

	elapsed := s.EndTime().Sub(s.StartTime())
	var failure string
	if s.Status().Code == codes.Error {
		failure = s.Status().Description
	}

	if sl, ok := b.logger.(spanLogger); ok {
		attrs := make([]slog.Attr, 0, len(s.Attributes()))
		for _, attr := range s.Attributes() {
			attrs = append(attrs, slog.Any(string(attr.Key), attr.Value.AsInterface()))
		}
		sl.LogSpan(s.Name(), elapsed, failure, attrs...)
		return
	}

	parts := []string{
		"trace",
		s.Name(),
		elapsed.Round(time.Microsecond).String(),
	}
	for _, attr := range s.Attributes() {
		parts = append(parts, fmt.Sprintf("%s=%s", attr.Key, attr.Value.Emit()))
	}

	if failure != "" {
		parts = append(parts, "error="+failure)
		b.logger.Warn(strings.Join(parts, " "))
		return
	}
	b.logger.Info(strings.Join(parts, " "))
}

// ForceFlush does nothing.
func (b *Bridge) ForceFlush(_ context.Context) error {
	return nil
}

// Shutdown does nothing.
func (b *Bridge) Shutdown(_ context.Context) error {
	return nil
}
