package telemetry_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.trai.ch/knit/internal/adapters/telemetry"
	"go.trai.ch/knit/internal/core/domain"
	"go.trai.ch/knit/internal/core/ports"
	"go.trai.ch/knit/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestOTelTracer_Start(t *testing.T) {
	t.Parallel()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	tracer := telemetry.NewOTelTracerFromProvider(tp, "test")

	ctx, parent := tracer.Start(context.Background(), "build",
		ports.WithAttribute("entry", "/app/index.js"))
	_, child := tracer.Start(ctx, "analyze")
	child.SetAttribute("path", domain.NewModulePath("/app/a.js"))
	child.SetAttribute("imports", 2)
	child.SetAttribute("specifiers", []string{"./b"})
	child.RecordError(errors.New("boom"))
	child.End()
	parent.End()

	spans := sr.Ended()
	require.Len(t, spans, 2)

	analyze, build := spans[0], spans[1]
	assert.Equal(t, "analyze", analyze.Name())
	assert.Equal(t, build.SpanContext().SpanID(), analyze.Parent().SpanID())
	assert.Equal(t, codes.Error, analyze.Status().Code)
	assert.Contains(t, analyze.Attributes(), attribute.String("path", "/app/a.js"))
	assert.Contains(t, analyze.Attributes(), attribute.Int("imports", 2))
	assert.Contains(t, analyze.Attributes(), attribute.StringSlice("specifiers", []string{"./b"}))
	assert.Contains(t, build.Attributes(), attribute.String("entry", "/app/index.js"))
}

func TestBridge_LogsEndedSpans(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)

	var infos, warns []string
	log.EXPECT().Info(gomock.Any()).Do(func(msg string) { infos = append(infos, msg) })
	log.EXPECT().Warn(gomock.Any()).Do(func(msg string) { warns = append(warns, msg) })

	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(telemetry.NewBridge(log)))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	tracer := telemetry.NewOTelTracerFromProvider(tp, "test")

	_, ok := tracer.Start(context.Background(), "render", ports.WithAttribute("modules", 3))
	ok.End()

	_, failed := tracer.Start(context.Background(), "analyze")
	failed.RecordError(errors.New("unexpected token"))
	failed.End()

	require.Len(t, infos, 1)
	assert.Contains(t, infos[0], "trace render")
	assert.Contains(t, infos[0], "modules=3")

	require.Len(t, warns, 1)
	assert.Contains(t, warns[0], "trace analyze")
	assert.Contains(t, warns[0], "error=unexpected token")
}

type loggedSpan struct {
	name    string
	failure string
	attrs   map[string]any
}

type spanRecorder struct {
	spans []loggedSpan
}

func (r *spanRecorder) Info(string) {}
func (r *spanRecorder) Warn(string) {}
func (r *spanRecorder) Error(error) {}

func (r *spanRecorder) LogSpan(name string, _ time.Duration, failure string, attrs ...slog.Attr) {
	span := loggedSpan{name: name, failure: failure, attrs: map[string]any{}}
	for _, attr := range attrs {
		span.attrs[attr.Key] = attr.Value.Any()
	}
	r.spans = append(r.spans, span)
}

func TestBridge_HandsAttributesToSpanLoggers(t *testing.T) {
	t.Parallel()

	rec := &spanRecorder{}
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(telemetry.NewBridge(rec)))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	tracer := telemetry.NewOTelTracerFromProvider(tp, "test")

	_, span := tracer.Start(context.Background(), "analyze module", ports.WithAttribute("path", "/app/a.js"))
	span.SetAttribute("imports", 2)
	span.RecordError(errors.New("unexpected token"))
	span.End()

	require.Len(t, rec.spans, 1)
	assert.Equal(t, "analyze module", rec.spans[0].name)
	assert.Equal(t, "unexpected token", rec.spans[0].failure)
	assert.Equal(t, "/app/a.js", rec.spans[0].attrs["path"])
	assert.Equal(t, int64(2), rec.spans[0].attrs["imports"])
}

func TestNoOpTracer(t *testing.T) {
	t.Parallel()

	tracer := telemetry.NewNoOpTracer()
	ctx := context.Background()

	got, span := tracer.Start(ctx, "noop")
	assert.Equal(t, ctx, got)
	span.SetAttribute("k", "v")
	span.RecordError(errors.New("ignored"))
	span.End()
}
