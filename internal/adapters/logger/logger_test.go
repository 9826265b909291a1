package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/knit/internal/adapters/logger"
	"go.trai.ch/zerr"
)

// newTestLogger creates a logger with an injected bytes.Buffer for isolated testing.
// It also sets NO_COLOR=1 to ensure deterministic output without ANSI escape codes.
func newTestLogger(t *testing.T) (*logger.Logger, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	lg := logger.New()
	lg.SetOutput(buf)
	return lg, buf
}

func TestLogger_Info(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Info("bundled 3 modules")

	g := goldie.New(t)
	g.Assert(t, "info_basic", buf.Bytes())
}

func TestLogger_Warn(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Warn("import cycle: /app/a.js -> /app/b.js -> /app/a.js")

	g := goldie.New(t)
	g.Assert(t, "warn_basic", buf.Bytes())
}

func TestLogger_Error(t *testing.T) {
	readErr := zerr.With(
		zerr.Wrap(errors.New("open /app/b.js: no such file or directory"), "failed to read module"),
		"path", "/app/b.js",
	)

	tests := []struct {
		name       string
		err        error
		goldenName string
	}{
		{
			name:       "simple error",
			err:        os.ErrPermission,
			goldenName: "error_simple",
		},
		{
			name:       "multiline error",
			err:        errors.New("yaml: unmarshal errors:\n  line 3: cannot unmarshal"),
			goldenName: "error_multiline",
		},
		{
			name:       "chain with metadata",
			err:        readErr,
			goldenName: "error_chain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lg, buf := newTestLogger(t)
			lg.Error(tt.err)

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestLogger_ErrorNil(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Error(nil)
	assert.Empty(t, buf.String())
}

func TestLogger_JSON(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.SetJSON(true)

	lg.Error(zerr.With(zerr.New("failed to parse module"), "path", "/app/x.js"))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "ERROR", record["level"])
	assert.Equal(t, "operation failed", record["msg"])
	assert.Equal(t, "failed to parse module", record["error"])
	assert.Equal(t, "/app/x.js", record["path"])
}

func TestLogger_SetJSONPreservesOutput(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.SetJSON(true)
	lg.Info("hello")
	lg.SetJSON(false)
	lg.Info("world")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	assert.True(t, json.Valid(lines[0]))
	assert.Equal(t, "world", string(lines[1]))
}

func TestLogger_LogSpan(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	lg, buf := newTestLogger(t)

	lg.LogSpan("analyze module", 1234567*time.Nanosecond, "",
		slog.String("path", filepath.Join(dir, "src", "a.js")),
		slog.String("importer", "/elsewhere/index.js"),
		slog.Int("imports", 2))
	lg.LogSpan("render bundle", time.Millisecond, "unexpected token")

	assert.Equal(t,
		"trace analyze module elapsed=1.235ms path="+filepath.Join("src", "a.js")+" importer=/elsewhere/index.js imports=2\n"+
			"! trace render bundle elapsed=1ms error=\"unexpected token\"\n",
		buf.String())
}

func TestLogger_LogSpanJSON(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.SetJSON(true)

	lg.LogSpan("render bundle", time.Millisecond, "", slog.Int("modules", 3))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "INFO", record["level"])
	assert.Equal(t, "trace render bundle", record["msg"])
	assert.InDelta(t, 3, record["modules"], 0)
	assert.InDelta(t, float64(time.Millisecond), record["elapsed"], 0)
}
