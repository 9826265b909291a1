package logger_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/knit/internal/adapters/logger"
	"go.trai.ch/zerr"
)

func TestCollectErrorEntries(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantMessages []string
	}{
		{
			name:         "single standard error",
			err:          errors.New("simple error"),
			wantMessages: []string{"simple error"},
		},
		{
			name:         "zerr single error",
			err:          zerr.New("zerr error"),
			wantMessages: []string{"zerr error"},
		},
		{
			name: "zerr wrapped chain",
			err: zerr.Wrap(
				zerr.Wrap(errors.New("root cause"), "middle layer"),
				"outer layer",
			),
			wantMessages: []string{"outer layer", "middle layer", "root cause"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := logger.CollectErrorEntries(tt.err)
			messages := make([]string, 0, len(entries))
			for _, e := range entries {
				messages = append(messages, e.Message)
			}
			assert.Equal(t, tt.wantMessages, messages)
		})
	}
}

func TestCollectErrorEntries_Metadata(t *testing.T) {
	err := zerr.With(zerr.With(zerr.New("base error"), "key1", "value1"), "key2", 42)

	entries := logger.CollectErrorEntries(err)
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "value1", entries[0].Metadata["key1"])
		assert.Equal(t, 42, entries[0].Metadata["key2"])
	}
}

func TestFormatErrorEntries(t *testing.T) {
	got := logger.FormatErrorEntries([]logger.ErrorEntry{
		{Message: "build failed", Metadata: map[string]any{"entry": "/app/index.js"}},
		{Message: "failed to parse module", Metadata: map[string]any{
			"path":       "/app/a.js",
			"diagnostic": "/app/a.js:1:9: Expected \"}\"",
		}},
		{Message: "line one\nline two"},
	})

	want := "Error: build failed\n" +
		"       entry: /app/index.js\n" +
		"\n" +
		"  Caused by:\n" +
		"    → failed to parse module\n" +
		"      diagnostic: /app/a.js:1:9: Expected \"}\"\n" +
		"      path: /app/a.js\n" +
		"    → line one\n" +
		"      line two"
	assert.Equal(t, want, got)
}

func TestCollectErrorEntries_Joined(t *testing.T) {
	sentinel := zerr.New("failed to read module")
	cause := errors.New("open /app/missing.js: file does not exist")
	err := zerr.With(errors.Join(sentinel, cause), "path", "/app/missing.js")
	err = zerr.Wrap(err, "build failed")

	entries := logger.CollectErrorEntries(err)

	messages := make([]string, 0, len(entries))
	for _, e := range entries {
		messages = append(messages, e.Message)
	}
	assert.Equal(t, []string{
		"build failed",
		"failed to read module",
		"open /app/missing.js: file does not exist",
	}, messages)
	assert.Equal(t, "/app/missing.js", entries[1].Metadata["path"])
}
