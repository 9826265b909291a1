package ports

import (
	"context"
	"io"
)

// ScriptRunner executes a bundle script in-process.
//
//go:generate mockgen -source=runner.go -destination=mocks/mock_runner.go -package=mocks
type ScriptRunner interface {
	// Run evaluates script; console output goes to stdout and stderr.
	Run(ctx context.Context, name, script string, stdout, stderr io.Writer) error
}
