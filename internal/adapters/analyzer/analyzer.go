// Package analyzer extracts static imports from JavaScript and TypeScript
// modules and lowers them to CommonJS function bodies with esbuild.
package analyzer

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"go.trai.ch/knit/internal/core/domain"
	"go.trai.ch/knit/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Analyzer = (*Analyzer)(nil)

var targets = map[string]api.Target{
	"es5":     api.ES5,
	"es2015":  api.ES2015,
	"es2016":  api.ES2016,
	"es2017":  api.ES2017,
	"es2018":  api.ES2018,
	"es2019":  api.ES2019,
	"es2020":  api.ES2020,
	"es2021":  api.ES2021,
	"es2022":  api.ES2022,
	"esnext":  api.ESNext,
	"":        api.ES2015,
	"default": api.ES2015,
}

var loaders = map[string]api.Loader{
	".js":  api.LoaderJS,
	".mjs": api.LoaderJS,
	".cjs": api.LoaderJS,
	".jsx": api.LoaderJSX,
	".ts":  api.LoaderTS,
	".mts": api.LoaderTS,
	".cts": api.LoaderTS,
	".tsx": api.LoaderTSX,
}

// Options configures the lowering step.
type Options struct {
	// Target is the language level, e.g. "es2015" or "esnext".
	Target string
	// Defines maps global expressions to literal replacements.
	Defines map[string]string
}

// Analyzer implements ports.Analyzer.
type Analyzer struct {
	target  api.Target
	defines map[string]string
}

// New creates an Analyzer. It fails with domain.ErrInvalidConfig for an unknown target.
func New(opts Options) (*Analyzer, error) {
	target, ok := targets[strings.ToLower(opts.Target)]
	if !ok {
		return nil, zerr.With(domain.ErrInvalidConfig, "target", opts.Target)
	}
	return &Analyzer{
		target:  target,
		defines: opts.Defines,
	}, nil
}

// Analyze returns the static imports of src and its body compiled to CommonJS.
func (a *Analyzer) Analyze(path string, src []byte) (domain.Analysis, error) {
	imports, err := ScanImports(path, string(src))
	if err != nil {
		err = zerr.With(errors.Join(domain.ErrParseFailed, err), "path", path)
		return domain.Analysis{}, err
	}

	result := api.Transform(string(src), api.TransformOptions{
		Sourcefile: path,
		Loader:     loaderFor(path),
		Format:     api.FormatCommonJS,
		Target:     a.target,
		Define:     a.defines,
		LogLevel:   api.LogLevelSilent,
		Charset:    api.CharsetUTF8,
	})
	if len(result.Errors) > 0 {
		diagnostic := errors.New(formatMessage(result.Errors[0]))
		return domain.Analysis{}, zerr.With(errors.Join(domain.ErrParseFailed, diagnostic), "path", path)
	}

	return domain.Analysis{
		Imports: imports,
		Code:    strings.TrimRight(string(result.Code), "\n"),
	}, nil
}

// loaderFor picks the esbuild loader for a file. Unknown and missing
// extensions are treated as JavaScript.
func loaderFor(path string) api.Loader {
	if loader, ok := loaders[strings.ToLower(filepath.Ext(path))]; ok {
		return loader
	}
	return api.LoaderJS
}

func formatMessage(msg api.Message) string {
	if msg.Location == nil {
		return msg.Text
	}
	return fmt.Sprintf("%s:%d:%d: %s", msg.Location.File, msg.Location.Line, msg.Location.Column, msg.Text)
}
