package ports

import "go.trai.ch/knit/internal/core/domain"

// Analyzer exposes the static imports of a source file and lowers it to an executable body.
//
//go:generate mockgen -source=analyzer.go -destination=mocks/mock_analyzer.go -package=mocks
type Analyzer interface {
	// Analyze returns the static import specifiers of src in source order and its compiled body.
	// path is used for diagnostics and to pick a loader; the file is not read again.
	Analyze(path string, src []byte) (domain.Analysis, error)
}
