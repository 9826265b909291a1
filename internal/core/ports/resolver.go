package ports

// SpecifierResolver turns an import specifier into an absolute module path.
//
//go:generate mockgen -source=resolver.go -destination=mocks/mock_resolver.go -package=mocks
type SpecifierResolver interface {
	// Resolve resolves specifier against the directory of importer.
	Resolve(importer, specifier string) (string, error)
}
