package logger

// Exported for white-box testing of error formatting.
var (
	CollectErrorEntries = collectErrorEntries
	FormatErrorEntries  = formatErrorEntries
)

// ErrorEntry exposes errorEntry to tests.
type ErrorEntry = errorEntry
