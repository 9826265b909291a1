// Package style provides shared UI styling primitives including brand colors
// and icons for consistent visual presentation across the CLI.
package style

import "github.com/charmbracelet/lipgloss"

// Brand Colors.
var (
	Iris   = lipgloss.Color("#8B5CF6")
	Slate  = lipgloss.Color("#667085")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Arrow   = "→"
	Branch  = "├─"
	Last    = "└─"
)

// Styles groups the text styles used by command output.
type Styles struct {
	// Entry renders the entry module of a bundle.
	Entry lipgloss.Style
	// Module renders a module path.
	Module lipgloss.Style
	// Muted renders secondary information such as specifiers.
	Muted lipgloss.Style
	// Success renders completion messages.
	Success lipgloss.Style
}

// NewStyles creates the text styles bound to renderer r.
func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Entry:   r.NewStyle().Foreground(Iris).Bold(true),
		Module:  r.NewStyle().Bold(true),
		Muted:   r.NewStyle().Foreground(Slate),
		Success: r.NewStyle().Foreground(Green),
	}
}
