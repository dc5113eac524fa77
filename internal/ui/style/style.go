// Package style provides the shared colours and icons of kiln's terminal output.
package style

import "github.com/charmbracelet/lipgloss"

// Brand Colors.
var (
	Ember  = lipgloss.Color("#EA580C")
	Clay   = lipgloss.Color("#B45309")
	Slate  = lipgloss.Color("#667085")
	Ash    = lipgloss.Color("#F5F5F4")
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
	Dot     = "●"
)
