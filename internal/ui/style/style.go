// Package style provides shared styling primitives including brand colors
// and icons for consistent visual presentation across the CLI.
package style

import "github.com/charmbracelet/lipgloss"

// Brand Colors.
var (
	Slate  = lipgloss.Color("#5E6B7E")
	Green  = lipgloss.Color("#1F9D62")
	Red    = lipgloss.Color("#D64541")
	Yellow = lipgloss.Color("#E0A426")
	Dim    = lipgloss.Color("#8A93A3")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Dot     = "●"
)
