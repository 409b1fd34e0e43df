package styles

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	Primary = lipgloss.Color("#7C3AED") // Purple
	Accent  = lipgloss.Color("#F59E0B") // Amber

	// Status colors
	Success = lipgloss.Color("#10B981") // Green
	Warning = lipgloss.Color("#F59E0B") // Amber
	Error   = lipgloss.Color("#EF4444") // Red

	// Text colors
	TextPrimary = lipgloss.Color("#F9FAFB")
	TextMuted   = lipgloss.Color("#6B7280")

	// Background colors
	BgSecondary = lipgloss.Color("#1F2937")
	BgTertiary  = lipgloss.Color("#374151")

	// Border colors
	BorderNormal = lipgloss.Color("#374151")
	BorderActive = Primary

	ToastSuccessTextColor = lipgloss.Color("#000000")
	ToastErrorTextColor   = lipgloss.Color("#FFFFFF")
)

// Text styles
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary)

	Muted = lipgloss.NewStyle().
		Foreground(TextMuted)

	KeyHint = lipgloss.NewStyle().
		Foreground(TextMuted).
		Background(BgTertiary).
		Padding(0, 1)

	// Modified marker next to a buffer name
	StatusModified = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	// CursorLine highlights the cursor row when a window asks for it
	CursorLine = lipgloss.NewStyle().
			Background(BgSecondary)
)

// Toast styles for status messages
var (
	ToastSuccess = lipgloss.NewStyle().
			Background(Success).
			Foreground(ToastSuccessTextColor).
			Bold(true).
			Padding(0, 1)

	ToastWarning = lipgloss.NewStyle().
			Background(Warning).
			Foreground(ToastSuccessTextColor).
			Bold(true).
			Padding(0, 1)

	ToastError = lipgloss.NewStyle().
			Background(Error).
			Foreground(ToastErrorTextColor).
			Bold(true).
			Padding(0, 1)
)

// Prompt is the frame around the command prompt.
var Prompt = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Accent).
	Padding(0, 1)

// BorderColor returns the frame color for a window.
func BorderColor(active bool) lipgloss.Color {
	if active {
		return BorderActive
	}
	return BorderNormal
}
