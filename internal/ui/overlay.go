// Package ui provides compositing helpers for the terminal host.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// DimStyle applies a dim gray color to background content behind a focused
// floating window. Existing ANSI codes are stripped first because SGR 2
// (faint) doesn't reliably combine with existing color codes.
var DimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))

// maxLineWidth returns the maximum visual width of the given lines.
func maxLineWidth(lines []string) int {
	maxWidth := 0
	for _, line := range lines {
		if w := ansi.StringWidth(line); w > maxWidth {
			maxWidth = w
		}
	}
	return maxWidth
}

func dimLine(s string) string {
	return DimStyle.Render(ansi.Strip(s))
}

// compositeRow places fgLine onto bgLine at column x. With dim, the visible
// background segments lose their styling and turn gray.
func compositeRow(bgLine, fgLine string, x, fgWidth, totalWidth int, dim bool) string {
	var result strings.Builder

	src := bgLine
	if dim {
		src = ansi.Strip(bgLine)
	}
	bgWidth := ansi.StringWidth(src)

	style := func(s string) string {
		if dim {
			return DimStyle.Render(s)
		}
		return s
	}

	if x > 0 {
		left := ansi.Truncate(src, x, "")
		leftWidth := ansi.StringWidth(left)
		result.WriteString(style(left))
		// Pad if background is shorter than the block position
		if leftWidth < x {
			result.WriteString(strings.Repeat(" ", x-leftWidth))
		}
	}

	result.WriteString(fgLine)
	if w := ansi.StringWidth(fgLine); w < fgWidth {
		result.WriteString(strings.Repeat(" ", fgWidth-w))
	}

	rightStart := x + fgWidth
	if rightStart < totalWidth && bgWidth > rightStart {
		right := ansi.Cut(src, rightStart, min(bgWidth, totalWidth))
		result.WriteString(style(right))
	}

	return result.String()
}

// OverlayAt composites block onto background with its top-left corner at
// column x, row y. The result is exactly height rows. Parts of the block
// beyond width or height are clipped.
func OverlayAt(background, block string, x, y, width, height int, dim bool) string {
	bgLines := strings.Split(background, "\n")
	fgLines := strings.Split(block, "\n")

	x = max(x, 0)
	y = max(y, 0)
	fgWidth := min(maxLineWidth(fgLines), max(width-x, 0))

	result := make([]string, 0, height)
	for row := 0; row < height; row++ {
		bgLine := ""
		if row < len(bgLines) {
			bgLine = bgLines[row]
		}

		idx := row - y
		if idx < 0 || idx >= len(fgLines) || fgWidth == 0 {
			if dim {
				bgLine = dimLine(bgLine)
			}
			result = append(result, bgLine)
			continue
		}
		fgLine := ansi.Truncate(fgLines[idx], fgWidth, "")
		result = append(result, compositeRow(bgLine, fgLine, x, fgWidth, width, dim))
	}

	return strings.Join(result, "\n")
}

// OverlayModal composites a modal centered on a dimmed background.
func OverlayModal(background, modal string, width, height int) string {
	modalLines := strings.Split(modal, "\n")
	x := max((width-maxLineWidth(modalLines))/2, 0)
	y := max((height-len(modalLines))/2, 0)
	return OverlayAt(background, modal, x, y, width, height, true)
}

// Blank returns a width x height canvas of spaces.
func Blank(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	row := strings.Repeat(" ", width)
	rows := make([]string, height)
	for i := range rows {
		rows[i] = row
	}
	return strings.Join(rows, "\n")
}
