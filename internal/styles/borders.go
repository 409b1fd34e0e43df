package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// BorderFor maps a configured border name to a lipgloss border. ok is false
// for "none" and unknown names.
func BorderFor(name string) (lipgloss.Border, bool) {
	switch name {
	case "rounded":
		return lipgloss.RoundedBorder(), true
	case "single":
		return lipgloss.NormalBorder(), true
	case "double":
		return lipgloss.DoubleBorder(), true
	case "thick":
		return lipgloss.ThickBorder(), true
	default:
		return lipgloss.Border{}, false
	}
}

// TitleLine renders a horizontal rule of the given width with title placed
// at pos ("left", "center" or "right"). The title is truncated to fit.
func TitleLine(fill string, width int, title, pos string) string {
	if width <= 0 {
		return ""
	}
	if title == "" {
		return strings.Repeat(fill, width)
	}

	room := width
	if room > 2 {
		room -= 2 // keep a rule segment on both sides
	}
	title = runewidth.Truncate(title, room, "…")
	tw := runewidth.StringWidth(title)

	var left int
	switch pos {
	case "left":
		left = min(1, width-tw)
	case "right":
		left = max(width-tw-1, 0)
	default:
		left = (width - tw) / 2
	}
	right := max(width-tw-left, 0)
	return strings.Repeat(fill, left) + title + strings.Repeat(fill, right)
}

// RenderFrame draws content inside a border with a title in the top edge.
// width and height are the content dimensions; the frame adds one cell on
// every side. Content is clipped or padded to fit.
func RenderFrame(content string, width, height int, border lipgloss.Border, title, titlePos string, active bool) string {
	color := BorderColor(active)
	edge := lipgloss.NewStyle().Foreground(color)

	top := edge.Render(border.TopLeft) +
		Title.Foreground(color).Render(TitleLine(border.Top, width, title, titlePos)) +
		edge.Render(border.TopRight)

	body := lipgloss.NewStyle().
		Border(border, false, true, true, true).
		BorderForeground(color).
		Render(Fit(content, width, height))

	return top + "\n" + body
}

// Fit clips or pads content to exactly width x height cells.
func Fit(content string, width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		MaxWidth(width).
		MaxHeight(height).
		Render(content)
}
