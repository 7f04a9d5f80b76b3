package ui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// truncateRunesHelper truncates a string to max visual width (cells), adding suffix if needed.
// Uses go-runewidth to handle wide characters correctly.
func truncateRunesHelper(s string, maxWidth int, suffix string) string {
	if maxWidth <= 0 {
		return ""
	}

	width := runewidth.StringWidth(s)
	if width <= maxWidth {
		return s
	}

	suffixWidth := runewidth.StringWidth(suffix)
	if suffixWidth > maxWidth {
		return runewidth.Truncate(suffix, maxWidth, "")
	}

	targetWidth := maxWidth - suffixWidth
	return runewidth.Truncate(s, targetWidth, "") + suffix
}

// padRight pads s with spaces to the given display width.
func padRight(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// truncate truncates s to maxWidth cells with an ellipsis.
func truncate(s string, maxWidth int) string {
	return truncateRunesHelper(s, maxWidth, "…")
}

// fitLabels shortens labels until their joined width (with sep) fits width.
// The longest label is shortened first; every label keeps at least minWidth
// cells.
func fitLabels(labels []string, sep string, width, minWidth int) []string {
	out := make([]string, len(labels))
	copy(out, labels)

	total := func() int {
		n := runewidth.StringWidth(sep) * max(len(out)-1, 0)
		for _, l := range out {
			n += runewidth.StringWidth(l)
		}
		return n
	}

	for total() > width {
		longest, lw := -1, minWidth
		for i, l := range out {
			if w := runewidth.StringWidth(l); w > lw {
				longest, lw = i, w
			}
		}
		if longest < 0 {
			break
		}
		out[longest] = truncate(out[longest], lw-1)
	}
	return out
}
