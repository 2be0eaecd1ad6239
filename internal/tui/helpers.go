package tui

import (
	"math"
	"strings"

	"github.com/dustin/go-humanize"
)

var sparkChars = []string{"▁", "▂", "▃", "▄", "▅", "▆", "▇", "█"}

// Truncate shortens a string to a maximum length
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

// ProgressBar renders a bar of width cells coloured by load
func ProgressBar(percent float64, width int) string {
	if width <= 0 {
		return ""
	}
	clamped := math.Max(0, math.Min(100, percent))
	filled := int(float64(width) * clamped / 100)
	empty := width - filled

	return LoadStyle(clamped).Render(strings.Repeat("█", filled)) +
		emptyBar.Render(strings.Repeat("░", empty))
}

// Sparkline maps each value to a block character scaled against the series maximum
func Sparkline(data []float64) string {
	if len(data) == 0 {
		return ""
	}

	max := 0.0
	for _, v := range data {
		if v > max {
			max = v
		}
	}
	if max <= 0 {
		max = 1
	}

	var b strings.Builder
	for _, v := range data {
		idx := int(v / max * float64(len(sparkChars)-1))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteString(sparkChars[idx])
	}
	return b.String()
}

// FormatBytes renders a byte count using binary units
func FormatBytes(bytes uint64) string {
	return humanize.IBytes(bytes)
}
