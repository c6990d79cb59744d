package export

import "strings"

// MeasureFunc returns the rendered width of s.
type MeasureFunc func(s string) float64

// WrapLines greedily packs the space-separated words of text into lines no
// wider than maxWidth. Widths are measured with a trailing space, and a word
// that overflows on its own stays on its line rather than producing an empty
// one. The result always has at least one line.
func WrapLines(measure MeasureFunc, text string, maxWidth float64) []string {
	words := strings.Split(text, " ")
	lines := make([]string, 0, 4)
	line := ""

	for i, word := range words {
		candidate := line + word + " "
		if measure(candidate) > maxWidth && i > 0 {
			lines = append(lines, strings.TrimRight(line, " "))
			line = word + " "
			continue
		}
		line = candidate
	}

	return append(lines, strings.TrimRight(line, " "))
}
