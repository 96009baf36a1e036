package gather

import (
	"strings"
)

// TrimToRect caps s to a maxHeight x maxWidth rectangle of text, marking
// removed content with "[...]". Streamed events never carry unbounded
// program output.
func TrimToRect(s string, maxHeight int, maxWidth int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > maxHeight {
		lines = lines[:maxHeight]
		lines = append(lines, "[...]")
	}
	res := ""
	for i, line := range lines {
		if i > 0 {
			res += "\n"
		}
		if len(line) > maxWidth {
			// cut on a rune boundary so the marker never follows a
			// broken multi-byte sequence
			if runes := []rune(line); len(runes) > maxWidth {
				res += string(runes[:maxWidth]) + "[...]"
			} else {
				res += line
			}
		} else {
			res += line
		}
	}
	return res
}
