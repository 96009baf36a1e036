package runner

import (
	"strings"
)

// OutputsMatch compares produced output against the expected answer.
// Policy: byte-for-byte after trimming trailing whitespace from every
// line and allowing a single optional trailing newline. No numeric or
// semantic tolerance.
func OutputsMatch(actual []byte, expected []byte) bool {
	return normalize(string(actual)) == normalize(string(expected))
}

func normalize(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\r")
	}
	// one trailing newline produces one trailing empty element
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return strings.Join(lines, "\n")
}
