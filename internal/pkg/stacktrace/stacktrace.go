package stacktrace

import "strings"

// Frames returns the file:line locations under /internal/ from a
// runtime/debug.Stack dump, trimmed to start at internal/. When none are
// found the whole dump is returned as a single element.
func Frames(stack []byte) []string {
	lines := strings.Split(string(stack), "\n")

	var out []string
	for _, line := range lines {
		loc, _, _ := strings.Cut(strings.TrimSpace(line), " ")
		if !strings.Contains(loc, ".go:") {
			continue
		}

		idx := strings.Index(loc, "/internal/")
		if idx == -1 {
			continue
		}
		out = append(out, loc[idx+1:])
	}

	if len(out) == 0 {
		return []string{string(stack)}
	}

	return out
}
