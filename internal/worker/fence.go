package worker

import "strings"

// StripFences removes one enclosing Markdown code fence from worker output.
// Conversion models often wrap the whole result in ```markdown fences; the
// merged artifact should carry only the body. Output without an enclosing
// fence is returned unchanged.
func StripFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return s
	}

	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return s
	}
	last := len(lines) - 1
	if strings.TrimSpace(lines[last]) != "```" {
		return s
	}
	return strings.Join(lines[1:last], "\n")
}
