package segment

import "strings"

// Lines splits a plain-text dump into trimmed lines. Empty lines are kept
// when keepBlank is set, because the document variant relies on blank-line
// boundaries; the line-stream variant drops them.
func Lines(text string, keepBlank bool) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	raw := strings.Split(text, "\n")
	out := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSpace(line)
		if line == "" && !keepBlank {
			continue
		}
		out = append(out, line)
	}
	return out
}
