// Package chunker provides a short, rune-bounded excerpt of memory
// content for display: the consolidation replay log and the CLI's
// get --excerpt both want a preview rather than a raw content dump.
package chunker

import "strings"

// Preview returns content truncated to maxLen runes, with a trailing
// ellipsis if it was cut short. Leading/trailing whitespace is trimmed
// first so short, already-whole content comes back unchanged.
func Preview(content string, maxLen int) string {
	text := strings.TrimSpace(content)
	if text == "" {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen]) + "..."
}
