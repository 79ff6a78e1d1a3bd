package grader

import (
	"strings"

	"github.com/sweetpotato0/radsafe/rag/document"
)

// Grader context limits. The final generation is not subject to them.
const (
	MaxCharsPerDoc  = 420
	MaxContextChars = 3600

	// NoDocuments stands in for an empty context in the generation grader.
	NoDocuments = "No documents"
)

// Truncate joins chunk texts for a grader prompt, capping each chunk at
// MaxCharsPerDoc and the whole at MaxContextChars. The chunk that would
// overflow the budget is cut and marked with "..." instead of being dropped.
// Lengths count runes.
func Truncate(chunks []document.Chunk) string {
	if len(chunks) == 0 {
		return ""
	}
	parts := make([]string, 0, len(chunks))
	total := 0
	for _, c := range chunks {
		text := []rune(c.Text)
		if len(text) > MaxCharsPerDoc {
			text = text[:MaxCharsPerDoc]
		}
		if len(text) == 0 {
			continue
		}
		if total+len(text)+2 > MaxContextChars {
			if remaining := MaxContextChars - total - 20; remaining > 0 {
				parts = append(parts, string(text[:min(remaining, len(text))])+"...")
			}
			break
		}
		parts = append(parts, string(text))
		total += len(text) + 2
	}
	return strings.Join(parts, "\n\n")
}
