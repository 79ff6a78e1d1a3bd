// Package tokenizer counts model tokens for context budgeting.
package tokenizer

import "unicode"

// Tokenizer counts model tokens. Implementations must be safe for concurrent use.
type Tokenizer interface {
	CountTokens(text string) int
}

var _ Tokenizer = (*SimpleTokenizer)(nil)

// SimpleTokenizer approximates counts without a vocabulary: every run of
// letters or digits is one token and every other non-space rune is one more.
// It is the fallback when no BPE encoding is configured.
type SimpleTokenizer struct{}

// NewSimpleTokenizer returns the approximate tokenizer.
func NewSimpleTokenizer() *SimpleTokenizer {
	return &SimpleTokenizer{}
}

// CountTokens implements Tokenizer.
func (*SimpleTokenizer) CountTokens(text string) int {
	n := 0
	inWord := false
	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if !inWord {
				n++
				inWord = true
			}
		case unicode.IsSpace(r):
			inWord = false
		default:
			n++
			inWord = false
		}
	}
	return n
}

// Fit returns how many leading parts fit into limit tokens once base is
// accounted for. A non-positive limit means no limit.
func Fit(t Tokenizer, base string, parts []string, limit int) int {
	if t == nil || limit <= 0 {
		return len(parts)
	}
	used := t.CountTokens(base)
	for i, p := range parts {
		used += t.CountTokens(p)
		if used > limit {
			return i
		}
	}
	return len(parts)
}
