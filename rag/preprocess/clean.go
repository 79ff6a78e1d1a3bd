// Package preprocess turns extracted PDF text, HTML pages and search snippets
// into clean plain text before chunking or grading.
package preprocess

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	runsOfBlanks = regexp.MustCompile(`[ \t]+`)
	blankLines   = regexp.MustCompile(`\n{3,}`)
	// PDF extraction leaves words hyphenated across line breaks.
	brokenWord = regexp.MustCompile(`(\p{L})-\n(\p{Ll})`)

	glyphs = strings.NewReplacer(
		"ﬁ", "fi", "ﬂ", "fl", "ﬀ", "ff",
		"—", "-", "–", "-",
		"·", ".", "•", "-",
		"\u00a0", " ",
	)
)

// noisePhrases mark navigation and cookie-banner lines on regulator and
// legislation portals (en, de, da).
var noisePhrases = []string{
	"cookie", "privacy policy", "skip to main content", "share this page", "print this page",
	"datenschutz", "zum inhalt springen", "seite drucken",
	"privatlivspolitik", "gå til indhold", "del siden", "udskriv",
}

// maxNoiseLine is the longest line still considered boilerplate.
const maxNoiseLine = 120

// Preprocess cleans plain text for indexing.
func Preprocess(raw string) string {
	return Dedupe(StripNoise(CleanBasic(raw)))
}

// CleanBasic drops control characters, repairs ligatures and hyphenated line
// breaks, and collapses blank runs.
func CleanBasic(text string) string {
	if text == "" {
		return ""
	}
	text = strings.Map(dropControl, text)
	text = glyphs.Replace(text)
	text = brokenWord.ReplaceAllString(text, "$1$2")
	text = runsOfBlanks.ReplaceAllString(text, " ")
	text = blankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

func dropControl(r rune) rune {
	if r != '\n' && r != '\t' && unicode.IsControl(r) {
		return -1
	}
	return r
}

// StripNoise removes short lines containing a known boilerplate phrase.
func StripNoise(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if len(line) < maxNoiseLine && isNoise(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func isNoise(line string) bool {
	line = strings.ToLower(line)
	for _, phrase := range noisePhrases {
		if strings.Contains(line, phrase) {
			return true
		}
	}
	return false
}

// Dedupe keeps the first copy of each paragraph. Empty paragraphs are dropped.
func Dedupe(text string) string {
	seen := make(map[string]bool)
	var paragraphs []string
	for _, p := range strings.Split(text, "\n\n") {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		paragraphs = append(paragraphs, p)
	}
	return strings.Join(paragraphs, "\n\n")
}
