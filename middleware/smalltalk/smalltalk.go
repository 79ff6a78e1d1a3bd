// Package smalltalk answers greetings and acknowledgments with a canned,
// localized reply so they never reach the answer workflow.
package smalltalk

import (
	"strings"
	"unicode"

	"github.com/sweetpotato0/radsafe/middleware"
	"github.com/sweetpotato0/radsafe/rag/i18n"
)

// Kind classifies a small-talk input.
type Kind int

const (
	None Kind = iota
	Acknowledgment
	Greeting
)

// minAlphanumeric is the fewest letters or digits a real question has.
const minAlphanumeric = 2

type phrase struct {
	kind Kind
	lang string
}

var phrases = map[string]phrase{}

func register(kind Kind, lang string, texts ...string) {
	for _, t := range texts {
		phrases[t] = phrase{kind: kind, lang: lang}
	}
}

func init() {
	register(Acknowledgment, "en",
		"thanks", "thank you", "thanks a lot", "thank you very much", "many thanks",
		"thx", "ty", "ok", "okay", "great", "perfect", "got it", "cool", "nice", "awesome")
	register(Acknowledgment, "da", "tak", "mange tak", "tusind tak", "tak for hjælpen", "fint", "perfekt")
	register(Acknowledgment, "de", "danke", "vielen dank", "danke schön", "danke schoen", "alles klar", "super")

	register(Greeting, "en", "hi", "hello", "hey", "good morning", "good afternoon", "good evening")
	register(Greeting, "da", "hej", "hejsa", "goddag", "godmorgen", "god morgen")
	register(Greeting, "de", "hallo", "moin", "servus", "guten tag", "guten morgen")
}

// Match reports whether question is small talk, and in which language the
// reply should be given.
func Match(question string) (Kind, string) {
	text := normalize(question)
	if countAlphanumeric(text) < minAlphanumeric {
		return Acknowledgment, i18n.DefaultLanguage
	}
	if p, ok := phrases[text]; ok {
		return p.kind, p.lang
	}
	return None, ""
}

// Reply returns the canned answer for kind in lang.
func Reply(kind Kind, lang string) string {
	switch kind {
	case Acknowledgment:
		return i18n.Message(lang, i18n.SmallTalkAck)
	case Greeting:
		return i18n.Message(lang, i18n.SmallTalkGreeting)
	}
	return ""
}

// normalize lowercases text, collapses whitespace and strips trailing
// punctuation, symbols and emoji.
func normalize(text string) string {
	text = strings.Join(strings.Fields(strings.ToLower(text)), " ")
	return strings.TrimRightFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func countAlphanumeric(text string) int {
	n := 0
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

// Filter is the middleware that short-circuits small talk.
type Filter struct{}

// New creates a small-talk filter.
func New() *Filter {
	return &Filter{}
}

// Name returns the middleware name
func (f *Filter) Name() string {
	return "SmallTalk"
}

// Execute replies to small talk and passes everything else on.
func (f *Filter) Execute(ctx *middleware.Context, next middleware.Handler) error {
	kind, lang := Match(ctx.Question)
	if kind == None {
		return next(ctx)
	}
	if ctx.Metadata != nil {
		ctx.Metadata["small_talk"] = true
	}
	ctx.Reply(Reply(kind, lang))
	return nil
}
