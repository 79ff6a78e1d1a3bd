// Package i18n detects the language of a question and renders the
// user-facing warning and label strings in English, German or Danish.
package i18n

import (
	"strings"
	"unicode/utf8"

	"github.com/abadojack/whatlanggo"
)

// DefaultLanguage is returned by Detect when detection is not possible and
// used by Message for languages without a translation.
const DefaultLanguage = "en"

// minDetectRunes is the shortest input Detect will try to classify.
const minDetectRunes = 3

// Key identifies a localized string.
type Key string

const (
	WebSearchPoor          Key = "WEB_SEARCH_POOR"
	LabelSourcesInclWeb    Key = "LABEL_SOURCES_INCL_WEB"
	NoTrustedSources       Key = "NO_TRUSTED_SOURCES"
	NotVerifiedAfterWeb    Key = "NOT_VERIFIED_AFTER_WEB"
	NotVerifiedTrustedOnly Key = "NOT_VERIFIED_TRUSTED_ONLY"
	SmallTalkAck           Key = "SMALL_TALK_ACK"
	SmallTalkGreeting      Key = "SMALL_TALK_GREETING"
)

var messages = map[Key]map[string]string{
	WebSearchPoor: {
		"en": "The web search could not find sufficiently good sources. The answer may be based on insufficient information.",
		"de": "Die Websuche konnte keine ausreichend guten Quellen liefern. Die Antwort basiert möglicherweise auf unzureichenden Informationen.",
		"da": "Websøgningen kunne ikke finde tilstrækkeligt gode kilder. Svaret kan være baseret på utilstrækkelige oplysninger.",
	},
	LabelSourcesInclWeb: {
		"en": "Sources incl. web search",
		"de": "Quellen inkl. Websuche",
		"da": "Kilder inkl. websøgning",
	},
	NoTrustedSources: {
		"en": "No trusted sources available. The answer could not be verified against IAEA or Danish sources.",
		"de": "Keine vertrauenswürdigen Quellen verfügbar. Die Antwort konnte nicht gegen IAEA- oder dänische Quellen bestätigt werden.",
		"da": "Ingen pålidelige kilder tilgængelige. Svaret kunne ikke verificeres mod IAEA- eller danske kilder.",
	},
	NotVerifiedAfterWeb: {
		"en": "The answer could not be verified against IAEA or Danish official sources. Trusted web sources were also checked.",
		"de": "Die Antwort konnte nicht gegen IAEA- oder dänische offizielle Quellen bestätigt werden. Es wurden auch vertrauenswürdige Webquellen geprüft.",
		"da": "Svaret kunne ikke verificeres mod IAEA eller danske officielle kilder. Pålidelige webkilder blev også tjekket.",
	},
	NotVerifiedTrustedOnly: {
		"en": "The answer could not be fully verified against the provided trusted sources.",
		"de": "Die Antwort konnte nicht vollständig gegen die bereitgestellten vertrauenswürdigen Quellen bestätigt werden.",
		"da": "Svaret kunne ikke fuldt ud verificeres mod de angivne pålidelige kilder.",
	},
	SmallTalkAck: {
		"en": "You're welcome! Feel free to ask another question about radiation safety.",
		"de": "Gern geschehen! Stellen Sie gerne eine weitere Frage zum Strahlenschutz.",
		"da": "Selv tak! Du er velkommen til at stille et nyt spørgsmål om strålebeskyttelse.",
	},
	SmallTalkGreeting: {
		"en": "Hello! Ask me anything about radiation safety, IAEA standards or Danish radiation protection law.",
		"de": "Hallo! Fragen Sie mich alles zum Strahlenschutz, zu IAEA-Standards oder zum dänischen Strahlenschutzrecht.",
		"da": "Hej! Spørg mig om strålebeskyttelse, IAEA-standarder eller dansk lovgivning om strålebeskyttelse.",
	},
}

// Detect returns the ISO 639-1 code of text, or DefaultLanguage when the
// text is too short or the detector cannot decide.
func Detect(text string) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < minDetectRunes {
		return DefaultLanguage
	}
	info := whatlanggo.Detect(text)
	code := info.Lang.Iso6391()
	if code == "" {
		return DefaultLanguage
	}
	return code
}

// Message returns the string for key in lang, falling back to English.
func Message(lang string, key Key) string {
	table, ok := messages[key]
	if !ok {
		return ""
	}
	if msg, ok := table[strings.ToLower(lang)]; ok {
		return msg
	}
	return table[DefaultLanguage]
}

// For detects the language of question and returns the matching string.
func For(question string, key Key) string {
	return Message(Detect(question), key)
}

// Supported reports whether lang has its own translations.
func Supported(lang string) bool {
	_, ok := messages[WebSearchPoor][strings.ToLower(lang)]
	return ok
}
