package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	assert.Equal(t, "en", Detect(""))
	assert.Equal(t, "en", Detect("  hi "))
	assert.Equal(t, "en", Detect("What is the annual dose limit for occupationally exposed workers?"))
	assert.Equal(t, "de", Detect("Wie hoch ist der Grenzwert für die jährliche Strahlendosis von beruflich exponierten Personen in Deutschland?"))
}

func TestMessageFallsBackToEnglish(t *testing.T) {
	assert.Equal(t, "Sources incl. web search", Message("fr", LabelSourcesInclWeb))
	assert.Equal(t, "Kilder inkl. websøgning", Message("da", LabelSourcesInclWeb))
	assert.Equal(t, "Quellen inkl. Websuche", Message("DE", LabelSourcesInclWeb))
	assert.Empty(t, Message("en", Key("UNKNOWN")))
}

func TestEveryKeyHasAllLanguages(t *testing.T) {
	for key, table := range messages {
		for _, lang := range []string{"en", "de", "da"} {
			assert.NotEmpty(t, table[lang], "key %s missing %s", key, lang)
		}
	}
}

func TestForUsesDetectedLanguage(t *testing.T) {
	question := "Welche Anforderungen gelten für die Lagerung radioaktiver Abfälle in einem Krankenhaus?"
	assert.Equal(t, messages[WebSearchPoor]["de"], For(question, WebSearchPoor))
	assert.True(t, Supported("da"))
	assert.False(t, Supported("sv"))
}
