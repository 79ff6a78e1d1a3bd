package smalltalk

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweetpotato0/radsafe/message"
	"github.com/sweetpotato0/radsafe/middleware"
	"github.com/sweetpotato0/radsafe/rag/i18n"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		input    string
		wantKind Kind
		wantLang string
	}{
		{input: "Thank you", wantKind: Acknowledgment, wantLang: "en"},
		{input: "  thanks!!! ", wantKind: Acknowledgment, wantLang: "en"},
		{input: "Thank   you 🙏", wantKind: Acknowledgment, wantLang: "en"},
		{input: "Mange tak.", wantKind: Acknowledgment, wantLang: "da"},
		{input: "Vielen Dank!", wantKind: Acknowledgment, wantLang: "de"},
		{input: "ok", wantKind: Acknowledgment, wantLang: "en"},
		{input: "?", wantKind: Acknowledgment, wantLang: "en"},
		{input: "k", wantKind: Acknowledgment, wantLang: "en"},
		{input: "👍", wantKind: Acknowledgment, wantLang: "en"},
		{input: "Hello", wantKind: Greeting, wantLang: "en"},
		{input: "Hej!", wantKind: Greeting, wantLang: "da"},
		{input: "Guten Morgen", wantKind: Greeting, wantLang: "de"},
		{input: "What is the dose limit?", wantKind: None},
		{input: "thanks, what about Cs-137?", wantKind: None},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			kind, lang := Match(tt.input)
			assert.Equal(t, tt.wantKind, kind)
			if tt.wantKind != None {
				assert.Equal(t, tt.wantLang, lang)
			}
		})
	}
}

func TestReplyIsLocalized(t *testing.T) {
	assert.Equal(t, i18n.Message("da", i18n.SmallTalkAck), Reply(Acknowledgment, "da"))
	assert.Equal(t, i18n.Message("de", i18n.SmallTalkGreeting), Reply(Greeting, "de"))
	assert.Contains(t, Reply(Acknowledgment, "en"), "You're welcome")
	assert.Empty(t, Reply(None, "en"))
}

func TestFilterShortCircuits(t *testing.T) {
	history := []message.Turn{{Question: "What is ALARA?", Answer: "As low as reasonably achievable."}}
	ctx := middleware.NewContext(context.Background(), "Thank you", history)
	nextCalled := false

	err := New().Execute(ctx, func(*middleware.Context) error {
		nextCalled = true
		return nil
	})

	require.NoError(t, err)
	assert.False(t, nextCalled)
	assert.True(t, ctx.Handled)
	assert.Contains(t, ctx.Answer, "You're welcome")
	require.Len(t, ctx.History, 2)
	assert.Equal(t, "Thank you", ctx.History[1].Question)
	assert.Equal(t, ctx.Answer, ctx.History[1].Answer)
	assert.Len(t, history, 1, "caller history must not be mutated")
}

func TestFilterPassesQuestionsOn(t *testing.T) {
	ctx := middleware.NewContext(context.Background(), "Which dose limits apply to workers?", nil)
	nextCalled := false

	err := New().Execute(ctx, func(*middleware.Context) error {
		nextCalled = true
		return nil
	})

	require.NoError(t, err)
	assert.True(t, nextCalled)
	assert.False(t, ctx.Handled)
	assert.Empty(t, ctx.History)
}
