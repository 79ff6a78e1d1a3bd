package prompt

import (
	"strings"
	"testing"
)

func TestTemplateRender(t *testing.T) {
	tmpl, err := NewTemplate("greet", "Hello {{.name}}")
	if err != nil {
		t.Fatalf("NewTemplate: %v", err)
	}
	out, err := tmpl.Render(Vars{"name": "IAEA"})
	if err != nil || out != "Hello IAEA" {
		t.Fatalf("Render = %q, %v", out, err)
	}
	if _, err := NewTemplate("bad", "{{.name"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestManagerRegisterAndGet(t *testing.T) {
	m := NewManager()
	if err := m.RegisterString("a", "x"); err != nil {
		t.Fatalf("RegisterString: %v", err)
	}
	if err := m.RegisterString("a", "y"); err == nil {
		t.Fatal("expected duplicate error")
	}
	if _, err := m.Get("missing"); err == nil {
		t.Fatal("expected not found error")
	}
	if err := m.Register(&Template{}); err == nil {
		t.Fatal("expected empty name error")
	}
}

func TestDefaultsRenderEveryPair(t *testing.T) {
	vars := Vars{
		"question":   "What is the dose limit?",
		"context":    "20 mSv per year",
		"documents":  "20 mSv per year",
		"document":   "20 mSv per year",
		"generation": "20 mSv",
		"history":    "",
	}
	for _, name := range []string{Sufficiency, Generation, Hallucination, Relevance, MissingQuery, SearchQuery, Answer} {
		system, user, err := Defaults().RenderPair(name, vars)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if system == "" || !strings.Contains(user, "20 mSv") && name != MissingQuery && name != SearchQuery {
			t.Errorf("%s rendered unexpected prompts: %q / %q", name, system, user)
		}
	}
}

func TestAnswerTemplateHistoryIsOptional(t *testing.T) {
	m := NewDefaults()
	_, without, err := m.RenderPair(Answer, Vars{"question": "q", "context": "c"})
	if err != nil {
		t.Fatalf("RenderPair: %v", err)
	}
	if strings.Contains(without, "Conversation so far") {
		t.Errorf("empty history should be omitted: %q", without)
	}
	_, with, _ := m.RenderPair(Answer, Vars{"question": "q", "context": "c", "history": "User: a\nAssistant: b"})
	if !strings.Contains(with, "Conversation so far:\nUser: a") {
		t.Errorf("history missing: %q", with)
	}
}

func TestOverride(t *testing.T) {
	m := NewDefaults()
	if err := m.Override(Answer+".user", "Q={{.question}}"); err != nil {
		t.Fatalf("Override: %v", err)
	}
	_, user, _ := m.RenderPair(Answer, Vars{"question": "x"})
	if user != "Q=x" {
		t.Errorf("override not applied: %q", user)
	}
}

func TestNamesAreSortedPairs(t *testing.T) {
	names := NewDefaults().Names()
	if len(names) != 14 {
		t.Fatalf("expected 7 prompt pairs, got %v", names)
	}
	if names[0] != Answer+systemSuffix || names[1] != Answer+userSuffix {
		t.Errorf("names not sorted: %v", names)
	}
}
