package tokenizer

import "testing"

func TestSimpleTokenizerCount(t *testing.T) {
	tok := NewSimpleTokenizer()
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"dose limit", 2},
		{"20 mSv/year.", 5},
		{"strålebeskyttelse", 1},
	}
	for _, tt := range tests {
		if got := tok.CountTokens(tt.text); got != tt.want {
			t.Errorf("CountTokens(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestFit(t *testing.T) {
	tok := NewSimpleTokenizer()
	parts := []string{"a b", "c d", "e f"}
	if got := Fit(tok, "q", parts, 5); got != 2 {
		t.Errorf("Fit = %d, want 2", got)
	}
	if got := Fit(tok, "q", parts, 0); got != 3 {
		t.Errorf("unlimited Fit = %d, want 3", got)
	}
	if got := Fit(tok, "too many words here", parts, 2); got != 0 {
		t.Errorf("Fit over base = %d, want 0", got)
	}
}
