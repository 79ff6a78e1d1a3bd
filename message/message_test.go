package message

import (
	"encoding/json"
	"testing"
)

func TestNewMessage(t *testing.T) {
	msg := NewMessage(RoleUser, "  What is a dose limit?  ")

	if msg.Role != RoleUser {
		t.Errorf("Expected role %s, got %s", RoleUser, msg.Role)
	}

	if msg.Text() != "What is a dose limit?" {
		t.Errorf("Expected trimmed text, got '%s'", msg.Text())
	}

	if msg.ID == "" {
		t.Error("Expected non-empty ID")
	}

	if msg.CreatedAt.IsZero() {
		t.Error("Expected non-zero created time")
	}
}

func TestRoleConstructors(t *testing.T) {
	tests := []struct {
		msg  *Message
		want Role
	}{
		{System("rules"), RoleSystem},
		{User("question"), RoleUser},
		{Assistant("answer"), RoleAssistant},
	}
	for _, tt := range tests {
		if tt.msg.Role != tt.want {
			t.Errorf("expected role %s, got %s", tt.want, tt.msg.Role)
		}
	}
	if User("a").ID == User("a").ID {
		t.Error("messages must get distinct IDs")
	}
	var nilMsg *Message
	if nilMsg.Text() != "" {
		t.Error("nil message text should be empty")
	}
}

func TestLastTurn(t *testing.T) {
	if _, ok := LastTurn(nil); ok {
		t.Error("empty history has no last turn")
	}
	last, ok := LastTurn([]Turn{{Question: "q1"}, {Question: "q2", Answer: "a2"}})
	if !ok || last.Answer != "a2" {
		t.Errorf("unexpected last turn %#v", last)
	}
}

func TestAppendTurnDoesNotMutateInput(t *testing.T) {
	history := make([]Turn, 1, 4)
	history[0] = Turn{Question: "q1", Answer: "a1"}

	out := AppendTurn(history, "q2", "a2")
	_ = AppendTurn(history, "q3", "a3")

	if len(out) != 2 || out[1].Question != "q2" {
		t.Fatalf("unexpected history %#v", out)
	}
	if len(history) != 1 {
		t.Fatalf("input history changed: %#v", history)
	}
}

func TestTurnJSONPairs(t *testing.T) {
	var turns []Turn
	if err := json.Unmarshal([]byte(`[["Hi?","Hello"],{"question":"q","answer":"a"}]`), &turns); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if turns[0].Question != "Hi?" || turns[0].Answer != "Hello" {
		t.Errorf("array form decoded wrong: %#v", turns[0])
	}
	if turns[1].Question != "q" || turns[1].Answer != "a" {
		t.Errorf("object form decoded wrong: %#v", turns[1])
	}

	raw, err := json.Marshal(turns[0])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `["Hi?","Hello"]` {
		t.Errorf("expected pair encoding, got %s", raw)
	}
}
