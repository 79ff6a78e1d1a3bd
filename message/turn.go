package message

import "encoding/json"

// Turn is one completed exchange of a conversation. Callers hold the history
// and send it back with every request.
type Turn struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// MarshalJSON encodes a turn as a two-element array, the wire shape clients
// already use for chat history.
func (t Turn) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{t.Question, t.Answer})
}

// UnmarshalJSON accepts both the array form and an object form.
func (t *Turn) UnmarshalJSON(data []byte) error {
	var pair []string
	if err := json.Unmarshal(data, &pair); err == nil {
		if len(pair) > 0 {
			t.Question = pair[0]
		}
		if len(pair) > 1 {
			t.Answer = pair[1]
		}
		return nil
	}
	type plain Turn
	var obj plain
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*t = Turn(obj)
	return nil
}

// AppendTurn returns a new history with (question, answer) appended.
// The input slice is never modified.
func AppendTurn(history []Turn, question, answer string) []Turn {
	out := make([]Turn, 0, len(history)+1)
	out = append(out, history...)
	return append(out, Turn{Question: question, Answer: answer})
}

// LastTurn returns the most recent turn, if any.
func LastTurn(history []Turn) (Turn, bool) {
	if len(history) == 0 {
		return Turn{}, false
	}
	return history[len(history)-1], true
}
