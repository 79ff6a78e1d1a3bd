package grader

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Binary is a yes/no score. Models answer with JSON booleans or with the
// strings "yes"/"no", so both decode.
type Binary bool

// UnmarshalJSON implements json.Unmarshaler.
func (b *Binary) UnmarshalJSON(data []byte) error {
	var v bool
	if err := json.Unmarshal(data, &v); err == nil {
		*b = Binary(v)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("binary score must be a boolean or yes/no, got %s", data)
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "y", "1":
		*b = true
	case "no", "false", "n", "0":
		*b = false
	default:
		return fmt.Errorf("binary score must be yes or no, got %q", s)
	}
	return nil
}

type binaryScore struct {
	BinaryScore *Binary `json:"binary_score"`
}

// GenerationScore is the combined grounding and usefulness judgment.
type GenerationScore struct {
	Grounded        bool
	AnswersQuestion bool
}

type generationScore struct {
	Grounded        *Binary `json:"grounded"`
	AnswersQuestion *Binary `json:"answers_question"`
}
