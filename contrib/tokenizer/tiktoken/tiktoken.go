// Package tiktoken counts tokens with the BPE encodings of tiktoken-go.
package tiktoken

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"github.com/sweetpotato0/radsafe/rag/tokenizer"
)

var _ tokenizer.Tokenizer = (*Tokenizer)(nil)

// DefaultEncoding is used for models tiktoken has no table for, which
// includes every Mistral, Gemini and Claude model.
const DefaultEncoding = "cl100k_base"

// Encodings are loaded once per process; loading parses a large rank file.
var encodings sync.Map // name -> *tiktoken.Tiktoken

// Tokenizer counts tokens with one encoding. It is safe for concurrent use.
type Tokenizer struct {
	name string
	enc  *tiktoken.Tiktoken
}

// New loads the encoding called name, for example "cl100k_base".
func New(name string) (*Tokenizer, error) {
	if enc, ok := encodings.Load(name); ok {
		return &Tokenizer{name: name, enc: enc.(*tiktoken.Tiktoken)}, nil
	}
	enc, err := tiktoken.GetEncoding(name)
	if err != nil {
		return nil, fmt.Errorf("load encoding %s: %w", name, err)
	}
	actual, _ := encodings.LoadOrStore(name, enc)
	return &Tokenizer{name: name, enc: actual.(*tiktoken.Tiktoken)}, nil
}

// ForModel picks the encoding of model, or DefaultEncoding when tiktoken does
// not know the model.
func ForModel(model string) (*Tokenizer, error) {
	if enc, err := tiktoken.EncodingForModel(model); err == nil {
		return &Tokenizer{name: model, enc: enc}, nil
	}
	return New(DefaultEncoding)
}

// Name is the encoding, or the model it was resolved for.
func (t *Tokenizer) Name() string {
	return t.name
}

// CountTokens implements tokenizer.Tokenizer.
func (t *Tokenizer) CountTokens(text string) int {
	if text == "" {
		return 0
	}
	return len(t.enc.Encode(text, nil, nil))
}
