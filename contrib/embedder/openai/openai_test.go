package openai

import (
	"testing"

	openaisdk "github.com/openai/openai-go/v3"
)

func TestConvertVectorPadsAndTruncates(t *testing.T) {
	got := ConvertVector([]float64{0.5, 1.5}, 3)
	if len(got) != 3 || got[0] != 0.5 || got[1] != 1.5 || got[2] != 0 {
		t.Fatalf("unexpected padded vector %v", got)
	}
	got = ConvertVector([]float64{1, 2, 3, 4}, 2)
	if len(got) != 2 || got[1] != 2 {
		t.Fatalf("unexpected truncated vector %v", got)
	}
}

func TestNewMistralDefaults(t *testing.T) {
	e := NewMistral("key")
	if e.Dimension() != MistralDimension {
		t.Fatalf("dimension = %d", e.Dimension())
	}
	if string(e.model) != MistralModel {
		t.Fatalf("model = %s", e.model)
	}
}

func TestBatches(t *testing.T) {
	texts := []string{"a", "b", "c", "d", "e"}
	got := Batches(texts, 2)
	if len(got) != 3 || len(got[0]) != 2 || len(got[2]) != 1 || got[2][0] != "e" {
		t.Fatalf("unexpected batches %v", got)
	}
	if Batches(nil, 2) != nil {
		t.Fatal("no texts means no requests")
	}
	if len(Batches(texts, 0)) != 1 {
		t.Fatal("non-positive size falls back to the default")
	}
}

func TestOptionsOverrideDefaults(t *testing.T) {
	e := New("key", WithDimension(256), WithBatchSize(4), WithDimension(0))
	if e.dimension != 256 || e.batchSize != 4 {
		t.Fatalf("unexpected config dim=%d batch=%d", e.dimension, e.batchSize)
	}
	if e.model != openaisdk.EmbeddingModelTextEmbedding3Small {
		t.Fatalf("model = %s", e.model)
	}
}
