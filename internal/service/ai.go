package service

import (
	"context"
	"fmt"
	"strings"
)

// EmbeddingClient abstracts the embedding model used for question vectors.
type EmbeddingClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Close() error
}

// LLMClient abstracts the generative model used for answers.
type LLMClient interface {
	GenerateAnswer(ctx context.Context, question string, context []string) (string, error)
	Close() error
}

// ---- dev / test stand-ins --------------------------------------------------

type dummyEmbedder struct{}

func (dummyEmbedder) Embed(context.Context, string) ([]float32, error) {
	return make([]float32, 768), nil
}

func (dummyEmbedder) Close() error { return nil }

// NewDummyEmbedder returns an embedder that yields zero vectors. Used when
// AI_PROVIDER=dummy and in tests.
func NewDummyEmbedder() EmbeddingClient {
	return dummyEmbedder{}
}

type dummyLLM struct{}

func (dummyLLM) GenerateAnswer(_ context.Context, question string, chunks []string) (string, error) {
	return fmt.Sprintf("(dev answer for %q over %d chunks)", question, len(chunks)), nil
}

func (dummyLLM) Close() error { return nil }

// NewDummyLLM returns an LLM that echoes its inputs.
func NewDummyLLM() LLMClient {
	return dummyLLM{}
}

// formatContext renders retrieved chunks into the prompt body.
func formatContext(chunks []string) string {
	var sb strings.Builder
	for i, c := range chunks {
		sb.WriteString(fmt.Sprintf("%d.\n```\n%s\n```\n\n", i+1, c))
	}
	return sb.String()
}
