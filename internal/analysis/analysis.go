// Package analysis provides content understanding for posts: embedding
// generation plus categorization and safety screening. Production uses
// the OpenAI-backed analyzer; tests use the stub.
package analysis

import (
	"context"
)

// Result holds the outcome of analyzing a post's text.
type Result struct {
	Embedding []float64 `json:"embedding"`
	Category  string    `json:"category"`
	Sentiment string    `json:"sentiment"`
	IsSafe    bool      `json:"is_safe"`
}

// Analyzer defines content analysis operations.
type Analyzer interface {
	// AnalyzePost produces an embedding, a category, a sentiment label,
	// and a safety verdict for a post's text.
	AnalyzePost(ctx context.Context, title, content string) (*Result, error)

	// EmbedText produces an embedding vector for arbitrary text.
	EmbedText(ctx context.Context, text string) ([]float64, error)
}

// StubAnalyzer is a fixed-response Analyzer for tests and for running
// without an API key. The zero value returns empty results.
type StubAnalyzer struct {
	Result    *Result
	Embedding []float64
	Err       error
}

func (s *StubAnalyzer) AnalyzePost(_ context.Context, _, _ string) (*Result, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Result != nil {
		return s.Result, nil
	}
	return &Result{IsSafe: true}, nil
}

func (s *StubAnalyzer) EmbedText(_ context.Context, _ string) ([]float64, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Embedding, nil
}
