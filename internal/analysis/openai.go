package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

const (
	embeddingModel = openai.EmbeddingModelTextEmbedding3Small
	chatModel      = "gpt-4o-mini"
)

// OpenAIAnalyzer is an OpenAI-backed Analyzer. Embeddings come from the
// embeddings API; category, sentiment, and safety come from a single
// chat completion returning JSON.
type OpenAIAnalyzer struct {
	client openai.Client
}

// NewOpenAIAnalyzer creates an analyzer using the given API key.
func NewOpenAIAnalyzer(apiKey string) *OpenAIAnalyzer {
	return &OpenAIAnalyzer{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
	}
}

// AnalyzePost produces an embedding and classification for a post.
func (a *OpenAIAnalyzer) AnalyzePost(ctx context.Context, title, content string) (*Result, error) {
	text := title
	if content != "" {
		text = title + "\n\n" + content
	}

	embedding, err := a.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}

	classification, err := a.classify(ctx, text)
	if err != nil {
		return nil, err
	}

	return &Result{
		Embedding: embedding,
		Category:  classification.Category,
		Sentiment: classification.Sentiment,
		IsSafe:    classification.IsSafe,
	}, nil
}

// EmbedText produces an embedding vector for the given text.
func (a *OpenAIAnalyzer) EmbedText(ctx context.Context, text string) ([]float64, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("cannot embed empty text")
	}

	response, err := a.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
		Model: embeddingModel,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}
	if len(response.Data) == 0 {
		return nil, fmt.Errorf("no embedding data in response")
	}
	return response.Data[0].Embedding, nil
}

type classification struct {
	Category  string `json:"category"`
	Sentiment string `json:"sentiment"`
	IsSafe    bool   `json:"is_safe"`
}

func (a *OpenAIAnalyzer) classify(ctx context.Context, text string) (*classification, error) {
	prompt := buildClassificationPrompt(text)

	response, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: chatModel,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You are a content classification system for a social feed. Respond only with JSON."),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(0.1),
	})
	if err != nil {
		return nil, fmt.Errorf("classification request failed: %w", err)
	}
	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("no choices in classification response")
	}

	var c classification
	if err := json.Unmarshal([]byte(response.Choices[0].Message.Content), &c); err != nil {
		return nil, fmt.Errorf("failed to parse classification response: %w", err)
	}
	return &c, nil
}

func buildClassificationPrompt(text string) string {
	var sb strings.Builder
	sb.WriteString("Classify this post. Provide:\n")
	sb.WriteString("- category: a single lowercase topic word (e.g. technology, music, sports)\n")
	sb.WriteString("- sentiment: positive, negative, or neutral\n")
	sb.WriteString("- is_safe: false if the post contains spam, harassment, or unsafe content\n\n")
	sb.WriteString(`Respond with JSON: {"category": "...", "sentiment": "...", "is_safe": true}`)
	sb.WriteString("\n\nPost:\n")
	sb.WriteString(text)
	return sb.String()
}
