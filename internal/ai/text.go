// Package ai wraps the generative model APIs behind small stateless
// interfaces so pipeline stages can be exercised with stubs.
package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// TextSynthesizer is a stateless request/response wrapper around a
// text-generation model.
type TextSynthesizer interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiText generates text with the Gemini API.
type GeminiText struct {
	client      *genai.Client
	model       string
	callTimeout time.Duration
}

// NewGeminiText builds a text synthesizer. The client is constructed once at
// process start and injected; it holds the API credentials.
func NewGeminiText(ctx context.Context, apiKey, model string, callTimeout time.Duration) (*GeminiText, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiText{
		client:      client,
		model:       model,
		callTimeout: callTimeout,
	}, nil
}

// Close releases the underlying client.
func (g *GeminiText) Close() error {
	return g.client.Close()
}

// Generate performs a single model call and returns the concatenated text
// parts of the first candidate. Empty output is returned as-is; callers
// decide whether that is an error.
func (g *GeminiText) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()

	model := g.client.GenerativeModel(g.model)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini text generation failed: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil
	}

	var out strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			out.WriteString(string(txt))
		}
	}
	return out.String(), nil
}
