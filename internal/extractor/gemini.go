package extractor

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when GeminiConfig.Model is empty.
const DefaultGeminiModel = "gemini-2.0-flash"

// GeminiConfig configures the Gemini Developer API client.
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string // optional, for proxies and tests
}

// GeminiGenerator implements Generator with google.golang.org/genai.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

var _ Generator = (*GeminiGenerator)(nil)

// NewGeminiGenerator builds the SDK client. No request is made here.
func NewGeminiGenerator(ctx context.Context, cfg GeminiConfig) (*GeminiGenerator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("extractor: Gemini API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("extractor: creating Gemini client: %w", err)
	}

	return &GeminiGenerator{client: client, model: cfg.Model}, nil
}

// Model returns the model name requests are sent to.
func (g *GeminiGenerator) Model() string {
	return g.model
}

// Generate sends the prompt and the document bytes inline in one user turn.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string, doc []byte, mimeType string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(prompt),
			genai.NewPartFromBytes(doc, mimeType),
		}, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}
	if resp == nil {
		return "", errors.New("gemini: empty response")
	}

	return resp.Text(), nil
}
