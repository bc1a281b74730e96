package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiClient implements Client against the Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

var _ Client = (*GeminiClient)(nil)

// NewGemini creates a Gemini-backed client. The generation parameters are
// fixed for this application: temperature 0.7, nucleus sampling 0.9 and a
// 5000-token output ceiling.
func NewGemini(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		model:  model,
		config: &genai.GenerateContentConfig{
			Temperature:     genai.Ptr[float32](0.7),
			TopP:            genai.Ptr[float32](0.9),
			MaxOutputTokens: 5000,
		},
	}, nil
}

// Generate issues one stateless generation call and returns the trimmed
// response text. No retries: a failed call surfaces as an error for the
// caller's fallback discipline to absorb.
func (g *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), g.config)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return strings.TrimSpace(resp.Text()), nil
}

// NewChat opens a stateful multi-turn chat with empty history.
func (g *GeminiClient) NewChat(ctx context.Context) (Chat, error) {
	chat, err := g.client.Chats.Create(ctx, g.model, g.config, nil)
	if err != nil {
		return nil, fmt.Errorf("create chat: %w", err)
	}
	return &geminiChat{chat: chat}, nil
}

type geminiChat struct {
	chat *genai.Chat
}

func (c *geminiChat) Send(ctx context.Context, message string) (string, error) {
	resp, err := c.chat.SendMessage(ctx, genai.Part{Text: message})
	if err != nil {
		return "", fmt.Errorf("send chat message: %w", err)
	}
	return strings.TrimSpace(resp.Text()), nil
}
