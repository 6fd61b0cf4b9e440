package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiNarrator implements Narrator against Google's Gemini API.
type GeminiNarrator struct {
	client    *genai.Client
	modelName string
	logger    *slog.Logger
}

var _ Narrator = (*GeminiNarrator)(nil)

// NewGeminiNarrator creates the client eagerly so a bad key fails at
// startup rather than on the first turn.
func NewGeminiNarrator(ctx context.Context, apiKey string, modelName string, logger *slog.Logger) (*GeminiNarrator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiNarrator{
		client:    client,
		modelName: modelName,
		logger:    logger,
	}, nil
}

func (g *GeminiNarrator) Ping(ctx context.Context) error {
	if g.client == nil {
		return fmt.Errorf("gemini client is not initialized")
	}
	return nil
}

// Close releases the underlying client connection.
func (g *GeminiNarrator) Close() error {
	return g.client.Close()
}

func (g *GeminiNarrator) Narrate(ctx context.Context, req *NarrationRequest) (string, error) {
	system, user, err := BuildPrompt(req)
	if err != nil {
		return "", err
	}

	model := g.client.GenerativeModel(g.modelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(system)},
	}

	resp, err := model.GenerateContent(ctx, genai.Text(user))
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		g.logger.Warn("Gemini returned no candidates", "model", g.modelName)
		return "(no response)", nil
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "(no response)", nil
	}
	return b.String(), nil
}
