package services

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"alfredoptarigan/resume-analyzer/internal/config"
)

type GeminiService interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	ModelName() string
}

type geminiService struct {
	client          *genai.Client
	modelName       string
	temperature     float32
	maxOutputTokens int32
}

func NewGeminiService(ctx context.Context, cfg config.GeminiConfig) (GeminiService, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiService{
		client:          client,
		modelName:       cfg.Model,
		temperature:     cfg.Temperature,
		maxOutputTokens: int32(cfg.MaxOutputTokens),
	}, nil
}

// GenerateText implements GeminiService. One blocking call, no retry: a
// transient provider error fails the whole request.
func (g *geminiService) GenerateText(ctx context.Context, prompt string) (string, error) {
	genConfig := &genai.GenerateContentConfig{
		Temperature:     &g.temperature,
		MaxOutputTokens: g.maxOutputTokens,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), genConfig)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if resp == nil {
		return "", fmt.Errorf("no response generated (nil response)")
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("no text content in response")
	}

	return text, nil
}

// ModelName implements GeminiService.
func (g *geminiService) ModelName() string {
	return g.modelName
}
