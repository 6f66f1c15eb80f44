package utils

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/verdant-app/verdant-server/config"
	"google.golang.org/api/option"
)

// AnalyzeCheckup sends the checkup prompt plus one or two JPEG images to
// Gemini and returns the raw text response. The call is bound to ctx, so a
// fired deadline makes it fail fast instead of running past the budget.
func AnalyzeCheckup(ctx context.Context, prompt string, images [][]byte) (string, error) {
	if config.GeminiAPIKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY is not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(config.GeminiAPIKey))
	if err != nil {
		return "", fmt.Errorf("failed to create Gemini client: %v", err)
	}
	defer client.Close()

	model := client.GenerativeModel(config.GeminiModel)

	parts := []genai.Part{genai.Text(prompt)}
	for _, img := range images {
		if len(img) == 0 {
			continue
		}
		parts = append(parts, genai.ImageData("jpeg", img))
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("unexpected response format (no text parts)")
	}
	return sb.String(), nil
}
