package gateway

import (
	"context"

	"maya-studio/internal/gemini"
)

// NewGeminiVision adapts the Gemini client to the VisionModel capability.
// The Replicate and Anthropic clients satisfy ImageModel and CaptionModel
// directly.
func NewGeminiVision(c *gemini.Client) VisionModel {
	return geminiVision{client: c}
}

type geminiVision struct {
	client *gemini.Client
}

func (v geminiVision) Analyze(ctx context.Context, promptText string, img InspirationImage) (string, error) {
	return v.client.Analyze(ctx, promptText, gemini.ImageInput{
		DataBase64: img.DataBase64,
		MimeType:   img.MimeType,
		URL:        img.URL,
	})
}
