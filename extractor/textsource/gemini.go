package textsource

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// minVisionTextLen is the minimum recognized-text length for a vision result
// to count as a success; shorter output falls through to the OCR tiers.
const minVisionTextLen = 10

const visionPrompt = `Transcribe ALL text visible in this image, exactly as written, preserving line breaks. The image is a screenshot of a social media post (may contain English and Malay). Output only the transcribed text, nothing else.`

// GeminiVision is the highest-priority extraction tier. It asks a Gemini
// multimodal model to transcribe the screenshot.
type GeminiVision struct {
	apiKey string
	model  string
}

func NewGeminiVision(apiKey, model string) *GeminiVision {
	return &GeminiVision{apiKey: apiKey, model: model}
}

func (g *GeminiVision) Name() string { return "gemini-vision" }

func (g *GeminiVision) Extract(ctx context.Context, image []byte) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create genai client: %w", err)
	}

	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{Text: visionPrompt},
			{InlineData: &genai.Blob{MIMEType: detectImageMIME(image), Data: image}},
		},
	}}

	result, err := client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("vision request failed: %w", err)
	}

	text := strings.TrimSpace(result.Text())
	if len(text) <= minVisionTextLen {
		return "", fmt.Errorf("vision returned empty/short text (%d chars)", len(text))
	}
	return text, nil
}

// detectImageMIME sniffs the image container from magic bytes. Telegram
// photos are JPEG, but screenshots forwarded as documents can be PNG or WebP.
func detectImageMIME(data []byte) string {
	switch {
	case len(data) >= 8 && string(data[:8]) == "\x89PNG\r\n\x1a\n":
		return "image/png"
	case len(data) >= 12 && string(data[:4]) == "RIFF" && string(data[8:12]) == "WEBP":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
