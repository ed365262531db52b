// Package aiparser is an optional field-extraction tier that asks an OpenAI
// chat model to structure the recognized text. It sits between text
// recognition and the pattern parser: when it errors or is unconfigured, the
// caller falls back to pattern rules.
package aiparser

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/sirupsen/logrus"

	"github.com/AzielCF/az-giveaway/domains/giveaway"
)

const extractionPrompt = `Extract giveaway details from this social media post text. Dates use DD/MM/YYYY HH:MM format. Use an empty string for anything not present in the text, never invent values.

Post text:
"""
%s
"""`

type OpenAIParser struct {
	apiKey string
	model  string
}

func New(apiKey, model string) *OpenAIParser {
	return &OpenAIParser{apiKey: apiKey, model: model}
}

// Enabled reports whether this tier is configured at all.
func (p *OpenAIParser) Enabled() bool { return p.apiKey != "" }

var draftSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"title":               map[string]any{"type": "string"},
		"organizer":           map[string]any{"type": "string"},
		"platform":            map[string]any{"type": "string"},
		"deadline":            map[string]any{"type": "string"},
		"winner_announcement": map[string]any{"type": "string"},
		"prize":               map[string]any{"type": "string"},
		"requirements":        map[string]any{"type": "string"},
		"notes":               map[string]any{"type": "string"},
	},
	"required": []string{
		"title", "organizer", "platform", "deadline",
		"winner_announcement", "prize", "requirements", "notes",
	},
	"additionalProperties": false,
}

// Parse asks the model for a structured draft.
func (p *OpenAIParser) Parse(ctx context.Context, text string) (*giveaway.Draft, error) {
	if !p.Enabled() {
		return nil, fmt.Errorf("openai parser is not configured")
	}

	client := openai.NewClient(option.WithAPIKey(p.apiKey))

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(fmt.Sprintf(extractionPrompt, text)),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   "giveaway_draft",
					Schema: any(draftSchema),
					Strict: openai.Bool(true),
				},
			},
		},
	}

	completion, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("no response from openai")
	}

	var out struct {
		Title              string `json:"title"`
		Organizer          string `json:"organizer"`
		Platform           string `json:"platform"`
		Deadline           string `json:"deadline"`
		WinnerAnnouncement string `json:"winner_announcement"`
		Prize              string `json:"prize"`
		Requirements       string `json:"requirements"`
		Notes              string `json:"notes"`
	}
	if err := json.Unmarshal([]byte(completion.Choices[0].Message.Content), &out); err != nil {
		return nil, fmt.Errorf("failed to decode model output: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"model":         p.model,
		"input_tokens":  completion.Usage.PromptTokens,
		"output_tokens": completion.Usage.CompletionTokens,
	}).Debug("[AIPARSE] Extraction completed")

	return &giveaway.Draft{
		Title:              out.Title,
		Organizer:          out.Organizer,
		Platform:           giveaway.Platform(out.Platform),
		Deadline:           out.Deadline,
		WinnerAnnouncement: out.WinnerAnnouncement,
		Prize:              out.Prize,
		Requirements:       out.Requirements,
		Notes:              out.Notes,
	}, nil
}
