package llm

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/recruitedge/recruitedge/shared"
	"google.golang.org/genai"
)

const DEFAULT_MODEL = "gemini-2.0-flash"

// Generator wraps the Google GenAI client behind a plain prompt-in,
// text-out call.
type Generator struct {
	client    *genai.Client
	modelName string
}

func NewGenerator(ctx context.Context, config shared.LlmConfig) (*Generator, error) {
	apiKey := strings.TrimSpace(config.ApiKey)
	if apiKey == "" {
		return nil, errors.New("llm api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create genai client")
	}

	model := strings.TrimSpace(config.Model)
	if model == "" {
		model = DEFAULT_MODEL
	}

	return &Generator{client: client, modelName: model}, nil
}

// GenerateText sends the prompt to the model and returns the concatenated
// text of the first response.
func (g *Generator) GenerateText(ctx context.Context, systemInstruction, prompt string) (string, error) {
	if g == nil || g.client == nil {
		return "", errors.New("llm generator is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	var config *genai.GenerateContentConfig
	if systemInstruction != "" {
		config = &genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{
				Parts: []*genai.Part{{Text: systemInstruction}},
			},
		}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), config)
	if err != nil {
		return "", errors.Wrap(err, "generate content")
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || strings.TrimSpace(part.Text) == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(strings.TrimSpace(part.Text))
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("model returned an empty response")
	}
	return output, nil
}
