package llm

import (
	"context"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
)

// Generator is the single operation the orchestration core needs from an
// LLM: a system instruction, a prompt, and a sampling temperature in,
// generated text out. An empty response is a valid non-error outcome;
// callers must supply their own fallback text.
type Generator interface {
	Generate(ctx context.Context, system, prompt string, temperature float64) (string, error)
}

// Client adapts a langchaingo model to the Generator interface.
type Client struct {
	Model llms.Model
}

func NewClient(model llms.Model) *Client {
	return &Client{Model: model}
}

func (c *Client) Generate(ctx context.Context, system, prompt string, temperature float64) (string, error) {
	var messages []llms.MessageContent
	if system != "" {
		messages = append(messages, llms.MessageContent{
			Role:  schema.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(system)},
		})
	}
	messages = append(messages, llms.MessageContent{
		Role:  schema.ChatMessageTypeHuman,
		Parts: []llms.ContentPart{llms.TextPart(prompt)},
	})

	resp, err := c.Model.GenerateContent(ctx, messages, llms.WithTemperature(temperature))
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Content, nil
}
