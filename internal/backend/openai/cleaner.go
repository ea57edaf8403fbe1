package openai

import (
	"context"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"
)

const cleanupTemperature = 0.3

// Cleaner rewrites transcripts through the chat completions API.
type Cleaner struct {
	client *goopenai.Client
	model  string
}

// NewCleaner creates a Cleaner using model.
func NewCleaner(client *goopenai.Client, model string) *Cleaner {
	return &Cleaner{client: client, model: model}
}

// Cleanup sends text as the user message under systemPrompt and returns the
// trimmed reply. Empty text is sent as is.
func (c *Cleaner) Cleanup(ctx context.Context, text, systemPrompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []goopenai.ChatCompletionMessage{
			{
				Role:    goopenai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    goopenai.ChatMessageRoleUser,
				Content: text,
			},
		},
		Temperature: cleanupTemperature,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
