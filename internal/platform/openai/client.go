package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/briarkeep/briarkeep-backend/internal/platform/logger"
)

// Client is the slice of the OpenAI API the backend uses.
type Client interface {
	// GenerateJSON runs a chat completion in JSON mode and returns the raw,
	// validated JSON body of the reply.
	GenerateJSON(ctx context.Context, system string, user string) (json.RawMessage, error)
	GenerateText(ctx context.Context, system string, user string) (string, error)
}

type client struct {
	log   *logger.Logger
	api   *openai.Client
	model string
}

func NewClient(log *logger.Logger) (Client, error) {
	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}
	model := strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if model == "" {
		model = openai.GPT4oMini
	}
	return &client{
		log:   log.With("service", "OpenAIClient"),
		api:   openai.NewClient(apiKey),
		model: model,
	}, nil
}

func (c *client) GenerateJSON(ctx context.Context, system string, user string) (json.RawMessage, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai returned no choices")
	}
	body := strings.TrimSpace(resp.Choices[0].Message.Content)
	if !json.Valid([]byte(body)) {
		return nil, fmt.Errorf("openai returned invalid JSON")
	}
	return json.RawMessage(body), nil
}

func (c *client) GenerateText(ctx context.Context, system string, user string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
