package llm

import (
	"context"
	"fmt"
	"math"

	openai "github.com/sashabaranov/go-openai"
)

// ClientConfig selects and addresses the completion backend.
type ClientConfig struct {
	Provider   string // "azure" or "openai"
	BaseURL    string
	Model      string // deployment name for Azure
	APIVersion string
	APIKey     string
}

// OpenAIClient is a Completer backed by the OpenAI or Azure OpenAI chat API.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient creates a client for cfg.
func NewOpenAIClient(cfg ClientConfig) (*OpenAIClient, error) {
	var oc openai.ClientConfig
	switch cfg.Provider {
	case "azure":
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("azure provider requires an endpoint")
		}
		oc = openai.DefaultAzureConfig(cfg.APIKey, cfg.BaseURL)
		if cfg.APIVersion != "" {
			oc.APIVersion = cfg.APIVersion
		}
		oc.AzureModelMapperFunc = func(model string) string { return model }
	case "openai", "":
		oc = openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			oc.BaseURL = cfg.BaseURL
		}
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(oc),
		model:  cfg.Model,
	}, nil
}

// Complete sends prompt as a single user message.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string, opts Options) ([]string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: requestTemperature(opts.Temperature),
		MaxTokens:   opts.MaxTokens,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	replies := make([]string, 0, len(resp.Choices))
	for _, choice := range resp.Choices {
		replies = append(replies, choice.Message.Content)
	}
	return replies, nil
}

// requestTemperature works around the omitempty tag on the request field:
// a literal 0 would be dropped and the API would fall back to its default
// of 1.
func requestTemperature(t float64) float32 {
	if t <= 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(t)
}
