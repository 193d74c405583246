package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/bryanwahyu/siteinsight/internal/infra/ai/prompt"

	domain "github.com/bryanwahyu/siteinsight/internal/domain/reports"
)

const maxTokens = 4096

// Client asks an OpenAI chat model for a schema-conforming report body.
// Implements the Analyzer port.
type Client struct {
	*openai.Client
	Model string
}

func NewClient(apiKey, model string) *Client {
	return &Client{Client: openai.NewClient(apiKey), Model: model}
}

// Analyze requests a JSON report for the page and validates its shape
// defensively. A structurally non-conforming response is a generation
// failure, never a downstream parsing crash. Conforming shape says nothing
// about score quality.
func (c *Client) Analyze(ctx context.Context, in domain.AnalysisInput) (*domain.ReportBody, error) {
	model := c.Model
	if model == "" {
		model = "gpt-4o-2024-08-06"
	}
	req := openai.ChatCompletionRequest{
		Model: model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.System()},
			{Role: openai.ChatMessageRoleUser, Content: prompt.User(in)},
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty completion response", domain.ErrGenerationFailed)
	}

	body, err := domain.ParseBody([]byte(resp.Choices[0].Message.Content))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}
	return body, nil
}
