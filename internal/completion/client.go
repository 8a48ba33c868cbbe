package completion

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/antoniostano/kyra/internal/prompt"
)

// EmptyReplySentinel stands in for a parseable-but-empty model response.
// An empty body is degraded output, not a failure.
const EmptyReplySentinel = "thinking…"

// UpstreamError reports a transport or API failure from the completion
// service. StatusCode is zero when the request never reached the server.
type UpstreamError struct {
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("completion upstream status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("completion upstream: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Completer issues one chat completion for an ordered message list.
type Completer interface {
	Complete(ctx context.Context, messages []prompt.Message, temperature float32) (string, error)
}

// Client talks to an OpenAI-compatible completion endpoint.
type Client struct {
	api   *openai.Client
	model string
}

func NewClient(apiKey, baseURL, model string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if strings.TrimSpace(baseURL) != "" {
		cfg.BaseURL = baseURL
	}
	if strings.TrimSpace(model) == "" {
		model = openai.GPT4oMini
	}
	return &Client{
		api:   openai.NewClientWithConfig(cfg),
		model: model,
	}
}

func (c *Client) Complete(ctx context.Context, messages []prompt.Message, temperature float32) (string, error) {
	reqMsgs := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		reqMsgs[i] = openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		}
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    reqMsgs,
		Temperature: temperature,
	})
	if err != nil {
		status := 0
		var apiErr *openai.APIError
		var reqErr *openai.RequestError
		switch {
		case errors.As(err, &apiErr):
			status = apiErr.HTTPStatusCode
		case errors.As(err, &reqErr):
			status = reqErr.HTTPStatusCode
		}
		return "", &UpstreamError{StatusCode: status, Err: err}
	}

	if len(resp.Choices) == 0 {
		return EmptyReplySentinel, nil
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return EmptyReplySentinel, nil
	}
	return text, nil
}
