package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const DefaultModel = openai.GPT4oMini

var (
	ErrAPIKeyMissing = errors.New("openai api key is not configured")
	ErrEmptyReply    = errors.New("model returned no choices")
)

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	// Timeout of a whole completion request, zero means no limit.
	Timeout time.Duration
}

type Client struct {
	client *openai.Client
	model  string
	apiKey string
}

func New(config Config) *Client {
	c := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		c.BaseURL = config.BaseURL
	}
	c.HTTPClient = newHTTPClient(config.Timeout)

	model := config.Model
	if model == "" {
		model = DefaultModel
	}
	return &Client{client: openai.NewClientWithConfig(c), model: model, apiKey: config.APIKey}
}

// Complete sends a two-message exchange and returns the text of the first choice.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	if c.apiKey == "" {
		return "", ErrAPIKeyMissing
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		// A zero temperature is dropped from the request body.
		Temperature: math.SmallestNonzeroFloat32,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyReply
	}
	return resp.Choices[0].Message.Content, nil
}

func newHTTPClient(timeout time.Duration) *http.Client {
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: tr}
}
