// Package llm talks to an OpenAI-compatible chat completion endpoint. The
// generator only ever needs one shape of call: a system/user pair in, the
// assistant text out.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cognicore/labelforge/pkg/labelforge/config"
	"github.com/cognicore/labelforge/pkg/labelforge/internalerr"
)

// DefaultEndpoint is used when no api_base is configured.
const DefaultEndpoint = "https://api.openai.com/v1/chat/completions"

// Client calls an OpenAI-compatible chat completion endpoint.
type Client struct {
	Endpoint  string
	APIKey    string
	Model     string
	MaxTokens int

	HTTPClient *http.Client
}

// New builds a client from provider configuration. A configured api_base is
// treated as the API root and the chat completions path is appended.
func New(cfg config.LLMConfig) *Client {
	endpoint := DefaultEndpoint
	if cfg.APIBase != "" {
		endpoint = strings.TrimRight(cfg.APIBase, "/") + "/chat/completions"
	}
	return &Client{
		Endpoint:  endpoint,
		APIKey:    cfg.APIKey,
		Model:     cfg.Model,
		MaxTokens: cfg.MaxTokens,
	}
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends one system/user exchange and returns the assistant text.
// An empty system prompt is omitted from the message list.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	if c.Endpoint == "" || c.Model == "" {
		return "", fmt.Errorf("%w: endpoint and model required", internalerr.ErrGeneration)
	}

	var messages []chatMessage
	if system != "" {
		messages = append(messages, chatMessage{Role: "system", Content: system})
	}
	messages = append(messages, chatMessage{Role: "user", Content: user})

	payload, err := c.send(ctx, messages)
	if err != nil {
		return "", err
	}
	if len(payload.Choices) == 0 {
		return "", fmt.Errorf("%w: empty response", internalerr.ErrGeneration)
	}
	return payload.Choices[0].Message.Content, nil
}

func (c *Client) send(ctx context.Context, messages []chatMessage) (*chatResponse, error) {
	reqBody, err := json.Marshal(chatRequest{Model: c.Model, Messages: messages, MaxTokens: c.MaxTokens})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrGeneration, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrGeneration, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrGeneration, err)
	}
	defer resp.Body.Close()

	var payload chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", internalerr.ErrGeneration, err)
	}
	if payload.Error != nil {
		return nil, fmt.Errorf("%w: %s", internalerr.ErrGeneration, payload.Error.Message)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", internalerr.ErrGeneration, resp.StatusCode)
	}
	return &payload, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 60 * time.Second}
}
