// Package llm sends the conversation to the chat-completion endpoint and
// returns the model's raw answer.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/tara-vision/nexus/internal/logger"
	"github.com/tara-vision/nexus/internal/storage"
)

const (
	DefaultTemperature = 0.3
	DefaultTimeout     = 30 * time.Second
)

// Turn roles.
const (
	RoleSystem    = openai.ChatMessageRoleSystem
	RoleUser      = openai.ChatMessageRoleUser
	RoleAssistant = openai.ChatMessageRoleAssistant
)

// Turn is one message of the conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Config controls how requests are built.
type Config struct {
	Model        string
	SystemPrompt string
	Temperature  float32
	Timeout      time.Duration
	JSONMode     bool
}

// Client queries an OpenAI-compatible chat-completion endpoint.
type Client struct {
	api *openai.Client
	cfg Config

	mu    sync.Mutex
	usage *storage.TokenUsage
}

// NewClient creates a model client. Zero Temperature and Timeout values
// take their defaults.
func NewClient(api *openai.Client, cfg Config) *Client {
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{api: api, cfg: cfg, usage: &storage.TokenUsage{}}
}

// SetModel switches the model used for subsequent queries.
func (c *Client) SetModel(model string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg.Model = model
}

// Model returns the active model id.
func (c *Client) Model() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg.Model
}

// TrackUsage makes the client add token counts to u.
func (c *Client) TrackUsage(u *storage.TokenUsage) {
	if u == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.usage = u
}

// Query sends [system prompt] + turns and returns the first choice verbatim.
// Failures are returned as a reply-shaped JSON object so callers never need
// a separate error path.
func (c *Client) Query(ctx context.Context, turns []Turn) string {
	content, err := c.complete(ctx, turns)
	if err != nil {
		logger.Warn("model query failed", "model", c.Model(), "error", err)
		return ErrorReply(err)
	}
	return content
}

func (c *Client) complete(ctx context.Context, turns []Turn) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:       c.Model(),
		Messages:    c.messages(turns),
		Temperature: c.cfg.Temperature,
	}
	if c.cfg.JSONMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to get response: %w", err)
	}
	logger.Debug("model response", "model", req.Model, "duration", time.Since(start), "tokens", resp.Usage.TotalTokens)

	if resp.Usage.TotalTokens > 0 {
		c.mu.Lock()
		c.usage.Add(resp.Usage.PromptTokens, resp.Usage.CompletionTokens, resp.Usage.TotalTokens)
		c.mu.Unlock()
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no response choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) messages(turns []Turn) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, len(turns)+1)
	if c.cfg.SystemPrompt != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: c.cfg.SystemPrompt,
		})
	}
	for _, t := range turns {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: t.Role, Content: t.Content})
	}
	return msgs
}

// ErrorReply renders err as the JSON reply the model would have sent.
func ErrorReply(err error) string {
	b, _ := json.Marshal(struct {
		Action  string `json:"action"`
		Content string `json:"content"`
	}{"reply", "Connection Error: " + err.Error()})
	return string(b)
}
