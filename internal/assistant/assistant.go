// Package assistant provides the language-model transport using the OpenAI API.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultTimeout bounds a single model exchange, including polling.
const DefaultTimeout = 30 * time.Second

// DefaultSystemPrompt instructs the model how to collect event details and
// how to emit the finalized record. The collection order listed here
// (child name, time, event name, date, location) is canonical for the model
// and intentionally differs from the local extractor's required-field order.
const DefaultSystemPrompt = `You are Hearth, a warm, efficient family-scheduling assistant.
A parent will describe events and tasks for their kids in everyday language.
Collect the details one question at a time, in this order: child name, time,
event name, date, location. Never re-ask for something the parent already
told you.

When you have enough to schedule, reply with a single line containing only:
{"event": {"childName": "...", "eventName": "...", "date": "yyyy-MM-dd", "time": "...", "location": "...", "notes": "...", "isAllDay": false, "noTimeYet": false}}
with no surrounding prose on that line. Otherwise reply conversationally.`

// ErrNoChoicesReturned indicates the API responded without any completion.
var ErrNoChoicesReturned = errors.New("no choices returned")

// chatService defines the minimal interface for chat completions.
type chatService interface {
	New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// Opts holds configuration for the assistant client.
type Opts struct {
	APIKey       string
	Model        openai.ChatModel
	SystemPrompt string
	Timeout      time.Duration
}

// Option configures the assistant client.
type Option func(*Opts)

// WithAPIKey sets the OpenAI API key.
func WithAPIKey(key string) Option {
	return func(o *Opts) { o.APIKey = key }
}

// WithModel overrides the chat model.
func WithModel(model openai.ChatModel) Option {
	return func(o *Opts) { o.Model = model }
}

// WithSystemPrompt overrides the default system prompt.
func WithSystemPrompt(prompt string) Option {
	return func(o *Opts) { o.SystemPrompt = prompt }
}

// WithTimeout overrides the per-exchange timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *Opts) { o.Timeout = d }
}

// Client wraps the OpenAI chat completion service for conversational turns.
type Client struct {
	chat         chatService
	model        openai.ChatModel
	systemPrompt string
	timeout      time.Duration
}

// NewClient initializes a new assistant client. The API key comes from
// options or the OPENAI_API_KEY environment variable.
func NewClient(opts ...Option) (*Client, error) {
	cfg := Opts{
		Model:        openai.ChatModelGPT4oMini,
		SystemPrompt: DefaultSystemPrompt,
		Timeout:      DefaultTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}

	cli := openai.NewClient(option.WithAPIKey(cfg.APIKey))
	slog.Debug("assistant.NewClient: client created", "model", cfg.Model, "timeout", cfg.Timeout)
	return &Client{
		chat:         &cli.Chat.Completions,
		model:        cfg.Model,
		systemPrompt: cfg.SystemPrompt,
		timeout:      cfg.Timeout,
	}, nil
}

// SendMessage sends one natural-language user turn on the given thread and
// returns the assistant's reply text. The call is bounded by the client
// timeout; there is no mid-flight cancellation beyond the context.
func (c *Client) SendMessage(ctx context.Context, threadID, text string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model: c.model,
		User:  openai.String(threadID),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(c.systemPrompt),
			openai.UserMessage(text),
		},
	}

	resp, err := c.chat.New(ctx, params)
	if err != nil {
		slog.Error("assistant.SendMessage: completion failed", "error", err, "threadID", threadID)
		return "", err
	}
	if len(resp.Choices) == 0 {
		slog.Error("assistant.SendMessage: empty choices", "threadID", threadID)
		return "", ErrNoChoicesReturned
	}

	reply := resp.Choices[0].Message.Content
	slog.Debug("assistant.SendMessage: reply received", "threadID", threadID, "replyLength", len(reply))
	return reply, nil
}
