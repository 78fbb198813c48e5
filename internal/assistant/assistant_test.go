package assistant

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// mockChatService records the params it receives and returns a canned
// completion.
type mockChatService struct {
	resp       *openai.ChatCompletion
	err        error
	lastParams openai.ChatCompletionNewParams
}

func (m *mockChatService) New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error) {
	m.lastParams = params
	return m.resp, m.err
}

func newTestClient(chat chatService) *Client {
	return &Client{
		chat:         chat,
		model:        openai.ChatModelGPT4oMini,
		systemPrompt: DefaultSystemPrompt,
		timeout:      time.Second,
	}
}

func TestSendMessage(t *testing.T) {
	mock := &mockChatService{
		resp: &openai.ChatCompletion{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Content: "What day is the practice?"}},
			},
		},
	}
	client := newTestClient(mock)

	reply, err := client.SendMessage(context.Background(), "t_123", "soccer practice at 5pm")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if reply != "What day is the practice?" {
		t.Errorf("unexpected reply: %q", reply)
	}

	if got := mock.lastParams.Model; got != openai.ChatModelGPT4oMini {
		t.Errorf("unexpected model: %v", got)
	}
	if got := mock.lastParams.User.Or(""); got != "t_123" {
		t.Errorf("expected thread ID as user, got %q", got)
	}
	// System prompt plus the single user turn.
	if n := len(mock.lastParams.Messages); n != 2 {
		t.Errorf("expected 2 messages, got %d", n)
	}
}

func TestSendMessageNoChoices(t *testing.T) {
	client := newTestClient(&mockChatService{resp: &openai.ChatCompletion{}})

	_, err := client.SendMessage(context.Background(), "t_123", "hello")
	if !errors.Is(err, ErrNoChoicesReturned) {
		t.Errorf("expected ErrNoChoicesReturned, got %v", err)
	}
}

func TestSendMessagePropagatesTransportError(t *testing.T) {
	wantErr := errors.New("connection refused")
	client := newTestClient(&mockChatService{err: wantErr})

	_, err := client.SendMessage(context.Background(), "t_123", "hello")
	if !errors.Is(err, wantErr) {
		t.Errorf("expected transport error passthrough, got %v", err)
	}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := NewClient(); err == nil {
		t.Error("expected error without an API key")
	}
}

func TestNewClientOptions(t *testing.T) {
	client, err := NewClient(
		WithAPIKey("test-key"),
		WithModel(openai.ChatModelGPT4o),
		WithSystemPrompt("custom prompt"),
		WithTimeout(5*time.Second),
	)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if client.model != openai.ChatModelGPT4o {
		t.Errorf("unexpected model: %v", client.model)
	}
	if client.systemPrompt != "custom prompt" {
		t.Errorf("unexpected system prompt: %q", client.systemPrompt)
	}
	if client.timeout != 5*time.Second {
		t.Errorf("unexpected timeout: %v", client.timeout)
	}
}
