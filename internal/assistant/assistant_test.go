package assistant

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type fakeModel struct {
	mu      sync.Mutex
	answer  string
	err     error
	prompts []string
	block   chan struct{}
	entered chan struct{}
}

func (m *fakeModel) GenerateContent(
	ctx context.Context,
	messages []llms.MessageContent,
	_ ...llms.CallOption,
) (*llms.ContentResponse, error) {
	var prompt string
	for _, message := range messages {
		for _, part := range message.Parts {
			if text, ok := part.(llms.TextContent); ok {
				prompt += text.Text
			}
		}
	}
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
	if m.entered != nil {
		close(m.entered)
	}
	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: m.answer}}}, nil
}

func (m *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func TestAskWithoutModel(t *testing.T) {
	a := New(nil, Options{})
	assert.False(t, a.Configured())
	assert.Equal(t, MissingConfigText, a.Ask(context.Background(), "oi"))
}

func TestNewGoogleAIWithoutKey(t *testing.T) {
	model, err := NewGoogleAI(context.Background(), "", "gemini-2.0-flash")
	require.NoError(t, err)
	assert.Nil(t, model)
}

func TestAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("wraps prompt and returns answer", func(t *testing.T) {
		m := &fakeModel{answer: "Divida em tarefas menores."}
		a := New(m, Options{})
		assert.Equal(t, "Divida em tarefas menores.", a.Ask(ctx, "como organizar?"))
		require.Len(t, m.prompts, 1)
		assert.Contains(t, m.prompts[0], `Pergunta do usuário: "como organizar?"`)
	})

	t.Run("custom template", func(t *testing.T) {
		m := &fakeModel{answer: "ok"}
		a := New(m, Options{PromptTemplate: "Q: " + PromptPlaceholder})
		a.Ask(ctx, "x")
		assert.Equal(t, "Q: x", m.prompts[0])
	})

	t.Run("empty answer falls back", func(t *testing.T) {
		a := New(&fakeModel{answer: "  "}, Options{})
		assert.Equal(t, EmptyAnswerText, a.Ask(ctx, "x"))
	})

	t.Run("error falls back", func(t *testing.T) {
		a := New(&fakeModel{err: errors.New("quota exceeded")}, Options{})
		assert.Equal(t, FailureText, a.Ask(ctx, "x"))
	})
}

func TestAskSingleOutstandingCall(t *testing.T) {
	m := &fakeModel{answer: "primeira", block: make(chan struct{}), entered: make(chan struct{})}
	a := New(m, Options{})

	done := make(chan string)
	go func() { done <- a.Ask(context.Background(), "um") }()
	<-m.entered

	assert.Equal(t, BusyText, a.Ask(context.Background(), "dois"))
	close(m.block)
	assert.Equal(t, "primeira", <-done)
	assert.Len(t, m.prompts, 1)
}
