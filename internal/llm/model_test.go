package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/raphaelgruber/globotrack/internal/config"
	"github.com/raphaelgruber/globotrack/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type stubModel struct {
	resp     *llms.ContentResponse
	err      error
	messages []llms.MessageContent
}

func (s *stubModel) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	s.messages = messages
	return s.resp, s.err
}

func (s *stubModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, s, prompt, options...)
}

func TestIsFatalAPIError(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		fatal bool
	}{
		{"nil error", nil, false},
		{"generic error", errors.New("connection reset"), false},
		{"credit balance", errors.New("insufficient credit balance"), true},
		{"rate limit", errors.New("rate limit exceeded"), true},
		{"quota exceeded", errors.New("googleapi: Error 429: Quota exceeded for model"), true},
		{"billing issue", errors.New("billing account inactive"), true},
		{"invalid api key", errors.New("invalid api key"), true},
		{"gemini bad key", errors.New("API key not valid. Please pass a valid API key."), true},
		{"unauthorized", errors.New("unauthorized request"), true},
		{"401 status", errors.New("HTTP 401: not allowed"), true},
		{"403 status", errors.New("HTTP 403: forbidden"), true},
		{"wrapped error", fmt.Errorf("chat: %w", errors.New("credit balance too low")), true},
		{"404 not fatal", errors.New("HTTP 404: not found"), false},
		{"timeout not fatal", errors.New("context deadline exceeded"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := isFatalAPIError(tt.err)
			if got != tt.fatal {
				t.Errorf("isFatalAPIError(%v) = %v, want %v", tt.err, got, tt.fatal)
			}
		})
	}
}

func TestWrapFatalError(t *testing.T) {
	t.Run("wraps fatal error", func(t *testing.T) {
		err := errors.New("invalid api key provided")
		wrapped := wrapFatalError(err)
		assert.ErrorIs(t, wrapped, ErrFatalAPI)
		assert.ErrorIs(t, wrapped, err)
	})

	t.Run("passes through non-fatal error", func(t *testing.T) {
		err := errors.New("network timeout")
		result := wrapFatalError(err)
		assert.NotErrorIs(t, result, ErrFatalAPI)
		assert.Equal(t, err, result)
	})

	t.Run("nil error", func(t *testing.T) {
		assert.NoError(t, wrapFatalError(nil))
	})
}

func TestGenerateRecordsUsage(t *testing.T) {
	stub := &stubModel{resp: &llms.ContentResponse{Choices: []*llms.ContentChoice{{
		Content:        "namaste",
		GenerationInfo: map[string]any{"input_tokens": int32(12), "output_tokens": int32(3)},
	}}}}
	mc := metrics.NewCollector()
	m := New(stub, "test-model", mc)

	out, err := m.GenerateWithSystem(context.Background(), metrics.OpChat, "system", "hello")
	require.NoError(t, err)
	assert.Equal(t, "namaste", out)

	require.Len(t, stub.messages, 2)
	assert.Equal(t, llms.ChatMessageTypeSystem, stub.messages[0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, stub.messages[1].Role)

	snap := mc.Snapshot()
	require.NotNil(t, snap.Chat)
	assert.Equal(t, int64(1), snap.Chat.Count)
	require.NotNil(t, snap.Chat.TotalInputTokens)
	assert.Equal(t, int64(12), *snap.Chat.TotalInputTokens)
	assert.Equal(t, int64(3), *snap.Chat.TotalOutputTokens)
}

func TestGenerateErrors(t *testing.T) {
	t.Run("no choices", func(t *testing.T) {
		m := New(&stubModel{resp: &llms.ContentResponse{}}, "test-model", nil)
		_, err := m.Generate(context.Background(), metrics.OpChat, nil)
		require.Error(t, err)
	})

	t.Run("fatal provider error", func(t *testing.T) {
		m := New(&stubModel{err: errors.New("quota exceeded")}, "test-model", nil)
		_, err := m.Generate(context.Background(), metrics.OpRouteSearch, nil)
		assert.ErrorIs(t, err, ErrFatalAPI)
	})
}

func TestNewModelRequiresKeys(t *testing.T) {
	ctx := context.Background()
	for _, p := range []config.Provider{config.ProviderGoogleAI, config.ProviderOpenAI, config.ProviderAnthropic} {
		t.Run(string(p), func(t *testing.T) {
			_, err := NewModel(ctx, config.Config{LLMProvider: p, LLMModel: "m"}, nil)
			require.Error(t, err)
		})
	}

	_, err := NewModel(ctx, config.Config{LLMProvider: "carrier-pigeon"}, nil)
	require.ErrorContains(t, err, "unsupported LLM provider")
}

func TestTokenUsage(t *testing.T) {
	in, out := tokenUsage(map[string]any{"PromptTokens": 40, "CompletionTokens": float64(9)})
	assert.Equal(t, int64(40), in)
	assert.Equal(t, int64(9), out)

	in, out = tokenUsage(nil)
	assert.Zero(t, in)
	assert.Zero(t, out)
}
