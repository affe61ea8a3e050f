package generation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBackend struct {
	model    string
	text     string
	err      error
	requests []Request
}

func (s *stubBackend) Name() string                  { return "stub" }
func (s *stubBackend) Model() string                 { return s.model }
func (s *stubBackend) Ping(ctx context.Context) error { return nil }
func (s *stubBackend) Generate(ctx context.Context, req Request) (string, error) {
	s.requests = append(s.requests, req)
	return s.text, s.err
}

func TestConversationFormatted(t *testing.T) {
	conv := NewConversation("Plan my meals")
	got := conv.Formatted()

	assert.True(t, strings.HasPrefix(got, "<|system|>You are a professional nutritionist and chef."))
	assert.Contains(t, got, "</s><|user|>Plan my meals</s>")
	assert.True(t, strings.HasSuffix(got, "<|assistant|>"))
}

func TestOutputBudget(t *testing.T) {
	tests := []struct {
		name    string
		input   int
		want    int
		wantErr bool
	}{
		{"short prompt is capped", 100, MaxNewTokens, false},
		{"long prompt shrinks budget", 1000, ContextBudget - 1000, false},
		{"one token left", ContextBudget - 1, 1, false},
		{"window full", ContextBudget, 0, true},
		{"truncated overflow", ContextBudget * 3, 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := OutputBudget(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrBudgetExhausted)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	// 2 words, 11 chars -> (2 + 2) / 2
	assert.Equal(t, 2, EstimateTokens("hello world"))
}

func TestClientGenerate(t *testing.T) {
	backend := &stubBackend{model: "stub-model", text: "Breakfast: oats"}
	client := NewClient(backend, zerolog.Nop())

	got, err := client.Generate(context.Background(), "Day 1 please")
	require.NoError(t, err)
	assert.Equal(t, "Breakfast: oats", got)

	require.Len(t, backend.requests, 1)
	req := backend.requests[0]
	assert.Equal(t, SystemInstruction, req.Conversation.System)
	assert.Equal(t, "Day 1 please", req.Conversation.User)
	assert.Equal(t, MaxNewTokens, req.MaxNewTokens)
	assert.Equal(t, DefaultParams(), req.Params)
}

func TestClientGenerate_BackendFailure(t *testing.T) {
	cause := errors.New("CUDA out of memory")
	client := NewClient(&stubBackend{model: "m", err: cause}, zerolog.Nop())

	_, err := client.Generate(context.Background(), "prompt")
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "m", genErr.Model)
}

func TestClientGenerate_EmptyTextPassesThrough(t *testing.T) {
	for _, reply := range []string{"", "  \n"} {
		client := NewClient(&stubBackend{model: "m", text: reply}, zerolog.Nop())
		text, err := client.Generate(context.Background(), "prompt")
		require.NoError(t, err)
		assert.Equal(t, reply, text)
	}
}

func TestClientGenerate_PromptTooLong(t *testing.T) {
	backend := &stubBackend{model: "m", text: "never"}
	client := NewClient(backend, zerolog.Nop())

	_, err := client.Generate(context.Background(), strings.Repeat("lentil curry ", 2000))
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.ErrorIs(t, err, ErrBudgetExhausted)
	assert.Empty(t, backend.requests, "backend must not be called")
}

func TestOllamaGenerate(t *testing.T) {
	var got ollamaGenerateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(ollamaGenerateResponse{Response: "Lunch: dal", Done: true})
	}))
	defer srv.Close()

	backend := NewOllamaBackend(Config{OllamaHost: srv.URL, Model: "tinyllama"}, zerolog.Nop())
	text, err := backend.Generate(context.Background(), Request{
		Conversation: NewConversation("Day 2"),
		Params:       DefaultParams(),
		MaxNewTokens: 900,
	})
	require.NoError(t, err)
	assert.Equal(t, "Lunch: dal", text)

	assert.Equal(t, "tinyllama", got.Model)
	assert.True(t, got.Raw)
	assert.False(t, got.Stream)
	assert.Equal(t, NewConversation("Day 2").Formatted(), got.Prompt)
	require.NotNil(t, got.Options)
	assert.Equal(t, 900, got.Options.NumPredict)
	assert.Equal(t, ContextBudget, got.Options.NumCtx)
	assert.Equal(t, 100, got.Options.TopK)
	assert.InDelta(t, 1.3, got.Options.RepeatPenalty, 1e-9)
}

func TestOllamaGenerate_EmptyReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ollamaGenerateResponse{Response: "", Done: true})
	}))
	defer srv.Close()

	backend := NewOllamaBackend(Config{OllamaHost: srv.URL}, zerolog.Nop())
	text, err := backend.Generate(context.Background(), Request{Conversation: NewConversation("x")})
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestOllamaGenerate_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"model runner crashed"}`))
	}))
	defer srv.Close()

	backend := NewOllamaBackend(Config{OllamaHost: srv.URL}, zerolog.Nop())
	_, err := backend.Generate(context.Background(), Request{Conversation: NewConversation("x")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model runner crashed")

	srv.Close()
	_, err = backend.Generate(context.Background(), Request{Conversation: NewConversation("x")})
	assert.ErrorIs(t, err, ErrBackendUnavailable)
}

func TestOpenOllama_PullsMissingModel(t *testing.T) {
	var pulled atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			_, _ = w.Write([]byte("Ollama is running"))
		case "/api/show":
			if !pulled.Load() {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"error":"model not found"}`))
				return
			}
			_, _ = w.Write([]byte(`{}`))
		case "/api/pull":
			pulled.Store(true)
			_, _ = w.Write([]byte(`{"status":"success"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	backend, err := Open(context.Background(), Config{Backend: BackendOllama, OllamaHost: srv.URL, Model: "tinyllama"}, zerolog.Nop())
	require.NoError(t, err)
	assert.True(t, pulled.Load())
	assert.Equal(t, "tinyllama", backend.Model())
}

func TestOpen_Failures(t *testing.T) {
	_, err := Open(context.Background(), Config{Backend: "llamacpp"}, zerolog.Nop())
	var loadErr *ModelLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.ErrorIs(t, err, ErrUnknownBackend)

	_, err = Open(context.Background(), Config{Backend: BackendGemini}, zerolog.Nop())
	require.ErrorAs(t, err, &loadErr)
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	// Non-loopback host that does not resolve: no local start attempt.
	_, err = Open(context.Background(), Config{Backend: BackendOllama, OllamaHost: "http://ollama.invalid:11434"}, zerolog.Nop())
	require.ErrorAs(t, err, &loadErr)
	assert.ErrorIs(t, err, ErrBackendUnavailable)
}

func TestGeminiGenerate(t *testing.T) {
	var got geminiPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-goog-api-key"))
		assert.Empty(t, r.URL.RawQuery)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Dinner: "},{"text":"paneer tikka"}]}}]}`))
	}))
	defer srv.Close()

	backend := NewGeminiBackend(Config{GeminiBaseURL: srv.URL, GeminiAPIKey: "secret", Model: "gemini-test"}, zerolog.Nop())
	text, err := backend.Generate(context.Background(), Request{
		Conversation: NewConversation("Day 3"),
		Params:       DefaultParams(),
		MaxNewTokens: 1200,
	})
	require.NoError(t, err)
	assert.Equal(t, "Dinner: paneer tikka", text)

	require.NotNil(t, got.SystemInstruction)
	assert.Equal(t, SystemInstruction, got.SystemInstruction.Parts[0].Text)
	require.Len(t, got.Contents, 1)
	assert.Equal(t, "Day 3", got.Contents[0].Parts[0].Text)
	assert.Equal(t, 1200, got.GenerationConfig.MaxOutputTokens)
}

func TestGeminiGenerate_NoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	backend := NewGeminiBackend(Config{GeminiBaseURL: srv.URL, GeminiAPIKey: "k"}, zerolog.Nop())
	_, err := backend.Generate(context.Background(), Request{Conversation: NewConversation("x")})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestGemini_KeyNotInErrors(t *testing.T) {
	const key = "SECRET-KEY-123"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := srv.URL
	srv.Close()

	backend := NewGeminiBackend(Config{GeminiBaseURL: baseURL, GeminiAPIKey: key}, zerolog.Nop())

	err := backend.Ping(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBackendUnavailable)
	assert.NotContains(t, err.Error(), key)

	_, err = NewClient(backend, zerolog.Nop()).Generate(context.Background(), "Day 1")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), key)
}
