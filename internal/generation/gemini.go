package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// --- Gemini API Configuration ---
const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel   = "gemini-2.5-flash"
	plainTextMimeType    = "text/plain"
	apiKeyHeader         = "x-goog-api-key"
)

// --- Structs for Gemini API Request/Response ---

type geminiPayload struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiGenerationConfig struct {
	ResponseMimeType string  `json:"responseMimeType"`
	MaxOutputTokens  int     `json:"maxOutputTokens,omitempty"`
	Temperature      float64 `json:"temperature,omitempty"`
	TopP             float64 `json:"topP,omitempty"`
	TopK             int     `json:"topK,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GeminiBackend calls the Gemini generateContent endpoint. The system
// instruction travels in systemInstruction; the user prompt is the only
// content entry.
type GeminiBackend struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewGeminiBackend creates the backend without contacting the API.
func NewGeminiBackend(cfg Config, logger zerolog.Logger) *GeminiBackend {
	baseURL := strings.TrimRight(cfg.GeminiBaseURL, "/")
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}

	return &GeminiBackend{
		baseURL:    baseURL,
		model:      model,
		apiKey:     cfg.GeminiAPIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.With().Str("backend", BackendGemini).Logger(),
	}
}

func (g *GeminiBackend) Name() string  { return BackendGemini }
func (g *GeminiBackend) Model() string { return g.model }

func (g *GeminiBackend) load(ctx context.Context) error {
	if g.apiKey == "" {
		g.logger.Error().Msg("FATAL: GEMINI_API_KEY environment variable is not set.")
		return ErrMissingAPIKey
	}
	return g.Ping(ctx)
}

// Ping fetches the model descriptor, which needs a valid key and model name.
func (g *GeminiBackend) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.modelURL(""), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(apiKeyHeader, g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrModelNotFound, g.model)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API returned non-200 status: %s, Body: %s", resp.Status, string(body))
	}
	return nil
}

// Generate performs a single generateContent call. There is no retry loop.
func (g *GeminiBackend) Generate(ctx context.Context, in Request) (string, error) {
	payload := geminiPayload{
		SystemInstruction: &geminiContent{
			Parts: []geminiPart{{Text: in.Conversation.System}},
		},
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: in.Conversation.User}}},
		},
		GenerationConfig: &geminiGenerationConfig{
			ResponseMimeType: plainTextMimeType,
			MaxOutputTokens:  in.MaxNewTokens,
			Temperature:      in.Params.Temperature,
			TopP:             in.Params.TopP,
			TopK:             in.Params.TopK,
		},
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.modelURL(":generateContent"), bytes.NewBuffer(payloadBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apiKeyHeader, g.apiKey)

	g.logger.Debug().Msg("Calling Gemini API...")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("API returned non-200 status: %s, Body: %s", resp.Status, string(body))
	}

	var geminiResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&geminiResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	// No candidates means the prompt was blocked; an empty candidate is a
	// legitimate empty reply.
	if len(geminiResp.Candidates) == 0 {
		return "", ErrEmptyResponse
	}

	var text strings.Builder
	for _, part := range geminiResp.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	return text.String(), nil
}

// modelURL never carries the key; transport errors quote the URL and can end
// up in API responses.
func (g *GeminiBackend) modelURL(action string) string {
	return g.baseURL + "/models/" + g.model + action
}
