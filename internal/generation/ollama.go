package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
)

const (
	defaultOllamaHost  = "http://127.0.0.1:11434"
	defaultOllamaModel = "tinyllama"
)

// --- Ollama API payloads ---

type ollamaOptions struct {
	NumPredict    int     `json:"num_predict,omitempty"`
	NumCtx        int     `json:"num_ctx,omitempty"`
	Temperature   float64 `json:"temperature,omitempty"`
	TopP          float64 `json:"top_p,omitempty"`
	TopK          int     `json:"top_k,omitempty"`
	RepeatPenalty float64 `json:"repeat_penalty,omitempty"`
}

type ollamaGenerateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Raw     bool           `json:"raw"`
	Options *ollamaOptions `json:"options,omitempty"`
}

type ollamaGenerateResponse struct {
	Model     string `json:"model"`
	Response  string `json:"response"`
	Done      bool   `json:"done"`
	EvalCount int    `json:"eval_count,omitempty"`
}

type ollamaModelRequest struct {
	Model  string `json:"model"`
	Stream bool   `json:"stream"`
}

type ollamaPullResponse struct {
	Status string `json:"status"`
}

type ollamaError struct {
	Error string `json:"error"`
}

// OllamaBackend talks to a local or remote Ollama server. The chat template is
// sent verbatim in raw mode so the model sees exactly the formatted prompt.
type OllamaBackend struct {
	baseURL    string
	model      string
	cacheDir   string
	httpClient *http.Client
	// pullClient has no timeout; model downloads are bounded by ctx only.
	pullClient *http.Client
	logger     zerolog.Logger
}

// NewOllamaBackend creates the backend without contacting the server.
func NewOllamaBackend(cfg Config, logger zerolog.Logger) *OllamaBackend {
	baseURL := strings.TrimRight(cfg.OllamaHost, "/")
	if baseURL == "" {
		baseURL = defaultOllamaHost
	}
	model := cfg.Model
	if model == "" {
		model = defaultOllamaModel
	}

	return &OllamaBackend{
		baseURL:    baseURL,
		model:      model,
		cacheDir:   cfg.CacheDir,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		pullClient: &http.Client{},
		logger:     logger.With().Str("backend", BackendOllama).Logger(),
	}
}

func (o *OllamaBackend) Name() string  { return BackendOllama }
func (o *OllamaBackend) Model() string { return o.model }

// Ping checks that the Ollama server answers on its root endpoint.
func (o *OllamaBackend) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: unexpected status %s", ErrBackendUnavailable, resp.Status)
	}
	return nil
}

// Generate runs one non-streaming completion.
func (o *OllamaBackend) Generate(ctx context.Context, req Request) (string, error) {
	payload := ollamaGenerateRequest{
		Model:  o.model,
		Prompt: req.Conversation.Formatted(),
		Stream: false,
		Raw:    true,
		Options: &ollamaOptions{
			NumPredict:    req.MaxNewTokens,
			NumCtx:        ContextBudget,
			Temperature:   req.Params.Temperature,
			TopP:          req.Params.TopP,
			TopK:          req.Params.TopK,
			RepeatPenalty: req.Params.RepetitionPenalty,
		},
	}

	var out ollamaGenerateResponse
	if err := o.postJSON(ctx, o.httpClient, "/api/generate", payload, &out); err != nil {
		return "", err
	}
	return out.Response, nil
}

// load makes the model usable: start a local daemon if needed, then pull the
// model when the server does not have it yet.
func (o *OllamaBackend) load(ctx context.Context) error {
	if err := o.Ping(ctx); err != nil {
		if !o.isLoopback() {
			return err
		}
		o.logger.Warn().Err(err).Msg("Ollama is not running, starting a local server")
		if err := o.startLocal(ctx); err != nil {
			return err
		}
	}

	err := o.postJSON(ctx, o.httpClient, "/api/show", ollamaModelRequest{Model: o.model}, nil)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrModelNotFound) {
		return err
	}

	o.logger.Info().Msgf("Model %s not present, pulling it", o.model)
	var pulled ollamaPullResponse
	if err := o.postJSON(ctx, o.pullClient, "/api/pull", ollamaModelRequest{Model: o.model}, &pulled); err != nil {
		return fmt.Errorf("pull %s: %w", o.model, err)
	}
	if pulled.Status != "success" {
		return fmt.Errorf("pull %s: unexpected status %q", o.model, pulled.Status)
	}
	return nil
}

func (o *OllamaBackend) isLoopback() bool {
	u, err := url.Parse(o.baseURL)
	if err != nil {
		return false
	}
	host := u.Hostname()
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// postJSON sends body to path and decodes the response into out (if non-nil).
func (o *OllamaBackend) postJSON(ctx context.Context, client *http.Client, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrModelNotFound, o.model)
	}
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		var apiErr ollamaError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("ollama %s: %s", resp.Status, apiErr.Error)
		}
		return fmt.Errorf("ollama returned non-200 status: %s, Body: %s", resp.Status, string(raw))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
