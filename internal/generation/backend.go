package generation

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const (
	BackendOllama = "ollama"
	BackendGemini = "gemini"
)

// Config selects and configures a backend.
type Config struct {
	Backend string
	Model   string

	OllamaHost string
	// CacheDir is where a locally started Ollama daemon keeps its model weights.
	CacheDir string

	GeminiAPIKey  string
	GeminiBaseURL string

	// Timeout bounds a single backend call. Zero leaves it to the backend.
	Timeout time.Duration
}

// Open builds the configured backend and makes sure the model is usable.
// Any failure is a *ModelLoadError and should abort startup.
func Open(ctx context.Context, cfg Config, logger zerolog.Logger) (Backend, error) {
	var backend interface {
		Backend
		load(ctx context.Context) error
	}

	switch cfg.Backend {
	case BackendOllama, "":
		backend = NewOllamaBackend(cfg, logger)
	case BackendGemini:
		backend = NewGeminiBackend(cfg, logger)
	default:
		return nil, &ModelLoadError{
			Backend: cfg.Backend,
			Model:   cfg.Model,
			Cause:   fmt.Errorf("%w %q", ErrUnknownBackend, cfg.Backend),
		}
	}

	logger.Info().Str("backend", backend.Name()).Str("model", backend.Model()).Msgf("Loading model %s...", backend.Model())

	if err := backend.load(ctx); err != nil {
		return nil, &ModelLoadError{Backend: backend.Name(), Model: backend.Model(), Cause: err}
	}

	logger.Info().Str("backend", backend.Name()).Str("model", backend.Model()).Msg("Model ready")
	return backend, nil
}
