package generation

import "errors"

// Sentinel causes, checked with errors.Is.
var (
	ErrBudgetExhausted    = errors.New("prompt leaves no room for generated tokens")
	ErrEmptyResponse      = errors.New("backend returned no content")
	ErrBackendUnavailable = errors.New("generation backend is not reachable")
	ErrModelNotFound      = errors.New("model not found")
	ErrMissingAPIKey      = errors.New("GEMINI_API_KEY is not set")
	ErrUnknownBackend     = errors.New("unknown generation backend")
)

// GenerationError is returned when a single generation call fails. It is
// never retried; the caller aborts the whole plan.
type GenerationError struct {
	Model string
	Cause error
}

func (e *GenerationError) Error() string {
	return "text generation failed (" + e.Model + "): " + e.Cause.Error()
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// ModelLoadError is returned by Open when the backend or model cannot be made
// ready at startup. Callers treat it as fatal.
type ModelLoadError struct {
	Backend string
	Model   string
	Cause   error
}

func (e *ModelLoadError) Error() string {
	return "could not load model " + e.Model + " on " + e.Backend + ": " + e.Cause.Error()
}

func (e *ModelLoadError) Unwrap() error {
	return e.Cause
}
