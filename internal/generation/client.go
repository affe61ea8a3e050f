/*
Package generation wraps the text-generation backend behind one narrow
capability: turn a prompt into text. The model itself is an external
collaborator; this package only formats the call, enforces the token budget
and classifies failures.
*/
package generation

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Request is what a backend receives for one call.
type Request struct {
	Conversation Conversation
	Params       Params
	// MaxNewTokens is the output budget left after the prompt.
	MaxNewTokens int
}

// Backend is a text-generation provider. Implementations must be safe to
// call from one goroutine at a time; they do not retry.
type Backend interface {
	// Name identifies the backend ("ollama", "gemini").
	Name() string
	// Model is the model identifier recorded in plan metadata.
	Model() string
	// Generate blocks until the model returns text or fails.
	Generate(ctx context.Context, req Request) (string, error)
	// Ping reports whether the backend is currently reachable.
	Ping(ctx context.Context) error
}

// Client is the Generation Client: one synchronous backend call per prompt.
type Client struct {
	backend Backend
	params  Params
	logger  zerolog.Logger
}

// NewClient builds a client with the default sampling policy.
func NewClient(backend Backend, logger zerolog.Logger) *Client {
	return &Client{
		backend: backend,
		params:  DefaultParams(),
		logger:  logger.With().Str("component", "generation").Str("model", backend.Model()).Logger(),
	}
}

// Model returns the backend's model identifier.
func (c *Client) Model() string {
	return c.backend.Model()
}

// Params returns the sampling policy in use.
func (c *Client) Params() Params {
	return c.params
}

// Ping checks the backend.
func (c *Client) Ping(ctx context.Context) error {
	return c.backend.Ping(ctx)
}

// Generate wraps prompt in the chat template, computes the output budget and
// calls the backend once. Every failure comes back as *GenerationError; an
// empty reply is not a failure and is returned as is.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	conv := NewConversation(prompt)

	budget, err := OutputBudget(EstimateTokens(conv.Formatted()))
	if err != nil {
		return "", &GenerationError{Model: c.backend.Model(), Cause: err}
	}

	c.logger.Info().Int("max_new_tokens", budget).Msgf("Generating content (max %d new tokens)...", budget)

	start := time.Now()
	text, err := c.backend.Generate(ctx, Request{
		Conversation: conv,
		Params:       c.params,
		MaxNewTokens: budget,
	})
	if err != nil {
		c.logger.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("Error during text generation")
		return "", &GenerationError{Model: c.backend.Model(), Cause: err}
	}

	c.logger.Debug().Dur("elapsed", time.Since(start)).Int("chars", len(text)).Msg("Generation finished")
	return text, nil
}
