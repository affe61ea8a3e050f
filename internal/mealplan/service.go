/*
Package mealplan runs one meal plan request end to end: compose the prompts,
generate every section in order, assemble the document and store it.
*/
package mealplan

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"mealplanner/internal/document"
	"mealplanner/internal/planner"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Generator turns one prompt into text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Persister stores an assembled document.
type Persister interface {
	Persist(doc string, meta *document.Metadata, filename string) (string, error)
}

// Result is what callers get back for every request. On error MealPlan and
// FilePath are empty and Error holds the message.
type Result struct {
	Status   Status             `json:"status"`
	MealPlan string             `json:"meal_plan,omitempty"`
	FilePath *string            `json:"file_path,omitempty"`
	Metadata *document.Metadata `json:"metadata"`
	Error    string             `json:"error,omitempty"`
}

// Service generates meal plans against one shared generator. Requests are
// serialized.
type Service struct {
	guidelines planner.GuidelineTable
	generator  Generator
	store      Persister
	reporter   Reporter
	now        func() time.Time
	logger     zerolog.Logger

	mu sync.Mutex
}

type Option func(*Service)

func WithReporter(r Reporter) Option {
	return func(s *Service) {
		if r != nil {
			s.reporter = r
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func NewService(guidelines planner.GuidelineTable, generator Generator, store Persister, opts ...Option) *Service {
	s := &Service{
		guidelines: guidelines,
		generator:  generator,
		store:      store,
		reporter:   nopReporter{},
		now:        time.Now,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate produces a plan for req and saves it under filename (empty for the
// default name). A generation failure aborts the whole request with no file
// and no partial document; a persistence failure only loses the file path.
func (s *Service) Generate(ctx context.Context, req planner.PlanRequest, filename string) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	req = req.Normalize()
	logger := s.logger.With().
		Str("goal", req.Goal).
		Int("days", req.Days).
		Str("cuisine_style", req.CuisineStyle).
		Str("dietary_preference", req.DietaryPreference).
		Logger()

	start := time.Now()
	logger.Info().Msgf("Generating %d-day meal plan for %s with %s %s cuisine...", req.Days, req.Goal, req.CuisineStyle, req.DietaryPreference)
	s.reporter.Report(Event{Stage: StageStarted, Days: req.Days})

	doc, err := s.generate(ctx, req, logger)
	if err != nil {
		msg := fmt.Sprintf("An error occurred during meal plan generation: %v", err)
		logger.Error().Err(err).Msg("Meal plan generation failed")
		plansTotal.WithLabelValues(string(StatusError)).Inc()
		s.reporter.Report(Event{Stage: StageFailed, Days: req.Days, Message: msg})
		return Result{
			Status:   StatusError,
			Metadata: document.ErrorMetadata(req),
			Error:    msg,
		}
	}
	generationSeconds.Observe(time.Since(start).Seconds())

	meta := document.NewMetadata(req, s.generator.Model(), s.now())
	result := Result{Status: StatusSuccess, MealPlan: doc, Metadata: meta}

	path, err := s.store.Persist(doc, meta, filename)
	if err != nil {
		persistenceFallbacks.Inc()
		var perr *document.PersistenceError
		if errors.As(err, &perr) && perr.FallbackPath != "" {
			logger.Warn().Err(err).Str("file_path", perr.FallbackPath).Msg("Emergency backup saved")
		} else {
			logger.Error().Err(err).Msg("Could not save meal plan or backup file")
		}
	}
	if path != "" {
		result.FilePath = &path
		logger.Info().Str("file_path", path).Msgf("Meal plan saved to %s", path)
	}

	plansTotal.WithLabelValues(string(StatusSuccess)).Inc()
	s.reporter.Report(Event{Stage: StageSaved, Days: req.Days, Message: path})
	return result
}

func (s *Service) generate(ctx context.Context, req planner.PlanRequest, logger zerolog.Logger) (string, error) {
	var (
		dayTexts []string
		guidance string
	)

	for _, prompt := range planner.Compose(req, s.guidelines) {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		switch prompt.Kind {
		case planner.PromptDay:
			logger.Info().Msgf("Generating Day %d/%d...", prompt.Day, req.Days)
			s.reporter.Report(Event{Stage: StageDay, Day: prompt.Day, Days: req.Days})
		case planner.PromptGuidance:
			logger.Info().Msg("Generating additional sections...")
			s.reporter.Report(Event{Stage: StageGuidance, Days: req.Days})
		}

		text, err := s.generator.Generate(ctx, prompt.Text)
		if err != nil {
			return "", err
		}

		if prompt.Kind == planner.PromptDay {
			dayTexts = append(dayTexts, text)
		} else {
			guidance = text
		}
	}

	return document.Assemble(dayTexts, guidance, req, s.now()), nil
}
