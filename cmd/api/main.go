package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"mealplanner/internal/config"
	"mealplanner/internal/document"
	"mealplanner/internal/generation"
	"mealplanner/internal/mealplan"
	"mealplanner/internal/planner"
	"mealplanner/internal/server"
	"mealplanner/internal/utility"
)

const shutdownTimeout = 5 * time.Second

func gracefulShutdown(ctx context.Context, apiServer *http.Server) error {
	// Wait for the interrupt signal.
	<-ctx.Done()

	log.Info().Msg("shutting down gracefully, press Ctrl+C again to force")

	// The server has 5 seconds to finish the request it is currently handling.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
		return err
	}

	log.Info().Msg("Server exiting")
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Fatal error: could not load configuration")
	}
	config.SetupLogger(cfg.LogLevel, cfg.LogPretty, nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	guidelines, err := planner.LoadGuidelines(cfg.GuidelinesFile)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.GuidelinesFile).Msg("Could not read cuisine guidelines, using built-in table")
	}
	log.Info().Strs("cuisines", guidelines.Cuisines()).Msg("Cuisine guidelines loaded")

	// A backend that cannot be loaded aborts startup.
	backend, err := generation.Open(ctx, cfg.Generation(), log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Fatal error: could not load the generation model")
	}
	client := generation.NewClient(backend, log.Logger)
	log.Info().Interface("params", client.Params()).Msg("Generation parameters")

	hub := utility.NewProgressHub()
	svc := mealplan.NewService(guidelines, client,
		document.NewStore(cfg.OutputDir, cfg.EmergencyFile),
		mealplan.WithReporter(hub),
		mealplan.WithLogger(log.Logger),
	)

	apiServer := server.NewServer(server.Options{
		Port:      cfg.Port,
		Plans:     svc,
		Backend:   client,
		Hub:       hub,
		OutputDir: cfg.OutputDir,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", apiServer.Addr).Msg("Meal plan API listening")
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return gracefulShutdown(gctx, apiServer)
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("http server error")
	}
	log.Info().Msg("Graceful shutdown complete.")
}
