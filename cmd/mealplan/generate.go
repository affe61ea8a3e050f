package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"mealplanner/internal/config"
	"mealplanner/internal/document"
	"mealplanner/internal/generation"
	"mealplanner/internal/mealplan"
	"mealplanner/internal/planner"
)

type generateFlags struct {
	goal      string
	days      int
	diet      string
	cuisine   string
	allergies []string
	calories  string
	output    string
	cacheDir  string
	model     string
	backend   string
	verbose   bool
}

func newRootCmd() *cobra.Command {
	var f generateFlags

	cmd := &cobra.Command{
		Use:           "mealplan",
		Short:         "Generate detailed meal plans using a language model",
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.goal, "goal", planner.DefaultGoal, "Nutritional goal (e.g., weight loss, maintenance, muscle gain)")
	flags.IntVar(&f.days, "days", planner.DefaultDays, "Number of days to plan (1-14)")
	flags.StringVar(&f.diet, "diet", planner.DefaultDietaryPreference, "Dietary preference (vegetarian, non-vegetarian, vegan)")
	flags.StringVar(&f.cuisine, "cuisine", planner.DefaultCuisineStyle, "Cuisine style (indian, mediterranean, asian, ...)")
	flags.StringSliceVar(&f.allergies, "allergies", nil, "Allergies or foods to avoid (repeat or comma-separate)")
	flags.StringVar(&f.calories, "calories", planner.DefaultCalories, "Target calorie range (e.g., '2000-2500' or specific value)")
	flags.StringVar(&f.output, "output", "", "Output filename (optional)")
	flags.StringVar(&f.cacheDir, "cache-dir", "", "Directory to cache the downloaded model")
	flags.StringVar(&f.model, "model", "", "Language model to use for generation (default from MEALPLAN_MODEL)")
	flags.StringVar(&f.backend, "backend", "", "Generation backend: ollama or gemini (default from MEALPLAN_BACKEND)")
	flags.BoolVarP(&f.verbose, "verbose", "v", false, "Log every generation step")

	return cmd
}

func runGenerate(cmd *cobra.Command, f generateFlags) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	level := "warn"
	if f.verbose {
		level = cfg.LogLevel
	}
	config.SetupLogger(level, true, os.Stderr)

	genCfg := cfg.Generation()
	if f.model != "" {
		genCfg.Model = f.model
	}
	if f.cacheDir != "" {
		genCfg.CacheDir = f.cacheDir
	}
	if f.backend != "" {
		genCfg.Backend = f.backend
	}

	guidelines, err := planner.LoadGuidelines(cfg.GuidelinesFile)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.GuidelinesFile).Msg("Could not read cuisine guidelines, using built-in table")
	}

	ctx := cmd.Context()
	stderr := cmd.ErrOrStderr()
	fmt.Fprintln(stderr, dimStyle.Render(fmt.Sprintf("Loading model %s...", genCfg.Model)))

	backend, err := generation.Open(ctx, genCfg, log.Logger)
	if err != nil {
		return err
	}

	svc := mealplan.NewService(guidelines,
		generation.NewClient(backend, log.Logger),
		document.NewStore(cfg.OutputDir, cfg.EmergencyFile),
		mealplan.WithReporter(mealplan.ReporterFunc(func(e mealplan.Event) {
			if line := progressLine(e); line != "" {
				fmt.Fprintln(stderr, line)
			}
		})),
		mealplan.WithLogger(log.Logger.Level(zerolog.GlobalLevel())),
	)

	req := planner.NewPlanRequest(f.goal, f.days, f.diet, f.cuisine, f.allergies, planner.CaloriesRange(f.calories))
	result := svc.Generate(ctx, req, f.output)

	out := cmd.OutOrStdout()
	if result.Status != mealplan.StatusSuccess {
		fmt.Fprintln(out, errorStyle.Render("\nFailed to generate meal plan: "+result.Error))
		return errPlanFailed
	}

	fmt.Fprintln(out, successStyle.Render("\nMeal plan generation complete!"))
	if result.FilePath != nil {
		fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Saved to:"), *result.FilePath)
	} else {
		fmt.Fprintln(out, warnStyle.Render("The plan could not be saved to disk."))
	}
	printPreview(out, result.MealPlan, isTTY(os.Stdout))
	return nil
}

func progressLine(e mealplan.Event) string {
	switch e.Stage {
	case mealplan.StageStarted:
		return titleStyle.Render(fmt.Sprintf("Generating %d-day meal plan...", e.Days))
	case mealplan.StageDay:
		return fmt.Sprintf("  Generating Day %d/%d...", e.Day, e.Days)
	case mealplan.StageGuidance:
		return "  Generating additional sections..."
	default:
		return ""
	}
}
