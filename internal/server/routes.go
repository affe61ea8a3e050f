package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"mealplanner/internal/document"
	"mealplanner/internal/mealplan"
	"mealplanner/internal/planner"
	"mealplanner/internal/utility"
)

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:       300,
	}))

	e.Use(LoggerMiddleware)

	e.POST("/generate_meal_plan", s.generateMealPlanHandler)
	e.GET("/health", s.healthHandler)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/ws/progress", s.hub.ServeWS)

	return e
}

// LoggerMiddleware tags every request with an id and stores a child logger
// under "logger".
func LoggerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := c.Request().Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Response().Header().Set("X-Request-ID", requestID)

		logger := log.With().
			Str("request_id", requestID).
			Str("remote_ip", utility.GetRealIP(c)).
			Logger()

		c.Set("logger", &logger)

		return next(c)
	}
}

func loggerFromContext(c echo.Context) *zerolog.Logger {
	if logger, ok := c.Get("logger").(*zerolog.Logger); ok {
		return logger
	}
	return &log.Logger
}

// generateMealPlanRequest is the POST body. Every field is optional; Days is
// a pointer so an absent value can be told apart from 0.
type generateMealPlanRequest struct {
	Goal              string           `json:"goal"`
	Days              *int             `json:"days"`
	DietaryPreference string           `json:"dietary_preference"`
	CuisineStyle      string           `json:"cuisine_style"`
	Allergies         []string         `json:"allergies"`
	Calories          planner.Calories `json:"calories"`
}

func (r generateMealPlanRequest) toPlanRequest() planner.PlanRequest {
	days := planner.DefaultDays
	if r.Days != nil {
		days = *r.Days
	}
	return planner.NewPlanRequest(r.Goal, days, r.DietaryPreference, r.CuisineStyle, r.Allergies, r.Calories)
}

type generateMealPlanResponse struct {
	Status   mealplan.Status    `json:"status"`
	MealPlan string             `json:"meal_plan"`
	FilePath *string            `json:"file_path"`
	Metadata *document.Metadata `json:"metadata"`
}

type errorResponse struct {
	Status  mealplan.Status `json:"status"`
	Message string          `json:"message"`
}

func (s *Server) generateMealPlanHandler(c echo.Context) error {
	logger := loggerFromContext(c)

	var body generateMealPlanRequest
	if err := c.Bind(&body); err != nil {
		msg := err.Error()
		var he *echo.HTTPError
		if errors.As(err, &he) {
			msg = fmt.Sprint(he.Message)
		}
		logger.Warn().Err(err).Msg("Invalid meal plan request body")
		return c.JSON(http.StatusInternalServerError, errorResponse{Status: mealplan.StatusError, Message: msg})
	}

	req := body.toPlanRequest()
	logger.Info().
		Str("goal", req.Goal).
		Int("days", req.Days).
		Str("cuisine_style", req.CuisineStyle).
		Str("dietary_preference", req.DietaryPreference).
		Msg("Meal plan requested")

	// A client that disconnects does not abort the plan; it is still saved.
	result := s.plans.Generate(context.WithoutCancel(c.Request().Context()), req, "")
	if result.Status != mealplan.StatusSuccess {
		logger.Error().Str("error", result.Error).Msg("Meal plan generation failed")
		return c.JSON(http.StatusInternalServerError, errorResponse{Status: mealplan.StatusError, Message: result.Error})
	}

	return c.JSON(http.StatusOK, generateMealPlanResponse{
		Status:   result.Status,
		MealPlan: result.MealPlan,
		FilePath: result.FilePath,
		Metadata: result.Metadata,
	})
}
