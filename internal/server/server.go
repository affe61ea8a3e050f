/*
Package server implements the application's network transport layer.
It initializes the HTTP server, configures timeouts, and wires the meal plan
service, the progress hub and the health probes into the router.
*/
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"mealplanner/internal/mealplan"
	"mealplanner/internal/planner"
	"mealplanner/internal/utility"
)

// A full plan is up to fifteen sequential model calls, so writes get far more
// room than a typical API response.
const generationWriteTimeout = 30 * time.Minute

// PlanGenerator generates meal plans. *mealplan.Service satisfies it.
type PlanGenerator interface {
	Generate(ctx context.Context, req planner.PlanRequest, filename string) mealplan.Result
}

// Pinger reports whether the generation backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
	Model() string
}

// Server defines the configuration and dependencies for the HTTP service.
type Server struct {
	// port specifies the TCP port the server will listen on.
	port int

	// plans runs generation requests.
	plans PlanGenerator

	// backend is probed by /health.
	backend Pinger

	// hub pushes progress events to websocket clients.
	hub *utility.ProgressHub

	// outputDir is where plans are written; /health reports its disk usage.
	outputDir string

	startTime time.Time
}

// Options carries the dependencies of NewServer.
type Options struct {
	Port      int
	Plans     PlanGenerator
	Backend   Pinger
	Hub       *utility.ProgressHub
	OutputDir string
}

func newServer(opts Options) *Server {
	port := opts.Port
	if port == 0 {
		port = 8080
	}
	hub := opts.Hub
	if hub == nil {
		hub = utility.NewProgressHub()
	}
	return &Server{
		port:      port,
		plans:     opts.Plans,
		backend:   opts.Backend,
		hub:       hub,
		outputDir: opts.OutputDir,
		startTime: time.Now(),
	}
}

// NewServer returns a configured *http.Server.
func NewServer(opts Options) *http.Server {
	newApp := newServer(opts)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", newApp.port),
		Handler:      newApp.RegisterRoutes(),
		IdleTimeout:  time.Minute,            // Time to wait for the next request on keep-alive connections.
		ReadTimeout:  10 * time.Second,       // Maximum duration for reading the entire request.
		WriteTimeout: generationWriteTimeout, // Maximum duration before timing out writes of the response.
	}
}
