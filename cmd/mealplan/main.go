package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var Version = "dev"

// errPlanFailed is returned after the failure has already been printed.
var errPlanFailed = errors.New("meal plan generation failed")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCmd()
	rootCmd.AddCommand(showCmd())

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		report(rootCmd, err)
		stop()
		os.Exit(1)
	}
}

func report(cmd *cobra.Command, err error) {
	switch {
	case errors.Is(err, errPlanFailed):
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(cmd.ErrOrStderr(), warnStyle.Render("Process interrupted by user"))
	default:
		fmt.Fprintln(cmd.ErrOrStderr(), errorStyle.Render(err.Error()))
	}
}
