package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"mealplanner/internal/document"
)

func showCmd() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "show [file]",
		Short: "Print a saved meal plan with its metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := document.ReadFile(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if m := plan.Metadata; m != nil {
				row := func(label, value string) {
					fmt.Fprintf(out, "%s %s\n", labelStyle.Render(label), value)
				}
				row("Goal:", m.Goal)
				row("Days:", fmt.Sprint(m.Days))
				row("Diet:", m.DietaryPreference)
				row("Cuisine:", m.CuisineStyle)
				if m.Calories != nil {
					row("Calories:", m.Calories.String())
				}
				if len(m.Allergies) > 0 {
					row("Allergies:", strings.Join(m.Allergies, ", "))
				}
				row("Generated:", m.GenerationDate)
				row("Model:", m.Model)
				fmt.Fprintln(out)
			}

			fmt.Fprintln(out, renderMarkdown(plan.Body, !raw && isTTY(os.Stdout)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print markdown without terminal rendering")
	return cmd
}
