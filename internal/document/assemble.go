/*
Package document builds the final markdown meal plan and stores it on disk.
A stored plan is the markdown body preceded by a frontmatter block holding the
request that produced it.
*/
package document

import (
	"fmt"
	"strings"
	"time"

	"mealplanner/internal/planner"
)

const displayDateLayout = "January 02, 2006"

// Assemble joins the generated day texts and the guidance text into one
// markdown document. dayTexts are expected in day order.
func Assemble(dayTexts []string, guidance string, req planner.PlanRequest, now time.Time) string {
	req = req.Normalize()
	cuisine := planner.Title(req.CuisineStyle)

	var b strings.Builder
	fmt.Fprintf(&b, "# %d-Day %s %s Meal Plan for %s\n\n",
		req.Days, cuisine, planner.Title(req.DietaryPreference), planner.Title(req.Goal))
	fmt.Fprintf(&b, "*Generated on %s*\n\n", now.Format(displayDateLayout))

	b.WriteString("## Overview\n\n")
	fmt.Fprintf(&b, "This meal plan is designed for %s with %s cuisine adapted for a %s diet.\n\n",
		req.Goal, cuisine, req.DietaryPreference)
	if len(req.Allergies) > 0 {
		fmt.Fprintf(&b, "**Allergies/Restrictions:** %s\n\n", strings.Join(req.Allergies, ", "))
	}
	fmt.Fprintf(&b, "**Target Daily Calories:** %s\n\n", req.Calories.Phrase())
	b.WriteString("---\n\n")

	for i, text := range dayTexts {
		fmt.Fprintf(&b, "## Day %d\n\n%s\n\n---\n\n", i+1, text)
	}

	b.WriteString("## Additional Guidance\n\n")
	b.WriteString(guidance)
	return b.String()
}
