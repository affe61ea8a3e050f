package planner

import (
	"fmt"
	"strings"
)

// PromptKind tells a day prompt apart from the closing guidance prompt.
type PromptKind string

const (
	PromptDay      PromptKind = "day"
	PromptGuidance PromptKind = "guidance"
)

// PromptSpec is one unit of content to generate.
type PromptSpec struct {
	Kind PromptKind
	Day  int // 1-based; 0 for the guidance prompt
	Text string
}

// Compose builds the prompts for req: one per day in ascending order and a
// final guidance prompt, days+1 in total. Same request and table, same bytes.
func Compose(req PlanRequest, table GuidelineTable) []PromptSpec {
	req = req.Normalize()
	preamble := buildPreamble(req, table)

	prompts := make([]PromptSpec, 0, req.Days+1)
	for day := 1; day <= req.Days; day++ {
		prompts = append(prompts, PromptSpec{
			Kind: PromptDay,
			Day:  day,
			Text: preamble + "\n" + fmt.Sprintf(DayMealStructureTemplate, day),
		})
	}

	prompts = append(prompts, PromptSpec{
		Kind: PromptGuidance,
		Text: preamble + "\n" + fmt.Sprintf(GuidanceSectionsTemplate, req.Days),
	})
	return prompts
}

// buildPreamble renders the persona and dietary requirements shared by every prompt.
func buildPreamble(req PlanRequest, table GuidelineTable) string {
	cuisine := Title(req.CuisineStyle)

	var b strings.Builder
	fmt.Fprintf(&b, BasePromptTemplate,
		cuisine,
		req.DietaryPreference,
		req.Goal,
		cuisine,
		req.DietaryPreference,
	)
	b.WriteString("\n")
	fmt.Fprintf(&b, DietaryRequirementsTemplate,
		Title(req.Goal),
		Title(req.DietaryPreference),
		cuisine,
		req.Calories.Phrase(),
		req.AllergyList(),
		table.Lookup(req.CuisineStyle, req.DietaryPreference),
	)
	return b.String()
}
