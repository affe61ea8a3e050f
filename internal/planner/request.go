/*
Package planner turns a user's nutrition goals into the ordered set of prompts
sent to the generation backend. Everything here is a pure function of the
request and the guideline table.
*/
package planner

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	MinDays = 1
	MaxDays = 14

	DefaultGoal              = "muscle gain"
	DefaultDays              = 3
	DefaultDietaryPreference = "non-vegetarian"
	DefaultCuisineStyle      = "indian"
	DefaultCalories          = "2500-3000"
)

// Calories is the daily calorie target. It keeps track of whether the caller
// gave a free-form range ("2000-2500") or a plain number (2200), since the
// two are phrased differently in the prompt.
type Calories struct {
	value   string
	numeric bool
}

// CaloriesRange builds a text-valued target such as "2000-2500".
func CaloriesRange(s string) Calories {
	return Calories{value: s}
}

// CaloriesExact builds a numeric target.
func CaloriesExact(n int) Calories {
	return Calories{value: fmt.Sprintf("%d", n), numeric: true}
}

func (c Calories) IsZero() bool    { return c.value == "" }
func (c Calories) IsNumeric() bool { return c.numeric }
func (c Calories) String() string  { return c.value }

// Phrase renders the target the way the prompts and the overview state it.
func (c Calories) Phrase() string {
	if c.numeric {
		return fmt.Sprintf("approximately %s kcal", c.value)
	}
	return fmt.Sprintf("between %s kcal", c.value)
}

// MarshalJSON writes numeric targets as JSON numbers.
func (c Calories) MarshalJSON() ([]byte, error) {
	if c.numeric {
		return []byte(c.value), nil
	}
	return json.Marshal(c.value)
}

// UnmarshalJSON accepts either a JSON string or a JSON number. null leaves the
// value empty so defaults can be applied later.
func (c *Calories) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = Calories{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = CaloriesRange(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("calories must be a string or a number: %w", err)
	}
	*c = Calories{value: n.String(), numeric: true}
	return nil
}

// PlanRequest describes one meal plan to generate. Build it with
// NewPlanRequest or call Normalize before use; both clamp Days.
type PlanRequest struct {
	Goal              string
	Days              int
	DietaryPreference string
	CuisineStyle      string
	Allergies         []string
	Calories          Calories
}

// NewPlanRequest fills empty fields with the defaults and clamps days.
func NewPlanRequest(goal string, days int, diet, cuisine string, allergies []string, calories Calories) PlanRequest {
	return PlanRequest{
		Goal:              goal,
		Days:              days,
		DietaryPreference: diet,
		CuisineStyle:      cuisine,
		Allergies:         allergies,
		Calories:          calories,
	}.Normalize()
}

// Normalize returns a copy with defaults applied and Days clamped into
// [MinDays, MaxDays]. The allergy slice is copied so the request stays
// immutable from the caller's point of view.
func (r PlanRequest) Normalize() PlanRequest {
	if strings.TrimSpace(r.Goal) == "" {
		r.Goal = DefaultGoal
	}
	if strings.TrimSpace(r.DietaryPreference) == "" {
		r.DietaryPreference = DefaultDietaryPreference
	}
	if strings.TrimSpace(r.CuisineStyle) == "" {
		r.CuisineStyle = DefaultCuisineStyle
	}
	if r.Calories.IsZero() {
		r.Calories = CaloriesRange(DefaultCalories)
	}
	r.Days = ClampDays(r.Days)

	allergies := make([]string, 0, len(r.Allergies))
	for _, a := range r.Allergies {
		if a = strings.TrimSpace(a); a != "" {
			allergies = append(allergies, a)
		}
	}
	r.Allergies = allergies
	return r
}

// ClampDays limits a day count to the supported plan length.
func ClampDays(days int) int {
	return max(MinDays, min(MaxDays, days))
}

// AllergyList is the comma-joined allergy list, or "None".
func (r PlanRequest) AllergyList() string {
	if len(r.Allergies) == 0 {
		return "None"
	}
	return strings.Join(r.Allergies, ", ")
}

// Title upper-cases the first letter of every word, hyphenated parts included
// ("non-vegetarian" -> "Non-Vegetarian").
func Title(s string) string {
	// A Caser is stateful, so one per call.
	return cases.Title(language.Und).String(s)
}
