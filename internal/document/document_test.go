package document

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mealplanner/internal/planner"
)

var fixedTime = time.Date(2024, time.March, 7, 14, 5, 9, 0, time.UTC)

func weightLossRequest() planner.PlanRequest {
	return planner.NewPlanRequest("weight loss", 5, "vegetarian", "mediterranean", nil, planner.Calories{})
}

func TestAssemble(t *testing.T) {
	req := weightLossRequest()
	days := []string{"day one", "day two", "day three", "day four", "day five"}

	doc := Assemble(days, "shopping list", req, fixedTime)

	assert.True(t, strings.HasPrefix(doc, "# 5-Day Mediterranean Vegetarian Meal Plan for Weight Loss\n\n*Generated on March 07, 2024*\n\n## Overview\n\n"))
	assert.Contains(t, doc, "This meal plan is designed for weight loss with Mediterranean cuisine adapted for a vegetarian diet.\n\n")
	assert.Contains(t, doc, "**Target Daily Calories:** between 2500-3000 kcal\n\n---\n\n## Day 1\n\nday one\n\n---\n\n")
	assert.NotContains(t, doc, "Allergies/Restrictions")
	assert.True(t, strings.HasSuffix(doc, "## Additional Guidance\n\nshopping list"))

	headings := regexp.MustCompile(`(?m)^## Day (\d+)$`).FindAllStringSubmatch(doc, -1)
	require.Len(t, headings, 5)
	for i, h := range headings {
		assert.Equal(t, strconv.Itoa(i+1), h[1])
	}
	assert.Equal(t, 1, strings.Count(doc, "## Additional Guidance"))
	assert.Greater(t, strings.Index(doc, "## Additional Guidance"), strings.Index(doc, "## Day 5"))
}

func TestAssemble_AllergiesAndExactCalories(t *testing.T) {
	req := planner.NewPlanRequest("maintenance", 1, "vegan", "asian", []string{"peanuts", "soy"}, planner.CaloriesExact(2000))

	doc := Assemble([]string{"tofu"}, "tips", req, fixedTime)

	assert.Contains(t, doc, "# 1-Day Asian Vegan Meal Plan for Maintenance")
	assert.Contains(t, doc, "**Allergies/Restrictions:** peanuts, soy\n\n")
	assert.Contains(t, doc, "**Target Daily Calories:** approximately 2000 kcal")
}

func TestFrontmatter(t *testing.T) {
	req := planner.NewPlanRequest("weight loss", 5, "vegetarian", "mediterranean", []string{"nuts", "dairy"}, planner.CaloriesRange("1800-2000"))
	meta := NewMetadata(req, "tinyllama", fixedTime)

	want := "---\n" +
		"goal: weight loss\n" +
		"days: 5\n" +
		"dietary_preference: vegetarian\n" +
		"cuisine_style: mediterranean\n" +
		"calories: 1800-2000\n" +
		"allergies: [nuts, dairy]\n" +
		"generation_date: 2024-03-07\n" +
		"model: tinyllama\n" +
		"---\n\n"
	assert.Equal(t, want, meta.Frontmatter())
}

func TestErrorMetadata(t *testing.T) {
	meta := ErrorMetadata(planner.PlanRequest{Days: 40})
	assert.Equal(t, planner.MaxDays, meta.Days)
	assert.Nil(t, meta.Calories)
	assert.Empty(t, meta.Model)
	assert.NotNil(t, meta.Allergies)
}

func TestPersist_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "plans")
	store := NewStore(dir, filepath.Join(t.TempDir(), "backup.txt"))
	store.now = func() time.Time { return fixedTime }

	req := weightLossRequest()
	meta := NewMetadata(req, "tinyllama", fixedTime)
	doc := Assemble([]string{"a", "b", "c", "d", "e"}, "guidance", req, fixedTime)

	path, err := store.Persist(doc, meta, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "meal_plan_mediterranean_weight_loss_20240307_140509.md"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	for _, key := range []string{"goal", "days", "dietary_preference", "cuisine_style", "calories", "allergies", "generation_date", "model"} {
		assert.Regexp(t, "(?m)^"+key+": ", string(raw))
	}

	plan, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, doc, plan.Body)
	require.NotNil(t, plan.Metadata)
	assert.Equal(t, "weight loss", plan.Metadata.Goal)
	assert.Equal(t, 5, plan.Metadata.Days)
	assert.Equal(t, "2024-03-07", plan.Metadata.GenerationDate)
	assert.Empty(t, plan.Metadata.Allergies)
	require.NotNil(t, plan.Metadata.Calories)
	assert.Equal(t, "2500-3000", plan.Metadata.Calories.String())
	assert.False(t, plan.Metadata.Calories.IsNumeric())
}

func TestPersist_NumericCaloriesRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir(), filepath.Join(t.TempDir(), "backup.txt"))
	req := planner.NewPlanRequest("muscle gain", 2, "", "", []string{"gluten"}, planner.CaloriesExact(3100))

	path, err := store.Persist("body", NewMetadata(req, "m", fixedTime), "custom.md")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(store.Dir, "custom.md"), path)

	plan, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "body", plan.Body)
	assert.True(t, plan.Metadata.Calories.IsNumeric())
	assert.Equal(t, "3100", plan.Metadata.Calories.String())
	assert.Equal(t, []string{"gluten"}, plan.Metadata.Allergies)
}

func TestPersist_FilenameWithDirectory(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "unused"), filepath.Join(t.TempDir(), "backup.txt"))
	target := filepath.Join(t.TempDir(), "elsewhere.md")

	path, err := store.Persist("body", nil, target)
	require.NoError(t, err)
	assert.Equal(t, target, path)

	raw, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "body", string(raw), "no frontmatter without metadata")
}

func TestPersist_FallsBackToEmergencyFile(t *testing.T) {
	// A regular file where the output directory should be makes MkdirAll fail.
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	backup := filepath.Join(t.TempDir(), "meal_plan_emergency_backup.txt")

	store := NewStore(filepath.Join(blocker, "plans"), backup)
	meta := NewMetadata(weightLossRequest(), "tinyllama", fixedTime)

	path, err := store.Persist("the plan", meta, "")
	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, backup, path)
	assert.Equal(t, backup, perr.FallbackPath)
	assert.NoError(t, perr.Fallback)

	raw, err := os.ReadFile(backup)
	require.NoError(t, err)
	assert.Equal(t, "the plan", string(raw), "backup holds the raw document")
}

func TestPersist_TotalFailure(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	store := NewStore(filepath.Join(blocker, "plans"), filepath.Join(blocker, "backup.txt"))

	path, err := store.Persist("the plan", nil, "")
	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Empty(t, path)
	assert.Error(t, perr.Fallback)
	assert.Contains(t, err.Error(), "emergency backup failed")
}

func TestParse(t *testing.T) {
	t.Run("no frontmatter", func(t *testing.T) {
		plan, err := Parse([]byte("# Plan\n"))
		require.NoError(t, err)
		assert.Nil(t, plan.Metadata)
		assert.Equal(t, "# Plan\n", plan.Body)
	})

	t.Run("unterminated", func(t *testing.T) {
		_, err := Parse([]byte("---\ngoal: x\n# Plan\n"))
		assert.Error(t, err)
	})

	t.Run("malformed line", func(t *testing.T) {
		_, err := Parse([]byte("---\ngoal weight loss\n---\n\nbody"))
		assert.Error(t, err)
	})

	t.Run("unknown keys are ignored", func(t *testing.T) {
		plan, err := Parse([]byte("---\ngoal: x\nsource: cli\n---\n\nbody"))
		require.NoError(t, err)
		assert.Equal(t, "x", plan.Metadata.Goal)
		assert.Equal(t, "body", plan.Body)
	})
}

func TestFrontmatter_RoundTripsFreeText(t *testing.T) {
	tests := []struct {
		name string
		goal string
	}{
		{"colon", "weight loss: fast"},
		{"hash", "#1 goal"},
		{"trailing comment marker", "bulk # winter"},
		{"quotes", `"lean" 'cut'`},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := planner.NewPlanRequest("", 3, "vegan", "asian", []string{"soy", "nuts"}, planner.CaloriesExact(2100))
			meta := NewMetadata(req, "gemini-2.5-flash", fixedTime)
			meta.Goal = tt.goal

			plan, err := Parse([]byte(meta.Frontmatter() + "# Plan\n"))
			require.NoError(t, err)
			assert.Equal(t, meta, plan.Metadata)
			assert.Equal(t, "# Plan\n", plan.Body)
		})
	}
}

func TestPersist_GoalWithColonRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir(), filepath.Join(t.TempDir(), "backup.txt"))
	req := planner.NewPlanRequest("weight loss: fast", 2, "", "", nil, planner.Calories{})

	path, err := store.Persist("body", NewMetadata(req, "m", fixedTime), "colon.md")
	require.NoError(t, err)

	plan, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "weight loss: fast", plan.Metadata.Goal)
	assert.Equal(t, "2500-3000", plan.Metadata.Calories.String())
	assert.Equal(t, "body", plan.Body)
}

func TestDefaultFilename(t *testing.T) {
	assert.Equal(t, "meal_plan_indian_muscle_gain_20240307_140509.md",
		DefaultFilename(&Metadata{Goal: "Muscle Gain", CuisineStyle: "Indian"}, fixedTime))
	assert.Equal(t, "meal_plan__plan_20240307_140509.md", DefaultFilename(nil, fixedTime))
}
