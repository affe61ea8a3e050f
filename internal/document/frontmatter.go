package document

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"mealplanner/internal/planner"
)

const (
	frontmatterDelim = "---"
	dateLayout       = "2006-01-02"
)

// Metadata mirrors the request a plan was generated from. Field order is the
// order of the frontmatter lines. The last three fields are absent from the
// metadata of a failed request.
type Metadata struct {
	Goal              string            `json:"goal"`
	Days              int               `json:"days"`
	DietaryPreference string            `json:"dietary_preference"`
	CuisineStyle      string            `json:"cuisine_style"`
	Calories          *planner.Calories `json:"calories,omitempty"`
	Allergies         []string          `json:"allergies"`
	GenerationDate    string            `json:"generation_date,omitempty"`
	Model             string            `json:"model,omitempty"`
}

// NewMetadata records a completed generation.
func NewMetadata(req planner.PlanRequest, model string, now time.Time) *Metadata {
	req = req.Normalize()
	calories := req.Calories
	return &Metadata{
		Goal:              req.Goal,
		Days:              req.Days,
		DietaryPreference: req.DietaryPreference,
		CuisineStyle:      req.CuisineStyle,
		Calories:          &calories,
		Allergies:         req.Allergies,
		GenerationDate:    now.Format(dateLayout),
		Model:             model,
	}
}

// ErrorMetadata is the reduced metadata returned with a failed request.
func ErrorMetadata(req planner.PlanRequest) *Metadata {
	req = req.Normalize()
	return &Metadata{
		Goal:              req.Goal,
		Days:              req.Days,
		DietaryPreference: req.DietaryPreference,
		CuisineStyle:      req.CuisineStyle,
		Allergies:         req.Allergies,
	}
}

// Frontmatter renders the block written in front of a stored plan: one
// "key: value" line per field, lists as "[a, b]", closed by a blank line.
func (m *Metadata) Frontmatter() string {
	var b strings.Builder
	b.WriteString(frontmatterDelim + "\n")

	line := func(key string, value any) {
		fmt.Fprintf(&b, "%s: %v\n", key, value)
	}
	line("goal", m.Goal)
	line("days", m.Days)
	line("dietary_preference", m.DietaryPreference)
	line("cuisine_style", m.CuisineStyle)
	if m.Calories != nil {
		line("calories", m.Calories.String())
	}
	line("allergies", "["+strings.Join(m.Allergies, ", ")+"]")
	if m.GenerationDate != "" {
		line("generation_date", m.GenerationDate)
	}
	if m.Model != "" {
		line("model", m.Model)
	}

	b.WriteString(frontmatterDelim + "\n\n")
	return b.String()
}

// StoredPlan is a plan file read back from disk. Metadata is nil when the
// file has no frontmatter, as with an emergency backup.
type StoredPlan struct {
	Metadata *Metadata
	Body     string
}

// ReadFile loads a stored plan and splits off its frontmatter.
func ReadFile(path string) (*StoredPlan, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}
	return Parse(raw)
}

// Parse splits raw file content into metadata and body. The block is read
// line by line as the inverse of Frontmatter: each line splits at the first
// ": ", so values may contain colons or '#' without quoting.
func Parse(raw []byte) (*StoredPlan, error) {
	opening := []byte(frontmatterDelim + "\n")
	if !bytes.HasPrefix(raw, opening) {
		return &StoredPlan{Body: string(raw)}, nil
	}

	rest := raw[len(opening):]
	closing := []byte(frontmatterDelim + "\n")
	var block []byte
	if !bytes.HasPrefix(rest, closing) {
		end := bytes.Index(rest, []byte("\n"+frontmatterDelim+"\n"))
		if end < 0 {
			return nil, fmt.Errorf("unterminated frontmatter block")
		}
		block = rest[:end]
		rest = rest[end+1:]
	}

	meta, err := parseMetadata(string(block))
	if err != nil {
		return nil, fmt.Errorf("failed to parse frontmatter: %w", err)
	}

	body := rest[len(closing):]
	body = bytes.TrimPrefix(body, []byte("\n"))
	return &StoredPlan{Metadata: meta, Body: string(body)}, nil
}

func parseMetadata(block string) (*Metadata, error) {
	meta := &Metadata{Allergies: []string{}}
	if block == "" {
		return meta, nil
	}

	for i, line := range strings.Split(block, "\n") {
		key, value, ok := strings.Cut(line, ": ")
		if !ok {
			// "goal: " with an empty value loses its trailing space to editors.
			if k, found := strings.CutSuffix(line, ":"); found {
				key, ok = k, true
			}
		}
		if !ok {
			return nil, fmt.Errorf("line %d: expected \"key: value\", got %q", i+1, line)
		}

		switch key {
		case "goal":
			meta.Goal = value
		case "days":
			days, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("line %d: days: %w", i+1, err)
			}
			meta.Days = days
		case "dietary_preference":
			meta.DietaryPreference = value
		case "cuisine_style":
			meta.CuisineStyle = value
		case "calories":
			calories := planner.CaloriesRange(value)
			if n, err := strconv.Atoi(value); err == nil {
				calories = planner.CaloriesExact(n)
			}
			meta.Calories = &calories
		case "allergies":
			meta.Allergies = parseList(value)
		case "generation_date":
			meta.GenerationDate = value
		case "model":
			meta.Model = value
		}
	}
	return meta, nil
}

// parseList reads the "[a, b]" form Frontmatter writes.
func parseList(value string) []string {
	inner := strings.TrimSuffix(strings.TrimPrefix(value, "["), "]")
	if inner == "" {
		return []string{}
	}
	return strings.Split(inner, ", ")
}
