package planner

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FallbackGuideline is returned for any cuisine/diet pair the table does not know.
const FallbackGuideline = "Default guidelines - adapt recipes to meet nutritional requirements for the specified goal."

// GuidelineTable maps cuisine -> dietary preference -> guidance text.
// It is built once at startup and never mutated afterwards; keys are stored
// lower-cased so lookups ignore case on both levels.
type GuidelineTable struct {
	entries map[string]map[string]string
}

// NewGuidelineTable copies raw into an immutable table.
func NewGuidelineTable(raw map[string]map[string]string) GuidelineTable {
	entries := make(map[string]map[string]string, len(raw))
	for cuisine, diets := range raw {
		key := strings.ToLower(strings.TrimSpace(cuisine))
		if entries[key] == nil {
			entries[key] = make(map[string]string, len(diets))
		}
		for diet, text := range diets {
			entries[key][strings.ToLower(strings.TrimSpace(diet))] = text
		}
	}
	return GuidelineTable{entries: entries}
}

// Lookup returns the guidance for the pair, or FallbackGuideline. It never
// returns an empty string.
func (t GuidelineTable) Lookup(cuisine, diet string) string {
	diets, ok := t.entries[strings.ToLower(strings.TrimSpace(cuisine))]
	if !ok {
		return FallbackGuideline
	}
	text, ok := diets[strings.ToLower(strings.TrimSpace(diet))]
	if !ok || strings.TrimSpace(text) == "" {
		return FallbackGuideline
	}
	return text
}

// Cuisines lists the known cuisines (unordered).
func (t GuidelineTable) Cuisines() []string {
	out := make([]string, 0, len(t.entries))
	for c := range t.entries {
		out = append(out, c)
	}
	return out
}

// LoadGuidelines reads a cuisine->diet->text file, YAML when the extension is
// .yaml or .yml and JSON otherwise. A missing file is not an error and yields
// the built-in table. A file that exists but cannot be read or parsed also
// yields the built-in table, together with the error so the caller can log it.
func LoadGuidelines(path string) (GuidelineTable, error) {
	if path == "" {
		return DefaultGuidelines(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultGuidelines(), nil
		}
		return DefaultGuidelines(), fmt.Errorf("could not read cuisine guidelines %s: %w", path, err)
	}

	unmarshal := json.Unmarshal
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		unmarshal = yaml.Unmarshal
	}

	var raw map[string]map[string]string
	if err := unmarshal(data, &raw); err != nil {
		return DefaultGuidelines(), fmt.Errorf("could not parse cuisine guidelines %s: %w", path, err)
	}
	return NewGuidelineTable(raw), nil
}

// DefaultGuidelines is the built-in table used when no guidelines file is present.
func DefaultGuidelines() GuidelineTable {
	return NewGuidelineTable(map[string]map[string]string{
		"indian": {
			"non-vegetarian": `- Include tandoori preparations for lean proteins
- Balance meat dishes with vegetable sides
- Use yogurt-based marinades for protein tenderizing
- Incorporate fish curries from coastal regions`,
			"vegetarian": `- Focus on protein-rich lentil dishes (various dals)
- Include paneer and tofu preparations
- Use dairy products for protein boost
- Incorporate high-protein grains like quinoa adapted to Indian flavors`,
			"vegan": `- Emphasize legume variety (chickpeas, lentils, beans)
- Include tofu and tempeh with Indian spices
- Use coconut milk instead of dairy
- Focus on protein-rich grain combinations`,
		},
		"mediterranean": {
			"non-vegetarian": `- Prioritize fish and seafood 2-3 times weekly
- Include poultry and eggs in moderate amounts
- Limit red meat to occasional consumption
- Use olive oil as primary fat source`,
			"vegetarian": `- Emphasize legumes daily (chickpeas, lentils, beans)
- Include variety of nuts and seeds
- Use eggs and dairy as protein sources
- Incorporate whole grains in every meal`,
			"vegan": `- Create protein-complete meals with legume-grain combinations
- Use tahini and nut butters for richness
- Incorporate seitan and tempeh with Mediterranean herbs
- Focus on bean-based dishes and dips`,
		},
		"asian": {
			"non-vegetarian": `- Balance proteins with vegetables in stir-fries
- Include fish and seafood regularly
- Use small amounts of meat for flavoring
- Incorporate eggs in various preparations`,
			"vegetarian": `- Use tofu, tempeh and edamame as protein staples
- Incorporate eggs in noodle and rice dishes
- Include dairy in Indian-Asian fusion dishes
- Use mushrooms for umami flavor`,
			"vegan": `- Feature tofu and tempeh in main dishes
- Use seitan for meat-like texture
- Include variety of mushrooms for depth
- Emphasize fermented foods like kimchi`,
		},
	})
}
