package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	DefaultOutputDir     = "meal_plans"
	DefaultEmergencyFile = "meal_plan_emergency_backup.txt"

	filenameTimeLayout = "20060102_150405"
)

// PersistenceError reports a failed primary write. FallbackPath is set when
// the emergency copy was written; otherwise Fallback holds its error too.
type PersistenceError struct {
	Path         string
	Primary      error
	FallbackPath string
	Fallback     error
}

func (e *PersistenceError) Error() string {
	if e.Fallback != nil {
		return fmt.Sprintf("failed to save meal plan to %s: %v; emergency backup failed: %v", e.Path, e.Primary, e.Fallback)
	}
	return fmt.Sprintf("failed to save meal plan to %s: %v; emergency backup saved to %s", e.Path, e.Primary, e.FallbackPath)
}

func (e *PersistenceError) Unwrap() error {
	return e.Primary
}

// Store writes plans under Dir and falls back to EmergencyPath when that fails.
type Store struct {
	Dir           string
	EmergencyPath string

	now func() time.Time
}

// NewStore returns a store with the given locations; empty values take the
// defaults.
func NewStore(dir, emergencyPath string) *Store {
	if dir == "" {
		dir = DefaultOutputDir
	}
	if emergencyPath == "" {
		emergencyPath = DefaultEmergencyFile
	}
	return &Store{Dir: dir, EmergencyPath: emergencyPath, now: time.Now}
}

// Persist writes doc with meta as frontmatter and returns the path written.
//
// An empty filename is derived from the metadata and the current time. A bare
// filename is placed under Dir; one with a directory component is used as is.
// When the primary write fails, the raw document (no frontmatter) is written to
// EmergencyPath. Any primary failure is returned as *PersistenceError, with the
// emergency path as the result when the fallback worked and "" otherwise.
func (s *Store) Persist(doc string, meta *Metadata, filename string) (string, error) {
	path := s.resolve(filename, meta)

	content := doc
	if meta != nil {
		content = meta.Frontmatter() + doc
	}

	primary := s.write(path, content)
	if primary == nil {
		return path, nil
	}

	perr := &PersistenceError{Path: path, Primary: primary}
	if err := os.WriteFile(s.EmergencyPath, []byte(doc), 0o644); err != nil {
		perr.Fallback = err
		return "", perr
	}
	perr.FallbackPath = s.EmergencyPath
	return s.EmergencyPath, perr
}

func (s *Store) write(path, content string) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

func (s *Store) resolve(filename string, meta *Metadata) string {
	if filename == "" {
		return filepath.Join(s.Dir, DefaultFilename(meta, s.clock()))
	}
	if filepath.Dir(filename) == "." && filepath.Base(filename) == filename {
		return filepath.Join(s.Dir, filename)
	}
	return filename
}

func (s *Store) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

// DefaultFilename is meal_plan_{cuisine}_{goal}_{yyyyMMdd_HHmmss}.md with the
// cuisine lower-cased and the goal lower-cased and underscored.
func DefaultFilename(meta *Metadata, at time.Time) string {
	goal, cuisine := "plan", ""
	if meta != nil {
		goal = strings.ReplaceAll(strings.ToLower(meta.Goal), " ", "_")
		cuisine = strings.ToLower(meta.CuisineStyle)
	}
	return fmt.Sprintf("meal_plan_%s_%s_%s.md", cuisine, goal, at.Format(filenameTimeLayout))
}
