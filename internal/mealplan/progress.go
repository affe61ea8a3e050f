package mealplan

// Stage names a step of a plan generation.
type Stage string

const (
	StageStarted  Stage = "started"
	StageDay      Stage = "day"
	StageGuidance Stage = "guidance"
	StageSaved    Stage = "saved"
	StageFailed   Stage = "failed"
)

// Event is one progress notification. Day is set for StageDay only.
type Event struct {
	Stage   Stage  `json:"stage"`
	Day     int    `json:"day,omitempty"`
	Days    int    `json:"days"`
	Message string `json:"message,omitempty"`
}

// Reporter receives progress events. Report must not block for long; it
// runs on the generation path.
type Reporter interface {
	Report(Event)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Event)

func (f ReporterFunc) Report(e Event) { f(e) }

type nopReporter struct{}

func (nopReporter) Report(Event) {}
