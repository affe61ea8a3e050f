package generation

const (
	// ContextBudget is the token window shared by prompt and output.
	ContextBudget = 2048
	// MaxNewTokens caps the generated output of a single call.
	MaxNewTokens = 1500
)

// Params is the sampling policy for every call. The values are fixed
// defaults; backends map what they support and ignore the rest.
type Params struct {
	MaxTokens         int     `json:"max_tokens"`
	Temperature       float64 `json:"temperature"`
	TopP              float64 `json:"top_p"`
	TopK              int     `json:"top_k"`
	RepetitionPenalty float64 `json:"repetition_penalty"`
	NoRepeatNgramSize int     `json:"no_repeat_ngram_size"`
	BeamCount         int     `json:"beam_count"`
	LengthPenalty     float64 `json:"length_penalty"`
}

// DefaultParams returns the fixed sampling policy.
func DefaultParams() Params {
	return Params{
		MaxTokens:         ContextBudget,
		Temperature:       0.8,
		TopP:              0.95,
		TopK:              100,
		RepetitionPenalty: 1.3,
		NoRepeatNgramSize: 3,
		BeamCount:         5,
		LengthPenalty:     1.2,
	}
}
