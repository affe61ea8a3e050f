package generation

import (
	"fmt"
	"strings"
)

// SystemInstruction frames the model for every call.
const SystemInstruction = "You are a professional nutritionist and chef. Your goal is to create detailed, healthy, and practical meal plans."

// Chat template markers (Zephyr / TinyLlama chat format).
const (
	systemMarker    = "<|system|>"
	userMarker      = "<|user|>"
	assistantMarker = "<|assistant|>"
	endOfTurn       = "</s>"
)

// Conversation is one system+user exchange awaiting the assistant's turn.
type Conversation struct {
	System string
	User   string
}

// NewConversation wraps a prompt with the fixed system instruction.
func NewConversation(prompt string) Conversation {
	return Conversation{System: SystemInstruction, User: prompt}
}

// Formatted renders the conversation in the chat template, ending with the
// assistant marker so the model continues from there.
func (c Conversation) Formatted() string {
	return fmt.Sprintf("%s%s%s%s%s%s%s",
		systemMarker, c.System, endOfTurn,
		userMarker, c.User, endOfTurn,
		assistantMarker,
	)
}

// EstimateTokens approximates the token count of text by blending a word
// count with the ~4 characters per token rule.
func EstimateTokens(text string) int {
	words := len(strings.Fields(text))
	chars := len(text)
	return (words + chars/4) / 2
}

// OutputBudget returns how many tokens the backend may generate for a prompt
// of inputTokens, after truncating the input to the context window. A
// non-positive budget is reported as ErrBudgetExhausted.
func OutputBudget(inputTokens int) (int, error) {
	inputTokens = min(inputTokens, ContextBudget)
	budget := min(MaxNewTokens, ContextBudget-inputTokens)
	if budget <= 0 {
		return 0, fmt.Errorf("%w: input uses %d of %d tokens", ErrBudgetExhausted, inputTokens, ContextBudget)
	}
	return budget, nil
}
