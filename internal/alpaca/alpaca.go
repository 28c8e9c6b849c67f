package alpaca

import (
	"fmt"
	"strings"
)

// Example is a single instruction-following record from the Stanford Alpaca
// dataset. Input is empty for examples that have no additional context.
type Example struct {
	Instruction string `json:"instruction"`
	Input       string `json:"input"`
	Output      string `json:"output"`
}

// FormatPrompt renders an example into the standard Alpaca training text.
func FormatPrompt(ex Example) string {
	return FormatPromptPrefix(ex) + ex.Output
}

// FormatPromptPrefix renders everything up to, but not including, the
// response text. The trailing "### Response:\n" marker is part of the prefix
// so its token count lines up with the full prompt.
func FormatPromptPrefix(ex Example) string {
	var b strings.Builder
	fmt.Fprintf(&b, "### Instruction:\n%s\n", ex.Instruction)
	if ex.Input != "" {
		fmt.Fprintf(&b, "### Input:\n%s\n", ex.Input)
	}
	b.WriteString("### Response:\n")
	return b.String()
}
