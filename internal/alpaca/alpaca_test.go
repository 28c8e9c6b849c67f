package alpaca

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatPrompt(t *testing.T) {
	ex := Example{
		Instruction: "Translate to French.",
		Input:       "Good morning",
		Output:      "Bonjour",
	}

	expected := "### Instruction:\nTranslate to French.\n### Input:\nGood morning\n### Response:\nBonjour"
	assert.Equal(t, expected, FormatPrompt(ex))
}

func TestFormatPromptOmitsEmptyInput(t *testing.T) {
	ex := Example{
		Instruction: "Name three primary colors.",
		Output:      "Red, blue, and yellow.",
	}

	formatted := FormatPrompt(ex)
	assert.NotContains(t, formatted, "### Input:")
	assert.Equal(t, "### Instruction:\nName three primary colors.\n### Response:\nRed, blue, and yellow.", formatted)
}

func TestFormatPromptPrefixEndsWithResponseMarker(t *testing.T) {
	ex := Example{Instruction: "Say hi.", Output: "hi"}

	prefix := FormatPromptPrefix(ex)
	assert.Equal(t, "### Instruction:\nSay hi.\n### Response:\n", prefix)
	assert.Equal(t, prefix+ex.Output, FormatPrompt(ex))
}

func TestFormatPromptDeterministic(t *testing.T) {
	ex := Example{Instruction: "a", Input: "b", Output: "c"}
	assert.Equal(t, FormatPrompt(ex), FormatPrompt(ex))
}
