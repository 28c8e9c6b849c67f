package tokenize

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wordEncoder assigns each whitespace-separated word a stable positive id.
type wordEncoder struct {
	vocab map[string]int64
}

func newWordEncoder() *wordEncoder {
	return &wordEncoder{vocab: make(map[string]int64)}
}

func (e *wordEncoder) Encode(text string) ([]int64, error) {
	var ids []int64
	for _, word := range strings.Fields(text) {
		id, ok := e.vocab[word]
		if !ok {
			id = int64(len(e.vocab) + 2)
			e.vocab[word] = id
		}
		ids = append(ids, id)
	}
	return ids, nil
}

type failingEncoder struct{}

func (failingEncoder) Encode(string) ([]int64, error) {
	return nil, errors.New("malformed encoding")
}

const testPadID = int64(1)

func TestBuildSequenceLengths(t *testing.T) {
	labeler := NewLabeler(newWordEncoder(), 16, testPadID)

	ex, err := labeler.Build("the quick brown fox jumps", "the quick brown")
	require.NoError(t, err)

	assert.Len(t, ex.Inputs, 16)
	assert.Len(t, ex.Targets, 16)
	assert.Len(t, ex.InputsSegmentation, 16)
	assert.Len(t, ex.TargetsSegmentation, 16)
}

func TestBuildMasksPromptAndKeepsResponse(t *testing.T) {
	enc := newWordEncoder()
	labeler := NewLabeler(enc, 8, testPadID)

	ex, err := labeler.Build("a b c d e", "a b c")
	require.NoError(t, err)

	// k = 3 prompt tokens, masked; everything after holds the input id,
	// including padding.
	for i := 0; i < 3; i++ {
		assert.EqualValues(t, MaskedLabel, ex.Targets[i], "position %d should be masked", i)
	}
	for i := 3; i < 8; i++ {
		assert.Equal(t, ex.Inputs[i], ex.Targets[i], "position %d should carry the token id", i)
	}
}

func TestBuildPadsShortSequences(t *testing.T) {
	labeler := NewLabeler(newWordEncoder(), 8, testPadID)

	ex, err := labeler.Build("a b c", "a")
	require.NoError(t, err)

	for i := 3; i < 8; i++ {
		assert.Equal(t, testPadID, ex.Inputs[i])
		assert.EqualValues(t, 0, ex.InputsSegmentation[i])
	}
	for i := 0; i < 3; i++ {
		assert.EqualValues(t, 1, ex.InputsSegmentation[i])
	}
	assert.Equal(t, ex.InputsSegmentation, ex.TargetsSegmentation)
}

func TestBuildTruncatesLongSequences(t *testing.T) {
	labeler := NewLabeler(newWordEncoder(), 4, testPadID)

	ex, err := labeler.Build("a b c d e f g h", "a b")
	require.NoError(t, err)

	assert.Len(t, ex.Inputs, 4)
	for i := range ex.InputsSegmentation {
		assert.EqualValues(t, 1, ex.InputsSegmentation[i])
	}
}

func TestBuildPromptLongerThanMaxMasksEverything(t *testing.T) {
	labeler := NewLabeler(newWordEncoder(), 4, testPadID)

	ex, err := labeler.Build("a b c d e f", "a b c d e f")
	require.NoError(t, err)

	for i, target := range ex.Targets {
		assert.EqualValues(t, MaskedLabel, target, "position %d should be masked", i)
	}
}

func TestBuildPropagatesEncoderError(t *testing.T) {
	labeler := NewLabeler(failingEncoder{}, 8, testPadID)

	_, err := labeler.Build("a", "a")
	assert.Error(t, err)
}

func TestFeaturesKeys(t *testing.T) {
	labeler := NewLabeler(newWordEncoder(), 4, testPadID)

	ex, err := labeler.Build("a b c", "a")
	require.NoError(t, err)

	features := ex.Features()
	assert.Equal(t, ex.Inputs, features["inputs"])
	assert.Equal(t, ex.Targets, features["targets"])
	assert.Equal(t, ex.InputsSegmentation, features["inputs_segmentation"])
	assert.Equal(t, ex.TargetsSegmentation, features["targets_segmentation"])
}
