package tokenize

import "fmt"

// MaskedLabel marks target positions excluded from the training loss. Token
// ids from the tokenizer are unsigned, so -1 can never collide with one.
const MaskedLabel = -1

// Encoder converts text into token ids. The production implementation wraps
// a HuggingFace tokenizer; tests inject deterministic fakes.
type Encoder interface {
	Encode(text string) ([]int64, error)
}

// LabeledExample mirrors the feature layout the MaxText grain input pipeline
// expects: fixed-length inputs plus targets where prompt positions are
// masked out of the loss.
type LabeledExample struct {
	Inputs              []int64
	Targets             []int64
	InputsSegmentation  []int64
	TargetsSegmentation []int64
}

// Features returns the example as named integer feature lists, keyed the way
// the training pipeline reads them.
func (ex LabeledExample) Features() map[string][]int64 {
	return map[string][]int64{
		"inputs":               ex.Inputs,
		"targets":              ex.Targets,
		"inputs_segmentation":  ex.InputsSegmentation,
		"targets_segmentation": ex.TargetsSegmentation,
	}
}

// Labeler builds fixed-length, prompt-masked training rows from formatted
// instruction text.
type Labeler struct {
	enc    Encoder
	maxLen int
	padID  int64
}

func NewLabeler(enc Encoder, maxLen int, padID int64) *Labeler {
	return &Labeler{enc: enc, maxLen: maxLen, padID: padID}
}

// Build tokenizes fullText, pads or truncates it to the configured maximum
// length, and masks every target position covered by promptPrefix. If the
// prefix alone exceeds the maximum length the entire target row is masked;
// that matches the upstream training setup and is deliberate.
func (l *Labeler) Build(fullText, promptPrefix string) (LabeledExample, error) {
	ids, err := l.enc.Encode(fullText)
	if err != nil {
		return LabeledExample{}, fmt.Errorf("failed to tokenize text: %w", err)
	}

	prefixIDs, err := l.enc.Encode(promptPrefix)
	if err != nil {
		return LabeledExample{}, fmt.Errorf("failed to tokenize prompt prefix: %w", err)
	}

	inputs := make([]int64, l.maxLen)
	segmentation := make([]int64, l.maxLen)

	n := min(len(ids), l.maxLen)
	copy(inputs, ids[:n])
	for i := n; i < l.maxLen; i++ {
		inputs[i] = l.padID
	}
	for i := 0; i < n; i++ {
		segmentation[i] = 1
	}

	targets := make([]int64, l.maxLen)
	copy(targets, inputs)
	for i := 0; i < min(len(prefixIDs), l.maxLen); i++ {
		targets[i] = MaskedLabel
	}

	targetsSegmentation := make([]int64, l.maxLen)
	copy(targetsSegmentation, segmentation)

	return LabeledExample{
		Inputs:              inputs,
		Targets:             targets,
		InputsSegmentation:  segmentation,
		TargetsSegmentation: targetsSegmentation,
	}, nil
}
