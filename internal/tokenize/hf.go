package tokenize

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/daulet/tokenizers"
)

// HFTokenizer adapts a HuggingFace tokenizer to the Encoder interface.
type HFTokenizer struct {
	tk *tokenizers.Tokenizer
}

var _ Encoder = (*HFTokenizer)(nil)

// LoadPretrained downloads (or reuses a cached copy of) the named tokenizer
// from the HuggingFace hub. Gated models such as google/gemma-2-27b require
// an access token.
func LoadPretrained(modelID, authToken string) (*HFTokenizer, error) {
	var opts []tokenizers.TokenizerConfigOption
	if authToken != "" {
		opts = append(opts, tokenizers.WithAuthToken(authToken))
	}
	if cacheDir, err := os.UserCacheDir(); err == nil {
		opts = append(opts, tokenizers.WithCacheDir(filepath.Join(cacheDir, "gemma-pipeline", "tokenizers")))
	}

	tk, err := tokenizers.FromPretrained(modelID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load tokenizer %s: %w", modelID, err)
	}

	return &HFTokenizer{tk: tk}, nil
}

// Encode tokenizes text with special tokens included, matching the
// tokenizer's default behavior during training data preparation.
func (t *HFTokenizer) Encode(text string) ([]int64, error) {
	ids, _ := t.tk.Encode(text, true)
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out, nil
}

// Close releases the underlying native tokenizer handle.
func (t *HFTokenizer) Close() error {
	return t.tk.Close()
}
