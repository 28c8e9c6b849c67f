package alpaca

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	// DefaultDataset is the Stanford Alpaca dataset on the HuggingFace hub.
	DefaultDataset = "tatsu-lab/alpaca"
	DefaultConfig  = "default"
	DefaultSplit   = "train"

	datasetsServerURL = "https://datasets-server.huggingface.co"

	// The datasets-server caps /rows responses at 100 rows per request.
	rowsPerPage = 100

	loadTimeout = 60 * time.Second
)

// LoaderConfig configures which dataset slice a Loader fetches. AuthToken is
// optional for public datasets. BaseURL overrides the datasets-server
// endpoint; tests point it at a local server.
type LoaderConfig struct {
	Dataset   string
	Config    string
	Split     string
	AuthToken string
	BaseURL   string
}

// Loader fetches dataset rows from the HuggingFace datasets-server API.
type Loader struct {
	client  *resty.Client
	dataset string
	config  string
	split   string
}

func NewLoader(cfg LoaderConfig) *Loader {
	if cfg.Dataset == "" {
		cfg.Dataset = DefaultDataset
	}
	if cfg.Config == "" {
		cfg.Config = DefaultConfig
	}
	if cfg.Split == "" {
		cfg.Split = DefaultSplit
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = datasetsServerURL
	}

	client := resty.New().SetBaseURL(cfg.BaseURL)
	if cfg.AuthToken != "" {
		client.SetAuthToken(cfg.AuthToken)
	}

	return &Loader{
		client:  client,
		dataset: cfg.Dataset,
		config:  cfg.Config,
		split:   cfg.Split,
	}
}

type rowsResponse struct {
	Rows []struct {
		Row Example `json:"row"`
	} `json:"rows"`
	NumRowsTotal int `json:"num_rows_total"`
}

// Load returns the first min(n, available) examples of the split in source
// order. A single failed page aborts the load; there is no retry.
func (l *Loader) Load(ctx context.Context, n int) ([]Example, error) {
	examples := make([]Example, 0, n)

	for len(examples) < n {
		length := min(rowsPerPage, n-len(examples))

		reqCtx, cancel := context.WithTimeout(ctx, loadTimeout)
		res, err := l.client.R().
			SetContext(reqCtx).
			SetQueryParams(map[string]string{
				"dataset": l.dataset,
				"config":  l.config,
				"split":   l.split,
				"offset":  strconv.Itoa(len(examples)),
				"length":  strconv.Itoa(length),
			}).
			SetResult(&rowsResponse{}).
			Get("/rows")
		cancel()
		if err != nil {
			return nil, fmt.Errorf("failed to fetch rows from dataset %s: %w", l.dataset, err)
		}
		if !res.IsSuccess() {
			return nil, fmt.Errorf("failed to fetch rows from dataset %s: status %d: %s", l.dataset, res.StatusCode(), res.String())
		}

		page := res.Result().(*rowsResponse)
		if len(page.Rows) == 0 {
			break
		}
		for _, row := range page.Rows {
			examples = append(examples, row.Row)
		}
		if len(examples) >= page.NumRowsTotal {
			break
		}
	}

	slog.Info("Dataset loaded", "dataset", l.dataset, "split", l.split, "examples", len(examples))

	return examples, nil
}
