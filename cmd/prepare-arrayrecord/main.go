package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v2"

	"gemma-pipeline/cmd"
	"gemma-pipeline/internal/alpaca"
	"gemma-pipeline/internal/storage"
	"gemma-pipeline/internal/tfrecord"
	"gemma-pipeline/internal/tokenize"
)

var (
	outputDir     string
	bucket        string
	destPath      string
	numSamples    int
	tokenizerName string
	maxSeqLen     int
	padID         int64
	envFile       string
)

func main() {
	app := &cli.App{
		Name:  "prepare-arrayrecord",
		Usage: "Download the Alpaca dataset, tokenize it into masked training records, and upload the record file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "output-dir",
				Usage:       "Local output directory",
				Value:       "/tmp/dataset",
				Destination: &outputDir,
			},
			&cli.StringFlag{
				Name:        "bucket",
				Usage:       "Destination bucket name",
				Required:    true,
				Destination: &bucket,
			},
			&cli.StringFlag{
				Name:        "dest-path",
				Usage:       "Destination object path",
				Value:       "datasets/train_data.array_record",
				Destination: &destPath,
			},
			&cli.IntFlag{
				Name:        "num-samples",
				Usage:       "Number of samples to prepare",
				Value:       500,
				Destination: &numSamples,
			},
			&cli.StringFlag{
				Name:        "tokenizer",
				Usage:       "Tokenizer model id on the HuggingFace hub",
				Value:       "google/gemma-2-27b",
				Destination: &tokenizerName,
			},
			&cli.IntFlag{
				Name:        "max-seq-len",
				Usage:       "Fixed sequence length to pad or truncate to",
				Value:       2048,
				Destination: &maxSeqLen,
			},
			&cli.Int64Flag{
				Name:        "pad-id",
				Usage:       "Token id used for padding (defaults to the Gemma-2 <eos> id)",
				Value:       1,
				Destination: &padID,
			},
			&cli.StringFlag{
				Name:        "env-file",
				Usage:       "Optional .env file to load",
				Destination: &envFile,
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	cmd.LoadEnvFile(envFile)

	var cfg cmd.PrepEnv
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("error parsing config: %w", err)
	}
	if cfg.HuggingFaceToken == "" {
		return fmt.Errorf("HUGGINGFACE_TOKEN environment variable is required")
	}

	ctx := c.Context

	log.Printf("Loading tokenizer: %s", tokenizerName)
	tok, err := tokenize.LoadPretrained(tokenizerName, cfg.HuggingFaceToken)
	if err != nil {
		return err
	}
	defer tok.Close()

	log.Printf("Loading Alpaca dataset with %d examples...", numSamples)
	loader := alpaca.NewLoader(alpaca.LoaderConfig{AuthToken: cfg.HuggingFaceToken})
	examples, err := loader.Load(ctx, numSamples)
	if err != nil {
		return err
	}

	labeler := tokenize.NewLabeler(tok, maxSeqLen, padID)

	outputFile, written, err := writeRecords(outputDir, examples, labeler)
	if err != nil {
		return err
	}
	log.Printf("Saved %d records to %s", written, outputFile)

	store, err := storage.NewS3ObjectStore(cfg.S3Config())
	if err != nil {
		return err
	}
	if err := storage.UploadFile(ctx, store, bucket, destPath, outputFile); err != nil {
		return err
	}
	log.Printf("Upload completed: %s/%s", bucket, destPath)

	return nil
}

// writeRecords tokenizes each example and writes it as a framed record.
// Per-record tokenize or marshal failures are logged and skipped; a write
// failure aborts, since the file is no longer trustworthy.
func writeRecords(dir string, examples []alpaca.Example, labeler *tokenize.Labeler) (string, int, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", 0, fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, "train_data.array_record")
	file, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create output file %s: %w", path, err)
	}

	bar := progressbar.NewOptions(len(examples),
		progressbar.OptionSetDescription("tokenizing"),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
	)

	writer := tfrecord.NewWriter(file)
	written := 0
	for i, ex := range examples {
		_ = bar.Add(1)

		labeled, err := labeler.Build(alpaca.FormatPrompt(ex), alpaca.FormatPromptPrefix(ex))
		if err != nil {
			slog.Warn("skipping record: tokenization failed", "index", i, "error", err)
			continue
		}

		data, err := tfrecord.MarshalExample(labeled.Features())
		if err != nil {
			slog.Warn("skipping record: serialization failed", "index", i, "error", err)
			continue
		}

		if err := writer.WriteRecord(data); err != nil {
			file.Close()
			return "", 0, fmt.Errorf("failed to write record %d: %w", i, err)
		}
		written++
	}

	if err := file.Close(); err != nil {
		return "", 0, fmt.Errorf("failed to close output file %s: %w", path, err)
	}

	return path, written, nil
}
