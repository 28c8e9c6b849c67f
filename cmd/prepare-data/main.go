package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/urfave/cli/v2"

	"gemma-pipeline/cmd"
	"gemma-pipeline/internal/alpaca"
	"gemma-pipeline/internal/storage"
)

var (
	outputDir  string
	bucket     string
	destPath   string
	numSamples int
	envFile    string
)

func main() {
	app := &cli.App{
		Name:  "prepare-data",
		Usage: "Download the Alpaca dataset, format it for instruction tuning, and upload it as JSONL",
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
				Value:       "datasets/train_data.jsonl",
				Destination: &destPath,
			},
			&cli.IntFlag{
				Name:        "num-samples",
				Usage:       "Number of samples to prepare",
				Value:       1000,
				Destination: &numSamples,
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

	ctx := c.Context

	log.Printf("Preparing Alpaca dataset: samples=%d output=%s destination=%s/%s", numSamples, outputDir, bucket, destPath)

	loader := alpaca.NewLoader(alpaca.LoaderConfig{AuthToken: cfg.HuggingFaceToken})
	examples, err := loader.Load(ctx, numSamples)
	if err != nil {
		return err
	}

	outputFile, err := writeJSONL(outputDir, examples)
	if err != nil {
		return err
	}
	log.Printf("Saved %d examples to %s", len(examples), outputFile)

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

// writeJSONL writes one {"text": ...} object per line, the layout the
// MaxText training config reads.
func writeJSONL(dir string, examples []alpaca.Example) (string, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, "train_data.jsonl")
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create output file %s: %w", path, err)
	}

	encoder := json.NewEncoder(file)
	for _, ex := range examples {
		if err := encoder.Encode(map[string]string{"text": alpaca.FormatPrompt(ex)}); err != nil {
			file.Close()
			return "", fmt.Errorf("failed to encode example: %w", err)
		}
	}

	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close output file %s: %w", path, err)
	}

	return path, nil
}
