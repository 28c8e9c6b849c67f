package cmd

import (
	"log"

	"github.com/joho/godotenv"

	"gemma-pipeline/internal/storage"
)

// LoadEnvFile loads environment variables from an optional dotenv file
// before config parsing. Useful for local development.
func LoadEnvFile(path string) {
	if path == "" {
		log.Printf("no env file specified, using os.Environ only")
		return
	}

	log.Printf("loading env from file %s", path)
	if err := godotenv.Load(path); err != nil {
		log.Fatalf("error loading .env file '%s': %v", path, err)
	}
}

// PrepEnv is the environment shared by the data preparation binaries. Cloud
// credentials are taken from the ambient environment when the static keys
// are unset.
type PrepEnv struct {
	HuggingFaceToken   string `env:"HUGGINGFACE_TOKEN"`
	S3EndpointURL      string `env:"S3_ENDPOINT_URL"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	AWSRegion          string `env:"AWS_REGION" envDefault:"us-east-1"`
}

func (e PrepEnv) S3Config() storage.S3Config {
	return storage.S3Config{
		EndpointURL:     e.S3EndpointURL,
		AccessKeyID:     e.AWSAccessKeyID,
		SecretAccessKey: e.AWSSecretAccessKey,
		Region:          e.AWSRegion,
	}
}
