package environment

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/codeclash/judge/internal/xdg"
)

type EnvConfig struct {
	HTTPAddr      string
	Workers       int
	QueueCapacity int

	NatsURL     string
	SqsQueueURL string
	AwsRegion   string

	LangsTomlPath    string
	ProblemsTomlPath string
	FileStoreDir     string
	FileStoreTmpDir  string
}

// ReadEnvConfig loads .env when present and falls back to real
// environment variables. Missing optional values (NATS, SQS) disable
// the corresponding integrations.
func ReadEnvConfig() (*EnvConfig, error) {
	_ = godotenv.Load()

	result := &EnvConfig{
		HTTPAddr:         getenvDefault("HTTP_ADDR", ":8080"),
		NatsURL:          os.Getenv("NATS_URL"),
		SqsQueueURL:      os.Getenv("SQS_QUEUE_URL"),
		AwsRegion:        getenvDefault("AWS_REGION", "eu-central-1"),
		LangsTomlPath:    os.Getenv("LANGS_TOML_PATH"),
		ProblemsTomlPath: os.Getenv("PROBLEMS_TOML_PATH"),
		FileStoreDir:     getenvDefault("FILE_STORE_DIR", xdg.CacheDir("judge", "files")),
		FileStoreTmpDir:  getenvDefault("FILE_STORE_TMP_DIR", xdg.CacheDir("judge", "tmp")),
	}

	var err error
	result.Workers, err = getenvInt("JUDGE_WORKERS", 2)
	if err != nil {
		return nil, err
	}
	result.QueueCapacity, err = getenvInt("JUDGE_QUEUE_CAPACITY", 256)
	if err != nil {
		return nil, err
	}
	if result.Workers < 1 {
		return nil, fmt.Errorf("JUDGE_WORKERS must be at least 1, got %d", result.Workers)
	}
	if result.QueueCapacity < 1 {
		return nil, fmt.Errorf("JUDGE_QUEUE_CAPACITY must be at least 1, got %d", result.QueueCapacity)
	}

	return result, nil
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}
