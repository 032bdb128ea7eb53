package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL  string
	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string
	BucketName   string
	AIAPIKey     string
	EmbedModel   string
	EmbedDim     int
	JWTSecret    string
	NotifyURL    string
	Port         string

	ChunkSize       int
	ChunkOverlap    int
	EmbedBatchSize  int
	DeleteBatchSize int
	IngestWorkers   int
	SearchTopK      int
}

// LoadConfig loads the environment variables and returns the config.
func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		AwsAccessKey: getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey: getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:    getEnv("AWS_REGION", "us-east-2"),
		BucketName:   getEnv("BUCKET_NAME", "benefits-docs"),
		AIAPIKey:     getEnv("GEMINI_API_KEY", ""),
		EmbedModel:   getEnv("EMBED_MODEL", "text-embedding-004"),
		EmbedDim:     getEnvInt("EMBED_DIM", 768),
		JWTSecret:    getEnv("JWT_SECRET", ""),
		NotifyURL:    getEnv("NOTIFY_WEBHOOK_URL", ""),
		Port:         getEnv("PORT", "8080"),

		ChunkSize:       getEnvInt("CHUNK_SIZE", 1000),
		ChunkOverlap:    getEnvInt("CHUNK_OVERLAP", 200),
		EmbedBatchSize:  getEnvInt("EMBED_BATCH_SIZE", 10),
		DeleteBatchSize: getEnvInt("DELETE_BATCH_SIZE", 500),
		IngestWorkers:   getEnvInt("INGEST_WORKERS", 4),
		SearchTopK:      getEnvInt("SEARCH_TOP_K", 5),
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	return cfg
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}
