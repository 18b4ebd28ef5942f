package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Worker     WorkerConfig
	NATS       NATSConfig
	Database   DatabaseConfig
	YouTube    YouTubeConfig
	Transcript TranscriptConfig
	Verity     VerityConfig
	LLM        LLMConfig
	Pipeline   PipelineConfig
	Jobs       JobsConfig
}

type WorkerConfig struct {
	ID string
}

type NATSConfig struct {
	URL      string
	Stream   string
	Subject  string
	Consumer string
}

type DatabaseConfig struct {
	URL string
}

type YouTubeConfig struct {
	APIKey string
}

type TranscriptConfig struct {
	URL         string
	MinInterval time.Duration // spacing between outbound transcript requests
	Languages   []string
}

type VerityConfig struct {
	URL string // empty disables the hallucination check
}

type LLMConfig struct {
	Provider      string // "gemini" or "openai"
	GeminiAPIKey  string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	Model         string
	Temperature   float64
	MaxTokens     int
}

type PipelineConfig struct {
	ChunkSize    int
	ChunkOverlap int
}

type JobsConfig struct {
	MaxConcurrent          int
	BatchSize              int
	DefaultMinutesPerVideo float64
}

func Load() (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	workerID := getEnv("WORKER_ID", "where2eat-worker-1")

	return &Config{
		Worker: WorkerConfig{
			ID: workerID,
		},
		NATS: NATSConfig{
			URL:      getEnv("NATS_URL", "nats://localhost:4222"),
			Stream:   getEnv("NATS_STREAM", "CHANNEL_ANALYSIS"),
			Subject:  "analysis.channel.submit",
			Consumer: "analysis-" + workerID,
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		YouTube: YouTubeConfig{
			APIKey: getEnv("YOUTUBE_API_KEY", ""),
		},
		Transcript: TranscriptConfig{
			URL:         getEnv("TRANSCRIPT_API_URL", "http://localhost:8090"),
			MinInterval: getEnvDuration("TRANSCRIPT_MIN_INTERVAL", 1200*time.Millisecond),
			Languages:   getEnvList("TRANSCRIPT_LANGUAGES", []string{"he", "iw", "en"}),
		},
		Verity: VerityConfig{
			URL: getEnv("VERITY_API_URL", ""),
		},
		LLM: LLMConfig{
			Provider:      getEnv("LLM_PROVIDER", "gemini"),
			GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
			OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
			Model:         getEnv("LLM_MODEL", "gemini-1.5-flash"),
			Temperature:   getEnvFloat("LLM_TEMPERATURE", 0.2),
			MaxTokens:     getEnvInt("LLM_MAX_TOKENS", 8192),
		},
		Pipeline: PipelineConfig{
			ChunkSize:    getEnvInt("CHUNK_SIZE", 25000),
			ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 1000),
		},
		Jobs: JobsConfig{
			MaxConcurrent:          getEnvInt("JOBS_MAX_CONCURRENT", 3),
			BatchSize:              getEnvInt("JOBS_BATCH_SIZE", 10),
			DefaultMinutesPerVideo: getEnvFloat("JOBS_DEFAULT_MINUTES_PER_VIDEO", 2),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
