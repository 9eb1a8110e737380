package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Ai       AIConfig
	Analysis AnalysisConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	LLMProvider    string // "openai" or "ollama"
	LLMModel       string // e.g. "gpt-4o-mini", "llama3"
	OpenAIKey      string
	OpenAIBaseURL  string
	OllamaBaseURL  string
	WhisperModel   string
	WhisperTimeout time.Duration
}

type AnalysisConfig struct {
	PerKindTimeout time.Duration
	EventTopic     string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			LLMProvider:    getEnv("LLM_PROVIDER", "openai"),
			LLMModel:       getEnv("LLM_MODEL", "gpt-4o-mini"),
			OpenAIKey:      getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL:  getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			OllamaBaseURL:  getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			WhisperModel:   getEnv("WHISPER_MODEL", "whisper-1"),
			WhisperTimeout: getEnvAsDuration("WHISPER_TIMEOUT_SECONDS", 60*time.Second),
		},
		Analysis: AnalysisConfig{
			PerKindTimeout: getEnvAsDuration("ANALYSIS_TIMEOUT_SECONDS", 30*time.Second),
			EventTopic:     getEnv("ANALYSIS_EVENT_TOPIC_NAME", "ANALYSIS_COMPLETED"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if seconds, err := strconv.Atoi(strValue); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return fallback
}
