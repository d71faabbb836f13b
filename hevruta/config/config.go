package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port       string
	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string
	JWTSecret  string

	AssistantBaseURL string
	AssistantAPIKey  string
	AssistantID      string

	AirtableBaseURL string
	AirtableAPIKey  string
	AirtableBaseID  string
	AirtableTable   string

	RedisAddr     string
	RedisPassword string

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string

	PDFPresetPath string
}

func LoadConfig() Config {
	// .env is optional; system environment wins when both are present
	_ = godotenv.Load()

	return Config{
		Port:       getEnv("PORT", "8000"),
		DBUser:     getEnv("DB_USER", ""),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBHost:     getEnv("DB_HOST", ""),
		DBPort:     getEnv("DB_PORT", ""),
		DBName:     getEnv("DB_NAME", ""),
		JWTSecret:  getEnv("JWT_SECRET", ""),

		AssistantBaseURL: getEnv("ASSISTANT_BASE_URL", "https://api.openai.com/v1"),
		AssistantAPIKey:  getEnv("ASSISTANT_API_KEY", ""),
		AssistantID:      getEnv("ASSISTANT_ID", ""),

		AirtableBaseURL: getEnv("AIRTABLE_BASE_URL", "https://api.airtable.com"),
		AirtableAPIKey:  getEnv("AIRTABLE_API_KEY", ""),
		AirtableBaseID:  getEnv("AIRTABLE_BASE_ID", ""),
		AirtableTable:   getEnv("AIRTABLE_TABLE", "Feedback"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		MinIOEndpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinIOAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinIOBucket:    getEnv("MINIO_BUCKET", "hevruta-exports"),

		PDFPresetPath: getEnv("PDF_PRESET_PATH", "hevruta/configs/pdf.yaml"),
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return fallback
}
