package config

import (
	"os"
	"strings"
)

// Config carries all environment-driven settings. Fixed tunables live in
// constants.go; everything here may differ between deployments.
type Config struct {
	Port string

	// Provider credentials and endpoints
	FinnhubAPIKey string
	CohereAPIKey  string
	GeminiAPIKey  string
	GeminiModel   string

	// ReaderProxyBase is the base URL of the rendering proxy used as the
	// second fetch tier (r.jina.ai style)
	ReaderProxyBase string

	// RedisAddr is the shared cache backend; empty disables Redis and the
	// in-memory fallback is used from the start
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Optional S3 archival of completed documents
	S3Bucket       string
	S3Region       string
	S3Profile      string
	S3Prefix       string
	S3UsePathStyle bool
}

// Load reads configuration from the environment.
func Load() Config {
	prefix := strings.TrimSpace(os.Getenv("S3_PREFIX"))
	if prefix != "" {
		prefix = strings.Trim(prefix, "/") + "/"
	}

	return Config{
		Port:            GetEnvOrDefault("PORT", "8080"),
		FinnhubAPIKey:   os.Getenv("FINNHUB_API_KEY"),
		CohereAPIKey:    os.Getenv("COHERE_API_KEY"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		GeminiModel:     GetEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
		ReaderProxyBase: GetEnvOrDefault("READER_PROXY_BASE", "https://r.jina.ai"),
		RedisAddr:       GetEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         0,
		S3Bucket:        strings.TrimSpace(os.Getenv("S3_BUCKET")),
		S3Region:        strings.TrimSpace(os.Getenv("S3_REGION")),
		S3Profile:       strings.TrimSpace(os.Getenv("S3_PROFILE")),
		S3Prefix:        prefix,
		S3UsePathStyle:  strings.EqualFold(strings.TrimSpace(os.Getenv("S3_USE_PATH_STYLE")), "true"),
	}
}

// GetEnvOrDefault returns the environment value for key, or defaultVal when unset.
func GetEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
