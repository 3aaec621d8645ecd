package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application. It is built once in
// main and passed to each component; nothing reads the environment after
// Load returns.
type Config struct {
	// Server configuration
	Port            string        `json:"port"`
	Env             string        `json:"env"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	HTTPTimeout     time.Duration `json:"http_timeout"`

	// Source site
	SourceBaseURL     string        `json:"source_base_url"`
	SourceListingPath string        `json:"source_listing_path"`
	FetchTimeout      time.Duration `json:"fetch_timeout"`

	// Document analysis
	DownloadTimeout   time.Duration `json:"download_timeout"`
	MaxDownloadBytes  int64         `json:"max_download_bytes"`
	AnalyzeWorkers    int           `json:"analyze_workers"`
	TranslateEndpoint string        `json:"translate_endpoint"`

	// Store
	StorePath        string `json:"store_path"`
	MaxAnnouncements int    `json:"max_announcements"`

	// Analysis cache
	RedisURL          string        `json:"redis_url"`
	CacheTTL          time.Duration `json:"cache_ttl"`
	AnalysisCacheSize int           `json:"analysis_cache_size"`

	// Logging
	LogLevel string `json:"log_level"`

	// Security
	AdminAPIKey string `json:"admin_api_key"`
}

// Load loads configuration from environment variables.
func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	return &Config{
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("APP_ENV", "development"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		HTTPTimeout:     getEnvAsDuration("HTTP_TIMEOUT", 30*time.Second),

		SourceBaseURL:     getEnv("SOURCE_BASE_URL", "https://www.galgotiasuniversity.edu.in"),
		SourceListingPath: getEnv("SOURCE_LISTING_PATH", "/p/announcements/examination-announcement"),
		FetchTimeout:      getEnvAsDuration("FETCH_TIMEOUT", 30*time.Second),

		DownloadTimeout:   getEnvAsDuration("DOWNLOAD_TIMEOUT", 20*time.Second),
		MaxDownloadBytes:  getEnvAsInt64("MAX_DOWNLOAD_BYTES", 10<<20), // 10MB
		AnalyzeWorkers:    getEnvAsInt("ANALYZE_WORKERS", 5),
		TranslateEndpoint: getEnv("TRANSLATE_ENDPOINT", ""),

		StorePath:        getEnv("STORE_PATH", "./data/announcements.db"),
		MaxAnnouncements: getEnvAsInt("MAX_ANNOUNCEMENTS", 470),

		RedisURL:          getEnv("REDIS_URL", ""),
		CacheTTL:          getEnvAsDuration("CACHE_TTL", 720*time.Hour), // 30 days
		AnalysisCacheSize: getEnvAsInt("ANALYSIS_CACHE_SIZE", 512),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		AdminAPIKey: getEnv("ADMIN_API_KEY", ""),
	}
}

// ListingURL returns the absolute URL of the announcements listing page.
func (c *Config) ListingURL() string {
	return c.SourceBaseURL + c.SourceListingPath
}

// Helper functions for environment variable handling
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultVal int) int {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %d", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsInt64(name string, defaultVal int64) int64 {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %d", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsDuration(name string, defaultVal time.Duration) time.Duration {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %v", name, err, defaultVal)
		return defaultVal
	}
	return value
}
