package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// External data sources
	Sources SourcesConfig

	// Price/fundamentals collection
	Download DownloadConfig

	// Scoring
	Scoring ScoringConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds store configuration
type DatabaseConfig struct {
	Driver string // postgres, sqlite

	// PostgreSQL
	URL             string
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration

	// SQLite
	SQLitePath string
}

// SourcesConfig holds the listing/price/fundamentals endpoints
type SourcesConfig struct {
	NasdaqListedURL  string
	OtherListedURL   string
	SECEdgarURL      string
	SECUserAgent     string
	YahooSummaryURL  string
	HTTPTimeout      time.Duration
	HTTPMaxRetries   int
	RequestPerSecond float64
}

// DownloadConfig holds batch download tuning
type DownloadConfig struct {
	BatchSize          int
	Workers            int
	BatchDelay         time.Duration
	MaxRetries         int
	RetryBaseDelay     time.Duration
	FundamentalsDelay  time.Duration
	FundamentalsTTL    time.Duration
	DailyUpdateCron    string
	ScoringCron        string
	UpdateFundamentals bool
}

// ScoringConfig holds ranking defaults
type ScoringConfig struct {
	LookbackDays int
	TopN         int
	StrategyFile string
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "sqlite"),
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
			SQLitePath:      getEnv("SQLITE_PATH", "data/stocks.db"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Sources: SourcesConfig{
			NasdaqListedURL:  getEnv("NASDAQ_LISTED_URL", "https://www.nasdaqtrader.com/dynamic/symdir/nasdaqlisted.txt"),
			OtherListedURL:   getEnv("OTHER_LISTED_URL", "https://www.nasdaqtrader.com/dynamic/symdir/otherlisted.txt"),
			SECEdgarURL:      getEnv("SEC_EDGAR_URL", "https://www.sec.gov/files/company_tickers.json"),
			SECUserAgent:     getEnv("SEC_USER_AGENT", "stockrank research@example.com"),
			YahooSummaryURL:  getEnv("YAHOO_SUMMARY_URL", "https://query2.finance.yahoo.com/v10/finance/quoteSummary"),
			HTTPTimeout:      getEnvAsDuration("HTTP_TIMEOUT", "30s"),
			HTTPMaxRetries:   getEnvAsInt("HTTP_MAX_RETRIES", 3),
			RequestPerSecond: getEnvAsFloat("HTTP_REQUESTS_PER_SECOND", 2),
		},

		Download: DownloadConfig{
			BatchSize:          getEnvAsInt("DOWNLOAD_BATCH_SIZE", 50),
			Workers:            getEnvAsInt("DOWNLOAD_WORKERS", 4),
			BatchDelay:         getEnvAsDuration("DOWNLOAD_BATCH_DELAY", "2s"),
			MaxRetries:         getEnvAsInt("DOWNLOAD_MAX_RETRIES", 3),
			RetryBaseDelay:     getEnvAsDuration("DOWNLOAD_RETRY_BASE_DELAY", "5s"),
			FundamentalsDelay:  getEnvAsDuration("FUNDAMENTALS_DELAY", "500ms"),
			FundamentalsTTL:    getEnvAsDuration("FUNDAMENTALS_CACHE_TTL", "24h"),
			DailyUpdateCron:    getEnv("DAILY_UPDATE_CRON", "0 30 17 * * 1-5"),
			ScoringCron:        getEnv("SCORING_CRON", "0 0 18 * * 1-5"),
			UpdateFundamentals: getEnvAsBool("UPDATE_FUNDAMENTALS", false),
		},

		Scoring: ScoringConfig{
			LookbackDays: getEnvAsInt("SCORING_LOOKBACK_DAYS", 250),
			TopN:         getEnvAsInt("SCORING_TOP_N", 20),
			StrategyFile: getEnv("STRATEGY_FILE", ""),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required for postgres driver")
		}
	case "sqlite":
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for sqlite driver")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be one of: postgres, sqlite")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Download.BatchSize <= 0 {
		return fmt.Errorf("DOWNLOAD_BATCH_SIZE must be positive")
	}

	if c.Scoring.LookbackDays <= 0 {
		return fmt.Errorf("SCORING_LOOKBACK_DAYS must be positive")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{".env"}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
