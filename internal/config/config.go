package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Chat (AIバックエンド)
	ChatAPIURL     string
	ChatAPIKey     string
	ChatTimeout    time.Duration
	ChatMaxRetries int
	ChatMaxHistory int
	ChatSystemHint string

	// Blog sync
	BlogFeedURLs       []string
	FetchTimeout       time.Duration
	FetchMaxSize       int64
	FetchMaxConcurrent int
	FetchInterval      time.Duration
	PostRetentionDays  int

	// Rate Limit
	RateLimitGeneral int
	RateLimitChat    int

	// Server
	ServerPort string
	BaseURL    string

	// Site artifacts
	SiteOutputDir string
	SiteName      string
	SiteAuthor    string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.BaseURL = os.Getenv("BASE_URL")
	if cfg.BaseURL == "" {
		missing = append(missing, "BASE_URL")
	}

	cfg.ChatAPIURL = os.Getenv("CHAT_API_URL")
	if cfg.ChatAPIURL == "" {
		missing = append(missing, "CHAT_API_URL")
	}

	cfg.ChatAPIKey = os.Getenv("CHAT_API_KEY")
	if cfg.ChatAPIKey == "" {
		missing = append(missing, "CHAT_API_KEY")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.ChatTimeout = getEnvDuration("CHAT_TIMEOUT", 30*time.Second)
	cfg.ChatMaxRetries = getEnvInt("CHAT_MAX_RETRIES", 3)
	cfg.ChatMaxHistory = getEnvInt("CHAT_MAX_HISTORY", 20)
	cfg.ChatSystemHint = getEnvString("CHAT_SYSTEM_HINT", "")
	cfg.BlogFeedURLs = splitList(os.Getenv("BLOG_FEED_URLS"))
	cfg.FetchTimeout = getEnvDuration("FETCH_TIMEOUT", 10*time.Second)
	cfg.FetchMaxSize = getEnvInt64("FETCH_MAX_SIZE", 5242880)
	cfg.FetchMaxConcurrent = getEnvInt("FETCH_MAX_CONCURRENT", 4)
	cfg.FetchInterval = getEnvDuration("FETCH_INTERVAL", 30*time.Minute)
	cfg.PostRetentionDays = getEnvInt("POST_RETENTION_DAYS", 365)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitChat = getEnvInt("RATE_LIMIT_CHAT", 10)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.SiteOutputDir = getEnvString("SITE_OUTPUT_DIR", "public")
	cfg.SiteName = getEnvString("SITE_NAME", "Hitoshi Ichikawa")
	cfg.SiteAuthor = getEnvString("SITE_AUTHOR", "Hitoshi Ichikawa")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:5173")

	return cfg, nil
}

// splitList はカンマ区切りの環境変数値をトリムして分割する。
// 空要素は除外する。
func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
