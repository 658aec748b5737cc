package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Port             string
	DataDir          string
	CacheDir         string
	CacheDBPath      string
	FrontendDistPath string
	CORSOrigins      []string

	ScryfallBaseURL string
	CacheMinPrice   float64
	MemoSize        int

	RefreshInterval time.Duration
	RefreshSets     []string
}

// Load reads an optional .env file and returns a populated Config.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Config: no .env file found, using environment variables")
	}

	return &Config{
		Port:             getEnv("PORT", "8080"),
		DataDir:          getEnv("DATA_DIR", "./data"),
		CacheDir:         getEnv("CACHE_DIR", "./data/cache"),
		CacheDBPath:      getEnv("CACHE_DB_PATH", ""),
		FrontendDistPath: getEnv("FRONTEND_DIST_PATH", ""),
		CORSOrigins:      getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),

		ScryfallBaseURL: getEnv("SCRYFALL_BASE_URL", ""),
		CacheMinPrice:   getEnvFloat("CACHE_MIN_PRICE", 1.0),
		MemoSize:        getEnvInt("MEMO_SIZE", 1024),

		RefreshInterval: getEnvDuration("REFRESH_INTERVAL", 0),
		RefreshSets:     getEnvList("REFRESH_SETS", nil),
	}
}

// UsesCacheDB is true when the sqlite cache store replaces the cache directory
func (c *Config) UsesCacheDB() bool {
	return c.CacheDBPath != ""
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			return n
		}
		log.Printf("Config: ignoring invalid %s=%q", key, val)
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil && f >= 0 {
			return f
		}
		log.Printf("Config: ignoring invalid %s=%q", key, val)
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil && d >= 0 {
			return d
		}
		log.Printf("Config: ignoring invalid %s=%q", key, val)
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
