package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Riot API configuration.
type RiotConfiguration struct {
	ApiKeys []string
	Region  string
}

// A single rate limit window.
type LimitWindow struct {
	Count         int
	ResetInterval time.Duration
}

// Client side rate limits, mirroring the two windows a personal key has.
type LimitsConfiguration struct {
	Lower  LimitWindow
	Higher LimitWindow
}

// Retry policy for the ladder pagination.
type RetryConfiguration struct {
	RateLimitFallback time.Duration
	UnavailableDelay  time.Duration
	MaxRetries        int
	RotateOnRateLimit bool
}

// Redis configuration struct.
type RedisConfiguration struct {
	Host     string
	Port     string
	Password string
}

// Database configuration struct.
type DatabaseConfiguration struct {
	URL string
}

// Bucket used to store the run logs.
type BucketConfiguration struct {
	Region       string
	AccessKey    string
	AccessSecret string
	Endpoint     string
	LogBucket    string
}

// Metrics pushgateway configuration.
type MetricsConfiguration struct {
	PushgatewayURL string
	Job            string
}

// Config is the full configuration of the tools.
type Config struct {
	Riot     RiotConfiguration
	Limits   LimitsConfiguration
	Retry    RetryConfiguration
	Redis    RedisConfiguration
	Database DatabaseConfiguration
	Bucket   BucketConfiguration
	Metrics  MetricsConfiguration
	Language string
}

// Load the variables.
// The .env file is only read when not running on Docker, and it's optional.
func Load() (*Config, error) {
	if os.Getenv("ENVIRONMENT") != "docker" {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			log.Printf("Couldn't load the .env file: %v", err)
		}
	}

	cfg := &Config{
		Riot: RiotConfiguration{
			ApiKeys: loadApiKeys(),
			Region:  getEnvOrDefault("RIOT_REGION", "NA1"),
		},
		Limits: LimitsConfiguration{
			Lower: LimitWindow{
				Count:         getIntOrDefault("RIOT_LIMIT_LOWER_COUNT", 20),
				ResetInterval: getDurationOrDefault("RIOT_LIMIT_LOWER_INTERVAL", time.Second),
			},
			Higher: LimitWindow{
				Count:         getIntOrDefault("RIOT_LIMIT_HIGHER_COUNT", 100),
				ResetInterval: getDurationOrDefault("RIOT_LIMIT_HIGHER_INTERVAL", 2*time.Minute),
			},
		},
		Retry: RetryConfiguration{
			RateLimitFallback: getDurationOrDefault("RIOT_RATE_LIMIT_FALLBACK", 10*time.Second),
			UnavailableDelay:  getDurationOrDefault("RIOT_UNAVAILABLE_DELAY", 5*time.Second),
			MaxRetries:        getIntOrDefault("RIOT_MAX_RETRIES", 10),
			RotateOnRateLimit: getBoolOrDefault("RIOT_ROTATE_ON_RATE_LIMIT", false),
		},
		Redis: RedisConfiguration{
			Host:     os.Getenv("REDIS_HOST"),
			Port:     getEnvOrDefault("REDIS_PORT", "6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		Database: DatabaseConfiguration{
			URL: os.Getenv("DATABASE_URL"),
		},
		Bucket: BucketConfiguration{
			Region:       getEnvOrDefault("BUCKET_REGION", "us-east-1"),
			AccessKey:    os.Getenv("BUCKET_ACCESS_KEY"),
			AccessSecret: os.Getenv("BUCKET_ACCESS_SECRET"),
			Endpoint:     os.Getenv("BUCKET_ENDPOINT"),
			LogBucket:    os.Getenv("BUCKET_LOG_BUCKET"),
		},
		Metrics: MetricsConfiguration{
			PushgatewayURL: os.Getenv("PUSHGATEWAY_URL"),
			Job:            getEnvOrDefault("PUSHGATEWAY_JOB", "loltools"),
		},
		Language: getEnvOrDefault("DDRAGON_LANGUAGE", "en_US"),
	}

	return cfg, nil
}

// RedisEnabled reports if a redis host was configured.
func (c *Config) RedisEnabled() bool {
	return c.Redis.Host != ""
}

// DatabaseEnabled reports if a database was configured.
func (c *Config) DatabaseEnabled() bool {
	return c.Database.URL != ""
}

// BucketEnabled reports if the log bucket was configured.
func (c *Config) BucketEnabled() bool {
	return c.Bucket.LogBucket != "" && c.Bucket.AccessKey != ""
}

// Multiple keys can be passed separated by comma, the single key variable is still accepted.
func loadApiKeys() []string {
	raw := os.Getenv("RIOT_API_KEYS")
	if raw == "" {
		raw = os.Getenv("RIOT_API_KEY")
	}

	var keys []string
	for _, key := range strings.Split(raw, ",") {
		key = strings.TrimSpace(key)
		if key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

// getEnvOrDefault returns the environment variable value or a default.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

// Durations accept the Go syntax ("1.5s") or a plain number of seconds.
func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}

	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}

	if seconds, err := strconv.ParseFloat(raw, 64); err == nil {
		return time.Duration(seconds * float64(time.Second))
	}

	return defaultValue
}
