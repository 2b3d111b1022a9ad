package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

type Config struct {
	// Server
	ServerPort     string
	ServerHost     string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestBody int64

	// Career API
	CareerAPIBaseURL string
	CareerAPITimeout time.Duration

	// Sessions
	SessionStore string
	SessionTTL   time.Duration
	MaxSessions  int

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Kafka
	KafkaBrokers  []string
	KafkaGroupID  string
	ActivityTopic string

	// UI
	CatalogPath      string
	ProgressInterval time.Duration
	ProgressStep     int

	RateLimitRPS   int
	RateLimitBurst int
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first without overriding variables that are already set.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "3000"),
		ServerHost:     getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:    getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:   getDuration("WRITE_TIMEOUT", 30*time.Second),
		MaxRequestBody: int64(getIntEnv("MAX_REQUEST_BODY_BYTES", 32*1024*1024)),

		CareerAPIBaseURL: strings.TrimSpace(os.Getenv("CAREER_API_BASE_URL")),
		CareerAPITimeout: getDuration("CAREER_API_TIMEOUT", 0),

		SessionStore: strings.ToLower(getEnv("SESSION_STORE", SessionStoreMemory)),
		SessionTTL:   getDuration("SESSION_TTL", 12*time.Hour),
		MaxSessions:  getIntEnv("MAX_SESSIONS", 1000),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		KafkaBrokers:  getStringSliceEnv("KAFKA_BROKERS", nil),
		KafkaGroupID:  getEnv("KAFKA_GROUP_ID", "pathway-finder"),
		ActivityTopic: getEnv("ACTIVITY_TOPIC", ""),

		CatalogPath:      getEnv("CATALOG_PATH", ""),
		ProgressInterval: getDuration("PROGRESS_INTERVAL", time.Second),
		ProgressStep:     getIntEnv("PROGRESS_STEP", 5),

		RateLimitRPS:   getIntEnv("RATE_LIMIT_RPS", 50),
		RateLimitBurst: getIntEnv("RATE_LIMIT_BURST", 100),
	}
}

// ActivityEnabled reports whether activity events should be published to Kafka.
func (c *Config) ActivityEnabled() bool {
	return len(c.KafkaBrokers) > 0 && c.ActivityTopic != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
