package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	StorageFirestore = "firestore"
	StorageMemory    = "memory"
)

type Config struct {
	ServerPort  string
	Environment string
	CORSOrigin  string
	TrustProxy  bool

	StorageDriver              string
	FirestoreProject           string
	FirebaseServiceAccountJSON string
	FirebaseServiceAccountPath string

	JWTSecret string
	JWTExpiry int64

	RedisAddr     string
	RedisPassword string

	ReportTimezone string
	RateLimitRPS   float64
	RateLimitBurst int
	ChatPerMinute  int

	AdminEmail    string
	AdminPassword string
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:  getEnv("SERVER_PORT", getEnv("PORT", "4000")),
		Environment: getEnv("ENVIRONMENT", "development"),
		CORSOrigin:  getEnv("CORS_ORIGIN", "http://localhost:5173"),
		TrustProxy:  getEnv("TRUST_PROXY", "false") == "true",

		StorageDriver:              strings.ToLower(getEnv("STORAGE_DRIVER", StorageFirestore)),
		FirestoreProject:           getEnv("FIRESTORE_PROJECT_ID", ""),
		FirebaseServiceAccountJSON: getEnv("FIREBASE_SERVICE_ACCOUNT_JSON", ""),
		FirebaseServiceAccountPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),

		JWTSecret: getEnv("JWT_SECRET", "change-me"),
		JWTExpiry: getEnvAsInt64("JWT_EXPIRY", 7*24*60*60), // 7 days

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		ReportTimezone: getEnv("REPORT_TIMEZONE", "Asia/Ho_Chi_Minh"),
		RateLimitRPS:   getEnvAsFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst: int(getEnvAsInt64("RATE_LIMIT_BURST", 30)),
		ChatPerMinute:  int(getEnvAsInt64("CHAT_RATE_PER_MINUTE", 30)),

		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@rescue.local"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin123"),
	}

	return config, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		f, err := strconv.ParseFloat(value, 64)
		if err == nil {
			return f
		}
	}
	return defaultValue
}
