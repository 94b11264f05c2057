package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration. It is built once at startup and
// passed explicitly to the HTTP surface; there is no global settings state.
type Config struct {
	AppPort        string  // Application port
	DBUser         string  // Database user
	DBPassword     string  // Database password
	DBHost         string  // Database host
	DBPort         string  // Database port
	DBName         string  // Database name
	JWTSecret      string  // JWT signing secret
	RedisAddr      string  // Redis server address
	RedisPass      string  // Redis password
	RedisDB        int     // Redis database number
	AdminRole      string  // Role name that grants catalog write access
	PasswordMinLen int     // Minimum accepted password length
	PasswordMaxLen int     // Maximum accepted password length
	AuthRateLimit  float64 // Requests per second allowed on public auth endpoints, per client IP
	AuthRateBurst  int     // Burst size for the auth rate limiter
	IsProd         bool    // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	return &Config{
		AppPort:        os.Getenv("APP_PORT"),                                // Application port
		DBUser:         os.Getenv("DB_USER"),                                 // Database user
		DBPassword:     os.Getenv("DB_PASSWORD"),                             // Database password
		DBHost:         os.Getenv("DB_HOST"),                                 // Database host
		DBPort:         os.Getenv("DB_PORT"),                                 // Database port
		DBName:         os.Getenv("DB_NAME"),                                 // Database name
		JWTSecret:      os.Getenv("JWT_SECRET"),                              // JWT signing secret
		RedisAddr:      os.Getenv("REDIS_ADDR"),                              // Redis server address
		RedisPass:      os.Getenv("REDIS_PASS"),                              // Redis password
		RedisDB:        redisDB,                                              // Redis database number
		AdminRole:      envOrDefault("ADMIN_ROLE", "admin"),                  // Admin role name
		PasswordMinLen: envIntOrDefault("PASSWORD_MIN_LEN", 8),               // Minimum password length
		PasswordMaxLen: envIntOrDefault("PASSWORD_MAX_LEN", 64),              // Maximum password length
		AuthRateLimit:  float64(envIntOrDefault("AUTH_RATE_LIMIT", 5)),       // Auth endpoint rate limit
		AuthRateBurst:  envIntOrDefault("AUTH_RATE_BURST", 10),               // Auth endpoint burst
		IsProd:         os.Getenv("IS_PROD") == "true",                       // Is production environment
	}
}

// envOrDefault returns the environment value or a fallback when unset
func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v // Use the configured value
	}
	return def // Fall back to the default
}

// envIntOrDefault returns the environment value as int or a fallback when unset or invalid
func envIntOrDefault(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n // Use the configured value
		}
	}
	return def // Fall back to the default
}
