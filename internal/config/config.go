package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion

	"github.com/joho/godotenv" // For loading .env files
)

// DefaultTokenTTLSec is the token lifetime used when TOKEN_TTL_SEC is unset (48 hours)
const DefaultTokenTTLSec = 172800

// Config holds the application configuration
type Config struct {
	AppPort     string // Application port
	DBUser      string // Database user
	DBPassword  string // Database password
	DBHost      string // Database host
	DBPort      string // Database port
	DBName      string // Database name
	TokenTTLSec int    // Token lifetime in seconds, measured from issuance
	IsProd      bool   // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	ttl := DefaultTokenTTLSec
	// Garbage or non-positive TTL values fall back to the default
	if v, err := strconv.Atoi(os.Getenv("TOKEN_TTL_SEC")); err == nil && v > 0 {
		ttl = v
	}
	return &Config{
		AppPort:     os.Getenv("APP_PORT"),          // Application port
		DBUser:      os.Getenv("DB_USER"),           // Database user
		DBPassword:  os.Getenv("DB_PASSWORD"),       // Database password
		DBHost:      os.Getenv("DB_HOST"),           // Database host
		DBPort:      os.Getenv("DB_PORT"),           // Database port
		DBName:      os.Getenv("DB_NAME"),           // Database name
		TokenTTLSec: ttl,                            // Token TTL in seconds
		IsProd:      os.Getenv("IS_PROD") == "true", // Is production environment
	}
}
