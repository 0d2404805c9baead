// File: internal/config/config.go
package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Client core
	APIBaseURL     string
	DBPath         string
	RequestTimeout time.Duration
	// KeepTokenOnTransportError distinguishes "bad credential" from "outage" on user fetch.
	// Off by default: any fetch failure logs the user out.
	KeepTokenOnTransportError bool
	// RollbackOnFailure removes the optimistic user message when a send fails.
	RollbackOnFailure bool

	// Reference backend
	ServerPort   string
	JWTSecretKey string
	ServerDBPath string
	AllowOrigins []string
	TokenTTL     time.Duration
	// LLM settings for the reference backend; without a key it answers with an echo.
	LLMAPIKey  string
	LLMBaseURL string
	LLMModel   string

	LogLevel    string
	Environment string
}

// Load reads configuration from environment variables or .env file.
func Load() *Config {
	env := os.Getenv("ENV")
	if strings.ToLower(env) != "production" {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found; continuing with environment variables")
		}
	}

	return &Config{
		APIBaseURL:                getEnv("ASHA_API_BASE_URL", "http://localhost:8000"),
		DBPath:                    getEnv("ASHA_DB_PATH", "asha.db"),
		RequestTimeout:            time.Duration(getEnvAsInt("ASHA_REQUEST_TIMEOUT", 60)) * time.Second,
		KeepTokenOnTransportError: getEnvAsBool("ASHA_KEEP_TOKEN_ON_TRANSPORT_ERROR", false),
		RollbackOnFailure:         getEnvAsBool("ASHA_ROLLBACK_ON_FAILURE", false),
		ServerPort:                getEnv("SERVER_PORT", "8000"),
		JWTSecretKey:              getEnv("JWT_SECRET_KEY", ""),
		ServerDBPath:              getEnv("SERVER_DB_PATH", "asha_server.db"),
		AllowOrigins:              strings.Split(getEnv("SERVER_ALLOW_ORIGINS", "http://localhost:3000"), ","),
		TokenTTL:                  time.Duration(getEnvAsInt("ACCESS_TOKEN_EXPIRE_MINUTES", 30)) * time.Minute,
		LLMAPIKey:                 getEnv("LLM_API_KEY", ""),
		LLMBaseURL:                getEnv("LLM_BASE_URL", "https://openrouter.ai/api/v1"),
		LLMModel:                  getEnv("LLM_MODEL", "nvidia/llama-3.3-nemotron-super-49b-v1:free"),
		LogLevel:                  getEnv("LOG_LEVEL", "INFO"),
		Environment:               env,
	}
}

// Validate checks the client settings.
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("ASHA_API_BASE_URL is required")
	}
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("ASHA_API_BASE_URL must be an absolute URL, got %q", c.APIBaseURL)
	}
	if c.DBPath == "" {
		return fmt.Errorf("ASHA_DB_PATH is required")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}
	return nil
}

// ValidateServer checks the reference backend settings.
func (c *Config) ValidateServer() error {
	if strings.ToLower(c.Environment) == "production" && c.JWTSecretKey == "" {
		return fmt.Errorf("missing required production environment variable: JWT_SECRET_KEY")
	}
	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive")
	}
	return nil
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an env var as an integer, with a fallback.
func getEnvAsInt(key string, defaultValue int) int {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as integer. Using default value.", key)
		return defaultValue
	}
	return intValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as bool. Using default value.", key)
		return defaultValue
	}
	return b
}
