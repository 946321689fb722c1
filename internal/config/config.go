package config

import (
	"fmt"
	"os"
	"strings"
)

// Config holds all configuration for the store server.
type Config struct {
	DatabaseURL    string
	LogLevel       string
	Port           string
	MigrationsPath string
	// AuthTokens maps bearer tokens onto user ids, parsed from the
	// AUTH_TOKENS variable ("token1:user1,token2:user2").
	AuthTokens map[string]string
}

// Load loads the server configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		LogLevel:       getEnvOrDefault("LOG_LEVEL", "info"),
		Port:           getEnvOrDefault("PORT", "8080"),
		MigrationsPath: getEnvOrDefault("MIGRATIONS_PATH", "migrations"),
	}

	if cfg.DatabaseURL = os.Getenv("DATABASE_URL"); cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	tokens, err := parseAuthTokens(os.Getenv("AUTH_TOKENS"))
	if err != nil {
		return nil, err
	}
	cfg.AuthTokens = tokens

	return cfg, nil
}

// AgentConfig holds configuration for the device agent.
type AgentConfig struct {
	APIBaseURL string
	APIToken   string
	LogLevel   string
	// MetricsPort exposes the agent's Prometheus endpoint.
	MetricsPort string
	// LocalScheduling reports whether the platform supports local
	// notifications; set to "false" on unsupported platforms.
	LocalScheduling bool
}

// LoadAgent loads the agent configuration from environment variables.
func LoadAgent() (*AgentConfig, error) {
	cfg := &AgentConfig{
		APIToken:        os.Getenv("API_TOKEN"),
		LogLevel:        getEnvOrDefault("LOG_LEVEL", "info"),
		MetricsPort:     getEnvOrDefault("METRICS_PORT", "9091"),
		LocalScheduling: getEnvOrDefault("LOCAL_SCHEDULING", "true") != "false",
	}

	if cfg.APIBaseURL = os.Getenv("API_BASE_URL"); cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("API_BASE_URL environment variable is required")
	}

	return cfg, nil
}

// parseAuthTokens parses "token:user" pairs separated by commas.
func parseAuthTokens(raw string) (map[string]string, error) {
	tokens := make(map[string]string)
	if raw == "" {
		return tokens, nil
	}
	for _, pair := range strings.Split(raw, ",") {
		token, user, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok || token == "" || user == "" {
			return nil, fmt.Errorf("AUTH_TOKENS entry %q must have the form token:user", pair)
		}
		tokens[token] = user
	}
	return tokens, nil
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
