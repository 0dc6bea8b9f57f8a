package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	DiscordToken string `validate:"required"`
	GeminiAPIKey string `validate:"required"`

	DataFile string `validate:"required"`
	ImageDir string `validate:"required"`

	Port        int    `validate:"min=1,max=65535"`
	LogLevel    string `validate:"oneof=debug info warn warning error"`
	LogFormat   string `validate:"oneof=json text"`
	Environment string `validate:"oneof=dev staging prod"`

	CommandPrefix string `validate:"required"`

	// Role allow-lists for privileged commands. Empty means nobody
	// holds the privilege (beyond whatever the operator grants later).
	DropRoleIDs  []string
	GrantRoleIDs []string

	OpenCooldownSeconds int `validate:"min=1"`
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := &Config{
		DiscordToken:  os.Getenv("DISCORD_TOKEN"),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		DataFile:      getEnv("DATA_FILE", "data/snapshot.json"),
		ImageDir:      getEnv("IMAGE_DIR", "data/images"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "text"),
		Environment:   getEnv("ENVIRONMENT", "dev"),
		CommandPrefix: getEnv("COMMAND_PREFIX", "!"),
		DropRoleIDs:   splitList(os.Getenv("DROP_ROLE_IDS")),
		GrantRoleIDs:  splitList(os.Getenv("GRANT_ROLE_IDS")),
	}

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT value: %w", err)
	}
	cfg.Port = port

	cooldown, err := strconv.Atoi(getEnv("OPEN_COOLDOWN_SECONDS", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid OPEN_COOLDOWN_SECONDS value: %w", err)
	}
	cfg.OpenCooldownSeconds = cooldown

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// splitList parses a comma-separated env value into trimmed entries.
func splitList(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
