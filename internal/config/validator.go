package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks the config struct against its validation tags and
// returns a single readable error naming every failed field.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("config validation failed: %w", err)
	}

	var problems []string
	for _, fe := range verrs {
		problems = append(problems, describeFieldError(fe))
	}
	return fmt.Errorf("config validation failed: %s", strings.Join(problems, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s must be set", envNameFor(fe.Field()))
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", envNameFor(fe.Field()), fe.Param())
	case "min", "max":
		return fmt.Sprintf("%s out of range (%s %s)", envNameFor(fe.Field()), fe.Tag(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", envNameFor(fe.Field()), fe.Tag())
	}
}

// envNameFor maps struct field names back to the env vars users set.
func envNameFor(field string) string {
	switch field {
	case "DiscordToken":
		return "DISCORD_TOKEN"
	case "GeminiAPIKey":
		return "GEMINI_API_KEY"
	case "DataFile":
		return "DATA_FILE"
	case "ImageDir":
		return "IMAGE_DIR"
	case "Port":
		return "PORT"
	case "LogLevel":
		return "LOG_LEVEL"
	case "LogFormat":
		return "LOG_FORMAT"
	case "Environment":
		return "ENVIRONMENT"
	case "CommandPrefix":
		return "COMMAND_PREFIX"
	case "OpenCooldownSeconds":
		return "OPEN_COOLDOWN_SECONDS"
	default:
		return field
	}
}
