package config

import (
	"fmt"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks that the loaded configuration is internally
// consistent and that production deployments carry their required secrets.
// Development and test environments are allowed to run without an LLM key;
// the services degrade to canned content in that case.
func ValidateConfig(cfg *Config) error {
	if cfg.JWTSecret == "" && IsProduction() {
		return ValidationError{Field: "JWT_SECRET", Message: "required in production"}
	}
	if cfg.LLMAPIKey == "" && IsProduction() {
		return ValidationError{Field: "DEEPSEEK_API_KEY", Message: "required in production"}
	}
	if cfg.NotifyRateLimit <= 0 {
		return ValidationError{Field: "NOTIFY_RATE_LIMIT", Message: "must be positive"}
	}
	if cfg.NotifyRateWindow <= 0 {
		return ValidationError{Field: "NOTIFY_RATE_WINDOW", Message: "must be positive"}
	}
	if cfg.AnalysisCacheTTL <= 0 {
		return ValidationError{Field: "ANALYSIS_CACHE_TTL", Message: "must be positive"}
	}
	if cfg.ProgressCacheTTL <= 0 {
		return ValidationError{Field: "PROGRESS_CACHE_TTL", Message: "must be positive"}
	}
	return nil
}
