package config

import "os"

// Environment is the runtime environment the process was started in.
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

// GetEnvironment reads the environment from ENV. A CI run is detected from
// the CI variable regardless of ENV; anything unrecognized counts as
// development.
func GetEnvironment() Environment {
	if os.Getenv("CI") == "true" {
		return CI
	}
	switch os.Getenv("ENV") {
	case "production":
		return Production
	case "test":
		return Test
	default:
		return Development
	}
}

// IsDevelopment reports whether the process runs in development.
func IsDevelopment() bool { return GetEnvironment() == Development }

// IsProduction reports whether the process runs in production.
func IsProduction() bool { return GetEnvironment() == Production }
