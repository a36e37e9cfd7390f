// Package config loads service configuration from environment variables
// using envconfig struct tags. Command-line flags in cmd/ override the
// loaded values.
package config
