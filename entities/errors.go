package entities

import "fmt"

// ConfigError reports a missing or invalid invocation value.
type ConfigError struct {
	Field  string
	Reason string
}

func NewConfigError(field, reason string) *ConfigError {
	return &ConfigError{Field: field, Reason: reason}
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: '%s' %s", e.Field, e.Reason)
}
