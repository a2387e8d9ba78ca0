package lookup

import "strings"

// ConfigurationError is returned by NewClient when credentials are missing.
// It is not retryable.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return "lookup: missing API credentials: " + strings.Join(e.Missing, ", ")
}
