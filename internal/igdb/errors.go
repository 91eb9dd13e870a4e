package igdb

import "fmt"

// ConfigError means a required credential is missing from the
// environment. It is raised before any network call and is not
// retryable.
type ConfigError struct {
	Missing string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("igdb: missing required configuration: %s", e.Missing)
}

// AuthError means the token exchange itself was rejected.
type AuthError struct {
	Status int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("igdb: token request failed: %d", e.Status)
}

// APIError is a non-success catalog API response after the built-in
// single retry. Further retries are the caller's decision.
type APIError struct {
	Status int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("igdb: api error: %d", e.Status)
}
