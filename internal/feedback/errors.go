package feedback

import (
	"errors"
	"fmt"
)

// ErrMissingCredential is reported when no API key is configured. The
// capitalized text is returned verbatim to HTTP clients.
var ErrMissingCredential = errors.New("Missing OPENAI_API_KEY")

// ErrNoClient is reported when the translator has no upstream client.
var ErrNoClient = errors.New("no LLM client configured")

// ConfigError is a server-side configuration problem detected before any
// network call.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return "configuration error: " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error { return e.Err }

// UpstreamError carries a non-success reply from the generation service.
// Status and Body are the upstream's own, unmodified.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.Status)
}
