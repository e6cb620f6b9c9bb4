// Package feedback turns an NBJ coaching-step request into a single
// chat-completion call and normalizes the answer.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nbjcoach/nbjfeedback/pkg/llm"
)

// FallbackContent is returned when the upstream reply carries no text.
const FallbackContent = "(keine Antwort)"

// ServiceConfig holds the upstream credential and generation parameters.
// Zero values (nil for Temperature) defer to the profile defaults.
type ServiceConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature *float64
}

// Translator is stateless and safe for concurrent use.
type Translator struct {
	client  llm.Client
	cfg     ServiceConfig
	profile *Profile
}

// New creates a Translator. A nil profile selects DefaultProfile.
func New(client llm.Client, cfg ServiceConfig, profile *Profile) *Translator {
	if profile == nil {
		profile = DefaultProfile()
	}
	return &Translator{client: client, cfg: cfg, profile: profile}
}

// Profile returns the active profile.
func (t *Translator) Profile() *Profile { return t.profile }

// ForProfile returns a Translator sharing the client and configuration but
// using a different profile.
func (t *Translator) ForProfile(p *Profile) *Translator {
	return New(t.client, t.cfg, p)
}

// ChatRequest builds the outbound request for req without sending it.
func (t *Translator) ChatRequest(req CoachingRequest) (llm.ChatRequest, Prompt) {
	prompt := BuildPrompt(t.profile, req)

	model := t.cfg.Model
	if model == "" {
		model = t.profile.Model
	}
	maxTokens := t.cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = t.profile.MaxTokens
	}
	temperature := t.profile.Temperature
	if t.cfg.Temperature != nil {
		temperature = *t.cfg.Temperature
	}

	return llm.ChatRequest{
		Model:       model,
		Messages:    prompt.Messages(),
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}, prompt
}

// Translate runs one request through the upstream service.
//
// A missing credential yields *ConfigError before any network call. A non-2xx
// upstream reply yields *UpstreamError with the body unmodified. An empty
// reply is not an error: Content is FallbackContent.
func (t *Translator) Translate(ctx context.Context, req CoachingRequest) (*CoachingResponse, error) {
	if strings.TrimSpace(t.cfg.APIKey) == "" {
		return nil, &ConfigError{Err: ErrMissingCredential}
	}
	if t.client == nil {
		return nil, &ConfigError{Err: ErrNoClient}
	}

	chatReq, prompt := t.ChatRequest(req)

	resp, err := t.client.Chat(ctx, chatReq)
	if err != nil {
		var se *llm.StatusError
		if errors.As(err, &se) {
			return nil, &UpstreamError{Status: se.StatusCode, Body: se.Body}
		}
		return nil, fmt.Errorf("generating feedback: %w", err)
	}

	content := resp.FirstContent()
	if content == "" {
		content = FallbackContent
	}

	out := &CoachingResponse{
		Content:  content,
		Language: req.LanguageCode(),
		Style:    prompt.Style,
		Profile:  t.profile.Name,
		Model:    chatReq.Model,
	}
	if resp != nil {
		out.Usage = resp.Usage
	}
	return out, nil
}
