package feedback

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/nbjcoach/nbjfeedback/pkg/llm"
)

// Step is the NBJ step number. It decodes from a JSON number or a numeric
// string since browser forms often send the latter.
type Step int

// UnmarshalJSON implements json.Unmarshaler.
func (s *Step) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = 0
		return nil
	}
	raw := string(b)
	if strings.HasPrefix(raw, `"`) {
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			*s = 0
			return nil
		}
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("step: %q is not a number", raw)
	}
	switch {
	case math.IsNaN(n) || math.IsInf(n, 0):
		return fmt.Errorf("step: %q is not a finite number", raw)
	case n < 1:
		*s = 0
	case n >= math.MaxInt:
		*s = Step(math.MaxInt)
	default:
		*s = Step(n)
	}
	return nil
}

// CoachingRequest is the form input for one NBJ step. Every field is
// optional; see Normalize for the defaults.
type CoachingRequest struct {
	Language    string             `json:"language,omitempty"`
	Lang        string             `json:"lang,omitempty"`
	Step        Step               `json:"step,omitempty"`
	Text        string             `json:"text"`
	Notes       string             `json:"notes,omitempty"`
	Perspective string             `json:"perspective,omitempty"`
	Tone        string             `json:"tone,omitempty"`
	Durations   map[string]float64 `json:"durations,omitempty"`
}

// LanguageCode returns the requested language code, preferring "language"
// over the legacy "lang" field and defaulting to "de".
func (r CoachingRequest) LanguageCode() string {
	if code := normalizeKey(r.Language); code != "" {
		return code
	}
	if code := normalizeKey(r.Lang); code != "" {
		return code
	}
	return DefaultLanguage
}

// StepNumber returns the step, defaulting non-positive values to 1.
func (r CoachingRequest) StepNumber() int {
	if r.Step < 1 {
		return 1
	}
	return int(r.Step)
}

// CoachingResponse is the normalized result of a successful translation.
type CoachingResponse struct {
	Content  string
	Language string
	Style    string
	Profile  string
	Model    string
	Usage    llm.Usage
}
