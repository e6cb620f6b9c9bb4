// Package httpapi exposes the feedback translator over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nbjcoach/nbjfeedback/internal/feedback"
	"github.com/nbjcoach/nbjfeedback/internal/usage"
)

// Recorder receives one usage event per translation attempt.
type Recorder interface {
	Record(ctx context.Context, e *usage.Event) error
}

// Handler serves the feedback API.
type Handler struct {
	translator *feedback.Translator
	recorder   Recorder
	maxBody    int64
	logger     *slog.Logger
	router     chi.Router
}

// Option configures a Handler.
type Option func(*Handler)

// WithRecorder enables usage recording.
func WithRecorder(r Recorder) Option {
	return func(h *Handler) { h.recorder = r }
}

// WithMaxBodyBytes caps the request body size.
func WithMaxBodyBytes(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxBody = n
		}
	}
}

// WithLogger sets the logger used for request failures.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// New creates a Handler around the given translator. The translator's
// profile is served on the bare endpoint.
func New(t *feedback.Translator, opts ...Option) *Handler {
	h := &Handler{
		translator: t,
		maxBody:    64 << 10,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.router = h.buildRouter()
	return h
}

// Router returns the HTTP handler.
func (h *Handler) Router() http.Handler { return h.router }

func (h *Handler) buildRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(h.recoverJSON)
	r.Use(CORS)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Post("/api/nbj_feedback", h.handleFeedback)
	r.Post("/api/nbj_feedback/{profile}", h.handleFeedback)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	return r
}

// --- Request/Response types ---

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// --- Handlers ---

func (h *Handler) handleFeedback(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	t := h.translator
	if name := chi.URLParam(r, "profile"); name != "" {
		p, ok := feedback.LookupProfile(name)
		if !ok {
			writeError(w, http.StatusNotFound, fmt.Sprintf("unknown profile %q", name))
			return
		}
		t = t.ForProfile(p)
	}
	profile := t.Profile()

	var req feedback.CoachingRequest
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		status := http.StatusInternalServerError
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		h.logger.Warn("Invalid request body", "request_id", middleware.GetReqID(r.Context()), "error", err)
		h.record(r, profile, req, start, nil, usage.OutcomeInternal, status)
		writeError(w, status, err.Error())
		return
	}

	out, err := t.Translate(r.Context(), req)
	if err != nil {
		status, outcome, body := classify(err)
		h.logger.Error("Feedback translation failed",
			"request_id", middleware.GetReqID(r.Context()),
			"profile", profile.Name,
			"status", status,
			"error", err)
		h.record(r, profile, req, start, nil, outcome, status)
		writeJSON(w, status, body)
		return
	}

	outcome := usage.OutcomeOK
	if out.Content == feedback.FallbackContent {
		outcome = usage.OutcomeFallback
	}
	h.record(r, profile, req, start, out, outcome, http.StatusOK)

	writeJSON(w, http.StatusOK, map[string]string{
		profile.OutputField: out.Content,
		"language":          out.Language,
		"style":             out.Style,
	})
}

// classify maps a translation error to a status code, usage outcome and
// response body.
func classify(err error) (int, usage.Outcome, errorResponse) {
	var ce *feedback.ConfigError
	if errors.As(err, &ce) {
		return http.StatusInternalServerError, usage.OutcomeConfig, errorResponse{Error: ce.Err.Error()}
	}
	var ue *feedback.UpstreamError
	if errors.As(err, &ue) {
		return ue.Status, usage.OutcomeUpstream, errorResponse{Error: "upstream error", Detail: ue.Body}
	}
	return http.StatusInternalServerError, usage.OutcomeInternal, errorResponse{Error: err.Error()}
}

func (h *Handler) record(r *http.Request, p *feedback.Profile, req feedback.CoachingRequest, start time.Time, out *feedback.CoachingResponse, outcome usage.Outcome, status int) {
	if h.recorder == nil {
		return
	}
	style, _ := p.ResolveStyle(p.Selection(req))
	e := &usage.Event{
		RequestID: middleware.GetReqID(r.Context()),
		Profile:   p.Name,
		Language:  req.LanguageCode(),
		Step:      req.StepNumber(),
		Style:     style,
		Outcome:   outcome,
		Status:    status,
		Latency:   time.Since(start),
	}
	if out != nil {
		e.Model = out.Model
		e.PromptTokens = out.Usage.PromptTokens
		e.CompletionTokens = out.Usage.CompletionTokens
	}
	// Detached so a client disconnect does not drop the row.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), 5*time.Second)
	defer cancel()
	if err := h.recorder.Record(ctx, e); err != nil {
		h.logger.Warn("Recording usage failed", "request_id", e.RequestID, "error", err)
	}
}

// recoverJSON turns a panic into a 500 JSON error instead of a dropped connection.
func (h *Handler) recoverJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				h.logger.Error("Handler panic", "request_id", middleware.GetReqID(r.Context()), "panic", rec)
				writeError(w, http.StatusInternalServerError, fmt.Sprint(rec))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
