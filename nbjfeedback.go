// Package nbjfeedback is the top-level entry point for the NBJ feedback service.
//
// Use the Builder to compose an application:
//
//	app, err := nbjfeedback.NewBuilder().WithConfig(cfg).Build()
//	app.Start(ctx)
//
// Or replace individual components:
//
//	app, err := nbjfeedback.NewBuilder().
//	    WithConfig(cfg).
//	    WithLLM(myClient).
//	    Build()
package nbjfeedback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/nbjcoach/nbjfeedback/internal/config"
	"github.com/nbjcoach/nbjfeedback/internal/feedback"
	"github.com/nbjcoach/nbjfeedback/internal/httpapi"
	"github.com/nbjcoach/nbjfeedback/internal/usage"
	"github.com/nbjcoach/nbjfeedback/pkg/llm"
	llmOpenAI "github.com/nbjcoach/nbjfeedback/pkg/llm/openai"
)

// Builder constructs an App.
type Builder struct {
	config *config.Config
	llm    llm.Client
	usage  *usage.Store
	logger *slog.Logger
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// WithConfig sets the application configuration.
func (b *Builder) WithConfig(cfg *config.Config) *Builder {
	b.config = cfg
	return b
}

// WithLLM sets the chat-completion client. Without it an OpenAI client is
// built from the configuration.
func (b *Builder) WithLLM(client llm.Client) *Builder {
	b.llm = client
	return b
}

// WithUsageStore sets the usage ledger. Without it a SQLite ledger is opened
// when the configuration names one.
func (b *Builder) WithUsageStore(s *usage.Store) *Builder {
	b.usage = s
	return b
}

// WithLogger sets the structured logger.
func (b *Builder) WithLogger(l *slog.Logger) *Builder {
	b.logger = l
	return b
}

// Build creates the App. Missing components are filled with defaults.
func (b *Builder) Build() (*App, error) {
	if err := applyDefaults(b); err != nil {
		return nil, err
	}

	profile, _ := feedback.LookupProfile(b.config.Profile)
	translator := feedback.New(b.llm, b.config.ServiceConfig(), profile)

	opts := []httpapi.Option{
		httpapi.WithMaxBodyBytes(b.config.MaxBodyBytes),
		httpapi.WithLogger(b.logger),
	}
	if b.usage != nil {
		opts = append(opts, httpapi.WithRecorder(b.usage))
	}

	return &App{
		config:     b.config,
		translator: translator,
		handler:    httpapi.New(translator, opts...),
		usage:      b.usage,
		logger:     b.logger,
	}, nil
}

// App is a composed feedback service.
type App struct {
	config     *config.Config
	translator *feedback.Translator
	handler    *httpapi.Handler
	usage      *usage.Store
	logger     *slog.Logger
}

// Translator returns the configured translator for direct use.
func (a *App) Translator() *feedback.Translator { return a.translator }

// Handler returns the HTTP handler.
func (a *App) Handler() http.Handler { return a.handler.Router() }

// Start serves HTTP until ctx is done, then shuts down gracefully.
func (a *App) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.config.ServerAddr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      a.config.UpstreamTimeout + 15*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Shutdown waits for in-flight requests, which may be blocked on an
	// upstream call for up to UpstreamTimeout.
	shutdownDone := make(chan error, 1)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.UpstreamTimeout+10*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		if err != nil {
			a.logger.Error("Server forced to shutdown", "error", err)
		}
		shutdownDone <- err
	}()

	if a.config.OpenAIAPIKey == "" {
		a.logger.Warn("OPENAI_API_KEY is not set; feedback requests will fail with a configuration error")
	}
	a.logger.Info("NBJ feedback server listening",
		"addr", a.config.ServerAddr,
		"profile", a.translator.Profile().Name,
		"usage_ledger", a.usage != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Join(err, a.Close())
	}

	// ListenAndServe returns as soon as Shutdown begins; the ledger must stay
	// open until the handlers still running have recorded their events.
	shutdownErr := <-shutdownDone
	a.logger.Info("NBJ feedback server stopped")
	return errors.Join(shutdownErr, a.Close())
}

// Close releases the usage ledger, if any.
func (a *App) Close() error {
	if a.usage != nil {
		return a.usage.Close()
	}
	return nil
}

// ---------------------------------------------------------------------------
// Defaults
// ---------------------------------------------------------------------------

// applyDefaults fills in missing fields on the builder.
func applyDefaults(b *Builder) error {
	if b.logger == nil {
		b.logger = slog.Default()
	}

	if b.config == nil {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		b.config = cfg
	}
	if err := b.config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if b.llm == nil {
		b.llm = llmOpenAI.New(b.config.OpenAIAPIKey,
			llmOpenAI.WithBaseURL(b.config.OpenAIBaseURL),
			llmOpenAI.WithTimeout(b.config.UpstreamTimeout),
		)
	}

	if b.usage == nil && b.config.UsageEnabled() {
		st, err := usage.NewStore(b.config.UsageDBPath)
		if err != nil {
			return fmt.Errorf("initializing usage store: %w", err)
		}
		b.usage = st
	}

	return nil
}
