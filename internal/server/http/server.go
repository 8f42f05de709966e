// Package http serves the review web form and its JSON API.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"scholar/internal/config"
	"scholar/internal/llm"
	"scholar/internal/logging"
	"scholar/internal/observability"
	"scholar/internal/store"
	"scholar/internal/textextract"
)

// APISettings are per-request model overrides sent by the web form.
type APISettings struct {
	APIBase     string   `json:"apiBase"`
	APIKey      string   `json:"apiKey"`
	ModelName   string   `json:"modelName"`
	Temperature *float64 `json:"temperature"`
}

// custom reports whether the caller supplied their own endpoint or key.
func (s *APISettings) custom() bool {
	return s != nil && (s.APIBase != "" || s.APIKey != "")
}

// GeneratorFactory builds a generator for custom API settings.
type GeneratorFactory func(settings APISettings) (llm.Generator, error)

// Deps are the collaborators the server needs. Generator may be nil when no
// provider is configured; requests must then carry their own API settings.
type Deps struct {
	Generator  llm.Generator
	Factory    GeneratorFactory
	Store      *store.JSONLStore
	Extractor  *textextract.Extractor
	Obs        *observability.Observability
	Review     config.ReviewConfig
	Server     config.ServerConfig
	Logger     logging.Logger
	ModelLabel string
}

// Server owns the gin engine and the underlying http.Server.
type Server struct {
	deps       Deps
	engine     *gin.Engine
	httpServer *http.Server
	logger     logging.Logger
}

// New wires routes and middleware.
func New(deps Deps) (*Server, error) {
	if deps.Store == nil {
		return nil, errors.New("store is required")
	}
	if deps.Extractor == nil {
		deps.Extractor = textextract.New(deps.Server.FetchTimeout, deps.Server.MaxUploadBytes, deps.Logger)
	}
	if deps.Factory == nil {
		deps.Factory = defaultFactory(config.LLMConfig{}, deps.Obs)
	}
	if deps.Server.HeartbeatInterval <= 0 {
		deps.Server.HeartbeatInterval = 3 * time.Second
	}
	logger := deps.Logger
	if logging.IsNil(logger) {
		logger = logging.NewComponentLogger("http")
	}

	s := &Server{deps: deps, logger: logger}
	s.engine = s.routes()
	s.httpServer = &http.Server{
		Addr:              deps.Server.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// NewFactory returns the factory used for custom API settings. Custom
// clients get the same retry, rate limit, and instrumentation layers as the
// configured provider.
func NewFactory(cfg config.LLMConfig, obs *observability.Observability) GeneratorFactory {
	return defaultFactory(cfg, obs)
}

func defaultFactory(cfg config.LLMConfig, obs *observability.Observability) GeneratorFactory {
	return func(settings APISettings) (llm.Generator, error) {
		base := settings.APIBase
		if base == "" {
			base = config.DefaultOpenAIBaseURL
		}
		client, err := llm.NewOpenAIClient(llm.OpenAIConfig{
			BaseURL:   base,
			APIKey:    settings.APIKey,
			Model:     settings.ModelName,
			Timeout:   cfg.Timeout,
			MaxTokens: cfg.MaxTokens,
		})
		if err != nil {
			return nil, err
		}
		return llm.Wrap(client, settings.ModelName, cfg, obs), nil
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
