package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/birmacher/ai-commit-generator/commit"
	"github.com/birmacher/ai-commit-generator/logger"
	"github.com/birmacher/ai-commit-generator/model"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const (
	GeneratePath = "/api/generate"
	HealthPath   = "/healthz"

	// RequestIDHeader is echoed back on every response
	RequestIDHeader = "X-Request-ID"
	// ErrorKindHeader carries the commit.Kind of a failed request
	ErrorKindHeader = "X-Error-Kind"
)

// Generator produces commit messages, satisfied by *commit.Service
type Generator interface {
	Generate(ctx context.Context, req model.GenerationRequest) (model.CommitResult, error)
}

// Config holds the HTTP server settings
type Config struct {
	Addr            string
	MaxBodyBytes    int64
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Server exposes the generate endpoint over HTTP
type Server struct {
	generator Generator
	config    Config
	router    *mux.Router
}

// New creates a Server and registers its routes
func New(generator Generator, config Config) *Server {
	s := &Server{
		generator: generator,
		config:    config,
		router:    mux.NewRouter(),
	}

	s.router.Use(s.requestContext)
	s.router.HandleFunc(GeneratePath, s.handleGenerate).Methods(http.MethodPost)
	s.router.HandleFunc(HealthPath, s.handleHealth).Methods(http.MethodGet)
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, model.ErrorResponse{Error: "Method not allowed"})
	})

	return s
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:         s.config.Addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Listening on %s", s.config.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "listen")
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	return nil
}

// requestContext tags each request with an ID and a request-scoped logger
func (s *Server) requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set(RequestIDHeader, requestID)

		log := logger.With("request_id", requestID, "method", r.Method, "path", r.URL.Path)
		start := time.Now()
		next.ServeHTTP(w, r.WithContext(logger.NewContext(r.Context(), log)))
		log.Debugw("Request handled", "duration", time.Since(start))
	})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeRequest(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := s.generator.Generate(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeRequest reads the JSON body. An empty body is treated as an empty
// request so that validation reports the missing input.
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (model.GenerationRequest, error) {
	var req model.GenerationRequest

	body := r.Body
	if s.config.MaxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)
	}

	err := json.NewDecoder(body).Decode(&req)
	switch {
	case err == nil, errors.Is(err, io.EOF):
		return req, nil
	default:
		var tooLarge *http.MaxBytesError
		message := commit.MsgInvalidRequest
		if errors.As(err, &tooLarge) {
			message = "Request body too large"
		}
		logger.FromContext(r.Context()).Infow("Invalid request body", "error", err)
		return req, &commit.GenerationError{Kind: commit.InvalidRequest, Message: message, Err: err}
	}
}

func writeError(w http.ResponseWriter, err error) {
	gerr := commit.AsGenerationError(err)
	w.Header().Set(ErrorKindHeader, gerr.Kind.String())
	writeJSON(w, gerr.StatusCode(), model.ErrorResponse{Error: gerr.Message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warnf("Failed to write response: %v", err)
	}
}
