package api

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"lens/internal/config"
	"lens/internal/logging"
	"lens/internal/objectstore"
	"lens/internal/recognition"
	"lens/internal/result"
	"lens/internal/store"
	"lens/internal/upload"
)

// Server exposes the recognition workflow over HTTP. Each handler drives one
// workflow component per request; blob state lives in the store, never here.
type Server struct {
	cfg       *config.Config
	store     *store.Store
	registrar *upload.Registrar
	trigger   *recognition.Trigger
	reader    *result.Reader
	objects   objectstore.Store
	log       *slog.Logger
}

// NewServer wires the HTTP boundary from its collaborators.
func NewServer(cfg *config.Config, st *store.Store, registrar *upload.Registrar, trigger *recognition.Trigger, reader *result.Reader, objects objectstore.Store, logger *slog.Logger) *Server {
	return &Server{
		cfg:       cfg,
		store:     st,
		registrar: registrar,
		trigger:   trigger,
		reader:    reader,
		objects:   objects,
		log:       logging.NewComponentLogger(logger, "api"),
	}
}

// Router builds the route table. The content PUT and the health probe stay
// outside token auth: the first is the upload target handed to third
// parties, the second serves liveness checks.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.withRequestLog)

	r.HandleFunc("/v1/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/v1/blobs/{id}/content", s.handleUploadContent).Methods(http.MethodPut)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.Use(s.withAuth)
	v1.HandleFunc("/blobs", s.handleRegister).Methods(http.MethodPost)
	v1.HandleFunc("/blobs", s.handleList).Methods(http.MethodGet)
	v1.HandleFunc("/blobs/{id}", s.handleResult).Methods(http.MethodGet)
	v1.HandleFunc("/events", s.handleEvent).Methods(http.MethodPost)

	return r
}

// withAuth rejects requests that do not carry the configured API token as a
// bearer credential. An empty configured token disables the check.
func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := s.cfg.API.Token
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}
		supplied, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(supplied), []byte(token)) != 1 {
			s.writeError(w, http.StatusUnauthorized,
				errorUnauthorized, "Missing or invalid API token.", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/health" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		attrs := logging.Args(
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Int("http_status", recorder.status),
			logging.Duration("request_duration", time.Since(start)),
		)
		if recorder.status >= http.StatusInternalServerError {
			s.log.Error("request completed", attrs...)
			return
		}
		s.log.Debug("request completed", attrs...)
	})
}
