package httpserver

import (
	"log/slog"
	"net/http"
	"time"
)

// Option adjusts the server returned by New.
type Option func(*http.Server)

// WithLogger routes net/http's internal errors (TLS handshakes, panics in
// handlers) to the given logger at warn level.
func WithLogger(logger *slog.Logger) Option {
	return func(s *http.Server) {
		if logger != nil {
			s.ErrorLog = slog.NewLogLogger(logger.Handler(), slog.LevelWarn)
		}
	}
}

// New builds the admin API server. Request bodies are small JSON
// documents, so read and write timeouts stay short.
func New(addr string, handler http.Handler, opts ...Option) *http.Server {
	s := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    64 << 10,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
