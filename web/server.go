package web

import (
	"context"
	"net/http"
	"time"

	"cian-radar/utils"
)

// Server wraps the HTTP server lifecycle around the router.
type Server struct {
	httpServer *http.Server
	logger     *utils.Logger
}

// NewServer builds the server with timeouts sized for the search flow:
// a search holds its connection through the whole fetch, so the write
// timeout has to cover the slowest fetch including retries.
func NewServer(addr string, handler http.Handler, logger *utils.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 5 * time.Minute,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}
}

// Start serves requests until Shutdown or a listener error.
func (s *Server) Start() error {
	s.logger.Info("[web] listening on %s", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown stops accepting connections and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
