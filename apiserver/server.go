// Package apiserver exposes a single interpreter session per WebSocket
// connection: a client posts assembly source, and the server relays
// istream bytes in and ostream bytes out over the connection until the
// program exits.
package apiserver

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// Server is the HTTP front end hosting the WebSocket endpoint.
type Server struct {
	mux  *http.ServeMux
	addr string
	srv  *http.Server
}

// NewServer builds a Server that will listen on addr once Start is called.
func NewServer(addr string) *Server {
	s := &Server{mux: http.NewServeMux(), addr: addr}
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/ws", s.handleWebSocket)
	return s
}

// Handler returns the server's http.Handler, for use with httptest.
func (s *Server) Handler() http.Handler { return s.mux }

// Start runs the HTTP server until it is shut down or fails.
func (s *Server) Start() error {
	s.srv = &http.Server{
		Addr:         s.addr,
		Handler:      s.mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	log.Printf("mipsgo host service starting on %s", s.addr)
	return s.srv.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"status": "ok"}); err != nil {
		log.Printf("health encode error: %v", err)
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	newSession(conn).run()
}
