package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"batepapo/internal/api"

	"github.com/rs/cors"
)

type APIServer struct {
	server *http.Server
	log    *slog.Logger
	wg     sync.WaitGroup
}

// NewHandler wires the chat routes onto a mux. Split out from NewAPIServer
// so tests can drive the full HTTP surface without binding a port.
func NewHandler(handlers *api.API) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /participants", handlers.WithLogging(handlers.RegisterParticipantHandler))
	mux.HandleFunc("GET /participants", handlers.WithLogging(handlers.ListParticipantsHandler))
	mux.HandleFunc("POST /messages", handlers.WithLogging(handlers.PostMessageHandler))
	mux.HandleFunc("GET /messages", handlers.WithLogging(handlers.ListMessagesHandler))
	mux.HandleFunc("DELETE /messages/{id}", handlers.WithLogging(handlers.DeleteMessageHandler))
	mux.HandleFunc("POST /status", handlers.WithLogging(handlers.HeartbeatHandler))

	// Polling clients run anywhere; the API is open by design.
	return cors.AllowAll().Handler(mux)
}

func NewAPIServer(handlers *api.API, log *slog.Logger, addr string) *APIServer {
	if addr == "" {
		addr = ":5000"
	}

	return &APIServer{
		server: &http.Server{
			Addr:    addr,
			Handler: NewHandler(handlers),
		},
		log: log,
	}
}

func (s *APIServer) Start() error {
	s.log.Info("server started", "addr", s.server.Addr)
	s.wg.Add(1)
	defer s.wg.Done()

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *APIServer) Shutdown(ctx context.Context) error {
	defer s.wg.Wait()
	return s.server.Shutdown(ctx)
}
