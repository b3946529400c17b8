package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"slices"

	"github.com/dpayton/go-chatserver/internal/chat"
	"github.com/dpayton/go-chatserver/internal/config"
	"github.com/gorilla/handlers"
	"github.com/gorilla/websocket"
	"github.com/teris-io/shortid"
)

// Server owns the HTTP side of the chat server: the websocket upgrade
// endpoint and its middleware stack. All chat semantics live in the engine.
type Server struct {
	log            *log.Logger
	engine         *chat.Engine
	srv            *http.Server
	allowedOrigins []string
	// newConnId is swapped out in tests
	newConnId func() (string, error)
}

func NewServer(mux *http.ServeMux, logger *log.Logger, engine *chat.Engine, cfg *config.Config) *Server {
	s := &Server{
		log:            logger,
		engine:         engine,
		allowedOrigins: cfg.AllowedOrigins,
		newConnId:      shortid.Generate,
	}

	mux.HandleFunc("GET /ws", s.serveWs)

	h := handlers.CORS(
		handlers.MaxAge(3600),
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept"}),
		handlers.AllowCredentials(),
	)(mux)

	h = s.recoveryHandler(h)

	s.srv = &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: h,
	}

	return s
}

func (s *Server) recoveryHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.log.Printf("panic: %v", err)
				w.Header().Set("Connection", "close")
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func (s *Server) serveWs(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			// only allow connections from allowed origins
			origin := r.Header.Get("Origin")
			if origin == "" {
				// if no origin header, allow the request
				return true
			}

			return slices.Contains(s.allowedOrigins, origin)
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Println("error upgrading connection:", err)
		return
	}

	id, err := s.newConnId()
	if err != nil {
		s.log.Println("generate connection id:", err)
		conn.Close()
		return
	}

	client := NewClient(id, conn, s.engine, s.log)

	s.engine.Register(client)
	go client.Write()
	go client.Read()
}

func (s *Server) Start() error {
	s.log.Printf("starting server on %s\n", s.srv.Addr)
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Println("shutting down HTTP server...")
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}
