// Package server exposes the hub over HTTP: the /ws/chat WebSocket
// endpoint, the read-only REST API under /api/v1 and /health.
package server

import (
	"context"
	"dialog-hub/auth"
	"dialog-hub/contract"
	"dialog-hub/runtime"
	"dialog-hub/runtime/workers"
	"dialog-hub/services"
	"dialog-hub/session"
	"log/slog"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type statsProvider interface {
	Latest() (workers.ProcessStats, bool)
}

type Config struct {
	Session session.Options
}

type Server struct {
	app       *fiber.App
	log       *slog.Logger
	validator contract.ITokenValidator
	router    *runtime.Router
	registry  *runtime.Registry
	chat      services.IChatService
	monitor   statsProvider
	options   session.Options

	// sessions outlive the request; they stop when this context is cancelled
	ctx    context.Context
	cancel context.CancelFunc
}

func NewServer(
	log *slog.Logger,
	validator contract.ITokenValidator,
	router *runtime.Router,
	registry *runtime.Registry,
	chat services.IChatService,
	monitor statsProvider,
	config Config,
) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		app: fiber.New(fiber.Config{
			DisableStartupMessage: true,
			ErrorHandler:          errorHandler,
		}),
		log:       log,
		validator: validator,
		router:    router,
		registry:  registry,
		chat:      chat,
		monitor:   monitor,
		options:   config.Session,
		ctx:       ctx,
		cancel:    cancel,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Get("/health", s.health)

	s.app.Use("/ws", s.handshake)
	s.app.Get("/ws/chat", websocket.New(s.serveChat))

	api := s.app.Group("/api/v1", auth.Middleware(s.validator))
	api.Get("/presence/:user_id", s.presence)
	api.Get("/unread", s.unreadTotal)
	api.Get("/dialogs", s.dialogs)
	api.Get("/dialogs/:id/unread", s.unreadInDialog)
	api.Get("/dialogs/:id/messages", s.messages)
	api.Post("/dialogs/:id/messages", s.send)
	api.Post("/dialogs/:id/read", s.read)
	api.Post("/dialogs/:id/block", s.block)
	api.Post("/dialogs/:id/unblock", s.unblock)
	api.Delete("/dialogs/:id", s.delete)
}

// App is exposed for app.Test in tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(address string) error {
	s.log.Info("Starting HTTP server", "address", address)
	return s.app.Listen(address)
}

// Shutdown stops accepting connections and closes every live session
// with a going-away frame.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()
	s.registry.CloseAll(websocket.CloseGoingAway, "server shutting down")
	return s.app.ShutdownWithContext(ctx)
}
