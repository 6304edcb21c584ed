package server

import (
	"dialog-hub/auth"
	"dialog-hub/domain"
	"dialog-hub/domain/event"
	"dialog-hub/runtime"
	"dialog-hub/session"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

var _ session.Lifecycle = (*runtime.Router)(nil)

// handshake validates the access token before the upgrade, so a bad
// token is answered with a plain 401 and no socket is ever opened.
func (s *Server) handshake(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return c.Status(fiber.StatusUpgradeRequired).JSON(fiber.Map{"error": "websocket upgrade required"})
	}
	userID, err := s.validator.Validate(c.UserContext(), auth.ExtractToken(c))
	if err != nil {
		s.log.Debug("Handshake rejected", "ip", c.IP(), "error", err)
		return c.Status(fiber.StatusUnauthorized).JSON(event.NewError(err, 0))
	}
	c.Locals(auth.UserIDKey, userID)
	return c.Next()
}

func (s *Server) serveChat(conn *websocket.Conn) {
	user, ok := conn.Locals(auth.UserIDKey).(domain.UserID)
	if !ok {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unauthenticated"))
		return
	}

	sess := session.New(conn, user, s.log, s.options)
	log := s.log.With("user_id", user, "connection_id", sess.ID())
	log.Debug("Connection opened")
	_ = sess.Enqueue(event.NewConnected(user))

	if err := sess.Run(s.ctx, s.router); err != nil {
		log.Warn("Connection ended with error", "error", err, "code", sess.CloseCode())
		return
	}
	log.Debug("Connection closed", "code", sess.CloseCode())
}
