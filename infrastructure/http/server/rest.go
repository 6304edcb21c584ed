package server

import (
	"dialog-hub/auth"
	"dialog-hub/domain"
	"dialog-hub/domain/event"
	"dialog-hub/errors"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

var validate = validator.New()

type sendRequest struct {
	Text string `json:"text" validate:"required"`
}

// readRequest without up_to_sequence marks the whole dialog read.
type readRequest struct {
	UpToSequence uint64 `json:"up_to_sequence"`
}

// decodeBody fills in from a JSON body. An empty body leaves in at its zero value.
func decodeBody(c *fiber.Ctx, in any) error {
	if body := c.Body(); len(body) > 0 {
		if err := json.Unmarshal(body, in); err != nil {
			return fmt.Errorf("%w: %v", errors.ErrProtocol, err)
		}
	}
	if err := validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrProtocol, err)
	}
	return nil
}

func errorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if stderrors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{"code": "http", "message": fiberErr.Message})
	}
	return c.Status(errors.HTTPStatus(err)).JSON(event.NewError(err, 0))
}

func (s *Server) presence(c *fiber.Ctx) error {
	user, err := domain.ParseUserID(c.Params("user_id"))
	if err != nil {
		return fmt.Errorf("%w: user id %q", errors.ErrProtocol, c.Params("user_id"))
	}
	return c.JSON(s.chat.Presence(user))
}

func (s *Server) unreadTotal(c *fiber.Ctx) error {
	user, err := auth.UserFrom(c)
	if err != nil {
		return err
	}
	count, err := s.chat.UnreadTotal(c.UserContext(), user)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"unread_count": count})
}

func (s *Server) unreadInDialog(c *fiber.Ctx) error {
	user, dialog, err := userAndDialog(c)
	if err != nil {
		return err
	}
	count, err := s.chat.UnreadInDialog(c.UserContext(), user, dialog)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"dialog_id": dialog, "unread_count": count})
}

func (s *Server) dialogs(c *fiber.Ctx) error {
	user, err := auth.UserFrom(c)
	if err != nil {
		return err
	}
	views, err := s.chat.Dialogs(c.UserContext(), user)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"dialogs": views})
}

func (s *Server) messages(c *fiber.Ctx) error {
	user, dialog, err := userAndDialog(c)
	if err != nil {
		return err
	}
	since, err := strconv.ParseUint(c.Query("since", "0"), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: since must be a sequence number", errors.ErrProtocol)
	}
	messages, err := s.chat.Messages(c.UserContext(), user, dialog, since)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"messages": lo.Map(messages, func(m domain.Message, _ int) event.Message {
		return event.NewMessage(m)
	})})
}

func (s *Server) send(c *fiber.Ctx) error {
	user, dialog, err := userAndDialog(c)
	if err != nil {
		return err
	}
	var in sendRequest
	if err = decodeBody(c, &in); err != nil {
		return err
	}
	message, err := s.chat.Send(c.UserContext(), user, dialog, in.Text)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(event.NewMessage(message))
}

func (s *Server) read(c *fiber.Ctx) error {
	user, dialog, err := userAndDialog(c)
	if err != nil {
		return err
	}
	var in readRequest
	if err = decodeBody(c, &in); err != nil {
		return err
	}
	highest, err := s.chat.MarkRead(c.UserContext(), user, dialog, in.UpToSequence)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"dialog_id": dialog, "up_to_sequence": highest})
}

func (s *Server) block(c *fiber.Ctx) error {
	user, dialog, err := userAndDialog(c)
	if err != nil {
		return err
	}
	if err = s.chat.Block(c.UserContext(), user, dialog); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) unblock(c *fiber.Ctx) error {
	user, dialog, err := userAndDialog(c)
	if err != nil {
		return err
	}
	if err = s.chat.Unblock(c.UserContext(), user, dialog); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) delete(c *fiber.Ctx) error {
	user, dialog, err := userAndDialog(c)
	if err != nil {
		return err
	}
	if err = s.chat.Delete(c.UserContext(), user, dialog); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) health(c *fiber.Ctx) error {
	body := fiber.Map{
		"status":      "ok",
		"connections": s.registry.Count(),
	}
	if s.monitor != nil {
		if stats, ok := s.monitor.Latest(); ok {
			body["process"] = stats
		}
	}
	return c.JSON(body)
}

func userAndDialog(c *fiber.Ctx) (domain.UserID, domain.DialogID, error) {
	user, err := auth.UserFrom(c)
	if err != nil {
		return 0, 0, err
	}
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, 0, fmt.Errorf("%w: dialog id %q", errors.ErrProtocol, c.Params("id"))
	}
	return user, domain.DialogID(id), nil
}
