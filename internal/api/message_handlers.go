package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"birthday-inbox/internal/auth"
	"birthday-inbox/internal/messaging"
	"birthday-inbox/internal/models"
)

// birthdayPage handles GET /birthday
func (h *Handlers) birthdayPage(c echo.Context) error {
	user := auth.GetUserFromContext(c)
	return h.render(c, "birthday", pageData{Title: "Send a birthday message", Username: user.Username})
}

// birthdaySubmit handles POST /birthday
func (h *Handlers) birthdaySubmit(c echo.Context) error {
	const form = "/birthday"
	user := auth.GetUserFromContext(c)

	var req models.SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return redirectWithFlash(c, form, "Receiver is required!")
	}

	msg, err := h.messaging.Send(c.Request().Context(), user.Username, req.Receiver, req.Message, c.RealIP())
	switch {
	case err == nil:
		return redirectWithFlash(c, form, fmt.Sprintf("Message sent to %s!", msg.Receiver))
	case errors.Is(err, messaging.ErrEmptyReceiver):
		return redirectWithFlash(c, form, "Receiver is required!")
	case errors.Is(err, messaging.ErrEmptyMessage):
		return redirectWithFlash(c, form, "Message is required!")
	case errors.Is(err, messaging.ErrReceiverNotFound):
		return redirectWithFlash(c, form, fmt.Sprintf("User '%s' not found!", strings.TrimSpace(req.Receiver)))
	case errors.Is(err, messaging.ErrSelfMessage):
		return redirectWithFlash(c, form, "You can't send messages to yourself!")
	case errors.Is(err, messaging.ErrMessageNotPersisted):
		return redirectWithFlash(c, form, "Failed to send message!")
	default:
		h.logger.Error("message send error", zap.String("sender", user.Username), zap.Error(err))
		return redirectWithFlash(c, form, "Error sending message, please try again.")
	}
}

// inbox handles GET /inbox
func (h *Handlers) inbox(c echo.Context) error {
	user := auth.GetUserFromContext(c)

	messages, err := h.messaging.Inbox(c.Request().Context(), user.Username)
	if err != nil {
		h.logger.Error("inbox error", zap.String("username", user.Username), zap.Error(err))
		return redirectWithFlash(c, "/birthday", "Error loading inbox, please try again.")
	}

	return h.render(c, "inbox", pageData{
		Title:    "Inbox",
		Username: user.Username,
		Messages: messages,
	})
}
