package messaging

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"birthday-inbox/internal/database"
	"birthday-inbox/internal/metrics"
	"birthday-inbox/internal/models"
)

var (
	ErrEmptyReceiver       = errors.New("receiver is required")
	ErrEmptyMessage        = errors.New("message is required")
	ErrReceiverNotFound    = errors.New("receiver not found")
	ErrSelfMessage         = errors.New("cannot send a message to yourself")
	ErrMessageNotPersisted = errors.New("message was not persisted")
)

// Service sends messages between users and reads inboxes
type Service struct {
	users    *database.UserRepo
	messages *database.MessageRepo
	audit    *database.AuditRepo
	logger   *zap.Logger
}

// NewService creates a new messaging service
func NewService(db *sql.DB, logger *zap.Logger) *Service {
	return &Service{
		users:    database.NewUserRepo(db),
		messages: database.NewMessageRepo(db),
		audit:    database.NewAuditRepo(db),
		logger:   logger,
	}
}

// Send delivers body from sender to receiver. The receiver is resolved
// ignoring case and stored under its canonical username; markup is stripped
// from body before it is stored. The stored row is read back before Send
// reports success.
func (s *Service) Send(ctx context.Context, sender, receiver, body, ipAddress string) (*models.Message, error) {
	receiver = strings.TrimSpace(receiver)
	if receiver == "" {
		return nil, ErrEmptyReceiver
	}
	if body == "" {
		return nil, ErrEmptyMessage
	}

	clean := StripTags(body)
	if strings.TrimSpace(clean) == "" {
		return nil, ErrEmptyMessage
	}

	target, err := s.users.GetByUsername(ctx, receiver)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			metrics.MessagesSent.WithLabelValues(metrics.ResultRejected).Inc()
			s.logger.Info("receiver not found", zap.String("sender", sender), zap.String("receiver", receiver))
			return nil, ErrReceiverNotFound
		}
		metrics.MessagesSent.WithLabelValues(metrics.ResultFailure).Inc()
		return nil, fmt.Errorf("resolve receiver: %w", err)
	}

	if strings.EqualFold(target.Username, sender) {
		metrics.MessagesSent.WithLabelValues(metrics.ResultRejected).Inc()
		return nil, ErrSelfMessage
	}

	msg := &models.Message{
		Sender:   sender,
		Receiver: target.Username,
		Body:     clean,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		metrics.MessagesSent.WithLabelValues(metrics.ResultFailure).Inc()
		return nil, fmt.Errorf("insert message: %w", err)
	}

	stored, err := s.messages.GetByID(ctx, msg.ID)
	if err != nil || stored.Sender != msg.Sender || stored.Receiver != msg.Receiver || stored.Body != msg.Body {
		metrics.MessagesSent.WithLabelValues(metrics.ResultFailure).Inc()
		s.logger.Error("message not persisted", zap.Int64("message_id", msg.ID), zap.Error(err))
		return nil, ErrMessageNotPersisted
	}

	metrics.MessagesSent.WithLabelValues(metrics.ResultSuccess).Inc()
	s.logger.Info("message sent",
		zap.String("sender", stored.Sender),
		zap.String("receiver", stored.Receiver),
		zap.Int64("message_id", stored.ID))
	if err := s.audit.Log(ctx, sender, models.ActionMessageSend, stored.Receiver,
		map[string]int64{"message_id": stored.ID}, ipAddress); err != nil {
		s.logger.Warn("audit log failed", zap.String("action", models.ActionMessageSend), zap.Error(err))
	}

	return stored, nil
}

// Inbox returns the messages addressed to username, ignoring case, newest first
func (s *Service) Inbox(ctx context.Context, username string) ([]*models.Message, error) {
	messages, err := s.messages.ListByReceiver(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("list inbox: %w", err)
	}
	s.logger.Debug("inbox loaded", zap.String("username", username), zap.Int("count", len(messages)))
	return messages, nil
}
