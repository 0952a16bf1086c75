// Package service holds outbound senders used by event consumers.
//
// No mail or push provider is wired yet: the senders record every message
// in the structured log under a generated message id.
package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/asidocente/school-records/pkg/logger"
)

// IDGenerator produces message ids.
type IDGenerator interface {
	GenerateID() string
}

// UUIDGenerator implements IDGenerator with random UUIDs.
type UUIDGenerator struct{}

// GenerateID returns a new UUID string.
func (UUIDGenerator) GenerateID() string {
	return uuid.New().String()
}

// ══════════════════════════════════════════════════════════════════════════════
// EMAIL
// ══════════════════════════════════════════════════════════════════════════════

// LogEmailSender writes emails to the log instead of sending them.
type LogEmailSender struct {
	logger *slog.Logger
	ids    IDGenerator
}

// NewLogEmailSender creates a LogEmailSender. ids may be nil.
func NewLogEmailSender(log *slog.Logger, ids IDGenerator) *LogEmailSender {
	if log == nil {
		log = slog.Default()
	}
	if ids == nil {
		ids = UUIDGenerator{}
	}
	return &LogEmailSender{logger: log.With(logger.Component("email")), ids: ids}
}

// SendEmail logs the message.
func (s *LogEmailSender) SendEmail(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "email sent",
		slog.String("message_id", s.ids.GenerateID()),
		slog.String("to", to),
		slog.String("subject", subject),
		slog.Int("body_length", len(body)),
	)
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFICATIONS
// ══════════════════════════════════════════════════════════════════════════════

// LogNotificationSender writes notifications to the log.
type LogNotificationSender struct {
	logger *slog.Logger
	ids    IDGenerator
}

// NewLogNotificationSender creates a LogNotificationSender. ids may be nil.
func NewLogNotificationSender(log *slog.Logger, ids IDGenerator) *LogNotificationSender {
	if log == nil {
		log = slog.Default()
	}
	if ids == nil {
		ids = UUIDGenerator{}
	}
	return &LogNotificationSender{logger: log.With(logger.Component("notifications")), ids: ids}
}

// SendBulkNotification logs one line for the whole batch.
func (s *LogNotificationSender) SendBulkNotification(ctx context.Context, userIDs []string, title, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "notification sent",
		slog.String("message_id", s.ids.GenerateID()),
		slog.String("recipients", strings.Join(userIDs, ",")),
		slog.String("title", title),
		slog.String("message", message),
	)
	return nil
}
