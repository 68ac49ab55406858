// Package notify holds the outbound collaborator surfaces: email and
// in-app notifications. Both are best-effort; callers log failures and
// never fail their primary operation on them.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, html string) error
}

type NotificationSink interface {
	CreateNotification(ctx context.Context, userID, notificationType, title, message string) error
}

// LogEmailSender is the development sender: it records the send and does
// nothing else. Production deployments swap in a provider-backed sender.
type LogEmailSender struct {
	logger *zap.Logger
}

func NewLogEmailSender(logger *zap.Logger) *LogEmailSender {
	return &LogEmailSender{logger: logger}
}

func (s *LogEmailSender) SendEmail(ctx context.Context, to, subject, html string) error {
	s.logger.Info("email send",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Int("bodyBytes", len(html)),
	)
	return nil
}

// Notification is the in-app inbox row written by the database sink.
type Notification struct {
	ID        string    `gorm:"type:VARCHAR(36);primaryKey" json:"id"`
	UserID    string    `gorm:"type:VARCHAR(36);not null;index" json:"userId"`
	Type      string    `gorm:"type:VARCHAR(64);not null" json:"type"`
	Title     string    `gorm:"type:VARCHAR(255);not null" json:"title"`
	Message   string    `gorm:"type:TEXT;not null" json:"message"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}

type DatabaseNotificationSink struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewDatabaseNotificationSink(db *gorm.DB, logger *zap.Logger) *DatabaseNotificationSink {
	return &DatabaseNotificationSink{db: db, logger: logger}
}

func (s *DatabaseNotificationSink) CreateNotification(ctx context.Context, userID, notificationType, title, message string) error {
	notification := Notification{
		UserID:    userID,
		Type:      notificationType,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&notification).Error; err != nil {
		s.logger.Error("failed to create notification",
			zap.String("userID", userID),
			zap.String("type", notificationType),
			zap.Error(err),
		)
		return err
	}
	return nil
}
