package audit

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/dealdeck/dataroom-api/domain/model"
	"github.com/dealdeck/dataroom-api/domain/repository"
	"github.com/dealdeck/dataroom-api/infrastructure/logger"
	"github.com/dealdeck/dataroom-api/infrastructure/metrics"
	"go.uber.org/zap"
)

// Entry is an audit row joined with the actor's display name.
type Entry struct {
	model.DataRoomAudit
	ActorName string `json:"actorName"`
}

// AuditUseCase writes and reads the append-only trail. Record never fails
// the caller: audit is best-effort, not a blocking dependency.
type AuditUseCase interface {
	Record(ctx context.Context, roomID string, actor model.Identity, action, targetType, targetID string, meta map[string]any)
	List(ctx context.Context, roomID string, filter repository.AuditFilter, limit, offset int) ([]Entry, int64, error)
}

type auditUseCase struct {
	auditRepo repository.AuditRepository
	userRepo  repository.UserRepository
	metrics   *metrics.Manager
	logger    *logger.Logger
}

func NewAuditUseCase(
	auditRepo repository.AuditRepository,
	userRepo repository.UserRepository,
	metricsManager *metrics.Manager,
	logger *logger.Logger,
) AuditUseCase {
	return &auditUseCase{
		auditRepo: auditRepo,
		userRepo:  userRepo,
		metrics:   metricsManager,
		logger:    logger,
	}
}

func (uc *auditUseCase) Record(ctx context.Context, roomID string, actor model.Identity, action, targetType, targetID string, meta map[string]any) {
	entry := &model.DataRoomAudit{
		DataRoomID: roomID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
	}
	if actor.UserID != "" {
		entry.ActorID = sql.NullString{String: actor.UserID, Valid: true}
	}
	if email := actor.NormalizedEmail(); email != "" {
		entry.ActorEmail = sql.NullString{String: email, Valid: true}
	}
	if meta != nil {
		if raw, err := json.Marshal(meta); err == nil {
			entry.Meta = raw
		}
	}

	result := "ok"
	if err := uc.auditRepo.Create(ctx, entry); err != nil {
		result = "error"
		uc.logger.Error("audit write failed",
			zap.String("roomID", roomID),
			zap.String("action", action),
			zap.Error(err),
		)
	}
	if uc.metrics != nil {
		uc.metrics.AuditWrites.WithLabelValues(result).Inc()
	}
}

func (uc *auditUseCase) List(ctx context.Context, roomID string, filter repository.AuditFilter, limit, offset int) ([]Entry, int64, error) {
	entries, total, err := uc.auditRepo.List(ctx, roomID, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	actorIDs := make([]string, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for _, entry := range entries {
		if entry.ActorID.Valid && !seen[entry.ActorID.String] {
			seen[entry.ActorID.String] = true
			actorIDs = append(actorIDs, entry.ActorID.String)
		}
	}

	// Best-effort join against the user directory; a deleted user falls
	// back to the stored email, then "Unknown".
	users, err := uc.userRepo.GetByIDs(ctx, actorIDs)
	if err != nil {
		uc.logger.Warn("actor name resolution failed", zap.Error(err))
		users = map[string]model.User{}
	}

	resolved := make([]Entry, len(entries))
	for i, entry := range entries {
		name := "Unknown"
		if entry.ActorID.Valid {
			if user, ok := users[entry.ActorID.String]; ok {
				name = user.Name
			} else if entry.ActorEmail.Valid {
				name = entry.ActorEmail.String
			}
		} else if entry.ActorEmail.Valid {
			name = entry.ActorEmail.String
		}
		resolved[i] = Entry{DataRoomAudit: entry, ActorName: name}
	}
	return resolved, total, nil
}
