package nda

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/dealdeck/dataroom-api/application/usecases/access"
	"github.com/dealdeck/dataroom-api/application/usecases/audit"
	"github.com/dealdeck/dataroom-api/domain/apperrors"
	"github.com/dealdeck/dataroom-api/domain/model"
	"github.com/dealdeck/dataroom-api/domain/repository"
	"github.com/dealdeck/dataroom-api/infrastructure/logger"
	"github.com/dealdeck/dataroom-api/infrastructure/notify"
	"go.uber.org/zap"
)

// Status is the caller's NDA state for a room.
type Status struct {
	Required   bool       `json:"required"`
	Accepted   bool       `json:"accepted"`
	NDAVersion string     `json:"ndaVersion,omitempty"`
	AcceptedAt *time.Time `json:"acceptedAt,omitempty"`
}

type NDAUseCase interface {
	// Accept records consent for the caller. Repeat calls are idempotent
	// and return the original acceptance with created=false.
	Accept(ctx context.Context, roomID string, identity model.Identity, ndaVersion, ipAddress, userAgent string) (*model.DataRoomNDAAcceptance, bool, error)
	GetStatus(ctx context.Context, roomID string, identity model.Identity) (*Status, error)
}

type ndaUseCase struct {
	ndaRepo       repository.NDARepository
	roomRepo      repository.DataRoomRepository
	accessUC      access.AccessUseCase
	auditUC       audit.AuditUseCase
	notifications notify.NotificationSink
	logger        *logger.Logger
}

func NewNDAUseCase(
	ndaRepo repository.NDARepository,
	roomRepo repository.DataRoomRepository,
	accessUC access.AccessUseCase,
	auditUC audit.AuditUseCase,
	notifications notify.NotificationSink,
	logger *logger.Logger,
) NDAUseCase {
	return &ndaUseCase{
		ndaRepo:       ndaRepo,
		roomRepo:      roomRepo,
		accessUC:      accessUC,
		auditUC:       auditUC,
		notifications: notifications,
		logger:        logger,
	}
}

func (uc *ndaUseCase) Accept(ctx context.Context, roomID string, identity model.Identity, ndaVersion, ipAddress, userAgent string) (*model.DataRoomNDAAcceptance, bool, error) {
	if identity.Anonymous() {
		return nil, false, apperrors.ErrUnauthenticated
	}
	ndaVersion = strings.TrimSpace(ndaVersion)
	if ndaVersion == "" {
		return nil, false, apperrors.Invalid("ndaVersion is required")
	}

	room, err := uc.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, false, err
	}

	// Accepting an NDA still requires standing in the room; a stranger
	// cannot build a consent trail for a room they were never invited to.
	if _, err := uc.accessUC.ResolveRole(ctx, roomID, identity); err != nil {
		return nil, false, err
	}

	acceptance := &model.DataRoomNDAAcceptance{
		DataRoomID: roomID,
		NDAVersion: ndaVersion,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		AcceptedAt: time.Now().UTC(),
	}
	if identity.UserID != "" {
		acceptance.UserID = sql.NullString{String: identity.UserID, Valid: true}
	} else {
		acceptance.Email = sql.NullString{String: identity.NormalizedEmail(), Valid: true}
	}

	stored, created, err := uc.ndaRepo.Accept(ctx, acceptance)
	if err != nil {
		return nil, false, err
	}

	if created {
		uc.auditUC.Record(ctx, roomID, identity, model.AuditActionNDAAccept, model.AuditTargetRoom, roomID, map[string]any{
			"ndaVersion": stored.NDAVersion,
		})
		uc.notifyOwner(ctx, room, identity, stored.NDAVersion)
	}
	return stored, created, nil
}

// notifyOwner tells the room owner a counterparty signed. Best effort.
func (uc *ndaUseCase) notifyOwner(ctx context.Context, room *model.DataRoom, identity model.Identity, ndaVersion string) {
	who := identity.NormalizedEmail()
	if who == "" {
		who = identity.UserID
	}
	err := uc.notifications.CreateNotification(ctx, room.CreatedBy, "dataroom.nda_accepted",
		"NDA accepted",
		"An invited party accepted NDA "+ndaVersion+" for your data room ("+who+").",
	)
	if err != nil {
		uc.logger.Warn("nda acceptance notification failed",
			zap.String("roomID", room.ID),
			zap.Error(err),
		)
	}
}

func (uc *ndaUseCase) GetStatus(ctx context.Context, roomID string, identity model.Identity) (*Status, error) {
	if identity.Anonymous() {
		return nil, apperrors.ErrUnauthenticated
	}

	room, err := uc.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	status := &Status{Required: room.NDARequired}

	role, err := uc.accessUC.ResolveRole(ctx, roomID, identity)
	if err != nil {
		return nil, err
	}
	// Owners never need one.
	if role == model.RoleOwner {
		status.Required = false
	}

	acceptance, err := uc.ndaRepo.Get(ctx, roomID, identity)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return status, nil
		}
		return nil, err
	}

	status.Accepted = true
	status.NDAVersion = acceptance.NDAVersion
	status.AcceptedAt = &acceptance.AcceptedAt
	return status, nil
}
