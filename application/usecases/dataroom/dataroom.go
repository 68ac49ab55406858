package dataroom

import (
	"context"
	"errors"
	"fmt"
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

type DataRoomUseCase interface {
	// InitRoom creates the room for a listing, or returns the existing
	// one. The listing seller receives an explicit OWNER permission row
	// and the root folder is created up front.
	InitRoom(ctx context.Context, listingID string, actor model.Identity, ndaRequired bool) (*model.DataRoom, error)
	GetRoom(ctx context.Context, roomID string, actor model.Identity) (*model.DataRoom, error)

	Invite(ctx context.Context, roomID string, actor model.Identity, email string, role model.Role) (*model.DataRoomPermission, error)
	Revoke(ctx context.Context, roomID string, actor model.Identity, userID string) error
	ListPermissions(ctx context.Context, roomID string, actor model.Identity) ([]model.DataRoomPermission, error)
}

type dataRoomUseCase struct {
	roomRepo       repository.DataRoomRepository
	permissionRepo repository.PermissionRepository
	folderRepo     repository.FolderRepository
	listingRepo    repository.ListingRepository
	userRepo       repository.UserRepository
	accessUC       access.AccessUseCase
	auditUC        audit.AuditUseCase
	emailSender    notify.EmailSender
	notifications  notify.NotificationSink
	logger         *logger.Logger
}

func NewDataRoomUseCase(
	roomRepo repository.DataRoomRepository,
	permissionRepo repository.PermissionRepository,
	folderRepo repository.FolderRepository,
	listingRepo repository.ListingRepository,
	userRepo repository.UserRepository,
	accessUC access.AccessUseCase,
	auditUC audit.AuditUseCase,
	emailSender notify.EmailSender,
	notifications notify.NotificationSink,
	logger *logger.Logger,
) DataRoomUseCase {
	return &dataRoomUseCase{
		roomRepo:       roomRepo,
		permissionRepo: permissionRepo,
		folderRepo:     folderRepo,
		listingRepo:    listingRepo,
		userRepo:       userRepo,
		accessUC:       accessUC,
		auditUC:        auditUC,
		emailSender:    emailSender,
		notifications:  notifications,
		logger:         logger,
	}
}

func (uc *dataRoomUseCase) InitRoom(ctx context.Context, listingID string, actor model.Identity, ndaRequired bool) (*model.DataRoom, error) {
	if actor.Anonymous() {
		return nil, apperrors.ErrUnauthenticated
	}
	if listingID == "" {
		return nil, apperrors.Invalid("listing ID is required")
	}

	listing, err := uc.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.SellerID != actor.UserID {
		return nil, apperrors.ErrForbidden
	}

	existing, err := uc.roomRepo.GetByListingID(ctx, listingID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	room := &model.DataRoom{
		ListingID:   listingID,
		NDARequired: ndaRequired,
		CreatedBy:   actor.UserID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := uc.roomRepo.Create(ctx, room); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			// Lost a concurrent init race; the winner's room stands.
			return uc.roomRepo.GetByListingID(ctx, listingID)
		}
		return nil, err
	}

	// The seller's OWNER row is explicit, so the decision engine never
	// special-cases listing ownership.
	ownerPerm := &model.DataRoomPermission{
		DataRoomID: room.ID,
		UserID:     listing.SellerID,
		Role:       model.RoleOwner,
		InvitedBy:  actor.UserID,
		CreatedAt:  time.Now().UTC(),
	}
	if err := uc.permissionRepo.Upsert(ctx, ownerPerm); err != nil {
		return nil, err
	}

	if _, err := uc.folderRepo.EnsureRoot(ctx, room.ID, actor.UserID); err != nil {
		return nil, err
	}

	uc.auditUC.Record(ctx, room.ID, actor, model.AuditActionRoomInit, model.AuditTargetRoom, room.ID, map[string]any{
		"listingId":   listingID,
		"ndaRequired": ndaRequired,
	})

	uc.logger.Info("data room initialized",
		zap.String("roomID", room.ID),
		zap.String("listingID", listingID),
		zap.String("ownerID", listing.SellerID),
	)
	return room, nil
}

func (uc *dataRoomUseCase) GetRoom(ctx context.Context, roomID string, actor model.Identity) (*model.DataRoom, error) {
	if err := uc.accessUC.Decide(ctx, roomID, actor, access.ActionView, nil); err != nil {
		return nil, err
	}
	return uc.roomRepo.GetByID(ctx, roomID)
}

func (uc *dataRoomUseCase) Invite(ctx context.Context, roomID string, actor model.Identity, email string, role model.Role) (*model.DataRoomPermission, error) {
	if err := uc.accessUC.Decide(ctx, roomID, actor, access.ActionManagePermissions, nil); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, apperrors.Invalid(fmt.Sprintf("unknown role %q", role))
	}
	if role == model.RoleOwner {
		return nil, apperrors.Invalid("OWNER cannot be granted by invitation")
	}

	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	perm := &model.DataRoomPermission{
		DataRoomID: roomID,
		UserID:     user.ID,
		Role:       role,
		InvitedBy:  actor.UserID,
		CreatedAt:  time.Now().UTC(),
	}
	if err := uc.permissionRepo.Upsert(ctx, perm); err != nil {
		return nil, err
	}

	uc.auditUC.Record(ctx, roomID, actor, model.AuditActionPermissionGrant, model.AuditTargetUser, user.ID, map[string]any{
		"role":  role,
		"email": user.Email,
	})

	uc.notifyInvite(ctx, roomID, user, role)

	return perm, nil
}

// notifyInvite is best-effort: a failed email or notification never fails
// the invitation itself.
func (uc *dataRoomUseCase) notifyInvite(ctx context.Context, roomID string, user *model.User, role model.Role) {
	subject := "You have been granted access to a data room"
	body := fmt.Sprintf("<p>You now have %s access to a data room. Sign in to review the documents.</p>", role)
	if err := uc.emailSender.SendEmail(ctx, user.Email, subject, body); err != nil {
		uc.logger.Warn("invite email failed",
			zap.String("roomID", roomID),
			zap.String("userID", user.ID),
			zap.Error(err),
		)
	}

	if err := uc.notifications.CreateNotification(ctx, user.ID, "dataroom.invite", subject,
		fmt.Sprintf("You were granted %s access to a data room.", role)); err != nil {
		uc.logger.Warn("invite notification failed",
			zap.String("roomID", roomID),
			zap.String("userID", user.ID),
			zap.Error(err),
		)
	}
}

func (uc *dataRoomUseCase) Revoke(ctx context.Context, roomID string, actor model.Identity, userID string) error {
	if err := uc.accessUC.Decide(ctx, roomID, actor, access.ActionManagePermissions, nil); err != nil {
		return err
	}
	if userID == actor.UserID {
		return apperrors.Invalid("owners cannot revoke their own access")
	}

	if err := uc.permissionRepo.Delete(ctx, roomID, userID); err != nil {
		return err
	}

	uc.auditUC.Record(ctx, roomID, actor, model.AuditActionPermissionRevoke, model.AuditTargetUser, userID, nil)
	return nil
}

func (uc *dataRoomUseCase) ListPermissions(ctx context.Context, roomID string, actor model.Identity) ([]model.DataRoomPermission, error) {
	if err := uc.accessUC.Decide(ctx, roomID, actor, access.ActionManagePermissions, nil); err != nil {
		return nil, err
	}
	return uc.permissionRepo.ListByRoom(ctx, roomID)
}
