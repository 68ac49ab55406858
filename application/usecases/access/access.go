package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/dealdeck/dataroom-api/domain/apperrors"
	"github.com/dealdeck/dataroom-api/domain/model"
	"github.com/dealdeck/dataroom-api/domain/repository"
	"github.com/dealdeck/dataroom-api/infrastructure/logger"
	"github.com/dealdeck/dataroom-api/infrastructure/metrics"
	"go.uber.org/zap"
)

// Action is an access-relevant operation the engine decides on.
type Action string

const (
	ActionView              Action = "view"
	ActionDownload          Action = "download"
	ActionUpload            Action = "upload"
	ActionDelete            Action = "delete"
	ActionManagePolicy      Action = "manage-policy"
	ActionManagePermissions Action = "manage-permissions"
	ActionViewAudit         Action = "view-audit"
)

// AccessUseCase is the single choke point for data-room authorization.
// Decide returns nil for Allow and a taxonomy error for Deny.
type AccessUseCase interface {
	Decide(ctx context.Context, roomID string, identity model.Identity, action Action, doc *model.DataRoomDocument) error
	// ResolveRole returns the caller's role in the room, or ErrForbidden
	// when no permission row exists.
	ResolveRole(ctx context.Context, roomID string, identity model.Identity) (model.Role, error)
}

type accessUseCase struct {
	permissionRepo repository.PermissionRepository
	ndaRepo        repository.NDARepository
	documentRepo   repository.DocumentRepository
	roomRepo       repository.DataRoomRepository
	metrics        *metrics.Manager
	logger         *logger.Logger
}

func NewAccessUseCase(
	permissionRepo repository.PermissionRepository,
	ndaRepo repository.NDARepository,
	documentRepo repository.DocumentRepository,
	roomRepo repository.DataRoomRepository,
	metricsManager *metrics.Manager,
	logger *logger.Logger,
) AccessUseCase {
	return &accessUseCase{
		permissionRepo: permissionRepo,
		ndaRepo:        ndaRepo,
		documentRepo:   documentRepo,
		roomRepo:       roomRepo,
		metrics:        metricsManager,
		logger:         logger,
	}
}

func (uc *accessUseCase) Decide(ctx context.Context, roomID string, identity model.Identity, action Action, doc *model.DataRoomDocument) error {
	err := uc.decide(ctx, roomID, identity, action, doc)

	if uc.metrics != nil {
		outcome := "allow"
		if err != nil {
			outcome = "deny"
		}
		uc.metrics.AccessDecisions.WithLabelValues(string(action), outcome).Inc()
	}
	return err
}

func (uc *accessUseCase) decide(ctx context.Context, roomID string, identity model.Identity, action Action, doc *model.DataRoomDocument) error {
	if identity.Anonymous() {
		return apperrors.ErrUnauthenticated
	}

	role, err := uc.ResolveRole(ctx, roomID, identity)
	if err != nil {
		return err
	}

	switch action {
	case ActionManagePermissions, ActionViewAudit:
		if role != model.RoleOwner {
			return apperrors.ErrForbidden
		}
		return nil
	case ActionUpload, ActionDelete, ActionManagePolicy:
		if !role.CanManage() {
			return apperrors.ErrForbidden
		}
		return nil
	case ActionView, ActionDownload:
		// handled below
	default:
		return fmt.Errorf("unknown action %q: %w", action, apperrors.ErrInvalidInput)
	}

	// Owners see everything in their room, NDA or not.
	if role == model.RoleOwner {
		return nil
	}

	if err := uc.checkNDA(ctx, roomID, identity); err != nil {
		return err
	}

	if doc == nil {
		return nil
	}

	if doc.DataRoomID != roomID {
		// Cross-tenant reference; report as missing, not forbidden.
		uc.logger.Warn("cross-room document reference rejected",
			zap.String("roomID", roomID),
			zap.String("documentID", doc.ID),
		)
		return apperrors.ErrNotFound
	}

	if doc.Visibility == model.VisibilityCustom {
		granted, err := uc.documentRepo.HasGrant(ctx, doc.ID, identity)
		if err != nil {
			return err
		}
		if !granted {
			return apperrors.ErrNotGranted
		}
	}

	if action == ActionDownload && doc.DownloadBlocked {
		return apperrors.ErrDownloadBlocked
	}

	return nil
}

func (uc *accessUseCase) ResolveRole(ctx context.Context, roomID string, identity model.Identity) (model.Role, error) {
	if identity.UserID == "" {
		// Email-only identities can hold grants and NDA acceptances but
		// never a room role.
		return "", apperrors.ErrForbidden
	}

	perm, err := uc.permissionRepo.GetRole(ctx, roomID, identity.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", apperrors.ErrForbidden
		}
		return "", err
	}
	return perm.Role, nil
}

func (uc *accessUseCase) checkNDA(ctx context.Context, roomID string, identity model.Identity) error {
	room, err := uc.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return err
	}
	if !room.NDARequired {
		return nil
	}

	_, err = uc.ndaRepo.Get(ctx, roomID, identity)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.ErrNDARequired
		}
		return err
	}
	return nil
}

// CheckVersionScan gates file-byte access on the scan outcome of the
// version being fetched. Metadata reads never pass through here.
func CheckVersionScan(ver *model.DataRoomDocumentVersion) error {
	switch ver.VirusScan {
	case model.ScanClean:
		return nil
	case model.ScanBlocked:
		return apperrors.ErrScanBlocked
	default:
		return apperrors.ErrScanPending
	}
}
