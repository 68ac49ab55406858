package repository

import (
	"context"
	"time"

	"github.com/dealdeck/dataroom-api/domain/model"
)

// AuditFilter narrows an audit listing. Zero values mean "no filter".
type AuditFilter struct {
	Action  string
	ActorID string
	Since   time.Time
	Until   time.Time
}

// AuditRepository is append-only: there is deliberately no update or
// delete in this contract.
type AuditRepository interface {
	Create(ctx context.Context, entry *model.DataRoomAudit) error
	List(ctx context.Context, roomID string, filter AuditFilter, limit, offset int) ([]model.DataRoomAudit, int64, error)
}
