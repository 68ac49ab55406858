package repository

import (
	"context"

	"github.com/dealdeck/dataroom-api/domain/model"
)

type NDARepository interface {
	// Accept upserts the acceptance for the identity. When a row already
	// exists it is returned unchanged together with created=false.
	Accept(ctx context.Context, acceptance *model.DataRoomNDAAcceptance) (*model.DataRoomNDAAcceptance, bool, error)
	// Get returns the acceptance for the identity in the room, or
	// apperrors.ErrNotFound.
	Get(ctx context.Context, roomID string, identity model.Identity) (*model.DataRoomNDAAcceptance, error)
}
