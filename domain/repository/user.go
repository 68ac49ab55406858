package repository

import (
	"context"

	"github.com/dealdeck/dataroom-api/domain/model"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]model.User, error)
}

type ListingRepository interface {
	GetByID(ctx context.Context, id string) (*model.Listing, error)
}
