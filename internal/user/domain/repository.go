package domain

import (
	"context"

	"github.com/chainvoice/chainvoice/internal/entity"
)

type Repository interface {
	Create(ctx context.Context, user *User, opts ...entity.WriteOption) (entity.Handle, error)
	Get(ctx context.Context, id string) (*User, error)
	GetByEntityKey(ctx context.Context, entityKey string) (*User, error)
	List(ctx context.Context, filter Filter, page entity.Pagination) (entity.Page[*User], error)
	Update(ctx context.Context, target entity.Target, expectedVersion int64, apply func(*User) error) (*User, entity.Handle, error)
	Delete(ctx context.Context, target entity.Target) error
	ExtendTTL(ctx context.Context, target entity.Target, addBlocks int64) error
	Exists(ctx context.Context, target entity.Target) bool
	Count(ctx context.Context, filter Filter) (int64, error)

	FindByCivicSub(ctx context.Context, civicSub string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByWalletAddress(ctx context.Context, address string) (*User, error)
	FindByRole(ctx context.Context, role Role, page entity.Pagination) (entity.Page[*User], error)
	ListByWalletKind(ctx context.Context, kind WalletKind, page entity.Pagination) (entity.Page[*User], error)
	Activate(ctx context.Context, id string, expectedVersion int64) (*User, error)
	Deactivate(ctx context.Context, id string, expectedVersion int64) (*User, error)
}
