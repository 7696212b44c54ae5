package domain

import (
	"context"

	"github.com/chainvoice/chainvoice/internal/entity"
)

type Repository interface {
	Create(ctx context.Context, invoice *Invoice, opts ...entity.WriteOption) (entity.Handle, error)
	Get(ctx context.Context, id string) (*Invoice, error)
	GetByEntityKey(ctx context.Context, entityKey string) (*Invoice, error)
	List(ctx context.Context, filter Filter, page entity.Pagination) (entity.Page[*Invoice], error)
	Update(ctx context.Context, target entity.Target, expectedVersion int64, apply func(*Invoice) error) (*Invoice, entity.Handle, error)
	Delete(ctx context.Context, target entity.Target) error
	ExtendTTL(ctx context.Context, target entity.Target, addBlocks int64) error
	Exists(ctx context.Context, target entity.Target) bool
	Count(ctx context.Context, filter Filter) (int64, error)

	GetByNumber(ctx context.Context, number string) (*Invoice, error)
	GetByRequestID(ctx context.Context, requestID string) (*Invoice, error)
	ListByUser(ctx context.Context, userID string, page entity.Pagination) (entity.Page[*Invoice], error)
	// UpdateStatus moves the invoice through the transition table. A
	// transition to PAID stamps paidAt and, when given, paidAmount.
	UpdateStatus(ctx context.Context, id string, expectedVersion int64, to Status, paidAmount string) (*Invoice, error)
}
