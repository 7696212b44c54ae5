// Package golemdb defines the narrow contract this service consumes from
// the GolemDB entity store: append, annotation-filtered query, update,
// delete and BTL extension, plus an optional direct by-key read.
package golemdb

import (
	"context"
	"errors"
)

// StringAnnotation is a string tag attached to a stored entity, used only
// for filtering.
type StringAnnotation struct {
	Key   string
	Value string
}

// NumericAnnotation is a numeric tag attached to a stored entity.
type NumericAnnotation struct {
	Key   string
	Value int64
}

// CreateEntityInput describes one entity to append.
type CreateEntityInput struct {
	Data               []byte
	BTL                int64
	StringAnnotations  []StringAnnotation
	NumericAnnotations []NumericAnnotation
}

// CreateEntityResult carries the store-assigned key for a created entity.
type CreateEntityResult struct {
	EntityKey string
}

// QueriedEntity is one row of a query result.
type QueriedEntity struct {
	EntityKey    string
	StorageValue []byte
}

// QueryOptions page a query result. Offset-based; the store returns rows
// in its native order.
type QueryOptions struct {
	Limit  int
	Offset int
}

// UpdateEntityInput replaces the payload and annotations of an existing
// entity addressed by its key.
type UpdateEntityInput struct {
	EntityKey          string
	Data               []byte
	BTL                int64
	StringAnnotations  []StringAnnotation
	NumericAnnotations []NumericAnnotation
}

// ExtendEntityInput postpones eviction of an entity without altering its
// payload.
type ExtendEntityInput struct {
	EntityKey      string
	NumberOfBlocks int64
}

// Client is the minimal entity store surface the repositories need.
// Transport failures propagate unchanged; no call is retried here.
type Client interface {
	CreateEntities(ctx context.Context, inputs []CreateEntityInput) ([]CreateEntityResult, error)
	QueryEntities(ctx context.Context, query string, opts QueryOptions) ([]QueriedEntity, error)
	UpdateEntities(ctx context.Context, inputs []UpdateEntityInput) error
	DeleteEntities(ctx context.Context, keys []string) error
	ExtendEntities(ctx context.Context, inputs []ExtendEntityInput) error
}

// KeyReader is the optional direct-by-key read capability. Callers
// discover it with a type assertion on Client; backends without it force
// all reads through the annotation-query path.
type KeyReader interface {
	// GetEntityByKey returns (nil, nil) when no entity has the key.
	GetEntityByKey(ctx context.Context, entityKey string) (*QueriedEntity, error)
}

// ErrMissingEndpoint indicates the store endpoint is not configured.
var ErrMissingEndpoint = errors.New("golemdb endpoint is required")
