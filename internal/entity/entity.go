// Package entity implements the generic repository over the GolemDB
// entity store: JSON codec, annotation synthesis, cursor pagination and
// optimistic-concurrency CRUD, parameterized per entity kind.
package entity

import "time"

// Meta carries the store-level bookkeeping fields every persisted entity
// embeds. ID is the application-level identifier (an annotation, not a
// store key); EntityKey is the store-assigned handle, set once on create.
// Epoch fields mirror the timestamps because the store's query predicates
// only compare numbers and strings.
type Meta struct {
	ID             string    `json:"id"`
	EntityKey      string    `json:"entityKey,omitempty"`
	Version        int64     `json:"version"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	CreatedAtEpoch int64     `json:"createdAtEpoch"`
	UpdatedAtEpoch int64     `json:"updatedAtEpoch"`
}

// EntityMeta returns the embedded meta block; it satisfies Entity for any
// struct embedding Meta.
func (m *Meta) EntityMeta() *Meta { return m }

// Entity is the constraint every repository-managed type satisfies by
// embedding Meta.
type Entity interface {
	EntityMeta() *Meta
}

// Handle addresses a persisted entity: app id, store key and the version
// expected by the next optimistic update.
type Handle struct {
	ID        string `json:"id"`
	EntityKey string `json:"entityKey"`
	Version   int64  `json:"version"`
}

// Pagination is the caller-facing page request.
type Pagination struct {
	Limit  int    `json:"limit"`
	Cursor string `json:"cursor"`
}

// Page is one page of results. NextCursor is empty on the final page.
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// Target addresses an entity either by application id or by store key.
// Exactly one of the two is set.
type Target struct {
	id        string
	entityKey string
}

// ByID targets an entity through the annotation-query lookup path.
func ByID(id string) Target { return Target{id: id} }

// ByKey targets an entity directly by its store key.
func ByKey(entityKey string) Target { return Target{entityKey: entityKey} }

// DefaultLimit is the page size used when the caller supplies none.
const DefaultLimit = 50

// countPageSize is the internal page size Count drains with; larger than
// the caller-facing default to cut round trips.
const countPageSize = 500
