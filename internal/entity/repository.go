package entity

import (
	"context"
	"fmt"
	"time"

	"github.com/chainvoice/chainvoice/internal/clock"
	"github.com/chainvoice/chainvoice/internal/golemdb"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Config parameterizes the generic repository for one entity kind.
type Config[T Entity, F any] struct {
	// Kind is the `type` discriminator value ("users", "invoices").
	Kind string
	// New allocates a zero entity for decoding.
	New func() T
	// Normalize recomputes every lowercased/epoch mirror from its source
	// field. It runs on every write path, so a mirror can never diverge.
	Normalize func(T)
	// Annotate produces the tag set mirroring the entity's indexable
	// fields. It runs after Normalize.
	Annotate func(T) Annotations
	// BuildQuery translates a structured filter into the store's query
	// expression.
	BuildQuery func(F) (string, error)
	// CreateBTL is the default blocks-to-live for new entities; 0 lets
	// the store apply its own default.
	CreateBTL int64
}

// Repository implements the CRUD+query contract once against the entity
// store, parameterized by codec, annotation builder and query builder.
// It holds no mutable state of its own; every operation is derived from
// its arguments and the store's current content.
type Repository[T Entity, F any] struct {
	client golemdb.Client
	clock  clock.Clock
	codec  Codec[T]
	log    *zap.Logger
	cfg    Config[T, F]
}

// New builds a repository for one entity kind.
func New[T Entity, F any](client golemdb.Client, clk clock.Clock, log *zap.Logger, cfg Config[T, F]) *Repository[T, F] {
	return &Repository[T, F]{
		client: client,
		clock:  clk,
		codec:  NewJSONCodec(cfg.New),
		log:    log.Named("repo." + cfg.Kind),
		cfg:    cfg,
	}
}

// WriteOption tunes a single write call.
type WriteOption func(*writeOptions)

type writeOptions struct {
	btl int64
}

// WithBTL overrides the blocks-to-live stamped on this write.
func WithBTL(blocks int64) WriteOption {
	return func(o *writeOptions) { o.btl = blocks }
}

func (r *Repository[T, F]) writeOptions(defBTL int64, opts []WriteOption) writeOptions {
	o := writeOptions{btl: defBTL}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Create persists a new entity: fresh id, version 1, timestamps and
// mirrors stamped, annotations computed, exactly one store write. The
// store-assigned entity key is written back onto the entity. Store
// failures propagate as-is; nothing is retried.
func (r *Repository[T, F]) Create(ctx context.Context, e T, opts ...WriteOption) (Handle, error) {
	o := r.writeOptions(r.cfg.CreateBTL, opts)

	meta := e.EntityMeta()
	now := r.clock.Now().UTC().Truncate(time.Second)
	meta.ID = uuid.NewString()
	meta.EntityKey = ""
	meta.Version = 1
	meta.CreatedAt = now
	meta.UpdatedAt = now
	meta.CreatedAtEpoch = now.Unix()
	meta.UpdatedAtEpoch = now.Unix()

	r.cfg.Normalize(e)
	anns := r.cfg.Annotate(e)

	data, err := r.codec.Encode(e)
	if err != nil {
		return Handle{}, fmt.Errorf("encode %s: %w", r.cfg.Kind, err)
	}

	results, err := r.client.CreateEntities(ctx, []golemdb.CreateEntityInput{{
		Data:               data,
		BTL:                o.btl,
		StringAnnotations:  anns.Strings,
		NumericAnnotations: anns.Numerics,
	}})
	if err != nil {
		return Handle{}, err
	}
	if len(results) != 1 {
		return Handle{}, fmt.Errorf("create %s: expected 1 result, got %d", r.cfg.Kind, len(results))
	}

	meta.EntityKey = results[0].EntityKey
	r.log.Debug("entity created",
		zap.String("id", meta.ID),
		zap.String("entity_key", meta.EntityKey),
	)
	return Handle{ID: meta.ID, EntityKey: meta.EntityKey, Version: 1}, nil
}

// Read fetches by application id through the annotation-query path. The
// id is an annotation, not a store key, so this is a filtered query, not
// a direct fetch. Returns the zero entity when nothing matches.
func (r *Repository[T, F]) Read(ctx context.Context, id string) (T, error) {
	e, _, err := r.readOne(ctx, id)
	return e, err
}

func (r *Repository[T, F]) readOne(ctx context.Context, id string) (T, bool, error) {
	var zero T
	query, err := NewQuery(r.cfg.Kind).Eq("id", id).Build()
	if err != nil {
		return zero, false, err
	}
	rows, err := r.client.QueryEntities(ctx, query, golemdb.QueryOptions{Limit: 1})
	if err != nil {
		return zero, false, err
	}
	if len(rows) == 0 {
		return zero, false, nil
	}
	e, err := r.decodeRow(rows[0])
	if err != nil {
		return zero, false, err
	}
	return e, true, nil
}

// ReadByEntityKey fetches directly by store key when the backend exposes
// that capability; otherwise fails with ErrNotSupported.
func (r *Repository[T, F]) ReadByEntityKey(ctx context.Context, entityKey string) (T, error) {
	e, _, err := r.readByKey(ctx, entityKey)
	return e, err
}

func (r *Repository[T, F]) readByKey(ctx context.Context, entityKey string) (T, bool, error) {
	var zero T
	kr, ok := r.client.(golemdb.KeyReader)
	if !ok {
		return zero, false, ErrNotSupported
	}
	row, err := kr.GetEntityByKey(ctx, entityKey)
	if err != nil {
		return zero, false, err
	}
	if row == nil {
		return zero, false, nil
	}
	e, err := r.decodeRow(*row)
	if err != nil {
		return zero, false, err
	}
	return e, true, nil
}

// ReadMany pages through entities matching a structured filter. The next
// cursor is issued only when a full page came back: a short page means
// end of results. Offset cursors are not stable under concurrent writes.
func (r *Repository[T, F]) ReadMany(ctx context.Context, filter F, p Pagination) (Page[T], error) {
	query, err := r.cfg.BuildQuery(filter)
	if err != nil {
		return Page[T]{}, err
	}
	return r.page(ctx, query, p)
}

// QueryByAnnotations pages through a caller-supplied raw query
// expression, the escape hatch for shapes the structured filter cannot
// express.
func (r *Repository[T, F]) QueryByAnnotations(ctx context.Context, query string, p Pagination) (Page[T], error) {
	return r.page(ctx, query, p)
}

func (r *Repository[T, F]) page(ctx context.Context, query string, p Pagination) (Page[T], error) {
	limit := p.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	offset := DecodeCursor(p.Cursor)

	rows, err := r.client.QueryEntities(ctx, query, golemdb.QueryOptions{Limit: limit, Offset: offset})
	if err != nil {
		return Page[T]{}, err
	}

	items := make([]T, 0, len(rows))
	for _, row := range rows {
		e, err := r.decodeRow(row)
		if err != nil {
			return Page[T]{}, err
		}
		items = append(items, e)
	}

	page := Page[T]{Items: items}
	if len(rows) == limit {
		page.NextCursor = EncodeCursor(offset + len(rows))
	}
	return page, nil
}

// Update applies a mutation under optimistic concurrency: the stored
// version must equal expectedVersion or the call fails with
// ErrVersionConflict and writes nothing. On success the version is
// incremented by one, the update timestamps and every mirror are
// refreshed, annotations are recomputed from the merged record, and one
// store update is issued against the existing entity key.
func (r *Repository[T, F]) Update(ctx context.Context, target Target, expectedVersion int64, apply func(T) error, opts ...WriteOption) (T, Handle, error) {
	var zero T
	current, err := r.resolve(ctx, target)
	if err != nil {
		return zero, Handle{}, err
	}

	meta := current.EntityMeta()
	if meta.Version != expectedVersion {
		return zero, Handle{}, fmt.Errorf("%w: have %d, expected %d", ErrVersionConflict, meta.Version, expectedVersion)
	}

	// The mutator may not touch identity or provenance.
	id, entityKey := meta.ID, meta.EntityKey
	createdAt, createdAtEpoch := meta.CreatedAt, meta.CreatedAtEpoch

	if err := apply(current); err != nil {
		return zero, Handle{}, err
	}

	now := r.clock.Now().UTC().Truncate(time.Second)
	meta.ID = id
	meta.EntityKey = entityKey
	meta.CreatedAt = createdAt
	meta.CreatedAtEpoch = createdAtEpoch
	meta.Version = expectedVersion + 1
	meta.UpdatedAt = now
	meta.UpdatedAtEpoch = now.Unix()

	r.cfg.Normalize(current)
	anns := r.cfg.Annotate(current)

	data, err := r.codec.Encode(current)
	if err != nil {
		return zero, Handle{}, fmt.Errorf("encode %s: %w", r.cfg.Kind, err)
	}

	o := r.writeOptions(0, opts)
	if err := r.client.UpdateEntities(ctx, []golemdb.UpdateEntityInput{{
		EntityKey:          entityKey,
		Data:               data,
		BTL:                o.btl,
		StringAnnotations:  anns.Strings,
		NumericAnnotations: anns.Numerics,
	}}); err != nil {
		return zero, Handle{}, err
	}

	r.log.Debug("entity updated",
		zap.String("id", id),
		zap.Int64("version", meta.Version),
	)
	return current, Handle{ID: id, EntityKey: entityKey, Version: meta.Version}, nil
}

// Delete removes the entity from the store. Permanent; no tombstone.
func (r *Repository[T, F]) Delete(ctx context.Context, target Target) error {
	current, err := r.resolve(ctx, target)
	if err != nil {
		return err
	}
	return r.client.DeleteEntities(ctx, []string{current.EntityMeta().EntityKey})
}

// ExtendTTL postpones eviction by addBlocks without touching the version
// or any business field.
func (r *Repository[T, F]) ExtendTTL(ctx context.Context, target Target, addBlocks int64) error {
	current, err := r.resolve(ctx, target)
	if err != nil {
		return err
	}
	return r.client.ExtendEntities(ctx, []golemdb.ExtendEntityInput{{
		EntityKey:      current.EntityMeta().EntityKey,
		NumberOfBlocks: addBlocks,
	}})
}

// Exists reports whether the target resolves. Any resolution failure,
// including a store outage, reads as false; callers that must
// distinguish should use Read or ReadByEntityKey directly.
func (r *Repository[T, F]) Exists(ctx context.Context, target Target) bool {
	_, err := r.resolve(ctx, target)
	return err == nil
}

// Count drains the filtered query page by page and sums row counts. The
// only operation that walks an entire result set; O(matches/page) store
// round trips, fine at this service's scale.
func (r *Repository[T, F]) Count(ctx context.Context, filter F) (int64, error) {
	query, err := r.cfg.BuildQuery(filter)
	if err != nil {
		return 0, err
	}

	var total int64
	offset := 0
	for {
		rows, err := r.client.QueryEntities(ctx, query, golemdb.QueryOptions{Limit: countPageSize, Offset: offset})
		if err != nil {
			return 0, err
		}
		total += int64(len(rows))
		if len(rows) < countPageSize {
			return total, nil
		}
		offset += countPageSize
	}
}

// resolve funnels id-based and key-based addressing into one lookup. All
// target-addressed operations go through here.
func (r *Repository[T, F]) resolve(ctx context.Context, target Target) (T, error) {
	var zero T
	if target.entityKey != "" {
		e, found, err := r.readByKey(ctx, target.entityKey)
		if err != nil {
			return zero, err
		}
		if !found {
			return zero, ErrNotFound
		}
		return e, nil
	}
	e, found, err := r.readOne(ctx, target.id)
	if err != nil {
		return zero, err
	}
	if !found || e.EntityMeta().EntityKey == "" {
		return zero, ErrNotFound
	}
	return e, nil
}

func (r *Repository[T, F]) decodeRow(row golemdb.QueriedEntity) (T, error) {
	e, err := r.codec.Decode(row.StorageValue)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("decode %s: %w", r.cfg.Kind, err)
	}
	// The writer does not embed the store key in the payload; patch it in
	// from the row.
	e.EntityMeta().EntityKey = row.EntityKey
	return e, nil
}
