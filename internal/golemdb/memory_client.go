package golemdb

import (
	"context"
	"fmt"
	"sync"
)

// MemoryClient is an in-memory implementation of Client and KeyReader used
// for unit testing repository logic (and local development) without a
// running GolemDB node. It preserves insertion order, evaluates the
// annotation-query grammar, and models BTL against a block counter that
// tests advance manually.
type MemoryClient struct {
	mu      sync.Mutex
	records []*memoryRecord
	nextKey uint64
	block   int64
	err     error
}

type memoryRecord struct {
	key       string
	data      []byte
	expiresAt int64 // 0 means never
	strs      map[string]string
	nums      map[string]int64
}

// NewMemoryClient instantiates an empty in-memory store.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{}
}

// WithError configures the client to fail every subsequent call with err.
// Pass nil to clear.
func (m *MemoryClient) WithError(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// AdvanceBlocks moves the block counter forward, evicting entities whose
// BTL has run out.
func (m *MemoryClient) AdvanceBlocks(n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.block += n
	m.evictLocked()
}

// Len reports the number of live entities.
func (m *MemoryClient) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evictLocked()
	return len(m.records)
}

func (m *MemoryClient) CreateEntities(_ context.Context, inputs []CreateEntityInput) ([]CreateEntityResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}

	results := make([]CreateEntityResult, 0, len(inputs))
	for _, in := range inputs {
		m.nextKey++
		rec := &memoryRecord{
			key:  fmt.Sprintf("0x%064x", m.nextKey),
			data: append([]byte(nil), in.Data...),
			strs: annStrings(in.StringAnnotations),
			nums: annNumerics(in.NumericAnnotations),
		}
		if in.BTL > 0 {
			rec.expiresAt = m.block + in.BTL
		}
		m.records = append(m.records, rec)
		results = append(results, CreateEntityResult{EntityKey: rec.key})
	}
	return results, nil
}

func (m *MemoryClient) QueryEntities(_ context.Context, query string, opts QueryOptions) ([]QueriedEntity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.evictLocked()

	expr, err := parseQuery(query)
	if err != nil {
		return nil, err
	}

	var matched []*memoryRecord
	for _, rec := range m.records {
		if expr.eval(rec.strs, rec.nums) {
			matched = append(matched, rec)
		}
	}

	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if opts.Limit > 0 && len(matched) > opts.Limit {
		matched = matched[:opts.Limit]
	}

	out := make([]QueriedEntity, 0, len(matched))
	for _, rec := range matched {
		out = append(out, QueriedEntity{
			EntityKey:    rec.key,
			StorageValue: append([]byte(nil), rec.data...),
		})
	}
	return out, nil
}

func (m *MemoryClient) UpdateEntities(_ context.Context, inputs []UpdateEntityInput) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.evictLocked()

	for _, in := range inputs {
		rec := m.findLocked(in.EntityKey)
		if rec == nil {
			return fmt.Errorf("update: unknown entity key %s", in.EntityKey)
		}
		rec.data = append([]byte(nil), in.Data...)
		rec.strs = annStrings(in.StringAnnotations)
		rec.nums = annNumerics(in.NumericAnnotations)
		if in.BTL > 0 {
			rec.expiresAt = m.block + in.BTL
		}
	}
	return nil
}

func (m *MemoryClient) DeleteEntities(_ context.Context, keys []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}

	for _, key := range keys {
		for i, rec := range m.records {
			if rec.key == key {
				m.records = append(m.records[:i], m.records[i+1:]...)
				break
			}
		}
	}
	return nil
}

func (m *MemoryClient) ExtendEntities(_ context.Context, inputs []ExtendEntityInput) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.evictLocked()

	for _, in := range inputs {
		rec := m.findLocked(in.EntityKey)
		if rec == nil {
			return fmt.Errorf("extend: unknown entity key %s", in.EntityKey)
		}
		if rec.expiresAt == 0 {
			rec.expiresAt = m.block + in.NumberOfBlocks
		} else {
			rec.expiresAt += in.NumberOfBlocks
		}
	}
	return nil
}

// GetEntityByKey implements the optional KeyReader capability.
func (m *MemoryClient) GetEntityByKey(_ context.Context, entityKey string) (*QueriedEntity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.evictLocked()

	rec := m.findLocked(entityKey)
	if rec == nil {
		return nil, nil
	}
	return &QueriedEntity{
		EntityKey:    rec.key,
		StorageValue: append([]byte(nil), rec.data...),
	}, nil
}

func (m *MemoryClient) findLocked(key string) *memoryRecord {
	for _, rec := range m.records {
		if rec.key == key {
			return rec
		}
	}
	return nil
}

func (m *MemoryClient) evictLocked() {
	live := m.records[:0]
	for _, rec := range m.records {
		if rec.expiresAt == 0 || rec.expiresAt > m.block {
			live = append(live, rec)
		}
	}
	m.records = live
}

func annStrings(anns []StringAnnotation) map[string]string {
	out := make(map[string]string, len(anns))
	for _, a := range anns {
		out[a.Key] = a.Value
	}
	return out
}

func annNumerics(anns []NumericAnnotation) map[string]int64 {
	out := make(map[string]int64, len(anns))
	for _, a := range anns {
		out[a.Key] = a.Value
	}
	return out
}
