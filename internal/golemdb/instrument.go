package golemdb

import (
	"context"

	obsmetrics "github.com/chainvoice/chainvoice/internal/observability/metrics"
)

// Instrument wraps a client so every store call lands in the metrics
// counters. The wrapper only advertises KeyReader when the inner client
// does, so capability probing still reflects the real backend.
func Instrument(inner Client, m *obsmetrics.Metrics) Client {
	if m == nil {
		return inner
	}
	base := &measuredClient{inner: inner, metrics: m}
	if kr, ok := inner.(KeyReader); ok {
		return &measuredKeyClient{measuredClient: base, reader: kr}
	}
	return base
}

type measuredClient struct {
	inner   Client
	metrics *obsmetrics.Metrics
}

func (c *measuredClient) CreateEntities(ctx context.Context, inputs []CreateEntityInput) ([]CreateEntityResult, error) {
	results, err := c.inner.CreateEntities(ctx, inputs)
	c.metrics.RecordStoreCall(ctx, "create", err)
	return results, err
}

func (c *measuredClient) QueryEntities(ctx context.Context, query string, opts QueryOptions) ([]QueriedEntity, error) {
	rows, err := c.inner.QueryEntities(ctx, query, opts)
	c.metrics.RecordStoreCall(ctx, "query", err)
	return rows, err
}

func (c *measuredClient) UpdateEntities(ctx context.Context, inputs []UpdateEntityInput) error {
	err := c.inner.UpdateEntities(ctx, inputs)
	c.metrics.RecordStoreCall(ctx, "update", err)
	return err
}

func (c *measuredClient) DeleteEntities(ctx context.Context, keys []string) error {
	err := c.inner.DeleteEntities(ctx, keys)
	c.metrics.RecordStoreCall(ctx, "delete", err)
	return err
}

func (c *measuredClient) ExtendEntities(ctx context.Context, inputs []ExtendEntityInput) error {
	err := c.inner.ExtendEntities(ctx, inputs)
	c.metrics.RecordStoreCall(ctx, "extend", err)
	return err
}

type measuredKeyClient struct {
	*measuredClient
	reader KeyReader
}

func (c *measuredKeyClient) GetEntityByKey(ctx context.Context, entityKey string) (*QueriedEntity, error) {
	row, err := c.reader.GetEntityByKey(ctx, entityKey)
	c.metrics.RecordStoreCall(ctx, "get_by_key", err)
	return row, err
}
