package golemdb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Options configures the RPC client.
type Options struct {
	Endpoint string
	Timeout  time.Duration
}

// rpcClient talks JSON-RPC 2.0 to a GolemDB node. It is a thin transport:
// no retries, no partial-failure recovery; store errors surface as-is.
type rpcClient struct {
	endpoint string
	http     *http.Client
	log      *zap.Logger
	seq      atomic.Int64
}

// NewRPCClient builds a Client backed by a GolemDB JSON-RPC endpoint.
func NewRPCClient(opts Options, log *zap.Logger) (Client, error) {
	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		return nil, ErrMissingEndpoint
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &rpcClient{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
		log:      log.Named("golemdb.rpc"),
	}, nil
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("golemdb rpc error %d: %s", e.Code, e.Message)
}

func (c *rpcClient) call(ctx context.Context, method string, params, result any) error {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      c.seq.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("golemdb %s: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("golemdb %s: %w", method, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("golemdb %s: unexpected status %d", method, resp.StatusCode)
	}

	var parsed rpcResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("golemdb %s: %w", method, err)
	}
	if parsed.Error != nil {
		return parsed.Error
	}

	c.log.Debug("store call",
		zap.String("method", method),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	if result == nil {
		return nil
	}
	return json.Unmarshal(parsed.Result, result)
}

type rpcAnnotation[V any] struct {
	Key   string `json:"key"`
	Value V      `json:"value"`
}

type rpcCreateInput struct {
	Data               []byte                   `json:"data"`
	BTL                int64                    `json:"btl"`
	StringAnnotations  []rpcAnnotation[string]  `json:"stringAnnotations,omitempty"`
	NumericAnnotations []rpcAnnotation[int64]   `json:"numericAnnotations,omitempty"`
}

type rpcUpdateInput struct {
	EntityKey          string                   `json:"entityKey"`
	Data               []byte                   `json:"data"`
	BTL                int64                    `json:"btl,omitempty"`
	StringAnnotations  []rpcAnnotation[string]  `json:"stringAnnotations,omitempty"`
	NumericAnnotations []rpcAnnotation[int64]   `json:"numericAnnotations,omitempty"`
}

type rpcQueriedEntity struct {
	EntityKey    string `json:"entityKey"`
	StorageValue []byte `json:"storageValue"`
}

func (c *rpcClient) CreateEntities(ctx context.Context, inputs []CreateEntityInput) ([]CreateEntityResult, error) {
	params := make([]rpcCreateInput, 0, len(inputs))
	for _, in := range inputs {
		params = append(params, rpcCreateInput{
			Data:               in.Data,
			BTL:                in.BTL,
			StringAnnotations:  toRPCStrings(in.StringAnnotations),
			NumericAnnotations: toRPCNumerics(in.NumericAnnotations),
		})
	}

	var result []struct {
		EntityKey string `json:"entityKey"`
	}
	if err := c.call(ctx, "golembase_createEntities", []any{params}, &result); err != nil {
		return nil, err
	}
	out := make([]CreateEntityResult, 0, len(result))
	for _, r := range result {
		out = append(out, CreateEntityResult{EntityKey: r.EntityKey})
	}
	return out, nil
}

func (c *rpcClient) QueryEntities(ctx context.Context, query string, opts QueryOptions) ([]QueriedEntity, error) {
	var result []rpcQueriedEntity
	params := []any{query, map[string]int{"limit": opts.Limit, "offset": opts.Offset}}
	if err := c.call(ctx, "golembase_queryEntities", params, &result); err != nil {
		return nil, err
	}
	out := make([]QueriedEntity, 0, len(result))
	for _, r := range result {
		out = append(out, QueriedEntity{EntityKey: r.EntityKey, StorageValue: r.StorageValue})
	}
	return out, nil
}

func (c *rpcClient) UpdateEntities(ctx context.Context, inputs []UpdateEntityInput) error {
	params := make([]rpcUpdateInput, 0, len(inputs))
	for _, in := range inputs {
		params = append(params, rpcUpdateInput{
			EntityKey:          in.EntityKey,
			Data:               in.Data,
			BTL:                in.BTL,
			StringAnnotations:  toRPCStrings(in.StringAnnotations),
			NumericAnnotations: toRPCNumerics(in.NumericAnnotations),
		})
	}
	return c.call(ctx, "golembase_updateEntities", []any{params}, nil)
}

func (c *rpcClient) DeleteEntities(ctx context.Context, keys []string) error {
	return c.call(ctx, "golembase_deleteEntities", []any{keys}, nil)
}

func (c *rpcClient) ExtendEntities(ctx context.Context, inputs []ExtendEntityInput) error {
	params := make([]map[string]any, 0, len(inputs))
	for _, in := range inputs {
		params = append(params, map[string]any{
			"entityKey":      in.EntityKey,
			"numberOfBlocks": in.NumberOfBlocks,
		})
	}
	return c.call(ctx, "golembase_extendEntities", []any{params}, nil)
}

// GetEntityByKey implements KeyReader when the node exposes direct reads.
func (c *rpcClient) GetEntityByKey(ctx context.Context, entityKey string) (*QueriedEntity, error) {
	var result *rpcQueriedEntity
	if err := c.call(ctx, "golembase_getEntityByKey", []any{entityKey}, &result); err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}
	return &QueriedEntity{EntityKey: result.EntityKey, StorageValue: result.StorageValue}, nil
}

func toRPCStrings(anns []StringAnnotation) []rpcAnnotation[string] {
	if len(anns) == 0 {
		return nil
	}
	out := make([]rpcAnnotation[string], 0, len(anns))
	for _, a := range anns {
		out = append(out, rpcAnnotation[string]{Key: a.Key, Value: a.Value})
	}
	return out
}

func toRPCNumerics(anns []NumericAnnotation) []rpcAnnotation[int64] {
	if len(anns) == 0 {
		return nil
	}
	out := make([]rpcAnnotation[int64], 0, len(anns))
	for _, a := range anns {
		out = append(out, rpcAnnotation[int64]{Key: a.Key, Value: a.Value})
	}
	return out
}
