package golemdb

import (
	"github.com/chainvoice/chainvoice/internal/config"
	obsmetrics "github.com/chainvoice/chainvoice/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides the entity store client selected by configuration.
var Module = fx.Module("golemdb",
	fx.Provide(NewClient),
)

type ClientParams struct {
	fx.In

	Cfg     config.Config
	Log     *zap.Logger
	Metrics *obsmetrics.Metrics `optional:"true"`
}

// NewClient returns the configured store client: a JSON-RPC client for
// real nodes, or the in-memory double for local development and tests.
func NewClient(p ClientParams) (Client, error) {
	var inner Client
	if p.Cfg.Store.Backend == config.StoreBackendMemory {
		p.Log.Warn("using in-memory entity store; data will not survive restarts")
		inner = NewMemoryClient()
	} else {
		client, err := NewRPCClient(Options{Endpoint: p.Cfg.Store.Endpoint}, p.Log)
		if err != nil {
			return nil, err
		}
		inner = client
	}
	return Instrument(inner, p.Metrics), nil
}
