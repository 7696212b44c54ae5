package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	storeCalls     metric.Int64Counter
	invoiceEvents  metric.Int64Counter
	paymentLookups metric.Int64Counter
	userLogins     metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "chainvoice"
	}
	meter := provider.Meter(name)

	storeCalls, err := meter.Int64Counter("chainvoice_store_calls_total")
	if err != nil {
		return nil, err
	}
	invoiceEvents, err := meter.Int64Counter("chainvoice_invoice_events_total")
	if err != nil {
		return nil, err
	}
	paymentLookups, err := meter.Int64Counter("chainvoice_payment_lookups_total")
	if err != nil {
		return nil, err
	}
	userLogins, err := meter.Int64Counter("chainvoice_user_logins_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		storeCalls:     storeCalls,
		invoiceEvents:  invoiceEvents,
		paymentLookups: paymentLookups,
		userLogins:     userLogins,
	}, nil
}

// RecordStoreCall increments per-operation entity store call counts.
func (m *Metrics) RecordStoreCall(ctx context.Context, op string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	attrs := FilterAttributes(
		attribute.String("op", strings.TrimSpace(op)),
		attribute.String("outcome", outcome),
	)
	m.storeCalls.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordInvoiceEvent increments invoice lifecycle event counts.
func (m *Metrics) RecordInvoiceEvent(ctx context.Context, event, status string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("event_type", strings.TrimSpace(event)),
		attribute.String("status", strings.TrimSpace(status)),
	)
	m.invoiceEvents.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordPaymentLookup increments public payment parameter lookup counts.
func (m *Metrics) RecordPaymentLookup(ctx context.Context, found bool) {
	if m == nil {
		return
	}
	outcome := "found"
	if !found {
		outcome = "missing"
	}
	attrs := FilterAttributes(attribute.String("outcome", outcome))
	m.paymentLookups.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordUserLogin increments login upsert counts.
func (m *Metrics) RecordUserLogin(ctx context.Context, created bool) {
	if m == nil {
		return
	}
	eventType := "returning"
	if created {
		eventType = "signup"
	}
	attrs := FilterAttributes(attribute.String("event_type", eventType))
	m.userLogins.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"op":          {},
	"outcome":     {},
	"endpoint":    {},
	"status":      {},
	"status_code": {},
	"event_type":  {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
