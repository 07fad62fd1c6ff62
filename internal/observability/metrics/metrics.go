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

// Metrics exposes the billing ledger's application-level instruments.
type Metrics struct {
	paymentsProcessed  metric.Int64Counter
	paymentsVoided     metric.Int64Counter
	refundsProcessed   metric.Int64Counter
	claimsSettled      metric.Int64Counter
	versionConflicts   metric.Int64Counter
	billsMarkedOverdue metric.Int64Counter
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
		name = "hms-billing"
	}
	meter := provider.Meter(name)

	paymentsProcessed, err := meter.Int64Counter("hms_payments_processed_total")
	if err != nil {
		return nil, err
	}
	paymentsVoided, err := meter.Int64Counter("hms_payments_voided_total")
	if err != nil {
		return nil, err
	}
	refundsProcessed, err := meter.Int64Counter("hms_refunds_processed_total")
	if err != nil {
		return nil, err
	}
	claimsSettled, err := meter.Int64Counter("hms_claims_settled_total")
	if err != nil {
		return nil, err
	}
	versionConflicts, err := meter.Int64Counter("hms_billing_version_conflicts_total")
	if err != nil {
		return nil, err
	}
	billsMarkedOverdue, err := meter.Int64Counter("hms_bills_marked_overdue_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		paymentsProcessed:  paymentsProcessed,
		paymentsVoided:     paymentsVoided,
		refundsProcessed:   refundsProcessed,
		claimsSettled:      claimsSettled,
		versionConflicts:   versionConflicts,
		billsMarkedOverdue: billsMarkedOverdue,
	}, nil
}

// RecordPaymentProcessed increments processed payment counts.
func (m *Metrics) RecordPaymentProcessed(ctx context.Context, method string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("method", strings.TrimSpace(method)))
	m.paymentsProcessed.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordPaymentVoided increments voided payment counts.
func (m *Metrics) RecordPaymentVoided(ctx context.Context) {
	if m == nil {
		return
	}
	m.paymentsVoided.Add(ctx, 1)
}

// RecordRefundProcessed increments refund counts.
func (m *Metrics) RecordRefundProcessed(ctx context.Context) {
	if m == nil {
		return
	}
	m.refundsProcessed.Add(ctx, 1)
}

// RecordClaimSettled increments settled claim counts.
func (m *Metrics) RecordClaimSettled(ctx context.Context) {
	if m == nil {
		return
	}
	m.claimsSettled.Add(ctx, 1)
}

// RecordBillsMarkedOverdue adds the number of bills flipped by one sweep.
func (m *Metrics) RecordBillsMarkedOverdue(ctx context.Context, count int64) {
	if m == nil || count <= 0 {
		return
	}
	m.billsMarkedOverdue.Add(ctx, count)
}

// RecordVersionConflict increments optimistic-lock conflict counts per operation.
func (m *Metrics) RecordVersionConflict(ctx context.Context, operation string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("operation", strings.TrimSpace(operation)))
	m.versionConflicts.Add(ctx, 1, metric.WithAttributes(attrs...))
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
	"endpoint":    {},
	"status_code": {},
	"method":      {},
	"operation":   {},
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
