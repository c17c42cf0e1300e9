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
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
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
	checkoutSessions metric.Int64Counter
	webhookEvents    metric.Int64Counter
	creditsAwarded   metric.Int64Counter
	creditsDebited   metric.Int64Counter
	generations      metric.Int64Counter
	rateLimitDenied  metric.Int64Counter
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

	res, err := sdkresource.Merge(sdkresource.Default(), sdkresource.NewSchemaless(
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("deployment.environment", cfg.Environment),
	))
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
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

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "dreamnest"
	}
	meter := provider.Meter(name)

	checkoutSessions, err := meter.Int64Counter("dreamnest_checkout_sessions_total")
	if err != nil {
		return nil, err
	}
	webhookEvents, err := meter.Int64Counter("dreamnest_webhook_events_total")
	if err != nil {
		return nil, err
	}
	creditsAwarded, err := meter.Int64Counter("dreamnest_credits_awarded_total")
	if err != nil {
		return nil, err
	}
	creditsDebited, err := meter.Int64Counter("dreamnest_credits_debited_total")
	if err != nil {
		return nil, err
	}
	generations, err := meter.Int64Counter("dreamnest_tool_generations_total")
	if err != nil {
		return nil, err
	}
	rateLimitDenied, err := meter.Int64Counter("dreamnest_rate_limit_denied_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		checkoutSessions: checkoutSessions,
		webhookEvents:    webhookEvents,
		creditsAwarded:   creditsAwarded,
		creditsDebited:   creditsDebited,
		generations:      generations,
		rateLimitDenied:  rateLimitDenied,
	}, nil
}

// RecordCheckoutSession increments checkout session counts per package.
func (m *Metrics) RecordCheckoutSession(ctx context.Context, packageKey string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("package_key", strings.TrimSpace(packageKey)))
	m.checkoutSessions.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordWebhookEvent increments webhook delivery counts per outcome.
func (m *Metrics) RecordWebhookEvent(ctx context.Context, eventType, outcome string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("event_type", strings.TrimSpace(eventType)),
		attribute.String("outcome", strings.TrimSpace(outcome)),
	)
	m.webhookEvents.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordCreditsAwarded counts credits granted by the award processor.
func (m *Metrics) RecordCreditsAwarded(ctx context.Context, packageKey string, credits int64) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("package_key", strings.TrimSpace(packageKey)))
	m.creditsAwarded.Add(ctx, credits, metric.WithAttributes(attrs...))
}

// RecordCreditsDebited counts credits spent by paid tool invocations.
func (m *Metrics) RecordCreditsDebited(ctx context.Context, toolName string, credits int64) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("tool_name", strings.TrimSpace(toolName)))
	m.creditsDebited.Add(ctx, credits, metric.WithAttributes(attrs...))
}

// RecordGeneration increments completed generation counts per tool.
func (m *Metrics) RecordGeneration(ctx context.Context, toolName string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("tool_name", strings.TrimSpace(toolName)))
	m.generations.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRateLimitDenied increments rate limit deny counts.
func (m *Metrics) RecordRateLimitDenied(ctx context.Context, endpoint string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("endpoint", strings.TrimSpace(endpoint)))
	m.rateLimitDenied.Add(ctx, 1, metric.WithAttributes(attrs...))
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
	"package_key": {},
	"event_type":  {},
	"outcome":     {},
	"tool_name":   {},
	"endpoint":    {},
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
