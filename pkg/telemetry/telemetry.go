package telemetry

import (
	"context"
	"fmt"

	"github.com/DRSN-tech/store-service/internal/cfg"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	tracerName     = "github.com/DRSN-tech/store-service"
	serviceVersion = "1.0.0"
)

// Provider владеет провайдером трейсов и gRPC-соединением экспортёра.
type Provider struct {
	tp   *sdktrace.TracerProvider
	conn *grpc.ClientConn
}

// NewProvider создаёт провайдер трейсов. Если Endpoint пуст, спаны создаются, но никуда не экспортируются.
// Провайдер регистрируется глобально, чтобы otelhttp использовал его же.
func NewProvider(ctx context.Context, cfg *cfg.OTelCfg) (*Provider, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(serviceVersion),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	opts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}

	var conn *grpc.ClientConn
	if cfg.Endpoint != "" {
		conn, err = grpc.NewClient(cfg.Endpoint,
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create gRPC connection: %w", err)
		}

		exporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
		if err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to create trace exporter: %w", err)
		}

		opts = append(opts, sdktrace.WithBatcher(exporter))
	}

	tp := sdktrace.NewTracerProvider(opts...)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &Provider{tp: tp, conn: conn}, nil
}

func (p *Provider) Tracer() trace.Tracer {
	return p.tp.Tracer(tracerName)
}

// Exporting сообщает, настроен ли экспорт спанов.
func (p *Provider) Exporting() bool {
	return p.conn != nil
}

// Shutdown сбрасывает буфер спанов и закрывает соединение с коллектором.
func (p *Provider) Shutdown(ctx context.Context) error {
	if err := p.tp.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown tracer provider: %w", err)
	}

	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			return fmt.Errorf("failed to close exporter connection: %w", err)
		}
	}

	return nil
}
