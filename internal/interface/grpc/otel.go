package grpcservice

import (
	"context"
	"errors"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	metricExport "go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	traceExport "go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

const (
	otelServiceName    = "htlcd"
	otelMetricInterval = 10 * time.Second
)

// initOtelSDK installs global trace and meter providers exporting to the
// given OTLP/HTTP collector. The returned func flushes and stops both.
func initOtelSDK(ctx context.Context, collectorUrl string) (func(context.Context) error, error) {
	endpoint := strings.TrimSuffix(collectorUrl, "/")
	endpoint = strings.TrimPrefix(endpoint, "http://")

	res := resource.NewWithAttributes(
		semconv.SchemaURL, semconv.ServiceName(otelServiceName),
	)

	tp, err := newTracerProvider(ctx, endpoint, res)
	if err != nil {
		return nil, err
	}
	mp, err := newMeterProvider(ctx, endpoint, res)
	if err != nil {
		// nolint:errcheck
		tp.Shutdown(ctx)
		return nil, err
	}

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	log.Infof("exporting traces and metrics to %s", endpoint)

	return func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
	}, nil
}

func newTracerProvider(
	ctx context.Context, endpoint string, res *resource.Resource,
) (*trace.TracerProvider, error) {
	exporter, err := traceExport.New(
		ctx, traceExport.WithEndpoint(endpoint), traceExport.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}
	return trace.NewTracerProvider(
		trace.WithBatcher(exporter), trace.WithResource(res),
	), nil
}

func newMeterProvider(
	ctx context.Context, endpoint string, res *resource.Resource,
) (*sdkmetric.MeterProvider, error) {
	exporter, err := metricExport.New(
		ctx, metricExport.WithEndpoint(endpoint), metricExport.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}
	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(otelMetricInterval))
	return sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader), sdkmetric.WithResource(res),
	), nil
}
