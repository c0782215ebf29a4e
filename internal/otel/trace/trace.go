package trace

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/Alturino/framedarchive/internal/config"
	"github.com/Alturino/framedarchive/internal/log"
)

// NewSampler keeps the parent's decision and samples root spans at ratio.
// A ratio outside (0, 1) falls back to sampling everything.
func NewSampler(ratio float64) sdktrace.Sampler {
	if ratio <= 0 || ratio >= 1 {
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
}

func NewTracerProvider(
	c context.Context,
	cfg config.Otel,
	res *resource.Resource,
) (*sdktrace.TracerProvider, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "NewTracerProvider").
		Str("endpoint", cfg.Endpoint()).
		Float64("sampleRatio", cfg.SampleRatio).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing span exporter").Logger()
	logger.Info().Msg("initializing span exporter")
	exporter, err := otlptracegrpc.New(
		c,
		otlptracegrpc.WithEndpoint(cfg.Endpoint()),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		err = fmt.Errorf("failed creating span exporter with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Msg("initialized span exporter")

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(cfg.ExportInterval)),
		sdktrace.WithSampler(NewSampler(cfg.SampleRatio)),
		sdktrace.WithResource(res),
	), nil
}
