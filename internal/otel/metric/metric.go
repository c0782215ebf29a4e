package metric

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"

	"github.com/Alturino/framedarchive/internal/config"
	"github.com/Alturino/framedarchive/internal/log"
)

func NewMeterProvider(
	c context.Context,
	cfg config.Otel,
	res *resource.Resource,
) (*sdkmetric.MeterProvider, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "NewMeterProvider").
		Str(log.KeyProcess, "initializing metric exporter").
		Str("endpoint", cfg.Endpoint()).
		Dur("interval", cfg.ExportInterval).
		Logger()

	logger.Info().Msg("initializing metric exporter")
	exporter, err := otlpmetricgrpc.New(
		c,
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint()),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		err = fmt.Errorf("failed creating metric exporter with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Msg("initialized metric exporter")

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.ExportInterval))
	return sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader), sdkmetric.WithResource(res)), nil
}
