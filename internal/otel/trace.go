package otel

import (
	"go.opentelemetry.io/otel"

	"github.com/Alturino/framedarchive/internal/common/constants"
)

var Tracer = otel.Tracer(constants.APP_STOREFRONT)
