package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	inErrors "github.com/Alturino/framedarchive/internal/errors"
	"github.com/Alturino/framedarchive/internal/log"
	"github.com/Alturino/framedarchive/internal/otel"
	"github.com/Alturino/framedarchive/product/pkg/pricing"
	"github.com/Alturino/framedarchive/product/pkg/request"
)

type CatalogService struct {
	catalog *pricing.Catalog
}

func NewCatalogService(catalog *pricing.Catalog) CatalogService {
	return CatalogService{catalog: catalog}
}

func matches(filter, value string) bool {
	filter = strings.TrimSpace(filter)
	return filter == "" || strings.EqualFold(filter, value)
}

// FindEntries lists the price list entries matching every non-empty field of param.
func (svc CatalogService) FindEntries(c context.Context, param request.FindCatalog) []pricing.Entry {
	_, span := otel.Tracer.Start(c, "CatalogService FindEntries")
	defer span.End()

	entries := []pricing.Entry{}
	for _, entry := range svc.catalog.Entries() {
		if matches(param.PrintType, entry.PrintType) &&
			matches(param.Variant, entry.Variant) &&
			matches(param.Size, entry.Size) {
			entries = append(entries, entry)
		}
	}
	return entries
}

func (svc CatalogService) Quote(c context.Context, param request.QuotePrice) (pricing.Entry, error) {
	c, span := otel.Tracer.Start(c, "CatalogService Quote")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CatalogService Quote").
		Str(log.KeyProcess, "pricing configuration").
		Logger()

	basePrice, err := svc.catalog.Price(param.PrintType, param.Variant, param.Size)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return pricing.Entry{}, err
	}
	if entries := svc.FindEntries(c, request.FindCatalog(param)); len(entries) > 0 {
		return entries[0], nil
	}
	return pricing.Entry{PrintType: param.PrintType, Variant: param.Variant, Size: param.Size, BasePrice: basePrice}, nil
}
