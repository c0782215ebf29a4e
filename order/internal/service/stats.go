package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	inErrors "github.com/Alturino/framedarchive/internal/errors"
	"github.com/Alturino/framedarchive/internal/log"
	"github.com/Alturino/framedarchive/internal/otel"
	"github.com/Alturino/framedarchive/order/pkg/model"
	"github.com/Alturino/framedarchive/order/pkg/request"
	"github.com/Alturino/framedarchive/order/pkg/response"
)

const statsPageSize = 500

func statsKey(item model.OrderItem) string {
	return strings.Join([]string{item.Name, item.PrintType, item.Variant, item.Size}, "|")
}

func lessStats(sortBy string) func(a, b response.ProductStats) bool {
	switch sortBy {
	case "units":
		return func(a, b response.ProductStats) bool { return a.Units < b.Units }
	case "orders":
		return func(a, b response.ProductStats) bool { return a.Orders < b.Orders }
	case "name":
		return func(a, b response.ProductStats) bool { return a.Name < b.Name }
	default:
		return func(a, b response.ProductStats) bool { return a.Revenue.LessThan(b.Revenue) }
	}
}

// Stats totals units and revenue per print configuration over every recorded order.
// Products are sorted by revenue, highest first, unless param says otherwise.
func (s *OrderService) Stats(c context.Context, param request.FindStats) (response.Stats, error) {
	c, span := otel.Tracer.Start(c, "OrderService Stats")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService Stats").
		Str(log.KeyStatsSort, param.SortBy).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "aggregating orders").Logger()
	logger.Info().Msg("aggregating orders")
	stats := response.Stats{Products: []response.ProductStats{}, Revenue: decimal.Zero}
	byKey := map[string]*response.ProductStats{}
	keys := []string{}
	for offset := int32(0); ; offset += statsPageSize {
		orders, err := s.store.FindOrders(c, "", statsPageSize, offset)
		if err != nil {
			err = fmt.Errorf("failed finding orders with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Stats{}, err
		}
		for _, order := range orders {
			stats.Orders++
			seen := map[string]bool{}
			for _, item := range order.Items {
				key := statsKey(item)
				product, ok := byKey[key]
				if !ok {
					product = &response.ProductStats{
						Name:      item.Name,
						PrintType: item.PrintType,
						Variant:   item.Variant,
						Size:      item.Size,
						Revenue:   decimal.Zero,
						Status:    map[string]int{},
					}
					byKey[key] = product
					keys = append(keys, key)
				}
				product.Units += item.Quantity
				product.Revenue = product.Revenue.Add(item.Subtotal())
				if !seen[key] {
					seen[key] = true
					product.Orders++
					product.Status[order.Status]++
				}
				stats.Units += item.Quantity
				stats.Revenue = stats.Revenue.Add(item.Subtotal())
			}
		}
		if len(orders) < statsPageSize {
			break
		}
	}

	for _, key := range keys {
		stats.Products = append(stats.Products, *byKey[key])
	}
	less := lessStats(param.SortBy)
	desc := param.Order != "asc"
	sort.SliceStable(stats.Products, func(i, j int) bool {
		a, b := stats.Products[i], stats.Products[j]
		if desc {
			a, b = b, a
		}
		return less(a, b)
	})
	logger.Info().Int(log.KeyOrders, stats.Orders).Int("products", len(stats.Products)).Msg("aggregated orders")
	return stats, nil
}
