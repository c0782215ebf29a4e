package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	inErrors "github.com/Alturino/framedarchive/internal/errors"
	"github.com/Alturino/framedarchive/order/pkg/model"
)

type MemoryOrderStore struct {
	mu     sync.RWMutex
	orders map[uuid.UUID]model.Order
}

func NewMemoryOrderStore() *MemoryOrderStore {
	return &MemoryOrderStore{orders: map[uuid.UUID]model.Order{}}
}

func (s *MemoryOrderStore) InsertOrder(_ context.Context, order model.Order) (model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.orders {
		if existing.GatewayOrderID == order.GatewayOrderID {
			return model.Order{}, fmt.Errorf(
				"failed inserting order gatewayOrderId=%s with error=%w",
				order.GatewayOrderID,
				ErrDuplicateOrder,
			)
		}
	}
	s.orders[order.ID] = order
	return order, nil
}

func (s *MemoryOrderStore) FindOrderByID(_ context.Context, id uuid.UUID) (model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	order, ok := s.orders[id]
	if !ok {
		return model.Order{}, fmt.Errorf("failed finding order id=%s with error=%w", id, inErrors.ErrOrderNotFound)
	}
	return order, nil
}

func (s *MemoryOrderStore) FindOrderByGatewayOrderID(_ context.Context, gatewayOrderID string) (model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, order := range s.orders {
		if order.GatewayOrderID == gatewayOrderID {
			return order, nil
		}
	}
	return model.Order{}, fmt.Errorf(
		"failed finding order gatewayOrderId=%s with error=%w",
		gatewayOrderID,
		inErrors.ErrOrderNotFound,
	)
}

func (s *MemoryOrderStore) filter(keep func(model.Order) bool) []model.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	orders := []model.Order{}
	for _, order := range s.orders {
		if keep(order) {
			orders = append(orders, order)
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].OrderDate.After(orders[j].OrderDate)
	})
	return orders
}

func (s *MemoryOrderStore) FindOrdersByUserID(_ context.Context, userID string) ([]model.Order, error) {
	return s.filter(func(o model.Order) bool { return o.UserID == userID }), nil
}

func (s *MemoryOrderStore) FindOrders(
	_ context.Context,
	status string,
	limit int32,
	offset int32,
) ([]model.Order, error) {
	orders := s.filter(func(o model.Order) bool { return status == "" || o.Status == status })
	if int(offset) >= len(orders) {
		return []model.Order{}, nil
	}
	orders = orders[offset:]
	if limit > 0 && int(limit) < len(orders) {
		orders = orders[:limit]
	}
	return orders, nil
}

func (s *MemoryOrderStore) UpdateOrderStatus(_ context.Context, order model.Order) (model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.orders[order.ID]
	if !ok {
		return model.Order{}, fmt.Errorf("failed updating order id=%s with error=%w", order.ID, inErrors.ErrOrderNotFound)
	}
	existing.Status = order.Status
	existing.ProcessedAt = firstSet(order.ProcessedAt, existing.ProcessedAt)
	existing.ShippedAt = firstSet(order.ShippedAt, existing.ShippedAt)
	existing.DeliveredAt = firstSet(order.DeliveredAt, existing.DeliveredAt)
	existing.CancelledAt = firstSet(order.CancelledAt, existing.CancelledAt)
	if order.CancelledBy != "" {
		existing.CancelledBy = order.CancelledBy
	}
	s.orders[order.ID] = existing
	return existing, nil
}

func (s *MemoryOrderStore) RequestOrderReturn(_ context.Context, id uuid.UUID, at time.Time) (model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.orders[id]
	if !ok {
		return model.Order{}, fmt.Errorf("failed requesting return of order id=%s with error=%w", id, inErrors.ErrOrderNotFound)
	}
	existing.ReturnRequested = true
	existing.ReturnRequestedAt = &at
	s.orders[id] = existing
	return existing, nil
}

func firstSet(a, b *time.Time) *time.Time {
	if a != nil {
		return a
	}
	return b
}
