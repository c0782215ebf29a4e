package repository

import (
	"context"
	"sync"

	"github.com/Alturino/framedarchive/cart/pkg/model"
)

type memoryUser struct {
	cart           []model.CartItem
	hasCart        bool
	lastMergeToken string
}

// MemoryCartStore keeps carts in process. MergeCart holds the store lock while merging.
type MemoryCartStore struct {
	mu    sync.Mutex
	users map[string]*memoryUser
}

func NewMemoryCartStore() *MemoryCartStore {
	return &MemoryCartStore{users: map[string]*memoryUser{}}
}

func clone(items []model.CartItem) []model.CartItem {
	cloned := make([]model.CartItem, len(items))
	copy(cloned, items)
	return cloned
}

func (s *MemoryCartStore) FindCart(c context.Context, userID string) ([]model.CartItem, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok || !user.hasCart {
		return []model.CartItem{}, false, nil
	}
	return clone(user.cart), true, nil
}

func (s *MemoryCartStore) SaveCart(c context.Context, userID string, items []model.CartItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := s.user(userID)
	user.cart, user.hasCart = clone(items), true
	return nil
}

func (s *MemoryCartStore) MergeCart(
	c context.Context,
	userID string,
	mergeToken string,
	merge MergeFunc,
) ([]model.CartItem, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := s.user(userID)
	if mergeToken != "" && user.lastMergeToken == mergeToken {
		return clone(user.cart), false, nil
	}
	merged := merge(clone(user.cart), user.hasCart)
	user.cart, user.hasCart = clone(merged), true
	if mergeToken != "" {
		user.lastMergeToken = mergeToken
	}
	return clone(merged), true, nil
}

func (s *MemoryCartStore) user(userID string) *memoryUser {
	user, ok := s.users[userID]
	if !ok {
		user = &memoryUser{cart: []model.CartItem{}}
		s.users[userID] = user
	}
	return user
}
