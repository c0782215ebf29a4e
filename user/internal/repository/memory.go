package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	inErrors "github.com/Alturino/framedarchive/internal/errors"
	"github.com/Alturino/framedarchive/user/pkg/model"
)

type MemoryUserStore struct {
	mu        sync.RWMutex
	addresses map[string]model.Address
	messages  []model.ContactMessage
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{addresses: map[string]model.Address{}}
}

func (s *MemoryUserStore) FindAddress(_ context.Context, userID string) (model.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	address, ok := s.addresses[userID]
	if !ok {
		return model.Address{}, fmt.Errorf(
			"failed finding address of userId=%s with error=%w",
			userID,
			inErrors.ErrAddressNotFound,
		)
	}
	return address, nil
}

func (s *MemoryUserStore) UpsertAddress(_ context.Context, userID string, address model.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addresses[userID] = address
	return nil
}

func (s *MemoryUserStore) InsertContactMessage(
	_ context.Context,
	message model.ContactMessage,
) (model.ContactMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	s.messages = append(s.messages, message)
	return message, nil
}

func (s *MemoryUserStore) ContactMessages() []model.ContactMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.ContactMessage{}, s.messages...)
}
