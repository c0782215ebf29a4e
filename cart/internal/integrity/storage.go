package integrity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Storage is the key-value space of one guest session.
// Get returns an empty string without error when key is absent.
type Storage interface {
	Get(c context.Context, session string, key string) (string, error)
	Set(c context.Context, session string, key string, value string) error
	Delete(c context.Context, session string, key string) error
}

func storageKey(session, key string) string {
	return fmt.Sprintf("guests:%s:%s", session, key)
}

type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: map[string]string{}}
}

func (s *MemoryStorage) Get(c context.Context, session string, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[storageKey(session, key)], nil
}

func (s *MemoryStorage) Set(c context.Context, session string, key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[storageKey(session, key)] = value
	return nil
}

func (s *MemoryStorage) Delete(c context.Context, session string, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, storageKey(session, key))
	return nil
}

type RedisStorage struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStorage(client *redis.Client, ttl time.Duration) *RedisStorage {
	return &RedisStorage{client: client, ttl: ttl}
}

func (s *RedisStorage) Get(c context.Context, session string, key string) (string, error) {
	value, err := s.client.Get(c, storageKey(session, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed getting key=%s with error=%w", storageKey(session, key), err)
	}
	return value, nil
}

// Set refreshes the expiry of the session on every write.
func (s *RedisStorage) Set(c context.Context, session string, key string, value string) error {
	if err := s.client.Set(c, storageKey(session, key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed setting key=%s with error=%w", storageKey(session, key), err)
	}
	return nil
}

func (s *RedisStorage) Delete(c context.Context, session string, key string) error {
	if err := s.client.Del(c, storageKey(session, key)).Err(); err != nil {
		return fmt.Errorf("failed deleting key=%s with error=%w", storageKey(session, key), err)
	}
	return nil
}
