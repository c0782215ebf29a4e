package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Alturino/framedarchive/cart/pkg/model"
	inErrors "github.com/Alturino/framedarchive/internal/errors"
	"github.com/Alturino/framedarchive/internal/log"
	"github.com/Alturino/framedarchive/internal/otel"
)

var ErrCacheMiss = errors.New("cart cache miss")

type cachedCart struct {
	Found bool             `json:"found"`
	Items []model.CartItem `json:"items"`
}

// CachedCartStore is a cache-aside decorator. Writes go to next first, then invalidate.
// Cache failures never fail a call.
type CachedCartStore struct {
	next  CartStore
	cache *redis.Client
	ttl   time.Duration
}

func NewCachedCartStore(next CartStore, cache *redis.Client, ttl time.Duration) *CachedCartStore {
	return &CachedCartStore{next: next, cache: cache, ttl: ttl}
}

func cacheKey(userID string) string {
	return fmt.Sprintf("carts:users:%s", userID)
}

func (s *CachedCartStore) FindCart(c context.Context, userID string) ([]model.CartItem, bool, error) {
	c, span := otel.Tracer.Start(c, "CachedCartStore FindCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CachedCartStore FindCart").
		Str(log.KeyCacheKey, cacheKey(userID)).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding cart in cache").Logger()
	cached, err := s.get(c, userID)
	if err == nil {
		logger.Trace().Msg("found cart in cache")
		return cached.Items, cached.Found, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		inErrors.HandleError(err, span)
		logger.Warn().Err(err).Msg(err.Error())
	}

	items, found, err := s.next.FindCart(c, userID)
	if err != nil {
		return nil, false, err
	}

	logger = logger.With().Str(log.KeyProcess, "setting cart in cache").Logger()
	if err := s.set(c, userID, cachedCart{Found: found, Items: items}); err != nil {
		inErrors.HandleError(err, span)
		logger.Warn().Err(err).Msg(err.Error())
	}
	return items, found, nil
}

func (s *CachedCartStore) SaveCart(c context.Context, userID string, items []model.CartItem) error {
	c, span := otel.Tracer.Start(c, "CachedCartStore SaveCart")
	defer span.End()

	if err := s.next.SaveCart(c, userID, items); err != nil {
		return err
	}
	s.invalidate(c, userID)
	return nil
}

func (s *CachedCartStore) MergeCart(
	c context.Context,
	userID string,
	mergeToken string,
	merge MergeFunc,
) ([]model.CartItem, bool, error) {
	c, span := otel.Tracer.Start(c, "CachedCartStore MergeCart")
	defer span.End()

	items, applied, err := s.next.MergeCart(c, userID, mergeToken, merge)
	if err != nil {
		return nil, false, err
	}
	if applied {
		s.invalidate(c, userID)
	}
	return items, applied, nil
}

func (s *CachedCartStore) get(c context.Context, userID string) (cachedCart, error) {
	raw, err := s.cache.Get(c, cacheKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return cachedCart{}, ErrCacheMiss
	}
	if err != nil {
		return cachedCart{}, fmt.Errorf("failed getting cached cart with error=%w", err)
	}
	cached := cachedCart{}
	if err := json.Unmarshal(raw, &cached); err != nil {
		return cachedCart{}, fmt.Errorf("failed unmarshaling cached cart with error=%w", err)
	}
	if cached.Items == nil {
		cached.Items = []model.CartItem{}
	}
	return cached, nil
}

func (s *CachedCartStore) set(c context.Context, userID string, cached cachedCart) error {
	raw, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("failed marshaling cached cart with error=%w", err)
	}
	if err := s.cache.Set(c, cacheKey(userID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed setting cached cart with error=%w", err)
	}
	return nil
}

func (s *CachedCartStore) invalidate(c context.Context, userID string) {
	if err := s.cache.Del(c, cacheKey(userID)).Err(); err != nil {
		zerolog.Ctx(c).Warn().
			Err(err).
			Str(log.KeyCacheKey, cacheKey(userID)).
			Msg("failed invalidating cached cart")
	}
}
