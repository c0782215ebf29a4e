package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type Result struct {
	Allowed    bool
	Count      int
	RetryAfter time.Duration
}

// Store counts hits per key within a sliding window. Implementations must be safe for
// concurrent use; a Store shared by several instances must be distributed.
type Store interface {
	Hit(c context.Context, key string, limit int, window time.Duration) (Result, error)
}

type Limiter struct {
	store  Store
	name   string
	limit  int
	window time.Duration
}

func NewLimiter(store Store, name string, limit int, window time.Duration) *Limiter {
	return &Limiter{
		store:  store,
		name:   strings.ToLower(strings.TrimSpace(name)),
		limit:  limit,
		window: window,
	}
}

func (l *Limiter) Enabled() bool {
	return l != nil && l.store != nil && l.limit > 0 && l.window > 0
}

func (l *Limiter) Name() string {
	if l.name == "" {
		return "default"
	}
	return l.name
}

func (l *Limiter) key(subject string) string {
	return fmt.Sprintf("rl:%s:%s", l.Name(), subject)
}

// Allow records a hit for subject unless the subject is already over the limit.
func (l *Limiter) Allow(c context.Context, subject string) (Result, error) {
	if !l.Enabled() {
		return Result{Allowed: true}, nil
	}
	res, err := l.store.Hit(c, l.key(subject), l.limit, l.window)
	if err != nil {
		return Result{}, fmt.Errorf("failed hitting rate limit store with error=%w", err)
	}
	return res, nil
}
