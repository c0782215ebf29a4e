package inflight

import (
	"fmt"
	"sync"

	"github.com/Alturino/framedarchive/internal/errors"
)

// Guard admits one in-flight call per key. A second call with the same key fails fast with
// errors.ErrRequestInFlight instead of waiting.
type Guard struct {
	mu      sync.Mutex
	running map[string]struct{}
}

func NewGuard() *Guard {
	return &Guard{running: map[string]struct{}{}}
}

func (g *Guard) Acquire(key string) (release func(), err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.running[key]; ok {
		return nil, fmt.Errorf("failed acquiring key=%s with error=%w", key, errors.ErrRequestInFlight)
	}
	g.running[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			defer g.mu.Unlock()
			delete(g.running, key)
		})
	}, nil
}

func (g *Guard) Do(key string, fn func() error) error {
	release, err := g.Acquire(key)
	if err != nil {
		return err
	}
	defer release()
	return fn()
}
