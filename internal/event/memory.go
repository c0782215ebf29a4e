package event

import (
	"context"
	"sync"
)

const subscriberBuffer = 16

type MemoryBroker struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]chan CartUpdated
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: map[string]map[int]chan CartUpdated{}}
}

// Publish never blocks; a subscriber whose buffer is full misses the event.
func (b *MemoryBroker) Publish(c context.Context, evt CartUpdated) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs[evt.Owner] {
		select {
		case ch <- evt:
		default:
		}
	}
	return nil
}

func (b *MemoryBroker) Subscribe(c context.Context, owner string) (<-chan CartUpdated, func(), error) {
	ch := make(chan CartUpdated, subscriberBuffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	if b.subs[owner] == nil {
		b.subs[owner] = map[int]chan CartUpdated{}
	}
	b.subs[owner][id] = ch
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs[owner], id)
			if len(b.subs[owner]) == 0 {
				delete(b.subs, owner)
			}
			close(ch)
		})
	}
	go func() {
		<-c.Done()
		cancel()
	}()
	return ch, cancel, nil
}

func (b *MemoryBroker) Subscribers(owner string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[owner])
}
