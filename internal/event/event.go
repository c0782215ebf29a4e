package event

import (
	"context"
	"fmt"
	"time"
)

type CartUpdated struct {
	Owner string    `json:"owner"`
	Count int       `json:"count"`
	At    time.Time `json:"at"`
}

type Publisher interface {
	Publish(c context.Context, evt CartUpdated) error
}

// Subscriber delivers the events of one owner until the returned cancel func is called or
// the context is done.
type Subscriber interface {
	Subscribe(c context.Context, owner string) (<-chan CartUpdated, func(), error)
}

type Broker interface {
	Publisher
	Subscriber
}

func Channel(owner string) string {
	return fmt.Sprintf("cart-updated:%s", owner)
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, CartUpdated) error { return nil }
