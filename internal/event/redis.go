package event

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Alturino/framedarchive/internal/errors"
	"github.com/Alturino/framedarchive/internal/log"
	"github.com/Alturino/framedarchive/internal/otel"
)

type RedisBroker struct {
	client *redis.Client
}

func NewRedisBroker(client *redis.Client) *RedisBroker {
	return &RedisBroker{client: client}
}

func (b *RedisBroker) Publish(c context.Context, evt CartUpdated) error {
	c, span := otel.Tracer.Start(c, "RedisBroker Publish")
	defer span.End()

	payload, err := json.Marshal(evt)
	if err != nil {
		err = fmt.Errorf("failed marshaling cart updated event with error=%w", err)
		errors.HandleError(err, span)
		return err
	}
	if err = b.client.Publish(c, Channel(evt.Owner), payload).Err(); err != nil {
		err = fmt.Errorf("failed publishing cart updated event with error=%w", err)
		errors.HandleError(err, span)
		return err
	}
	return nil
}

func (b *RedisBroker) Subscribe(c context.Context, owner string) (<-chan CartUpdated, func(), error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "RedisBroker Subscribe").
		Str(log.KeyOwner, owner).
		Logger()

	pubsub := b.client.Subscribe(c, Channel(owner))
	if _, err := pubsub.Receive(c); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("failed subscribing channel=%s with error=%w", Channel(owner), err)
	}

	out := make(chan CartUpdated, subscriberBuffer)
	done := make(chan struct{})
	var once sync.Once
	cancel := func() { once.Do(func() { close(done) }) }
	go func() {
		defer close(out)
		defer pubsub.Close()
		messages := pubsub.Channel()
		for {
			select {
			case <-c.Done():
				return
			case <-done:
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				evt := CartUpdated{}
				if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
					logger.Warn().Err(err).Msg("dropping malformed cart updated event")
					continue
				}
				select {
				case out <- evt:
				default:
				}
			}
		}
	}()
	return out, cancel, nil
}
