package redistransport

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ark-network/htlc/internal/core/ports"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const inboxChannelFmt = "htlc:inbox:%s"

// transport delivers messages over redis pub/sub, every party subscribes to
// its own inbox channel. A single redis connection delivers the messages of a
// channel in publish order.
type transport struct {
	rdb   *redis.Client
	party string

	lock   sync.Mutex
	pubsub *redis.PubSub
	done   chan struct{}
}

func NewTransport(rdb *redis.Client, party string) ports.Transport {
	return &transport{rdb: rdb, party: party, done: make(chan struct{})}
}

func (t *transport) Send(ctx context.Context, msg ports.Message) error {
	buf, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to serialize message: %s", err)
	}
	receivers, err := t.rdb.Publish(ctx, inboxChannel(msg.To), buf).Result()
	if err != nil {
		return err
	}
	if receivers <= 0 {
		return fmt.Errorf("party %s is unreachable", msg.To)
	}
	return nil
}

func (t *transport) Receive(ctx context.Context) (<-chan ports.Message, error) {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.pubsub != nil {
		return nil, fmt.Errorf("inbox of %s already consumed", t.party)
	}

	pubsub := t.rdb.Subscribe(ctx, inboxChannel(t.party))
	// Wait for confirmation that subscription is created before publishing anything.
	if _, err := pubsub.Receive(ctx); err != nil {
		// nolint:errcheck
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to inbox of %s: %s", t.party, err)
	}
	t.pubsub = pubsub

	out := make(chan ports.Message)
	go func() {
		defer close(out)
		for m := range pubsub.Channel() {
			var msg ports.Message
			if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
				log.WithError(err).Warn("dropping malformed message")
				continue
			}
			select {
			case out <- msg:
			case <-t.done:
				return
			}
		}
	}()
	return out, nil
}

func (t *transport) Close() {
	t.lock.Lock()
	defer t.lock.Unlock()

	select {
	case <-t.done:
		return
	default:
		close(t.done)
	}
	if t.pubsub == nil {
		return
	}
	if err := t.pubsub.Close(); err != nil {
		log.WithError(err).Warn("failed to close inbox subscription")
	}
}

func inboxChannel(party string) string {
	return fmt.Sprintf(inboxChannelFmt, party)
}
