package inmemorytransport

import (
	"context"
	"fmt"
	"sync"

	"github.com/ark-network/htlc/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

const defaultInboxSize = 256

// Network connects the parties living in the same process. Every party joins
// with its own transport and receives the messages addressed to it in the
// order they were sent.
type Network struct {
	lock      sync.RWMutex
	parties   map[string]*transport
	inboxSize int
}

func NewNetwork(inboxSize int) *Network {
	if inboxSize <= 0 {
		inboxSize = defaultInboxSize
	}
	return &Network{
		parties:   make(map[string]*transport),
		inboxSize: inboxSize,
	}
}

func (n *Network) Join(party string) (ports.Transport, error) {
	n.lock.Lock()
	defer n.lock.Unlock()

	if _, ok := n.parties[party]; ok {
		return nil, fmt.Errorf("party %s already joined the network", party)
	}
	t := &transport{
		party:   party,
		network: n,
		inbox:   make(chan ports.Message, n.inboxSize),
		done:    make(chan struct{}),
	}
	n.parties[party] = t
	return t, nil
}

func (n *Network) leave(party string) {
	n.lock.Lock()
	defer n.lock.Unlock()
	delete(n.parties, party)
}

func (n *Network) get(party string) (*transport, bool) {
	n.lock.RLock()
	defer n.lock.RUnlock()
	t, ok := n.parties[party]
	return t, ok
}

type transport struct {
	party   string
	network *Network
	inbox   chan ports.Message
	done    chan struct{}

	lock      sync.Mutex
	receiving bool
	closeOnce sync.Once
}

func (t *transport) Send(ctx context.Context, msg ports.Message) error {
	receiver, ok := t.network.get(msg.To)
	if !ok {
		return fmt.Errorf("party %s is unreachable", msg.To)
	}
	if msg.Transition != nil {
		tr := *msg.Transition
		msg.Transition = &tr
	}

	select {
	case receiver.inbox <- msg:
		return nil
	case <-receiver.done:
		return fmt.Errorf("party %s is unreachable", msg.To)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *transport) Receive(_ context.Context) (<-chan ports.Message, error) {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.receiving {
		return nil, fmt.Errorf("inbox of %s already consumed", t.party)
	}
	select {
	case <-t.done:
		return nil, fmt.Errorf("transport of %s is closed", t.party)
	default:
	}
	t.receiving = true

	out := make(chan ports.Message)
	go func() {
		defer close(out)
		for {
			select {
			case <-t.done:
				return
			case msg := <-t.inbox:
				select {
				case out <- msg:
				case <-t.done:
					return
				}
			}
		}
	}()
	return out, nil
}

func (t *transport) Close() {
	t.closeOnce.Do(func() {
		t.network.leave(t.party)
		close(t.done)
		log.Debugf("party %s left the in-memory network", t.party)
	})
}
