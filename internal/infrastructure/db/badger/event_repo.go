package badgerdb

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/ark-network/htlc/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const eventStoreDir = "htlc-events"

type eventsDTO struct {
	Events [][]byte
}

type topicEvents struct {
	topic  string
	events []domain.Event
}

type eventRepository struct {
	store     *badgerhold.Store
	saveLock  sync.Mutex
	lock      *sync.Mutex
	chUpdates chan topicEvents
	handlers  map[string][]func(events []domain.Event)
	done      chan struct{}
	wg        sync.WaitGroup
}

func NewEventRepository(config ...interface{}) (domain.EventRepository, error) {
	baseDir, logger, err := parseConfig(config)
	if err != nil {
		return nil, err
	}

	var dir string
	if len(baseDir) > 0 {
		dir = filepath.Join(baseDir, eventStoreDir)
	}
	store, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open htlc events store: %s", err)
	}
	repo := &eventRepository{
		store:     store,
		lock:      &sync.Mutex{},
		chUpdates: make(chan topicEvents),
		handlers:  make(map[string][]func(events []domain.Event)),
		done:      make(chan struct{}),
	}
	go repo.listen()
	return repo, nil
}

func (r *eventRepository) Save(
	_ context.Context, topic, id string, events []domain.Event,
) error {
	if len(events) <= 0 {
		return nil
	}

	r.saveLock.Lock()
	defer r.saveLock.Unlock()

	key := eventsKey(topic, id)
	allEvents, err := r.get(key)
	if err != nil {
		return err
	}
	allEvents = append(allEvents, events...)
	if err := r.upsert(key, allEvents); err != nil {
		return err
	}

	r.wg.Add(1)
	go r.publishEvents(topicEvents{topic, events})
	return nil
}

func (r *eventRepository) Load(_ context.Context, topic, id string) ([]domain.Event, error) {
	events, err := r.get(eventsKey(topic, id))
	if err != nil {
		return nil, err
	}
	if len(events) <= 0 {
		return nil, domain.NewError(domain.ErrorKindNotFound, "no events for %s %s", topic, id)
	}
	return events, nil
}

func (r *eventRepository) RegisterEventsHandler(
	topic string, handler func(events []domain.Event),
) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.handlers[topic] = append(r.handlers[topic], handler)
}

func (r *eventRepository) ClearRegisteredHandlers(topics ...string) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if len(topics) <= 0 {
		r.handlers = make(map[string][]func(events []domain.Event))
		return
	}
	for _, topic := range topics {
		delete(r.handlers, topic)
	}
}

func (r *eventRepository) Close() {
	close(r.done)
	r.wg.Wait()
	// nolint:errcheck
	r.store.Close()
}

func (r *eventRepository) get(key string) ([]domain.Event, error) {
	dto := eventsDTO{}
	if err := r.store.Get(key, &dto); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get events with key %s: %s", key, err)
	}
	return deserializeEvents(dto.Events)
}

func (r *eventRepository) upsert(key string, events []domain.Event) error {
	buf, err := serializeEvents(events)
	if err != nil {
		return err
	}
	if err := r.store.Upsert(key, buf); err != nil {
		return fmt.Errorf("failed to upsert events with key %s: %s", key, err)
	}
	return nil
}

func (r *eventRepository) listen() {
	for {
		select {
		case <-r.done:
			return
		case update := <-r.chUpdates:
			r.runHandlers(update)
		}
	}
}

func (r *eventRepository) publishEvents(update topicEvents) {
	defer r.wg.Done()
	select {
	case <-r.done:
		return
	case r.chUpdates <- update:
	}
}

func (r *eventRepository) runHandlers(update topicEvents) {
	r.lock.Lock()
	handlers := append([]func(events []domain.Event){}, r.handlers[update.topic]...)
	r.lock.Unlock()

	for _, handler := range handlers {
		handler(update.events)
	}
}

func eventsKey(topic, id string) string {
	return topic + "/" + id
}
