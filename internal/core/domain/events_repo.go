package domain

import "context"

type EventType int

const (
	EventTypeUndefined EventType = iota

	// HTLC
	EventTypeHTLCLocked
	EventTypeHTLCClaimed
	EventTypeHTLCReclaimed
)

func (t EventType) String() string {
	switch t {
	case EventTypeHTLCLocked:
		return "HTLC_LOCKED"
	case EventTypeHTLCClaimed:
		return "HTLC_CLAIMED"
	case EventTypeHTLCReclaimed:
		return "HTLC_RECLAIMED"
	default:
		return "UNDEFINED"
	}
}

type Event interface {
	GetTopic() string
	GetType() EventType
}

type EventRepository interface {
	Save(ctx context.Context, topic, id string, events []Event) error
	Load(ctx context.Context, topic, id string) ([]Event, error)
	RegisterEventsHandler(topic string, handler func(events []Event))
	ClearRegisteredHandlers(topic ...string)
	Close()
}
