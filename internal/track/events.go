package track

import "gonum.org/v1/gonum/spatial/r3"

type EventType int

const (
	EventSegmentSpawned EventType = iota
	EventSegmentRetired
	EventProvisionalDiscarded
	EventForeignCleared
	EventBranchPresented
	EventBranchCommitted
	EventBranchAborted
	EventSequenceStarted
	EventSequenceEnded
)

func (t EventType) String() string {
	switch t {
	case EventSegmentSpawned:
		return "segment_spawned"
	case EventSegmentRetired:
		return "segment_retired"
	case EventProvisionalDiscarded:
		return "provisional_discarded"
	case EventForeignCleared:
		return "foreign_cleared"
	case EventBranchPresented:
		return "branch_presented"
	case EventBranchCommitted:
		return "branch_committed"
	case EventBranchAborted:
		return "branch_aborted"
	case EventSequenceStarted:
		return "sequence_started"
	case EventSequenceEnded:
		return "sequence_ended"
	}
	return "unknown"
}

type Event struct {
	Type      EventType
	Handle    Handle
	Name      string // template name, empty for foreign objects
	Position  r3.Vec
	Direction r3.Vec
	Length    float64
	Theme     string
	Data      int // generic payload, e.g. number of kept children on commit
}

type EventHandler func(Event)

// EventBus fans lifecycle events out to subscribers, synchronously and in
// subscription order. Handlers must not call back into the generator.
type EventBus struct {
	handlers map[EventType][]EventHandler
	all      []EventHandler
}

func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[EventType][]EventHandler),
	}
}

func (eb *EventBus) Subscribe(t EventType, fn EventHandler) {
	eb.handlers[t] = append(eb.handlers[t], fn)
}

// SubscribeAll registers fn for every event type.
func (eb *EventBus) SubscribeAll(fn EventHandler) {
	eb.all = append(eb.all, fn)
}

func (eb *EventBus) Emit(e Event) {
	if eb == nil {
		return
	}
	for _, fn := range eb.handlers[e.Type] {
		fn(e)
	}
	for _, fn := range eb.all {
		fn(e)
	}
}
