package display

import (
	"time"

	"StockPulse/internal/chart"
)

// EventType is the kind of change an Event carries.
type EventType string

const (
	EventText        EventType = "text"
	EventChartCreate EventType = "chart_create"
	EventChartUpdate EventType = "chart_update"
	EventAlert       EventType = "alert"
)

// Event is one board change as sent to the page.
type Event struct {
	Type   EventType    `json:"type"`
	Field  Field        `json:"field,omitempty"`
	Text   string       `json:"text,omitempty"`
	Source Source       `json:"source,omitempty"`
	Chart  *chart.Chart `json:"chart,omitempty"`
	Seq    int64        `json:"seq"`
	At     time.Time    `json:"ts"`
}

// Subscribe registers a listener with a buffer of size buffer. Events that
// do not fit are dropped for that listener. Call the returned func to
// unsubscribe; it closes the channel.
func (b *Board) Subscribe(buffer int) (<-chan Event, func()) {
	ch := make(chan Event, buffer)
	b.subMu.Lock()
	id := b.nextSub
	b.nextSub++
	b.subs[id] = ch
	b.subMu.Unlock()

	var once bool
	return ch, func() {
		b.subMu.Lock()
		defer b.subMu.Unlock()
		if once {
			return
		}
		once = true
		delete(b.subs, id)
		close(ch)
	}
}

// SubscribeWithSnapshot subscribes and returns the board state as of the
// moment of subscription, so no event is missed or seen twice.
func (b *Board) SubscribeWithSnapshot(buffer int) (Snapshot, <-chan Event, func()) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	ch, cancel := b.Subscribe(buffer)
	return b.snapshotLocked(), ch, cancel
}

// publish must be called with b.mu held so events go out in Seq order.
func (b *Board) publish(e Event) {
	b.subMu.Lock()
	defer b.subMu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}
