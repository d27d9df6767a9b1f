// Package events fans out download run updates to interested consumers.
package events

import (
	"playlistarr/internal/models"

	"github.com/asaskevich/EventBus"
)

// Topics.
const (
	TopicItemStatus = "run:item-status"
	TopicRunState   = "run:state"
)

// Bus wraps the process-wide event bus with typed publish and subscribe
// helpers.
type Bus struct {
	bus EventBus.Bus
}

// NewBus returns an event bus for run updates.
func NewBus() *Bus {
	return &Bus{bus: EventBus.New()}
}

// PublishItemStatus broadcasts one item status or progress update.
func (b *Bus) PublishItemStatus(update models.StatusUpdate) {
	b.bus.Publish(TopicItemStatus, update)
}

// SubscribeItemStatus registers a handler for item updates. Handlers run
// asynchronously but in publish order.
func (b *Bus) SubscribeItemStatus(fn func(models.StatusUpdate)) error {
	return b.bus.SubscribeAsync(TopicItemStatus, fn, true)
}

// UnsubscribeItemStatus removes a previously registered item update handler.
func (b *Bus) UnsubscribeItemStatus(fn func(models.StatusUpdate)) error {
	return b.bus.Unsubscribe(TopicItemStatus, fn)
}

// PublishRunState broadcasts a session record whenever a run changes state.
func (b *Bus) PublishRunState(record models.SessionRecord) {
	b.bus.Publish(TopicRunState, record)
}

// SubscribeRunState registers a handler for run state changes.
func (b *Bus) SubscribeRunState(fn func(models.SessionRecord)) error {
	return b.bus.SubscribeAsync(TopicRunState, fn, true)
}

// UnsubscribeRunState removes a previously registered run state handler.
func (b *Bus) UnsubscribeRunState(fn func(models.SessionRecord)) error {
	return b.bus.Unsubscribe(TopicRunState, fn)
}

// Wait blocks until all in-flight async handlers finish.
func (b *Bus) Wait() {
	b.bus.WaitAsync()
}
