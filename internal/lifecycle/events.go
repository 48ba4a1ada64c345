package lifecycle

import (
	"context"

	"github.com/kazz187/teamboard/internal/eventbus"
	"github.com/kazz187/teamboard/internal/trash"
)

// EventPublisher forwards transitions to the event bus.
type EventPublisher struct {
	bus *eventbus.Bus
}

func NewEventPublisher(bus *eventbus.Bus) *EventPublisher {
	return &EventPublisher{bus: bus}
}

func (p *EventPublisher) OnTransition(_ context.Context, tr Transition, e *trash.Entry) {
	meta := map[string]string{"trash_id": e.ID, "task_id": e.TaskID}
	switch tr {
	case TransitionTrashed:
		p.bus.PublishNew(eventbus.TaskTrashed, e.TaskID, e.Title, meta)
	case TransitionRestored:
		p.bus.PublishNew(eventbus.TaskRestored, e.TaskID, e.Title, meta)
	case TransitionPurged:
		p.bus.PublishNew(eventbus.TrashPurged, e.ID, e.Title, meta)
	}
}
