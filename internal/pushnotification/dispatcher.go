package pushnotification

import (
	"context"
	"log/slog"

	"github.com/kazz187/teamboard/internal/eventbus"
)

// Dispatcher turns bus events into web pushes.
type Dispatcher struct {
	eventBus *eventbus.Bus
	sender   *Sender
}

func NewDispatcher(eventBus *eventbus.Bus, sender *Sender) *Dispatcher {
	return &Dispatcher{
		eventBus: eventBus,
		sender:   sender,
	}
}

func (d *Dispatcher) Start(ctx context.Context) error {
	subID, ch := d.eventBus.Subscribe(256)
	defer d.eventBus.Unsubscribe(subID)

	slog.InfoContext(ctx, "push notification dispatcher started")
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-ch:
			if !ok {
				return nil
			}
			d.handle(ctx, event)
		}
	}
}

func (d *Dispatcher) handle(ctx context.Context, event *eventbus.Event) {
	switch event.Type {
	case eventbus.NotificationCreated:
		d.sender.SendTo(ctx, event.Metadata["user_id"], &NotificationPayload{
			Title: event.Payload,
			Body:  event.Metadata["message"],
			URL:   "/notifications",
			Tag:   event.ResourceID,
		})
	case eventbus.TaskTrashed:
		d.sender.SendToAll(ctx, &NotificationPayload{
			Title: "Task moved to trash",
			Body:  event.Payload,
			URL:   "/trash",
			Tag:   event.Metadata["trash_id"],
		})
	}
}
