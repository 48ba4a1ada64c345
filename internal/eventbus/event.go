package eventbus

import "time"

type EventType string

const (
	TaskCreated         EventType = "task.created"
	TaskUpdated         EventType = "task.updated"
	TaskTrashed         EventType = "task.trashed"
	TaskRestored        EventType = "task.restored"
	TrashPurged         EventType = "trash.purged"
	KPIChanged          EventType = "kpi.changed"
	EvaluationCreated   EventType = "evaluation.created"
	NotificationCreated EventType = "notification.created"
	NotificationRead    EventType = "notification.read"
	IntegrationChanged  EventType = "integration.changed"
	CollectionChanged   EventType = "collection.changed"
)

type Event struct {
	ID         string            `json:"id"`
	Type       EventType         `json:"type"`
	ResourceID string            `json:"resource_id"`
	Payload    string            `json:"payload,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}
