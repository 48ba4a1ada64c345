package tasklog

import "time"

type Action string

const (
	ActionCreated  Action = "created"
	ActionUpdated  Action = "updated"
	ActionTrashed  Action = "trashed"
	ActionRestored Action = "restored"
	ActionPurged   Action = "purged"
)

type TaskLog struct {
	ID        string            `json:"id" yaml:"id"`
	TaskID    string            `json:"task_id" yaml:"task_id"`
	Action    Action            `json:"action" yaml:"action"`
	Message   string            `json:"message" yaml:"message"`
	Diff      string            `json:"diff,omitempty" yaml:"diff,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at" yaml:"created_at"`
}
