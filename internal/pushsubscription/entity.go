package pushsubscription

import "time"

// Subscription is a browser push endpoint. UserID scopes delivery to one
// member's notifications; an empty UserID receives everything.
type Subscription struct {
	ID        string    `json:"id" yaml:"id"`
	UserID    string    `json:"user_id,omitempty" yaml:"user_id,omitempty"`
	Endpoint  string    `json:"endpoint" yaml:"endpoint"`
	P256dhKey string    `json:"p256dh_key" yaml:"p256dh_key"`
	AuthKey   string    `json:"auth_key" yaml:"auth_key"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

func (s *Subscription) Receives(userID string) bool {
	return s.UserID == "" || s.UserID == userID
}
