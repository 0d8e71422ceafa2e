package notifications

import (
	"context"
	"time"
)

const (
	EventUserRegistered = "user.registered"
	EventTaskCreated    = "task.created"
)

// something a downstream mailer may want to act on
type Event struct {
	Type       string         `json:"type"`
	UserID     int64          `json:"user_id"`
	Email      string         `json:"email,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

type Notifier interface {
	Notify(ctx context.Context, event Event) error
}
