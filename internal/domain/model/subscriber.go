package model

import "time"

// Subscriber is a user opted in to broadcast notifications.
type Subscriber struct {
	UserID       int64
	FirstSeen    time.Time
	LastNotified *time.Time
}
