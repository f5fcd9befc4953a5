// Package dto defines the JSON shapes of the admin HTTP API.
package dto

import "time"

// LoginRequest carries the admin password.
type LoginRequest struct {
	Password string `json:"password"`
}

// TokenResponse returns a session token after a successful login.
type TokenResponse struct {
	Token string `json:"token"`
}

// BroadcastRequest carries the text to fan out to every subscriber.
type BroadcastRequest struct {
	Text string `json:"text"`
}

// BroadcastResponse is the delivery tally of one broadcast run.
type BroadcastResponse struct {
	Sent     int `json:"sent"`
	Failed   int `json:"failed"`
	Excluded int `json:"excluded"`
	Skipped  int `json:"skipped"`
	Total    int `json:"total"`
}

// OrderResponse is one order in the admin listing.
type OrderResponse struct {
	ID            int64     `json:"id"`
	Phone         string    `json:"phone"`
	Network       string    `json:"network,omitempty"`
	Amount        int64     `json:"amount"`
	Fee           int64     `json:"fee"`
	Total         int64     `json:"total"`
	Paid          bool      `json:"paid"`
	Status        string    `json:"status"`
	TransactionID string    `json:"transaction_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// SubscriberCountResponse reports the size of the broadcast list.
type SubscriberCountResponse struct {
	Count int64 `json:"count"`
}

// SubscriberResponse is one opt-in record in the admin listing.
type SubscriberResponse struct {
	UserID       int64      `json:"user_id"`
	FirstSeen    time.Time  `json:"first_seen"`
	LastNotified *time.Time `json:"last_notified,omitempty"`
}
