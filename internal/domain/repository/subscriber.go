package repository

import (
	"context"

	"github.com/haidarz/remitbot/internal/domain/model"
)

// SubscriberRepository manages the broadcast opt-in list.
type SubscriberRepository interface {
	// Add registers the user; registering twice is a no-op.
	Add(ctx context.Context, userID int64) error
	// ListIDs returns raw subscriber identifiers in first-seen order.
	// Identifiers are returned unparsed; the dispatcher owns normalization.
	ListIDs(ctx context.Context) ([]string, error)
	// List returns the full opt-in records in first-seen order.
	List(ctx context.Context) ([]model.Subscriber, error)
	Count(ctx context.Context) (int64, error)
	MarkNotified(ctx context.Context, userID int64) error
}
