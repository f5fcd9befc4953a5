package handlers

import (
	"context"

	"github.com/haidarz/remitbot/internal/domain/model"
)

// AdminFacade aggregates the operations the admin HTTP surface exposes.
type AdminFacade interface {
	Login(password string) (string, error)
	VerifyToken(token string) error
	Broadcast(ctx context.Context, text string) (model.BroadcastReport, error)
	RecentOrders(ctx context.Context, limit int) ([]model.Order, error)
	Subscribers(ctx context.Context) ([]model.Subscriber, error)
	SubscriberCount(ctx context.Context) (int64, error)
	Rate() int64
	Health(ctx context.Context) error
}
