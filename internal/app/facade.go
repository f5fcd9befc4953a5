package app

import (
	"context"

	"github.com/haidarz/remitbot/internal/domain/model"
	"github.com/haidarz/remitbot/internal/domain/repository"
	"github.com/haidarz/remitbot/internal/usecase"
	"github.com/haidarz/remitbot/internal/worker"
)

// HealthChecker reports storage connectivity.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// BotFacade aggregates the operations the admin HTTP surface needs.
type BotFacade struct {
	admin       *usecase.AdminUseCase
	orders      *usecase.OrderUseCase
	broadcaster *worker.Broadcaster
	subscribers repository.SubscriberRepository
	health      HealthChecker
}

func NewBotFacade(admin *usecase.AdminUseCase, orders *usecase.OrderUseCase, broadcaster *worker.Broadcaster, subscribers repository.SubscriberRepository, health HealthChecker) *BotFacade {
	return &BotFacade{admin: admin, orders: orders, broadcaster: broadcaster, subscribers: subscribers, health: health}
}

func (f *BotFacade) Login(password string) (string, error) {
	return f.admin.Login(password)
}

func (f *BotFacade) VerifyToken(token string) error {
	return f.admin.VerifyToken(token)
}

func (f *BotFacade) Broadcast(ctx context.Context, text string) (model.BroadcastReport, error) {
	return f.broadcaster.BroadcastToSubscribers(ctx, text)
}

func (f *BotFacade) RecentOrders(ctx context.Context, limit int) ([]model.Order, error) {
	return f.orders.ListRecent(ctx, limit)
}

func (f *BotFacade) Subscribers(ctx context.Context) ([]model.Subscriber, error) {
	return f.subscribers.List(ctx)
}

func (f *BotFacade) SubscriberCount(ctx context.Context) (int64, error) {
	return f.subscribers.Count(ctx)
}

func (f *BotFacade) Rate() int64 {
	return f.orders.Rate()
}

func (f *BotFacade) Health(ctx context.Context) error {
	return f.health.HealthCheck(ctx)
}
