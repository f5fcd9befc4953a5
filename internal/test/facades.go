package test

import (
	"context"

	"github.com/haidarz/remitbot/internal/domain/model"
	pkgAuth "github.com/haidarz/remitbot/internal/pkg/auth"
)

// AdminFacadeStub implements the admin HTTP facade with overridable hooks.
type AdminFacadeStub struct {
	LoginFn           func(string) (string, error)
	VerifyFn          func(string) error
	BroadcastFn       func(context.Context, string) (model.BroadcastReport, error)
	RecentOrdersFn    func(context.Context, int) ([]model.Order, error)
	SubscribersFn     func(context.Context) ([]model.Subscriber, error)
	SubscriberCountFn func(context.Context) (int64, error)
	RateVal           int64
	HealthFn          func(context.Context) error
}

// Login returns a fixed token unless overridden.
func (s AdminFacadeStub) Login(password string) (string, error) {
	if s.LoginFn != nil {
		return s.LoginFn(password)
	}
	return "token", nil
}

// VerifyToken accepts the fixed token unless overridden.
func (s AdminFacadeStub) VerifyToken(token string) error {
	if s.VerifyFn != nil {
		return s.VerifyFn(token)
	}
	if token != "token" {
		return pkgAuth.ErrInvalidToken
	}
	return nil
}

// Broadcast reports a single delivered recipient unless overridden.
func (s AdminFacadeStub) Broadcast(ctx context.Context, text string) (model.BroadcastReport, error) {
	if s.BroadcastFn != nil {
		return s.BroadcastFn(ctx, text)
	}
	return model.BroadcastReport{Sent: 1, Total: 1}, nil
}

// RecentOrders returns no orders unless overridden.
func (s AdminFacadeStub) RecentOrders(ctx context.Context, limit int) ([]model.Order, error) {
	if s.RecentOrdersFn != nil {
		return s.RecentOrdersFn(ctx, limit)
	}
	return nil, nil
}

// Subscribers returns no records unless overridden.
func (s AdminFacadeStub) Subscribers(ctx context.Context) ([]model.Subscriber, error) {
	if s.SubscribersFn != nil {
		return s.SubscribersFn(ctx)
	}
	return nil, nil
}

// SubscriberCount returns zero unless overridden.
func (s AdminFacadeStub) SubscriberCount(ctx context.Context) (int64, error) {
	if s.SubscriberCountFn != nil {
		return s.SubscriberCountFn(ctx)
	}
	return 0, nil
}

// Rate returns the configured flat rate.
func (s AdminFacadeStub) Rate() int64 {
	if s.RateVal != 0 {
		return s.RateVal
	}
	return 200
}

// Health reports healthy unless overridden.
func (s AdminFacadeStub) Health(ctx context.Context) error {
	if s.HealthFn != nil {
		return s.HealthFn(ctx)
	}
	return nil
}
