package usecase

import (
	"context"
	"strings"

	domainErrors "github.com/haidarz/remitbot/internal/domain/errors"
	"github.com/haidarz/remitbot/internal/domain/model"
	"github.com/haidarz/remitbot/internal/domain/repository"
	"github.com/haidarz/remitbot/internal/pkg/code"
)

// OrderUseCase owns every mutation of order status, paid flag, and
// activation code. Mutations never trust a status read before a suspension
// point: terminal checks are re-applied by guarded single-row updates.
type OrderUseCase struct {
	orders repository.OrderRepository
	codes  *code.Generator
	rate   int64
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(orders repository.OrderRepository, codes *code.Generator, ratePerThousand int64) *OrderUseCase {
	return &OrderUseCase{orders: orders, codes: codes, rate: ratePerThousand}
}

// Create persists a freshly collected order in the NEW state.
func (u *OrderUseCase) Create(ctx context.Context, fields repository.OrderFields) (*model.Order, error) {
	if fields.Amount <= 0 {
		return nil, domainErrors.ErrValidation
	}
	return u.orders.Create(ctx, fields)
}

// Get fetches an order by identifier.
func (u *OrderUseCase) Get(ctx context.Context, orderID int64) (*model.Order, error) {
	return u.orders.GetByID(ctx, orderID)
}

// OpenByCustomer returns the customer's in-flight NEW order, if any.
func (u *OrderUseCase) OpenByCustomer(ctx context.Context, customerID int64) (*model.Order, error) {
	return u.orders.OpenByCustomer(ctx, customerID)
}

// ListRecent returns the newest orders for reporting.
func (u *OrderUseCase) ListRecent(ctx context.Context, limit int) ([]model.Order, error) {
	return u.orders.ListRecent(ctx, limit)
}

// TogglePaid flips the paid flag. Only allowed while the order is NEW.
func (u *OrderUseCase) TogglePaid(ctx context.Context, orderID int64) (*model.Order, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.Terminal() {
		return nil, domainErrors.ErrConflict
	}

	paid := !order.Paid
	if err := u.orders.Update(ctx, orderID, repository.OrderUpdate{
		Paid:  &paid,
		Guard: repository.GuardNew,
	}); err != nil {
		return nil, err
	}
	return u.orders.GetByID(ctx, orderID)
}

// RecordNotification overwrites the payment notification text. Allowed any
// time before a terminal state; overwriting an already forwarded notification
// is intentional.
func (u *OrderUseCase) RecordNotification(ctx context.Context, orderID int64, text string) (*model.Order, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domainErrors.ErrValidation
	}
	if err := u.orders.Update(ctx, orderID, repository.OrderUpdate{
		NotifyMessage: &text,
		Guard:         repository.GuardNew,
	}); err != nil {
		return nil, err
	}
	return u.orders.GetByID(ctx, orderID)
}

// RecordProof attaches a payment proof media reference.
func (u *OrderUseCase) RecordProof(ctx context.Context, orderID int64, mediaRef string) (*model.Order, error) {
	if mediaRef == "" {
		return nil, domainErrors.ErrValidation
	}
	if err := u.orders.Update(ctx, orderID, repository.OrderUpdate{
		ProofRef: &mediaRef,
		Guard:    repository.GuardNew,
	}); err != nil {
		return nil, err
	}
	return u.orders.GetByID(ctx, orderID)
}

// RecordTransactionID overwrites the merchant's transfer reference.
func (u *OrderUseCase) RecordTransactionID(ctx context.Context, orderID int64, txID string) (*model.Order, error) {
	txID = strings.TrimSpace(txID)
	if txID == "" {
		return nil, domainErrors.ErrValidation
	}
	if err := u.orders.Update(ctx, orderID, repository.OrderUpdate{
		TransactionID: &txID,
		Guard:         repository.GuardNew,
	}); err != nil {
		return nil, err
	}
	return u.orders.GetByID(ctx, orderID)
}

// Confirm moves a NEW order to DONE and issues its activation code. The
// status transition is atomic in storage, so the code is generated exactly
// once even when two confirmations race.
func (u *OrderUseCase) Confirm(ctx context.Context, orderID int64) (*model.Order, error) {
	if err := u.orders.SetStatus(ctx, orderID, model.OrderStatusDone); err != nil {
		return nil, err
	}

	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	activation := u.codes.Generate(order.Phone)
	if err := u.orders.Update(ctx, orderID, repository.OrderUpdate{
		ActivationCode: &activation,
	}); err != nil {
		return nil, err
	}
	order.ActivationCode = activation
	return order, nil
}

// Cancel moves a NEW order to CANCELED.
func (u *OrderUseCase) Cancel(ctx context.Context, orderID int64) (*model.Order, error) {
	if err := u.orders.SetStatus(ctx, orderID, model.OrderStatusCanceled); err != nil {
		return nil, err
	}
	return u.orders.GetByID(ctx, orderID)
}

// MarkPaidFinal is the one-shot terminal affordance: a DONE order that
// finished unpaid may be marked paid exactly once. TogglePaid stays
// NEW-only, so this is the only mutation a terminal order accepts.
func (u *OrderUseCase) MarkPaidFinal(ctx context.Context, orderID int64) (*model.Order, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != model.OrderStatusDone || order.Paid {
		return nil, domainErrors.ErrConflict
	}

	paid := true
	if err := u.orders.Update(ctx, orderID, repository.OrderUpdate{
		Paid:  &paid,
		Guard: repository.GuardUnpaidDone,
	}); err != nil {
		return nil, err
	}
	return u.orders.GetByID(ctx, orderID)
}

// Fees returns the fee and total for an amount under the configured rate.
func (u *OrderUseCase) Fees(amount int64) (extra, net int64) {
	return model.Extra(amount, u.rate), model.Net(amount, u.rate)
}

// Rate exposes the configured flat rate per thousand.
func (u *OrderUseCase) Rate() int64 {
	return u.rate
}
