package repository

import (
	"context"

	"github.com/haidarz/remitbot/internal/domain/model"
)

// OrderFields carries the collected field set used to create an order.
type OrderFields struct {
	CustomerID    int64
	Phone         string
	Network       string
	Amount        int64
	NotifyMessage string
	ProofRef      string
	Paid          bool
}

// Guard constrains an update to rows still in an expected state, so a
// mutation decided on a stale read cannot touch a finalized order.
type Guard int

const (
	// GuardNone applies the update unconditionally.
	GuardNone Guard = iota
	// GuardNew requires the row to still be NEW; ErrConflict otherwise.
	GuardNew
	// GuardUnpaidDone requires a DONE row with paid unset; ErrConflict otherwise.
	GuardUnpaidDone
)

// OrderUpdate lists the mutable order columns; nil members are left untouched.
type OrderUpdate struct {
	Guard Guard

	NotifyMessage  *string
	ProofRef       *string
	TransactionID  *string
	Paid           *bool
	ActivationCode *string
	CustomerMsg    *model.Handle
	MerchantMsg    *model.Handle
}

// OrderRepository describes persistence operations with orders.
type OrderRepository interface {
	Create(ctx context.Context, fields OrderFields) (*model.Order, error)
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	// OpenByCustomer returns the customer's single NEW order, if any.
	OpenByCustomer(ctx context.Context, customerID int64) (*model.Order, error)
	ListRecent(ctx context.Context, limit int) ([]model.Order, error)
	Update(ctx context.Context, orderID int64, update OrderUpdate) error
	// SetStatus moves a NEW order into a terminal status. It reports
	// ErrConflict when the row is already terminal and ErrNotFound when
	// the order does not exist, so callers never race a stale read.
	SetStatus(ctx context.Context, orderID int64, status model.OrderStatus) error
}

// MessageRepository tracks ephemeral message handles accumulated per order.
type MessageRepository interface {
	Append(ctx context.Context, orderID int64, party model.Party, handle model.Handle) error
	ListByOrder(ctx context.Context, orderID int64) (map[model.Party][]model.Handle, error)
	DeleteByOrder(ctx context.Context, orderID int64) error
}
