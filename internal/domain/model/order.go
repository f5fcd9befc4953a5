package model

import "time"

// OrderStatus describes the order lifecycle state.
type OrderStatus string

const (
	OrderStatusNew      OrderStatus = "NEW"
	OrderStatusDone     OrderStatus = "DONE"
	OrderStatusCanceled OrderStatus = "CANCELED"
)

// Terminal reports whether no further mutation of the order is allowed.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDone || s == OrderStatusCanceled
}

// Party identifies one side of an order conversation.
type Party string

const (
	PartyCustomer Party = "customer"
	PartyMerchant Party = "merchant"
)

// Handle references a single message sent through the transport.
type Handle struct {
	ChatID    int64
	MessageID int
}

// Zero reports whether the handle references no message.
func (h Handle) Zero() bool {
	return h.MessageID == 0
}

// Order describes a transfer request placed by a customer and fulfilled by the merchant.
type Order struct {
	ID             int64
	CustomerID     int64
	Phone          string
	Network        string
	Amount         int64
	NotifyMessage  string
	ProofRef       string
	TransactionID  string
	Paid           bool
	Status         OrderStatus
	ActivationCode string

	// Primary message handles, edited in place as the order evolves.
	CustomerMsg Handle
	MerchantMsg Handle

	CreatedAt time.Time
	UpdatedAt time.Time
}
