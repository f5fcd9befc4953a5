// Package action encodes and decodes the colon-delimited payloads carried
// by interactive message buttons. Decoding happens exactly once at the
// event boundary; everything past it works with the typed Action.
package action

import (
	"fmt"
	"strconv"
	"strings"

	domainErrors "github.com/haidarz/remitbot/internal/domain/errors"
)

// Action enumerates every button command the bot understands.
type Action string

const (
	// NewOrder starts a fresh collection session. Carries no order id.
	NewOrder Action = "new_order"
	// Submit forwards a reviewed order to the merchant.
	Submit Action = "submit"
	// Activate fulfills the order and delivers the activation code.
	Activate Action = "activate"
	// Cancel aborts the order.
	Cancel Action = "cancel"
	// TogglePaid flips the paid flag while the order is NEW.
	TogglePaid Action = "paid"
	// MarkPaidFinal marks a finished unpaid order as paid.
	MarkPaidFinal Action = "paid_final"
	// RecordTxID asks the merchant for the transfer reference.
	RecordTxID Action = "txid"
)

var known = map[Action]bool{
	NewOrder:      true,
	Submit:        true,
	Activate:      true,
	Cancel:        true,
	TogglePaid:    true,
	MarkPaidFinal: true,
	RecordTxID:    true,
}

// Encode renders the wire payload for a button.
func Encode(a Action, orderID int64) string {
	if a == NewOrder {
		return string(a)
	}
	return fmt.Sprintf("%s:%d", a, orderID)
}

// Decode parses a payload. Anything that is not exactly
// {knownAction} or {knownAction}:{integer} is rejected.
func Decode(payload string) (Action, int64, error) {
	parts := strings.Split(payload, ":")
	a := Action(parts[0])
	if !known[a] {
		return "", 0, domainErrors.ErrUnknownAction
	}

	switch len(parts) {
	case 1:
		if a != NewOrder {
			return "", 0, domainErrors.ErrUnknownAction
		}
		return a, 0, nil
	case 2:
		orderID, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil || orderID <= 0 {
			return "", 0, domainErrors.ErrUnknownAction
		}
		return a, orderID, nil
	default:
		return "", 0, domainErrors.ErrUnknownAction
	}
}
