package mirror

import (
	"fmt"
	"strings"

	"github.com/haidarz/remitbot/internal/adapter/botapi"
	"github.com/haidarz/remitbot/internal/domain/model"
	"github.com/haidarz/remitbot/internal/pkg/action"
)

func paidMark(paid bool) string {
	if paid {
		return "paid"
	}
	return "not paid"
}

func orderLines(order *model.Order, rate int64) []string {
	extra := model.Extra(order.Amount, rate)
	net := model.Net(order.Amount, rate)

	lines := []string{
		fmt.Sprintf("Order #%d", order.ID),
		fmt.Sprintf("Recipient: %s", order.Phone),
	}
	if order.Network != "" {
		lines = append(lines, fmt.Sprintf("Network: %s", order.Network))
	}
	lines = append(lines,
		fmt.Sprintf("Amount: %d", order.Amount),
		fmt.Sprintf("Fee: %d", extra),
		fmt.Sprintf("Total: %d", net),
		fmt.Sprintf("Payment: %s", paidMark(order.Paid)),
	)
	if order.NotifyMessage != "" {
		lines = append(lines, fmt.Sprintf("Notification: %s", order.NotifyMessage))
	}
	if order.TransactionID != "" {
		lines = append(lines, fmt.Sprintf("Transfer ref: %s", order.TransactionID))
	}
	return lines
}

// renderPrimary produces the text and button set for a party's primary
// message given the order's current state.
func renderPrimary(order *model.Order, party model.Party, rate int64) (string, [][]botapi.Button) {
	if order.Status.Terminal() {
		return renderFinal(order, party, rate)
	}

	lines := orderLines(order, rate)

	if party == model.PartyCustomer {
		if order.MerchantMsg.Zero() {
			lines = append(lines, "", "Review your order and submit it to the merchant.")
			return strings.Join(lines, "\n"), [][]botapi.Button{
				{{Label: "Submit to merchant", Payload: action.Encode(action.Submit, order.ID)}},
				{{Label: "Cancel", Payload: action.Encode(action.Cancel, order.ID)}},
			}
		}
		lines = append(lines, "", "Your order was forwarded to the merchant.")
		return strings.Join(lines, "\n"), [][]botapi.Button{
			{{Label: "Cancel", Payload: action.Encode(action.Cancel, order.ID)}},
		}
	}

	lines = append([]string{"New transfer request"}, lines...)
	return strings.Join(lines, "\n"), [][]botapi.Button{
		{{Label: "Send activation code", Payload: action.Encode(action.Activate, order.ID)}},
		{{Label: "Record transfer ref", Payload: action.Encode(action.RecordTxID, order.ID)}},
		{{Label: "Toggle paid", Payload: action.Encode(action.TogglePaid, order.ID)}},
		{{Label: "Cancel order", Payload: action.Encode(action.Cancel, order.ID)}},
	}
}

// renderFinal produces the immutable terminal report. Both parties see the
// same figures; the only button ever attached is the one-shot mark-paid
// affordance on the merchant side of a finished unpaid order.
func renderFinal(order *model.Order, party model.Party, rate int64) (string, [][]botapi.Button) {
	var header string
	switch order.Status {
	case model.OrderStatusDone:
		header = "Order completed"
	case model.OrderStatusCanceled:
		header = "Order canceled"
	}

	lines := append([]string{header}, orderLines(order, rate)...)
	if order.Status == model.OrderStatusDone && order.ActivationCode != "" && party == model.PartyCustomer {
		lines = append(lines, fmt.Sprintf("Activation code: %s", order.ActivationCode))
	}

	var buttons [][]botapi.Button
	if order.Status == model.OrderStatusDone && !order.Paid && party == model.PartyMerchant {
		buttons = [][]botapi.Button{
			{{Label: "Mark paid now", Payload: action.Encode(action.MarkPaidFinal, order.ID)}},
		}
	}
	return strings.Join(lines, "\n"), buttons
}
