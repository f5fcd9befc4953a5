// Package mirror keeps each party's messages consistent with the current
// order state: one primary message per party edited in place, plus
// ephemeral prompts that are wiped once the order reaches a terminal state.
package mirror

import (
	"context"
	"errors"
	"log/slog"

	"github.com/haidarz/remitbot/internal/adapter/botapi"
	"github.com/haidarz/remitbot/internal/domain/model"
	"github.com/haidarz/remitbot/internal/domain/repository"
)

// Mirror owns every message handle recorded for an order. No other
// component edits or deletes order messages.
type Mirror struct {
	messenger    botapi.Messenger
	orders       repository.OrderRepository
	messages     repository.MessageRepository
	merchantChat int64
	rate         int64
	logger       *slog.Logger
}

// New constructs a Mirror.
func New(messenger botapi.Messenger, orders repository.OrderRepository, messages repository.MessageRepository, merchantChat, ratePerThousand int64, logger *slog.Logger) *Mirror {
	return &Mirror{
		messenger:    messenger,
		orders:       orders,
		messages:     messages,
		merchantChat: merchantChat,
		rate:         ratePerThousand,
		logger:       logger,
	}
}

func (m *Mirror) chatFor(order *model.Order, party model.Party) int64 {
	if party == model.PartyMerchant {
		return m.merchantChat
	}
	return order.CustomerID
}

func (m *Mirror) primaryFor(order *model.Order, party model.Party) model.Handle {
	if party == model.PartyMerchant {
		return order.MerchantMsg
	}
	return order.CustomerMsg
}

func (m *Mirror) storePrimary(ctx context.Context, order *model.Order, party model.Party, handle model.Handle) error {
	update := repository.OrderUpdate{}
	if party == model.PartyMerchant {
		order.MerchantMsg = handle
		update.MerchantMsg = &handle
	} else {
		order.CustomerMsg = handle
		update.CustomerMsg = &handle
	}
	return m.orders.Update(ctx, order.ID, update)
}

// RefreshPrimary re-renders the party's summary and edits its primary
// message in place. When no primary exists yet, or the previous one is
// gone, a fresh message is sent and becomes the primary.
func (m *Mirror) RefreshPrimary(ctx context.Context, order *model.Order, party model.Party) error {
	text, buttons := renderPrimary(order, party, m.rate)
	primary := m.primaryFor(order, party)

	if !primary.Zero() {
		err := m.messenger.Edit(ctx, primary, text, buttons)
		if err == nil {
			return nil
		}
		if !errors.Is(err, botapi.ErrMessageGone) {
			return err
		}
		m.logger.Warn("primary message gone, sending replacement",
			slog.Int64("order_id", order.ID), slog.String("party", string(party)))
	}

	handle, err := m.messenger.Send(ctx, m.chatFor(order, party), text, buttons)
	if err != nil {
		return err
	}
	return m.storePrimary(ctx, order, party, handle)
}

// SendEphemeral delivers a transient prompt tied to the order and records
// its handle for cleanup at finalization.
func (m *Mirror) SendEphemeral(ctx context.Context, order *model.Order, party model.Party, text string) error {
	handle, err := m.messenger.Send(ctx, m.chatFor(order, party), text, nil)
	if err != nil {
		return err
	}
	return m.AppendEphemeral(ctx, order.ID, party, handle)
}

// SendEphemeralMedia mirrors a media message (payment proof echo) to the
// party and records it for cleanup.
func (m *Mirror) SendEphemeralMedia(ctx context.Context, order *model.Order, party model.Party, mediaRef, caption string) error {
	handle, err := m.messenger.SendMedia(ctx, m.chatFor(order, party), mediaRef, caption)
	if err != nil {
		return err
	}
	return m.AppendEphemeral(ctx, order.ID, party, handle)
}

// AppendEphemeral records an already-sent handle for later bulk cleanup.
func (m *Mirror) AppendEphemeral(ctx context.Context, orderID int64, party model.Party, handle model.Handle) error {
	return m.messages.Append(ctx, orderID, party, handle)
}

// Finalize wipes every ephemeral message of both parties and replaces each
// primary with the immutable terminal report. Individual delete failures
// are logged and skipped; the order always ends up finalized.
func (m *Mirror) Finalize(ctx context.Context, order *model.Order) error {
	handles, err := m.messages.ListByOrder(ctx, order.ID)
	if err != nil {
		return err
	}

	for party, list := range handles {
		for _, handle := range list {
			if err := m.messenger.Delete(ctx, handle); err != nil {
				m.logger.Warn("ephemeral cleanup failed",
					slog.Int64("order_id", order.ID),
					slog.String("party", string(party)),
					slog.Int("message_id", handle.MessageID),
					slog.String("error", err.Error()))
			}
		}
	}

	if err := m.messages.DeleteByOrder(ctx, order.ID); err != nil {
		return err
	}

	for _, party := range []model.Party{model.PartyCustomer, model.PartyMerchant} {
		if party == model.PartyMerchant && order.MerchantMsg.Zero() && order.Status == model.OrderStatusCanceled {
			// Never forwarded; nothing to report to the merchant.
			continue
		}
		if err := m.RefreshPrimary(ctx, order, party); err != nil {
			m.logger.Warn("terminal report delivery failed",
				slog.Int64("order_id", order.ID),
				slog.String("party", string(party)),
				slog.String("error", err.Error()))
		}
	}
	return nil
}
