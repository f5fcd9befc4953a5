// Package bot routes the single inbound event stream: free-form texts,
// media, and button presses from both parties. It owns no order state of
// its own beyond transient composition sessions.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/haidarz/remitbot/internal/adapter/botapi"
	"github.com/haidarz/remitbot/internal/collector"
	domainErrors "github.com/haidarz/remitbot/internal/domain/errors"
	"github.com/haidarz/remitbot/internal/domain/model"
	"github.com/haidarz/remitbot/internal/domain/repository"
	"github.com/haidarz/remitbot/internal/mirror"
	"github.com/haidarz/remitbot/internal/pkg/action"
	"github.com/haidarz/remitbot/internal/usecase"
)

// Settings carries the deployment knobs the router needs.
type Settings struct {
	MerchantChatID  int64
	MerchantPhone   string
	QRMediaRef      string
	PhonePrefix     string
	PhoneLength     int
	Networks        []string
	MinNotifyLength int
	MinTxIDLength   int
}

// Router dispatches inbound events by sender role and session state.
type Router struct {
	settings Settings

	orderFlow *collector.Collector
	txFlow    *collector.Collector

	orders      *usecase.OrderUseCase
	confirm     *usecase.ConfirmMatcher
	mirror      *mirror.Mirror
	subscribers repository.SubscriberRepository
	messenger   botapi.Messenger
	logger      *slog.Logger

	mu sync.Mutex
	// Proof media captured before the order row exists.
	pendingProof map[int64]string
	// Order awaiting the merchant's transaction id entry.
	pendingTx map[int64]int64
}

// NewRouter constructs the router and its collection schemas.
func NewRouter(orders *usecase.OrderUseCase, confirm *usecase.ConfirmMatcher, m *mirror.Mirror,
	subscribers repository.SubscriberRepository, messenger botapi.Messenger,
	settings Settings, logger *slog.Logger) *Router {
	orderSchema := collector.Schema{
		collector.PhoneField(
			fmt.Sprintf("Enter the recipient phone number (%d digits, starts with %s).", settings.PhoneLength, settings.PhonePrefix),
			settings.PhonePrefix, settings.PhoneLength),
		collector.NetworkField(
			fmt.Sprintf("Which network? (%s)", strings.Join(settings.Networks, ", ")),
			settings.Networks),
		collector.AmountField("How many units should be transferred?"),
		collector.NotifyField("Paste the payment notification text you received.", settings.MinNotifyLength),
	}
	txSchema := collector.Schema{
		collector.TransactionIDField("Enter the transfer reference number.", settings.MinTxIDLength),
	}

	return &Router{
		settings:     settings,
		orderFlow:    collector.New(orderSchema),
		txFlow:       collector.New(txSchema),
		orders:       orders,
		confirm:      confirm,
		mirror:       m,
		subscribers:  subscribers,
		messenger:    messenger,
		logger:       logger,
		pendingProof: make(map[int64]string),
		pendingTx:    make(map[int64]int64),
	}
}

// Handle processes one inbound event. A panic or error in one event is
// contained here and never reaches the poll loop.
func (r *Router) Handle(ctx context.Context, u botapi.Update) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("event handler panicked",
				slog.Int64("update_id", u.ID), slog.Any("panic", rec))
		}
	}()

	var err error
	switch {
	case u.ActionPayload != "":
		err = r.HandleAction(ctx, u.From, u.ActionPayload)
	case u.MediaRef != "":
		err = r.HandleMedia(ctx, u.From, u.MediaRef)
	default:
		err = r.HandleText(ctx, u.From, u.Text)
	}
	if err != nil {
		r.logger.Error("event handling failed",
			slog.Int64("update_id", u.ID),
			slog.Int64("from", u.From),
			slog.String("error", err.Error()))
	}
}

func (r *Router) isMerchant(from int64) bool {
	return from == r.settings.MerchantChatID
}

func (r *Router) reply(ctx context.Context, chatID int64, text string) error {
	_, err := r.messenger.Send(ctx, chatID, text, nil)
	return err
}

// HandleText routes a free-form text message.
func (r *Router) HandleText(ctx context.Context, from int64, text string) error {
	text = strings.TrimSpace(text)

	if r.isMerchant(from) {
		return r.merchantText(ctx, from, text)
	}

	if text == "/start" {
		return r.startFlow(ctx, from)
	}

	if r.orderFlow.Active(from) {
		return r.collectField(ctx, from, text)
	}

	order, err := r.orders.OpenByCustomer(ctx, from)
	if errors.Is(err, domainErrors.ErrNotFound) {
		return r.startFlow(ctx, from)
	}
	if err != nil {
		return err
	}

	if order.MerchantMsg.Zero() {
		// Review phase: free text may stand in for the submit/cancel buttons.
		switch r.confirm.Match(text) {
		case usecase.VerdictYes:
			return r.forward(ctx, order)
		case usecase.VerdictNo:
			return r.cancel(ctx, from, order.ID)
		}
	}

	return r.overwriteNotification(ctx, order, text)
}

func (r *Router) merchantText(ctx context.Context, from int64, text string) error {
	if !r.txFlow.Active(from) {
		r.logger.Debug("merchant text outside a flow ignored", slog.Int64("from", from))
		return nil
	}

	outcome, err := r.txFlow.Submit(from, text)
	if err != nil {
		return err
	}
	switch outcome.Kind {
	case collector.KindReject:
		return r.reply(ctx, from, outcome.Reason)
	case collector.KindComplete:
		r.txFlow.Clear(from)

		r.mu.Lock()
		orderID := r.pendingTx[from]
		delete(r.pendingTx, from)
		r.mu.Unlock()

		order, err := r.orders.RecordTransactionID(ctx, orderID, outcome.Values[collector.FieldTransactionID])
		if err != nil {
			return r.explain(ctx, from, err)
		}
		if err := r.mirror.RefreshPrimary(ctx, order, model.PartyMerchant); err != nil {
			return err
		}
		if !order.CustomerMsg.Zero() {
			if err := r.mirror.RefreshPrimary(ctx, order, model.PartyCustomer); err != nil {
				return err
			}
		}
		return r.mirror.SendEphemeral(ctx, order, model.PartyMerchant, "Transfer reference recorded.")
	}
	return nil
}

func (r *Router) collectField(ctx context.Context, from int64, text string) error {
	outcome, err := r.orderFlow.Submit(from, text)
	if err != nil {
		return err
	}
	switch outcome.Kind {
	case collector.KindReject:
		return r.reply(ctx, from, outcome.Reason+"\n"+outcome.Field.Prompt)
	case collector.KindPrompt:
		return r.reply(ctx, from, outcome.Field.Prompt)
	case collector.KindComplete:
		r.orderFlow.Clear(from)
		return r.createOrder(ctx, from, outcome.Values)
	}
	return nil
}

func (r *Router) createOrder(ctx context.Context, from int64, values map[string]string) error {
	amount, err := strconv.ParseInt(values[collector.FieldAmount], 10, 64)
	if err != nil {
		return fmt.Errorf("parse collected amount: %w", err)
	}

	r.mu.Lock()
	proof := r.pendingProof[from]
	delete(r.pendingProof, from)
	r.mu.Unlock()

	order, err := r.orders.Create(ctx, repository.OrderFields{
		CustomerID:    from,
		Phone:         values[collector.FieldPhone],
		Network:       values[collector.FieldNetwork],
		Amount:        amount,
		NotifyMessage: values[collector.FieldNotifyMessage],
		ProofRef:      proof,
	})
	if err != nil {
		return err
	}
	return r.mirror.RefreshPrimary(ctx, order, model.PartyCustomer)
}

// startFlow greets the customer, subscribes them to broadcasts, and opens a
// fresh collection session.
func (r *Router) startFlow(ctx context.Context, from int64) error {
	if err := r.subscribers.Add(ctx, from); err != nil {
		r.logger.Warn("subscriber registration failed",
			slog.Int64("user", from), slog.String("error", err.Error()))
	}

	greeting := "Welcome! Send the payment to " + r.settings.MerchantPhone +
		" and I will walk you through the order."
	if err := r.reply(ctx, from, greeting); err != nil {
		return err
	}
	if r.settings.QRMediaRef != "" {
		if _, err := r.messenger.SendMedia(ctx, from, r.settings.QRMediaRef, "Scan to pay"); err != nil {
			r.logger.Warn("qr delivery failed",
				slog.Int64("user", from), slog.String("error", err.Error()))
		}
	}

	outcome := r.orderFlow.Start(from)
	return r.reply(ctx, from, outcome.Field.Prompt)
}

// HandleMedia routes a photo or document, treated as payment proof.
func (r *Router) HandleMedia(ctx context.Context, from int64, mediaRef string) error {
	if r.isMerchant(from) {
		r.logger.Debug("merchant media ignored", slog.Int64("from", from))
		return nil
	}

	order, err := r.orders.OpenByCustomer(ctx, from)
	if errors.Is(err, domainErrors.ErrNotFound) {
		// Mid-composition: keep the proof until the order row exists.
		r.mu.Lock()
		r.pendingProof[from] = mediaRef
		r.mu.Unlock()
		return r.reply(ctx, from, "Payment proof received.")
	}
	if err != nil {
		return err
	}

	order, err = r.orders.RecordProof(ctx, order.ID, mediaRef)
	if err != nil {
		return r.explain(ctx, from, err)
	}
	if !order.MerchantMsg.Zero() {
		if err := r.mirror.SendEphemeralMedia(ctx, order, model.PartyMerchant, mediaRef, "Payment proof"); err != nil {
			return err
		}
	}
	return r.mirror.SendEphemeral(ctx, order, model.PartyCustomer, "Payment proof attached to your order.")
}

// HandleAction routes a button press by its decoded payload.
func (r *Router) HandleAction(ctx context.Context, from int64, payload string) error {
	a, orderID, err := action.Decode(payload)
	if err != nil {
		return r.reply(ctx, from, "Unrecognized command.")
	}

	if a == action.NewOrder {
		if r.isMerchant(from) {
			return r.reply(ctx, from, "Unrecognized command.")
		}
		return r.startFlow(ctx, from)
	}

	order, err := r.orders.Get(ctx, orderID)
	if err != nil {
		return r.explain(ctx, from, err)
	}

	switch a {
	case action.Submit:
		if order.CustomerID != from {
			return r.reply(ctx, from, "Unrecognized command.")
		}
		return r.forward(ctx, order)

	case action.Cancel:
		if order.CustomerID != from && !r.isMerchant(from) {
			return r.reply(ctx, from, "Unrecognized command.")
		}
		return r.cancel(ctx, from, orderID)

	case action.Activate:
		if !r.isMerchant(from) {
			return r.reply(ctx, from, "Unrecognized command.")
		}
		done, err := r.orders.Confirm(ctx, orderID)
		if err != nil {
			return r.explain(ctx, from, err)
		}
		return r.mirror.Finalize(ctx, done)

	case action.TogglePaid:
		if !r.isMerchant(from) {
			return r.reply(ctx, from, "Unrecognized command.")
		}
		updated, err := r.orders.TogglePaid(ctx, orderID)
		if err != nil {
			return r.explain(ctx, from, err)
		}
		return r.refreshBoth(ctx, updated)

	case action.MarkPaidFinal:
		if !r.isMerchant(from) {
			return r.reply(ctx, from, "Unrecognized command.")
		}
		updated, err := r.orders.MarkPaidFinal(ctx, orderID)
		if err != nil {
			return r.explain(ctx, from, err)
		}
		return r.refreshBoth(ctx, updated)

	case action.RecordTxID:
		if !r.isMerchant(from) {
			return r.reply(ctx, from, "Unrecognized command.")
		}
		r.mu.Lock()
		r.pendingTx[from] = orderID
		r.mu.Unlock()
		outcome := r.txFlow.Start(from)
		return r.reply(ctx, from, outcome.Field.Prompt)
	}

	return r.reply(ctx, from, "Unrecognized command.")
}

// forward hands a reviewed order to the merchant: merchant primary with the
// action buttons, proof echo, and the customer's view flips to "forwarded".
func (r *Router) forward(ctx context.Context, order *model.Order) error {
	if order.Status.Terminal() {
		return r.explain(ctx, order.CustomerID, domainErrors.ErrConflict)
	}

	if err := r.mirror.RefreshPrimary(ctx, order, model.PartyMerchant); err != nil {
		return err
	}
	if order.ProofRef != "" {
		if err := r.mirror.SendEphemeralMedia(ctx, order, model.PartyMerchant, order.ProofRef, "Payment proof"); err != nil {
			r.logger.Warn("proof echo failed",
				slog.Int64("order_id", order.ID), slog.String("error", err.Error()))
		}
	}
	return r.mirror.RefreshPrimary(ctx, order, model.PartyCustomer)
}

func (r *Router) cancel(ctx context.Context, from, orderID int64) error {
	canceled, err := r.orders.Cancel(ctx, orderID)
	if err != nil {
		return r.explain(ctx, from, err)
	}
	return r.mirror.Finalize(ctx, canceled)
}

func (r *Router) overwriteNotification(ctx context.Context, order *model.Order, text string) error {
	updated, err := r.orders.RecordNotification(ctx, order.ID, text)
	if err != nil {
		return r.explain(ctx, order.CustomerID, err)
	}
	if !updated.MerchantMsg.Zero() {
		if err := r.mirror.RefreshPrimary(ctx, updated, model.PartyMerchant); err != nil {
			return err
		}
	}
	return r.mirror.SendEphemeral(ctx, updated, model.PartyCustomer, "Payment notification updated.")
}

func (r *Router) refreshBoth(ctx context.Context, order *model.Order) error {
	if err := r.mirror.RefreshPrimary(ctx, order, model.PartyMerchant); err != nil {
		return err
	}
	if order.CustomerMsg.Zero() {
		return nil
	}
	return r.mirror.RefreshPrimary(ctx, order, model.PartyCustomer)
}

// explain translates domain errors into a reply to the acting party.
func (r *Router) explain(ctx context.Context, chatID int64, err error) error {
	switch {
	case errors.Is(err, domainErrors.ErrNotFound):
		return r.reply(ctx, chatID, "Order not found.")
	case errors.Is(err, domainErrors.ErrConflict):
		return r.reply(ctx, chatID, "This order is already finalized.")
	case errors.Is(err, domainErrors.ErrValidation):
		return r.reply(ctx, chatID, "That input is not valid here.")
	default:
		return err
	}
}
