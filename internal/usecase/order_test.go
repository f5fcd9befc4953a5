package usecase

import (
	"context"
	"errors"
	"testing"

	domainErrors "github.com/haidarz/remitbot/internal/domain/errors"
	"github.com/haidarz/remitbot/internal/domain/model"
	"github.com/haidarz/remitbot/internal/domain/repository"
	"github.com/haidarz/remitbot/internal/pkg/code"
	testhelpers "github.com/haidarz/remitbot/internal/test"
)

func newOrderUC(repo repository.OrderRepository) *OrderUseCase {
	return NewOrderUseCase(repo, code.NewGenerator("test-secret"), 200)
}

func seedOrder(repo *testhelpers.OrderRepositoryStub) *model.Order {
	return repo.Seed(model.Order{
		CustomerID:    7,
		Phone:         "0912345678",
		Network:       "mtn",
		Amount:        5000,
		NotifyMessage: "paid via app",
		Status:        model.OrderStatusNew,
	})
}

func TestCreateRejectsNonPositiveAmount(t *testing.T) {
	uc := newOrderUC(testhelpers.NewOrderRepositoryStub())

	_, err := uc.Create(context.Background(), repository.OrderFields{CustomerID: 1, Amount: 0})
	if !errors.Is(err, domainErrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateStartsNew(t *testing.T) {
	repo := testhelpers.NewOrderRepositoryStub()
	uc := newOrderUC(repo)

	order, err := uc.Create(context.Background(), repository.OrderFields{
		CustomerID: 1, Phone: "0911111111", Amount: 2500,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Status != model.OrderStatusNew {
		t.Fatalf("expected NEW status, got %s", order.Status)
	}
	if order.Paid {
		t.Fatal("expected unpaid by default")
	}
}

func TestTogglePaidFlipsWhileNew(t *testing.T) {
	repo := testhelpers.NewOrderRepositoryStub()
	order := seedOrder(repo)
	uc := newOrderUC(repo)

	updated, err := uc.TogglePaid(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !updated.Paid {
		t.Fatal("expected paid=true after first toggle")
	}

	updated, err = uc.TogglePaid(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Paid {
		t.Fatal("expected paid=false after second toggle")
	}
}

func TestTerminalOrderRejectsMutations(t *testing.T) {
	repo := testhelpers.NewOrderRepositoryStub()
	order := seedOrder(repo)
	uc := newOrderUC(repo)

	if _, err := uc.TogglePaid(context.Background(), order.ID); err != nil {
		t.Fatalf("toggle on NEW failed: %v", err)
	}
	if _, err := uc.Cancel(context.Background(), order.ID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	canceled, err := uc.Get(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if canceled.Status != model.OrderStatusCanceled {
		t.Fatalf("expected CANCELED, got %s", canceled.Status)
	}
	if !canceled.Paid {
		t.Fatal("paid flag must survive cancellation")
	}

	// Status is monotonic: every further mutation reports a conflict.
	if _, err := uc.TogglePaid(context.Background(), order.ID); !errors.Is(err, domainErrors.ErrConflict) {
		t.Fatalf("expected conflict from TogglePaid, got %v", err)
	}
	if _, err := uc.RecordNotification(context.Background(), order.ID, "late"); !errors.Is(err, domainErrors.ErrConflict) {
		t.Fatalf("expected conflict from RecordNotification, got %v", err)
	}
	if _, err := uc.RecordTransactionID(context.Background(), order.ID, "123456"); !errors.Is(err, domainErrors.ErrConflict) {
		t.Fatalf("expected conflict from RecordTransactionID, got %v", err)
	}
	if _, err := uc.Confirm(context.Background(), order.ID); !errors.Is(err, domainErrors.ErrConflict) {
		t.Fatalf("expected conflict from Confirm, got %v", err)
	}
	if _, err := uc.Cancel(context.Background(), order.ID); !errors.Is(err, domainErrors.ErrConflict) {
		t.Fatalf("expected conflict from repeated Cancel, got %v", err)
	}
}

func TestRecordNotificationOverwritesUntilTerminal(t *testing.T) {
	repo := testhelpers.NewOrderRepositoryStub()
	order := seedOrder(repo)
	uc := newOrderUC(repo)

	updated, err := uc.RecordNotification(context.Background(), order.ID, "second notification")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.NotifyMessage != "second notification" {
		t.Fatalf("expected overwrite, got %q", updated.NotifyMessage)
	}

	if _, err := uc.RecordNotification(context.Background(), order.ID, "   "); !errors.Is(err, domainErrors.ErrValidation) {
		t.Fatalf("expected validation error for blank text, got %v", err)
	}
}

func TestConfirmIssuesActivationCodeOnce(t *testing.T) {
	repo := testhelpers.NewOrderRepositoryStub()
	order := seedOrder(repo)
	uc := newOrderUC(repo)

	done, err := uc.Confirm(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if done.Status != model.OrderStatusDone {
		t.Fatalf("expected DONE, got %s", done.Status)
	}
	if done.ActivationCode == "" {
		t.Fatal("expected activation code on DONE transition")
	}

	expected := code.NewGenerator("test-secret").Generate(order.Phone)
	if done.ActivationCode != expected {
		t.Fatalf("activation code must be deterministic: got %q want %q", done.ActivationCode, expected)
	}

	if _, err := uc.Confirm(context.Background(), order.ID); !errors.Is(err, domainErrors.ErrConflict) {
		t.Fatalf("expected conflict on repeated confirm, got %v", err)
	}
}

func TestMarkPaidFinal(t *testing.T) {
	repo := testhelpers.NewOrderRepositoryStub()
	order := seedOrder(repo)
	uc := newOrderUC(repo)

	// Not yet terminal.
	if _, err := uc.MarkPaidFinal(context.Background(), order.ID); !errors.Is(err, domainErrors.ErrConflict) {
		t.Fatalf("expected conflict while NEW, got %v", err)
	}

	if _, err := uc.Confirm(context.Background(), order.ID); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	updated, err := uc.MarkPaidFinal(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !updated.Paid {
		t.Fatal("expected paid after MarkPaidFinal")
	}

	// One-shot: a second attempt conflicts.
	if _, err := uc.MarkPaidFinal(context.Background(), order.ID); !errors.Is(err, domainErrors.ErrConflict) {
		t.Fatalf("expected conflict on repeated MarkPaidFinal, got %v", err)
	}
}

func TestActingOnMissingOrder(t *testing.T) {
	uc := newOrderUC(testhelpers.NewOrderRepositoryStub())

	ops := []func() error{
		func() error { _, err := uc.TogglePaid(context.Background(), 9999); return err },
		func() error { _, err := uc.RecordNotification(context.Background(), 9999, "x"); return err },
		func() error { _, err := uc.Confirm(context.Background(), 9999); return err },
		func() error { _, err := uc.Cancel(context.Background(), 9999); return err },
		func() error { _, err := uc.MarkPaidFinal(context.Background(), 9999); return err },
	}
	for i, op := range ops {
		if err := op(); !errors.Is(err, domainErrors.ErrNotFound) {
			t.Fatalf("op %d: expected not found, got %v", i, err)
		}
	}
}

func TestFees(t *testing.T) {
	uc := newOrderUC(testhelpers.NewOrderRepositoryStub())

	extra, net := uc.Fees(5000)
	if extra != 1000 || net != 6000 {
		t.Fatalf("expected extra=1000 net=6000, got %d/%d", extra, net)
	}
	if uc.Rate() != 200 {
		t.Fatalf("unexpected rate %d", uc.Rate())
	}
}
