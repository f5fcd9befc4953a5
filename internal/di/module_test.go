package di

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"go.uber.org/fx"

	"github.com/haidarz/remitbot/internal/adapter/botapi"
	"github.com/haidarz/remitbot/internal/app"
	"github.com/haidarz/remitbot/internal/config"
	"github.com/haidarz/remitbot/internal/domain/repository"
	"github.com/haidarz/remitbot/internal/storage/postgres"
	"github.com/haidarz/remitbot/internal/test"
)

type updateSourceStub struct{}

func (updateSourceStub) Updates(ctx context.Context, offset int64) ([]botapi.Update, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestModuleComposesGraphWithReplacements(t *testing.T) {
	cfg := &config.Config{
		RunAddress:          ":0",
		DatabaseURI:         "postgres://stub",
		BotAPIBase:          "http://localhost",
		BotToken:            "stub-token",
		MerchantChatID:      900,
		MerchantPhone:       "0999000000",
		AdminPassword:       "secret",
		TokenSecret:         "secret",
		FlatRatePerThousand: 200,
		BroadcastBatchSize:  1,
		BroadcastPause:      time.Millisecond,
		PhonePrefix:         "09",
		PhoneLength:         10,
		Networks:            []string{"syriatel", "mtn"},
		MinNotifyLength:     4,
		MinTxIDLength:       6,
		ShutdownTimeout:     time.Millisecond,
		LogLevel:            "info",
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	orderRepo := test.NewOrderRepositoryStub()
	messageRepo := test.NewMessageRepositoryStub()
	subscriberRepo := &test.SubscriberRepositoryStub{}
	messenger := test.NewMessengerStub()

	var facade *app.BotFacade
	fxApp := fx.New(
		fx.NopLogger,
		fx.Supply(context.Background()),
		Module(
			fx.Replace(cfg),
			fx.Replace(logger),
			fx.Replace(&postgres.Storage{}),
			fx.Replace(repository.OrderRepository(orderRepo)),
			fx.Replace(repository.MessageRepository(messageRepo)),
			fx.Replace(repository.SubscriberRepository(subscriberRepo)),
			fx.Replace(botapi.Messenger(messenger)),
			fx.Replace(botapi.UpdateSource(updateSourceStub{})),
		),
		fx.Populate(&facade),
	)

	if err := fxApp.Err(); err != nil {
		t.Fatalf("fx app returned error: %v", err)
	}
	t.Cleanup(func() { _ = fxApp.Stop(context.Background()) })
	if facade == nil {
		t.Fatal("expected bot facade instance")
	}
}
