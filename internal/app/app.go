package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/haidarz/remitbot/internal/adapter/botapi"
	"github.com/haidarz/remitbot/internal/bot"
	"github.com/haidarz/remitbot/internal/config"
	"github.com/haidarz/remitbot/internal/domain/repository"
	"github.com/haidarz/remitbot/internal/server/http/handlers"
	"github.com/haidarz/remitbot/internal/storage/postgres"
	"github.com/haidarz/remitbot/internal/worker"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		NewBotFacade,
		newHTTPServer,
		newBroadcaster,
		func(f *BotFacade) handlers.AdminFacade { return f },
		func(s *postgres.Storage) HealthChecker { return s },
	),
	fx.Invoke(registerLifecycle),
)

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

type broadcasterParams struct {
	fx.In

	Messenger   botapi.Messenger
	Subscribers repository.SubscriberRepository
	Config      *config.Config
	Logger      *slog.Logger
}

func newBroadcaster(p broadcasterParams) *worker.Broadcaster {
	return worker.NewBroadcaster(
		p.Messenger,
		p.Subscribers,
		p.Config.BroadcastBatchSize,
		p.Config.BroadcastPause,
		p.Logger,
	)
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Poller     *bot.Poller
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	var stopPolling context.CancelFunc

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("starting remitbot", slog.String("addr", p.Server.Addr))

			pollCtx, cancel := context.WithCancel(context.Background())
			stopPolling = cancel
			go func() {
				if err := p.Poller.Run(pollCtx); err != nil && !errors.Is(err, context.Canceled) {
					p.Logger.Error("update poller terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()

			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if stopPolling != nil {
				stopPolling()
			}

			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			if err := p.Server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Logger.Info("remitbot stopped")
			return nil
		},
	})
}
