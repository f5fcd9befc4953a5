package bot

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/haidarz/remitbot/internal/adapter/botapi"
	"github.com/haidarz/remitbot/internal/config"
	"github.com/haidarz/remitbot/internal/domain/repository"
	"github.com/haidarz/remitbot/internal/mirror"
	"github.com/haidarz/remitbot/internal/usecase"
)

// Module wires the event router and update poller into the fx graph.
var Module = fx.Provide(newRouter, NewPoller)

type routerParams struct {
	fx.In

	Orders      *usecase.OrderUseCase
	Confirm     *usecase.ConfirmMatcher
	Mirror      *mirror.Mirror
	Subscribers repository.SubscriberRepository
	Messenger   botapi.Messenger
	Config      *config.Config
	Logger      *slog.Logger
}

func newRouter(p routerParams) *Router {
	settings := Settings{
		MerchantChatID:  p.Config.MerchantChatID,
		MerchantPhone:   p.Config.MerchantPhone,
		QRMediaRef:      p.Config.QRMediaRef,
		PhonePrefix:     p.Config.PhonePrefix,
		PhoneLength:     p.Config.PhoneLength,
		Networks:        p.Config.Networks,
		MinNotifyLength: p.Config.MinNotifyLength,
		MinTxIDLength:   p.Config.MinTxIDLength,
	}
	return NewRouter(p.Orders, p.Confirm, p.Mirror, p.Subscribers, p.Messenger, settings, p.Logger)
}
