package mirror

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/haidarz/remitbot/internal/adapter/botapi"
	"github.com/haidarz/remitbot/internal/config"
	"github.com/haidarz/remitbot/internal/domain/repository"
)

// Module wires the message mirror into the fx graph.
var Module = fx.Provide(newMirror)

type mirrorParams struct {
	fx.In

	Messenger botapi.Messenger
	Orders    repository.OrderRepository
	Messages  repository.MessageRepository
	Config    *config.Config
	Logger    *slog.Logger
}

func newMirror(p mirrorParams) *Mirror {
	return New(p.Messenger, p.Orders, p.Messages, p.Config.MerchantChatID, p.Config.FlatRatePerThousand, p.Logger)
}
