package botapi

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/haidarz/remitbot/internal/config"
)

// Module exposes the transport client to the fx graph.
var Module = fx.Provide(newClient, asMessenger, asUpdateSource)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (*HTTPClient, error) {
	return NewHTTPClient(p.Config.BotAPIBase, p.Config.BotToken, p.Logger)
}

func asMessenger(c *HTTPClient) Messenger { return c }

func asUpdateSource(c *HTTPClient) UpdateSource { return c }
