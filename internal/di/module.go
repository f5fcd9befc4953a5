package di

import (
	"go.uber.org/fx"

	"github.com/haidarz/remitbot/internal/adapter/botapi"
	"github.com/haidarz/remitbot/internal/app"
	"github.com/haidarz/remitbot/internal/bot"
	"github.com/haidarz/remitbot/internal/config"
	"github.com/haidarz/remitbot/internal/logger"
	"github.com/haidarz/remitbot/internal/mirror"
	"github.com/haidarz/remitbot/internal/pkg/auth"
	"github.com/haidarz/remitbot/internal/server/http/router"
	"github.com/haidarz/remitbot/internal/storage/postgres"
	"github.com/haidarz/remitbot/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		postgres.Module,
		botapi.Module,
		usecase.Module,
		mirror.Module,
		bot.Module,
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
