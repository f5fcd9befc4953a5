package usecase

import (
	"go.uber.org/fx"

	"github.com/haidarz/remitbot/internal/config"
	"github.com/haidarz/remitbot/internal/domain/repository"
	pkgAuth "github.com/haidarz/remitbot/internal/pkg/auth"
	"github.com/haidarz/remitbot/internal/pkg/code"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	newOrderUseCase,
	newAdminUseCase,
	func() *ConfirmMatcher { return NewConfirmMatcher(nil, nil) },
)

type orderParams struct {
	fx.In

	Orders repository.OrderRepository
	Config *config.Config
}

func newOrderUseCase(p orderParams) *OrderUseCase {
	return NewOrderUseCase(p.Orders, code.NewGenerator(p.Config.TokenSecret), p.Config.FlatRatePerThousand)
}

type adminParams struct {
	fx.In

	Config *config.Config
	Hasher pkgAuth.PasswordHasher
	Tokens pkgAuth.Strategy
}

func newAdminUseCase(p adminParams) (*AdminUseCase, error) {
	return NewAdminUseCase(p.Config.AdminPassword, p.Hasher, p.Tokens)
}
