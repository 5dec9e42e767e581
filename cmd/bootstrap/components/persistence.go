package components

import (
	"storefront/internal/infra/lock"
	"storefront/internal/infra/payment"
	"storefront/internal/infra/session"
	"storefront/internal/infra/uow"
	"storefront/internal/usecase/shared"

	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		fx.Annotate(
			uow.NewPostgresUoW,
			fx.As(new(shared.UnitOfWork)),
		),
		lock.NewRedisLockManager,
		session.NewRedisCheckoutSessionStore,
		payment.NewHMACGateway,
	),
)
