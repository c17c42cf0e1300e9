package payments

import (
	"go.uber.org/fx"

	"github.com/dreamnest/dreamnest/internal/payments/creem"
	"github.com/dreamnest/dreamnest/internal/payments/domain"
	"github.com/dreamnest/dreamnest/internal/payments/service"
)

var Module = fx.Module("payments.service",
	fx.Provide(
		fx.Annotate(creem.NewAdapter, fx.As(new(domain.Adapter))),
	),
	fx.Provide(service.NewService),
)
