package checkout

import (
	"go.uber.org/fx"

	"github.com/dreamnest/dreamnest/internal/checkout/service"
	provcreem "github.com/dreamnest/dreamnest/internal/providers/creem"
)

var Module = fx.Module("checkout.service",
	fx.Provide(
		fx.Annotate(
			func(c *provcreem.Client) *provcreem.Client { return c },
			fx.As(new(service.Provider)),
		),
	),
	fx.Provide(service.NewService),
)
