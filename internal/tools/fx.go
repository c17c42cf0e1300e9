package tools

import (
	"go.uber.org/fx"

	"github.com/dreamnest/dreamnest/internal/providers/openrouter"
	"github.com/dreamnest/dreamnest/internal/tools/service"
)

var Module = fx.Module("tools.service",
	fx.Provide(
		fx.Annotate(
			func(c *openrouter.Client) *openrouter.Client { return c },
			fx.As(new(service.Generator)),
		),
	),
	fx.Provide(service.NewService),
)
