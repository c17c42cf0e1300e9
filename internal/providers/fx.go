package providers

import (
	"go.uber.org/fx"

	"github.com/dreamnest/dreamnest/internal/providers/creem"
	"github.com/dreamnest/dreamnest/internal/providers/openrouter"
)

var Module = fx.Module("providers",
	fx.Provide(creem.NewClient),
	fx.Provide(openrouter.NewClient),
)
