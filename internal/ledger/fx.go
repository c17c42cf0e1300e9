package ledger

import (
	"github.com/dreamnest/dreamnest/internal/ledger/repository"
	"github.com/dreamnest/dreamnest/internal/ledger/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ledger.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
