package media

import (
	"go.uber.org/fx"

	"github.com/dreamnest/dreamnest/internal/media/repository"
	"github.com/dreamnest/dreamnest/internal/media/service"
)

var Module = fx.Module("media.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
