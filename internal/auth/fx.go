package auth

import (
	"go.uber.org/fx"

	"github.com/dreamnest/dreamnest/internal/auth/google"
	"github.com/dreamnest/dreamnest/internal/auth/service"
	"github.com/dreamnest/dreamnest/internal/auth/session"
)

var Module = fx.Module("auth",
	fx.Provide(session.NewManager),
	fx.Provide(
		fx.Annotate(google.NewVerifier, fx.As(new(service.IdentityVerifier))),
	),
	fx.Provide(service.NewService),
)
