package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/dreamnest/dreamnest/internal/auth"
	authdomain "github.com/dreamnest/dreamnest/internal/auth/domain"
	"github.com/dreamnest/dreamnest/internal/auth/session"
	"github.com/dreamnest/dreamnest/internal/checkout"
	checkoutdomain "github.com/dreamnest/dreamnest/internal/checkout/domain"
	"github.com/dreamnest/dreamnest/internal/config"
	"github.com/dreamnest/dreamnest/internal/ledger"
	ledgerdomain "github.com/dreamnest/dreamnest/internal/ledger/domain"
	"github.com/dreamnest/dreamnest/internal/media"
	mediadomain "github.com/dreamnest/dreamnest/internal/media/domain"
	"github.com/dreamnest/dreamnest/internal/observability"
	obsmiddleware "github.com/dreamnest/dreamnest/internal/observability/logger"
	obsmetrics "github.com/dreamnest/dreamnest/internal/observability/metrics"
	"github.com/dreamnest/dreamnest/internal/payments"
	paymentdomain "github.com/dreamnest/dreamnest/internal/payments/domain"
	"github.com/dreamnest/dreamnest/internal/providers"
	"github.com/dreamnest/dreamnest/internal/ratelimit"
	"github.com/dreamnest/dreamnest/internal/storage"
	"github.com/dreamnest/dreamnest/internal/tools"
	toolsdomain "github.com/dreamnest/dreamnest/internal/tools/domain"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	auth.Module,
	providers.Module,
	storage.Module,
	ledger.Module,
	payments.Module,
	checkout.Module,
	tools.Module,
	media.Module,
	ratelimit.Module,
	fx.Provide(NewServer),
	fx.Invoke(func(*Server) {}),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config) *gin.Engine {
	return NewEngine(obsCfg)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine      *gin.Engine
	authSvc     authdomain.Service
	sessions    *session.Manager
	ledgerSvc   ledgerdomain.Service
	paymentSvc  paymentdomain.Service
	checkoutSvc checkoutdomain.Service
	toolsSvc    toolsdomain.Service
	mediaSvc    mediadomain.Service
	store       storage.ObjectStore
	limiter     *ratelimit.Limiter
	obsMetrics  *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	AuthSvc     authdomain.Service
	Sessions    *session.Manager
	LedgerSvc   ledgerdomain.Service
	PaymentSvc  paymentdomain.Service
	CheckoutSvc checkoutdomain.Service
	ToolsSvc    toolsdomain.Service
	MediaSvc    mediadomain.Service
	Store       storage.ObjectStore
	Limiter     *ratelimit.Limiter  `optional:"true"`
	ObsMetrics  *obsmetrics.Metrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:      p.Gin,
		authSvc:     p.AuthSvc,
		sessions:    p.Sessions,
		ledgerSvc:   p.LedgerSvc,
		paymentSvc:  p.PaymentSvc,
		checkoutSvc: p.CheckoutSvc,
		toolsSvc:    p.ToolsSvc,
		mediaSvc:    p.MediaSvc,
		store:       p.Store,
		limiter:     p.Limiter,
		obsMetrics:  p.ObsMetrics,
	}

	s.registerAuthRoutes()
	s.registerAPIRoutes()

	return s
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	authGroup := s.engine.Group("/auth")

	authGroup.POST("/google", s.GoogleSignIn)
	authGroup.POST("/logout", s.Logout)
	authGroup.GET("/me", s.AuthRequired(), s.Me)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	api.POST("/webhooks/creem", s.CreemWebhook)
	api.POST("/checkout", s.AuthRequired(), s.CreateCheckout)
	api.GET("/user/credits", s.AuthRequired(), s.UserCredits)

	api.POST("/tools/baby/generate", s.AuthRequired(), s.GenerateBaby)
	api.GET("/tools/baby/history", s.AuthRequired(), s.BabyHistory)

	api.GET("/images", s.ListImages)
	api.GET("/images/:id", s.GetImage)
	api.GET("/download", s.Download)
}
