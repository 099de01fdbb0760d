package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	checkoutdomain "github.com/nlhtungg/parking-lot/internal/checkout/domain"
	"github.com/nlhtungg/parking-lot/internal/config"
)

var Module = fx.Module("server",
	fx.Provide(NewRegistry),
	fx.Provide(NewMetrics),
	fx.Provide(NewIdempotencyStore),
	fx.Provide(NewServer),
	fx.Invoke(Run),
)

type Server struct {
	log         *zap.Logger
	db          *gorm.DB
	checkoutSvc checkoutdomain.Service
	idem        *IdempotencyStore
	metrics     *Metrics
	registry    *prometheus.Registry
}

type Params struct {
	fx.In

	Log         *zap.Logger
	DB          *gorm.DB
	CheckoutSvc checkoutdomain.Service
	Idem        *IdempotencyStore
	Metrics     *Metrics
	Registry    *prometheus.Registry
}

func NewServer(p Params) *Server {
	return &Server{
		log:         p.Log.Named("server"),
		db:          p.DB,
		checkoutSvc: p.CheckoutSvc,
		idem:        p.Idem,
		metrics:     p.Metrics,
		registry:    p.Registry,
	}
}

func (s *Server) Router(cfg config.Config) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", s.Health)
	r.GET("/readyz", s.Readiness)
	gatherer := prometheus.Gatherers{s.registry, prometheus.DefaultGatherer}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	employee := r.Group("/employee", s.EmployeeContext())
	{
		employee.POST("/parking/entry", s.CheckIn)
		employee.GET("/parking/exit/:session_id", s.InitiateCheckout)
		employee.POST("/parking/exit/confirm", s.ConfirmCheckout)
		employee.GET("/parking-sessions", s.ActiveSessions)
	}

	return r
}

func Run(lc fx.Lifecycle, s *Server, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: s.Router(cfg),
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", cfg.Server.Addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
