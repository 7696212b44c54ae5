package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/chainvoice/chainvoice/internal/auth"
	"github.com/chainvoice/chainvoice/internal/config"
	invoicedomain "github.com/chainvoice/chainvoice/internal/invoice/domain"
	"github.com/chainvoice/chainvoice/internal/observability"
	obslogger "github.com/chainvoice/chainvoice/internal/observability/logger"
	obsmetrics "github.com/chainvoice/chainvoice/internal/observability/metrics"
	obstracing "github.com/chainvoice/chainvoice/internal/observability/tracing"
	userdomain "github.com/chainvoice/chainvoice/internal/user/domain"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
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
	engine     *gin.Engine
	cfg        config.Config
	limits     *config.LimitsHolder
	log        *zap.Logger
	verifier   auth.Verifier
	userSvc    userdomain.Service
	invoiceSvc invoicedomain.Service
	obsMetrics *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	Limits     *config.LimitsHolder
	Log        *zap.Logger
	Verifier   auth.Verifier
	UserSvc    userdomain.Service
	InvoiceSvc invoicedomain.Service
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		limits:     p.Limits,
		log:        p.Log.Named("http.server"),
		verifier:   p.Verifier,
		userSvc:    p.UserSvc,
		invoiceSvc: p.InvoiceSvc,
		obsMetrics: p.ObsMetrics,
	}

	svc.registerPublicRoutes()
	svc.registerAPIRoutes()

	return svc
}

func (s *Server) registerPublicRoutes() {
	s.engine.GET("/api/payments/:requestId", s.GetPaymentParams)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", auth.Required(s.verifier))

	api.GET("/users/me", s.GetMe)
	api.PUT("/users/me", s.UpsertMe)

	api.GET("/invoices", s.ListInvoices)
	api.POST("/invoices", s.CreateInvoice)
	api.GET("/invoices/:id", s.GetInvoice)
	api.PATCH("/invoices/:id/status", s.UpdateInvoiceStatus)
	api.DELETE("/invoices/:id", s.DeleteInvoice)
	api.POST("/invoices/:id/extend", s.ExtendInvoice)
}

// currentUser resolves the account behind the request's verified claims.
func (s *Server) currentUser(c *gin.Context) (*userdomain.User, bool) {
	claims, ok := auth.ClaimsFrom(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return nil, false
	}
	user, err := s.userSvc.GetSelf(c.Request.Context(), claims.Subject)
	if err != nil {
		AbortWithError(c, err)
		return nil, false
	}
	return user, true
}
