package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	billingruledomain "github.com/smallbiznis/scolara/internal/billingrule/domain"
	"github.com/smallbiznis/scolara/internal/config"
	defaulterdomain "github.com/smallbiznis/scolara/internal/defaulter/domain"
	"github.com/smallbiznis/scolara/internal/engine"
	feedomain "github.com/smallbiznis/scolara/internal/fee/domain"
	rosterdomain "github.com/smallbiznis/scolara/internal/roster/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(RegisterRoutes),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	db     *gorm.DB

	ruleSvc      billingruledomain.Service
	feeSvc       feedomain.Service
	defaulterSvc defaulterdomain.Service
	rosterRepo   rosterdomain.Repository
	billing      *engine.Engine
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	DB           *gorm.DB
	RuleSvc      billingruledomain.Service
	FeeSvc       feedomain.Service
	DefaulterSvc defaulterdomain.Service
	RosterRepo   rosterdomain.Repository
	Billing      *engine.Engine
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		db:           p.DB,
		ruleSvc:      p.RuleSvc,
		feeSvc:       p.FeeSvc,
		defaulterSvc: p.DefaulterSvc,
		rosterRepo:   p.RosterRepo,
		billing:      p.Billing,
	}
}

func RegisterRoutes(s *Server) {
	api := s.engine.Group("/api/v1")

	api.POST("/billing-rules", s.CreateBillingRule)
	api.PATCH("/billing-rules/:id", s.UpdateBillingRule)
	api.GET("/billing-rules", s.ListBillingRules)
	api.GET("/billing-rules/:id", s.GetBillingRule)

	api.POST("/billing/execute", s.ExecuteBilling)
	api.GET("/billing/executions", s.ListExecutions)

	api.GET("/fees", s.ListFees)
	api.GET("/fees/:id", s.GetFee)
	api.POST("/fees/:id/payment", s.RecordFeePayment)
	api.POST("/fees/:id/cancel", s.CancelFee)
	api.POST("/fees/sweep-overdue", s.SweepOverdue)

	api.GET("/defaulters", s.ListDefaulters)
	api.POST("/defaulters/:student_id/contact", s.RecordDefaulterContact)

	api.GET("/students", s.ListStudents)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
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
