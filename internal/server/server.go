package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/audit"
	auditdomain "github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/audit/domain"
	"github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/billing"
	billingdomain "github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/billing/domain"
	"github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/config"
	"github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/directory"
	directorydomain "github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/directory/domain"
	"github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/insurance"
	insurancedomain "github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/insurance/domain"
	"github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/observability"
	obsmiddleware "github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/observability/logger"
	obsmetrics "github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/observability/metrics"
	obstracing "github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/observability/tracing"
	"github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/payment"
	paymentdomain "github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/payment/domain"
	"github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/ratelimit"
	"github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/refund"
	refunddomain "github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/refund/domain"
	"github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/scheduler"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	audit.Module,
	directory.Module,
	billing.Module,
	payment.Module,
	refund.Module,
	insurance.Module,
	ratelimit.Module,
	scheduler.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics, limiter *ratelimit.APILimiter) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	if limiter.Enabled() {
		r.Use(RateLimitMiddleware(limiter))
	}
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics, limiter *ratelimit.APILimiter) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics, limiter)
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
	engine       *gin.Engine
	cfg          config.Config
	db           *gorm.DB
	genID        *snowflake.Node
	auditSvc     auditdomain.Service
	billingSvc   billingdomain.Service
	paymentSvc   paymentdomain.Service
	refundSvc    refunddomain.Service
	insuranceSvc insurancedomain.Service
	directorySvc directorydomain.Service
	obsMetrics   *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	DB           *gorm.DB
	GenID        *snowflake.Node
	AuditSvc     auditdomain.Service
	BillingSvc   billingdomain.Service
	PaymentSvc   paymentdomain.Service
	RefundSvc    refunddomain.Service
	InsuranceSvc insurancedomain.Service
	DirectorySvc directorydomain.Service
	ObsMetrics   *obsmetrics.Metrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		db:           p.DB,
		genID:        p.GenID,
		auditSvc:     p.AuditSvc,
		billingSvc:   p.BillingSvc,
		paymentSvc:   p.PaymentSvc,
		refundSvc:    p.RefundSvc,
		insuranceSvc: p.InsuranceSvc,
		directorySvc: p.DirectorySvc,
		obsMetrics:   p.ObsMetrics,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Bills --------
	api.GET("/bills", s.ListBills)
	api.POST("/bills", s.CreateBill)
	api.GET("/bills/:id", s.GetBillByID)
	api.PUT("/bills/:id", s.UpdateBill)
	api.DELETE("/bills/:id", s.DeactivateBill)
	api.POST("/bills/:id/send", s.MarkBillSent)
	api.POST("/bills/:id/cancel", s.CancelBill)
	api.GET("/bills/:id/items", s.ListBillItems)
	api.POST("/bills/:id/items", s.AddBillItem)
	api.DELETE("/bills/:id/items/:itemId", s.RemoveBillItem)
	api.GET("/bills/:id/payments", s.ListPaymentsByBill)
	api.GET("/bills/:id/refunds", s.ListRefundsByBill)

	api.GET("/patients/:id/bills", s.ListBillsByPatient)
	api.GET("/hospitals/:id/bills", s.ListBillsByHospital)

	// -------- Payments --------
	api.POST("/payments", s.ProcessPayment)
	api.GET("/payments/:id", s.GetPaymentByID)
	api.POST("/payments/:id/void", s.VoidPayment)
	api.GET("/patients/:id/payments", s.ListPaymentsByPatient)
	api.GET("/hospitals/:id/payments", s.ListPaymentsByHospital)

	// -------- Refunds --------
	api.POST("/refunds", s.ProcessRefund)

	// -------- Insurance --------
	api.POST("/claims", s.CreateClaim)
	api.GET("/claims", s.ListClaims)
	api.GET("/claims/:id", s.GetClaimByID)
	api.PATCH("/claims/:id/status", s.UpdateClaimStatus)
	api.POST("/claims/:id/settlements", s.CreateSettlement)
	api.GET("/claims/:id/settlements", s.ListSettlementsByClaim)
	api.GET("/patients/:id/claims", s.ListClaimsByPatient)
	api.GET("/policies/:id", s.GetPolicyByID)
	api.GET("/policies/:id/claims", s.ListClaimsByPolicy)

	// -------- Audit --------
	api.GET("/audit-logs", s.ListAuditLogs)
}
