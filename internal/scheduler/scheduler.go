// Package scheduler runs the periodic overdue sweep: SENT bills whose due
// date has passed with money still outstanding are marked OVERDUE.
package scheduler

import (
	"context"
	"errors"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	auditdomain "github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/audit/domain"
	billingdomain "github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/billing/domain"
	"github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/clock"
	"github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/config"
	obsmetrics "github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/observability/metrics"
)

var ErrInvalidConfig = errors.New("scheduler: invalid configuration")

type Config struct {
	RunInterval time.Duration
	BatchSize   int
}

func DefaultConfig() Config {
	return Config{
		RunInterval: time.Minute,
		BatchSize:   200,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaults.BatchSize
	}
	return c
}

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Clock      clock.Clock
	BillingCfg *config.BillingConfigHolder
	AuditSvc   auditdomain.Service `optional:"true"`
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
	Config     Config              `optional:"true"`
}

type Scheduler struct {
	db         *gorm.DB
	log        *zap.Logger
	cfg        Config
	clock      clock.Clock
	billingCfg *config.BillingConfigHolder
	auditSvc   auditdomain.Service
	obsMetrics *obsmetrics.Metrics
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.Clock == nil || p.BillingCfg == nil {
		return nil, ErrInvalidConfig
	}
	cfg := p.Config.withDefaults()
	if every := p.BillingCfg.Get().OverdueSweepEvery; every > 0 {
		cfg.RunInterval = every
	}
	return &Scheduler{
		db:         p.DB,
		log:        p.Log.Named("scheduler"),
		cfg:        cfg,
		clock:      p.Clock,
		billingCfg: p.BillingCfg,
		auditSvc:   p.AuditSvc,
		obsMetrics: p.ObsMetrics,
	}, nil
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.SweepOverdue(ctx); err != nil {
				s.log.Error("overdue sweep failed", zap.Error(err))
			}
		}
	}
}

// SweepOverdue marks active SENT bills past their due date with outstanding
// money as OVERDUE. Each write bumps the bill version so concurrent money
// events observe the transition. Returns how many bills changed.
func (s *Scheduler) SweepOverdue(ctx context.Context) (int64, error) {
	now := s.clock.Now()

	result := s.db.WithContext(ctx).Exec(
		`UPDATE bills
		 SET status = ?, updated_at = ?, version = version + 1
		 WHERE id IN (
		     SELECT id FROM bills
		     WHERE status = ? AND active = ? AND due_date IS NOT NULL
		       AND due_date < ? AND outstanding_amount > 0
		     LIMIT ?
		 )`,
		billingdomain.BillStatusOverdue, now,
		billingdomain.BillStatusSent, true, now, s.cfg.BatchSize,
	)
	if result.Error != nil {
		return 0, result.Error
	}

	if result.RowsAffected > 0 {
		s.log.Info("bills marked overdue", zap.Int64("count", result.RowsAffected))
		s.obsMetrics.RecordBillsMarkedOverdue(ctx, result.RowsAffected)
		if s.auditSvc != nil {
			_ = s.auditSvc.AuditLog(ctx, "bill.overdue_sweep", "bill", nil, map[string]any{
				"count": result.RowsAffected,
			})
		}
	}
	return result.RowsAffected, nil
}
