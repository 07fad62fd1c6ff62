package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	auditdomain "github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/audit/domain"
	billingdomain "github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/billing/domain"
	"github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/clock"
	obsmetrics "github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/observability/metrics"
	refunddomain "github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/refund/domain"
	"github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/pkg/money"
	"github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/pkg/repository"
)

type ServiceParam struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	AuditSvc   auditdomain.Service `optional:"true"`
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock

	auditSvc   auditdomain.Service
	obsMetrics *obsmetrics.Metrics

	refrepo  repository.Repository[refunddomain.Refund]
	billrepo repository.Repository[billingdomain.Bill]
}

func NewService(p ServiceParam) refunddomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("refund.service"),
		genID: p.GenID,
		clock: p.Clock,

		auditSvc:   p.AuditSvc,
		obsMetrics: p.ObsMetrics,

		refrepo:  repository.ProvideStore[refunddomain.Refund](p.DB),
		billrepo: repository.ProvideStore[billingdomain.Bill](p.DB),
	}
}

func (s *Service) Process(ctx context.Context, req refunddomain.ProcessRefundRequest) (refunddomain.Refund, error) {
	if req.Amount <= 0 {
		return refunddomain.Refund{}, refunddomain.ErrInvalidAmount
	}
	billID, err := parseID(req.BillID)
	if err != nil {
		return refunddomain.Refund{}, billingdomain.ErrInvalidBillID
	}

	var refund refunddomain.Refund
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bill, err := s.loadBill(ctx, tx, billID)
		if err != nil {
			return err
		}
		if bill.Status.Terminal() {
			return billingdomain.ErrInvalidState
		}
		if req.Amount > bill.PaidAmount {
			return refunddomain.ErrAmountExceedsPaid
		}

		now := s.clock.Now()
		refund = refunddomain.Refund{
			ID:        s.genID.Generate(),
			BillID:    bill.ID,
			Amount:    req.Amount,
			Reason:    strings.TrimSpace(req.Reason),
			CreatedAt: now,
		}
		if err := s.refrepo.WithTrx(tx).Create(ctx, &refund); err != nil {
			return err
		}

		paid := bill.PaidAmount - req.Amount
		outstanding := bill.NetAmount - paid

		// Draining the paid balance to zero closes the bill as REFUNDED;
		// DeriveStatus keeps that terminal afterwards.
		status := billingdomain.DeriveStatus(bill.Status, paid, bill.NetAmount)
		if paid == 0 {
			status = billingdomain.BillStatusRefunded
		}

		result := tx.WithContext(ctx).Exec(
			`UPDATE bills
			 SET paid_amount = ?, outstanding_amount = ?, status = ?, updated_at = ?,
			     version = version + 1
			 WHERE id = ? AND version = ?`,
			paid, outstanding, status, now, bill.ID, bill.Version,
		)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			s.obsMetrics.RecordVersionConflict(ctx, "refund.apply")
			return billingdomain.ErrConcurrentModification
		}
		return nil
	})
	if err != nil {
		return refunddomain.Refund{}, err
	}

	s.obsMetrics.RecordRefundProcessed(ctx)
	s.emitAudit(ctx, &refund)
	return refund, nil
}

func (s *Service) ListByBill(ctx context.Context, billID string) ([]refunddomain.Refund, error) {
	id, err := parseID(billID)
	if err != nil {
		return nil, billingdomain.ErrInvalidBillID
	}

	rows, err := s.refrepo.Find(ctx, &refunddomain.Refund{BillID: id})
	if err != nil {
		return nil, err
	}
	refunds := make([]refunddomain.Refund, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		refunds = append(refunds, *row)
	}
	return refunds, nil
}

func (s *Service) loadBill(ctx context.Context, tx *gorm.DB, billID snowflake.ID) (*billingdomain.Bill, error) {
	bill, err := s.billrepo.WithTrx(tx).FindOne(ctx, &billingdomain.Bill{ID: billID})
	if err != nil {
		return nil, err
	}
	if bill == nil || !bill.Active {
		return nil, billingdomain.ErrBillNotFound
	}
	return bill, nil
}

func (s *Service) emitAudit(ctx context.Context, refund *refunddomain.Refund) {
	if s.auditSvc == nil || refund == nil {
		return
	}
	targetID := refund.ID.String()
	_ = s.auditSvc.AuditLog(ctx, "refund.processed", "refund", &targetID, map[string]any{
		"bill_id": refund.BillID.String(),
		"amount":  money.Format(refund.Amount),
		"reason":  refund.Reason,
	})
}

func parseID(raw string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(raw))
}
