package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	auditdomain "github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/audit/domain"
	billingdomain "github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/billing/domain"
	"github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/clock"
	"github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/config"
	obsmetrics "github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/observability/metrics"
	paymentdomain "github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/payment/domain"
	"github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/pkg/db/pagination"
	"github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/pkg/money"
	"github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/pkg/repository"
)

type ServiceParam struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	BillingCfg *config.BillingConfigHolder
	AuditSvc   auditdomain.Service `optional:"true"`
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock

	billingCfg *config.BillingConfigHolder
	auditSvc   auditdomain.Service
	obsMetrics *obsmetrics.Metrics

	payrepo  repository.Repository[paymentdomain.Payment]
	billrepo repository.Repository[billingdomain.Bill]
}

func NewService(p ServiceParam) paymentdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("payment.service"),
		genID: p.GenID,
		clock: p.Clock,

		billingCfg: p.BillingCfg,
		auditSvc:   p.AuditSvc,
		obsMetrics: p.ObsMetrics,

		payrepo:  repository.ProvideStore[paymentdomain.Payment](p.DB),
		billrepo: repository.ProvideStore[billingdomain.Bill](p.DB),
	}
}

func (s *Service) Process(ctx context.Context, req paymentdomain.ProcessPaymentRequest) (paymentdomain.Payment, error) {
	if req.Amount <= 0 {
		return paymentdomain.Payment{}, paymentdomain.ErrInvalidAmount
	}
	method := strings.TrimSpace(req.Method)
	if method == "" {
		return paymentdomain.Payment{}, paymentdomain.ErrInvalidAmount
	}
	billID, err := parseID(req.BillID)
	if err != nil {
		return paymentdomain.Payment{}, billingdomain.ErrInvalidBillID
	}

	referenceNo := strings.TrimSpace(req.ReferenceNo)
	if referenceNo == "" {
		referenceNo = uuid.NewString()
	}

	cfg := s.billingCfg.Get()
	attempts := cfg.PaymentRetryLimit
	if attempts < 1 {
		attempts = 1
	}

	var payment paymentdomain.Payment
	for attempt := 0; attempt < attempts; attempt++ {
		payment, err = s.apply(ctx, billID, req.Amount, method, referenceNo)
		if err == nil {
			break
		}
		if !errors.Is(err, billingdomain.ErrConcurrentModification) {
			return paymentdomain.Payment{}, err
		}
		s.log.Debug("payment hit version conflict, retrying",
			zap.String("bill_id", billID.String()),
			zap.Int("attempt", attempt+1),
		)
		time.Sleep(cfg.PaymentRetryBackoff)
	}
	if err != nil {
		return paymentdomain.Payment{}, err
	}

	s.obsMetrics.RecordPaymentProcessed(ctx, method)
	s.emitAudit(ctx, "payment.processed", &payment)
	return payment, nil
}

// apply is one optimistic attempt: read the bill, bounds-check, then write
// the payment row and the bill together or not at all.
func (s *Service) apply(ctx context.Context, billID snowflake.ID, amount int64, method, referenceNo string) (paymentdomain.Payment, error) {
	var payment paymentdomain.Payment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bill, err := s.loadBill(ctx, tx, billID)
		if err != nil {
			return err
		}
		if bill.Status.Terminal() {
			return billingdomain.ErrInvalidState
		}
		if amount > bill.OutstandingAmount {
			return paymentdomain.ErrAmountExceedsOutstanding
		}

		now := s.clock.Now()
		payment = paymentdomain.Payment{
			ID:          s.genID.Generate(),
			BillID:      bill.ID,
			PatientID:   bill.PatientID,
			HospitalID:  bill.HospitalID,
			Amount:      amount,
			Method:      method,
			ReferenceNo: referenceNo,
			PaymentDate: now,
			Active:      true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.payrepo.WithTrx(tx).Create(ctx, &payment); err != nil {
			return err
		}

		return s.writeBillAmounts(ctx, tx, bill, bill.PaidAmount+amount, now)
	})
	if err != nil {
		return paymentdomain.Payment{}, err
	}
	return payment, nil
}

func (s *Service) Void(ctx context.Context, paymentIDRaw string) (paymentdomain.Payment, error) {
	paymentID, err := parseID(paymentIDRaw)
	if err != nil {
		return paymentdomain.Payment{}, paymentdomain.ErrInvalidPaymentID
	}

	var voided paymentdomain.Payment
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payment, err := s.payrepo.WithTrx(tx).FindOne(ctx, &paymentdomain.Payment{ID: paymentID})
		if err != nil {
			return err
		}
		if payment == nil {
			return paymentdomain.ErrPaymentNotFound
		}
		if !payment.Active {
			return paymentdomain.ErrAlreadyVoided
		}

		bill, err := s.loadBill(ctx, tx, payment.BillID)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		result := tx.WithContext(ctx).Exec(
			`UPDATE payments SET active = ?, updated_at = ? WHERE id = ? AND active = ?`,
			false, now, paymentID, true,
		)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return paymentdomain.ErrAlreadyVoided
		}

		// A refund may have already consumed part of this payment; the
		// reversal never drives the paid balance below zero.
		paid := bill.PaidAmount - payment.Amount
		if paid < 0 {
			paid = 0
		}
		if err := s.writeBillAmounts(ctx, tx, bill, paid, now); err != nil {
			return err
		}

		payment.Active = false
		payment.UpdatedAt = now
		voided = *payment
		return nil
	})
	if err != nil {
		return paymentdomain.Payment{}, err
	}

	s.obsMetrics.RecordPaymentVoided(ctx)
	s.emitAudit(ctx, "payment.voided", &voided)
	return voided, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (paymentdomain.Payment, error) {
	paymentID, err := parseID(id)
	if err != nil {
		return paymentdomain.Payment{}, paymentdomain.ErrInvalidPaymentID
	}
	payment, err := s.payrepo.FindOne(ctx, &paymentdomain.Payment{ID: paymentID})
	if err != nil {
		return paymentdomain.Payment{}, err
	}
	if payment == nil {
		return paymentdomain.Payment{}, paymentdomain.ErrPaymentNotFound
	}
	return *payment, nil
}

func (s *Service) ListByBill(ctx context.Context, billID string) ([]paymentdomain.Payment, error) {
	id, err := parseID(billID)
	if err != nil {
		return nil, billingdomain.ErrInvalidBillID
	}
	return s.list(ctx, &paymentdomain.Payment{BillID: id})
}

func (s *Service) ListByBillPaged(ctx context.Context, req paymentdomain.ListPaymentsRequest) (paymentdomain.ListPaymentsResponse, error) {
	billID, err := parseID(req.BillID)
	if err != nil {
		return paymentdomain.ListPaymentsResponse{}, billingdomain.ErrInvalidBillID
	}

	limit := req.PageSize
	if limit <= 0 {
		limit = 20
	}

	stmt := s.db.WithContext(ctx).Model(&paymentdomain.Payment{}).Where("bill_id = ?", billID)
	if token := strings.TrimSpace(req.PageToken); token != "" {
		cursor, err := pagination.DecodeCursor(token)
		if err != nil {
			return paymentdomain.ListPaymentsResponse{}, paymentdomain.ErrInvalidPageToken
		}
		createdAt, err := time.Parse(time.RFC3339Nano, cursor.CreatedAt)
		if err != nil {
			return paymentdomain.ListPaymentsResponse{}, paymentdomain.ErrInvalidPageToken
		}
		stmt = stmt.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			createdAt, createdAt, cursor.ID)
	}

	var rows []*paymentdomain.Payment
	if err := stmt.Order("created_at desc, id desc").Limit(limit + 1).Find(&rows).Error; err != nil {
		return paymentdomain.ListPaymentsResponse{}, err
	}

	rows, pageInfo := pagination.BuildCursorPageInfo(rows, limit, func(payment *paymentdomain.Payment) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{
			ID:        strconv.FormatInt(int64(payment.ID), 10),
			CreatedAt: payment.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
		return token
	})

	payments := make([]paymentdomain.Payment, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		payments = append(payments, *row)
	}

	resp := paymentdomain.ListPaymentsResponse{Payments: payments}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID string) ([]paymentdomain.Payment, error) {
	id, err := parseID(patientID)
	if err != nil {
		return nil, paymentdomain.ErrInvalidPaymentID
	}
	return s.list(ctx, &paymentdomain.Payment{PatientID: id})
}

func (s *Service) ListByHospital(ctx context.Context, hospitalID string) ([]paymentdomain.Payment, error) {
	id, err := parseID(hospitalID)
	if err != nil {
		return nil, paymentdomain.ErrInvalidPaymentID
	}
	return s.list(ctx, &paymentdomain.Payment{HospitalID: id})
}

func (s *Service) list(ctx context.Context, filter *paymentdomain.Payment) ([]paymentdomain.Payment, error) {
	rows, err := s.payrepo.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	payments := make([]paymentdomain.Payment, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		payments = append(payments, *row)
	}
	return payments, nil
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

// writeBillAmounts persists the money side of a payment event, guarded by
// the bill version.
func (s *Service) writeBillAmounts(ctx context.Context, tx *gorm.DB, bill *billingdomain.Bill, paid int64, now time.Time) error {
	outstanding := bill.NetAmount - paid
	status := billingdomain.DeriveStatus(bill.Status, paid, bill.NetAmount)

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
		s.obsMetrics.RecordVersionConflict(ctx, "payment.apply")
		return billingdomain.ErrConcurrentModification
	}
	return nil
}

func (s *Service) emitAudit(ctx context.Context, action string, payment *paymentdomain.Payment) {
	if s.auditSvc == nil || payment == nil {
		return
	}
	targetID := payment.ID.String()
	_ = s.auditSvc.AuditLog(ctx, action, "payment", &targetID, map[string]any{
		"bill_id":      payment.BillID.String(),
		"amount":       money.Format(payment.Amount),
		"method":       payment.Method,
		"reference_no": payment.ReferenceNo,
	})
}

func parseID(raw string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(raw))
}
