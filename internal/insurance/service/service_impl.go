package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	auditdomain "github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/audit/domain"
	billingdomain "github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/billing/domain"
	"github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/clock"
	"github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/config"
	insurancedomain "github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/insurance/domain"
	obsmetrics "github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/observability/metrics"
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

	claimrepo      repository.Repository[insurancedomain.InsuranceClaim]
	settlementrepo repository.Repository[insurancedomain.InsuranceSettlement]
	policyrepo     repository.Repository[insurancedomain.InsurancePolicy]
	billrepo       repository.Repository[billingdomain.Bill]
}

func NewService(p ServiceParam) insurancedomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("insurance.service"),
		genID: p.GenID,
		clock: p.Clock,

		billingCfg: p.BillingCfg,
		auditSvc:   p.AuditSvc,
		obsMetrics: p.ObsMetrics,

		claimrepo:      repository.ProvideStore[insurancedomain.InsuranceClaim](p.DB),
		settlementrepo: repository.ProvideStore[insurancedomain.InsuranceSettlement](p.DB),
		policyrepo:     repository.ProvideStore[insurancedomain.InsurancePolicy](p.DB),
		billrepo:       repository.ProvideStore[billingdomain.Bill](p.DB),
	}
}

func (s *Service) CreateClaim(ctx context.Context, req insurancedomain.CreateClaimRequest) (insurancedomain.InsuranceClaim, error) {
	if req.ClaimAmount <= 0 {
		return insurancedomain.InsuranceClaim{}, insurancedomain.ErrInvalidAmount
	}
	billID, err := parseID(req.BillID)
	if err != nil {
		return insurancedomain.InsuranceClaim{}, billingdomain.ErrInvalidBillID
	}
	policyID, err := parseID(req.PolicyID)
	if err != nil {
		return insurancedomain.InsuranceClaim{}, insurancedomain.ErrPolicyNotFound
	}

	var claim insurancedomain.InsuranceClaim
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		policy, err := s.policyrepo.WithTrx(tx).FindOne(ctx, &insurancedomain.InsurancePolicy{ID: policyID})
		if err != nil {
			return err
		}
		if policy == nil {
			return insurancedomain.ErrPolicyNotFound
		}

		now := s.clock.Now()
		if !policy.EffectiveAt(now) {
			return insurancedomain.ErrPolicyNotEffective
		}

		bill, err := s.loadBill(ctx, tx, billID)
		if err != nil {
			return err
		}
		if bill.Status.Terminal() {
			return billingdomain.ErrInvalidState
		}
		if req.ClaimAmount > bill.NetAmount {
			return insurancedomain.ErrAmountExceedsNet
		}

		// Rejected and cancelled claims do not block a new claim.
		var open int64
		if err := tx.WithContext(ctx).Raw(
			`SELECT COUNT(*) FROM insurance_claims WHERE bill_id = ? AND status NOT IN (?, ?)`,
			billID, insurancedomain.ClaimStatusRejected, insurancedomain.ClaimStatusCancelled,
		).Scan(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			return insurancedomain.ErrDuplicateClaim
		}

		claim = insurancedomain.InsuranceClaim{
			ID:          s.genID.Generate(),
			BillID:      billID,
			PolicyID:    policyID,
			ClaimAmount: req.ClaimAmount,
			Status:      insurancedomain.ClaimStatusSubmitted,
			SubmittedAt: now,
			Notes:       strings.TrimSpace(req.Notes),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return s.claimrepo.WithTrx(tx).Create(ctx, &claim)
	})
	if err != nil {
		return insurancedomain.InsuranceClaim{}, err
	}

	s.emitAudit(ctx, "claim.created", "claim", claim.ID.String(), map[string]any{
		"bill_id":      claim.BillID.String(),
		"policy_id":    claim.PolicyID.String(),
		"claim_amount": money.Format(claim.ClaimAmount),
	})
	return claim, nil
}

func (s *Service) GetClaim(ctx context.Context, id string) (insurancedomain.InsuranceClaim, error) {
	claimID, err := parseID(id)
	if err != nil {
		return insurancedomain.InsuranceClaim{}, insurancedomain.ErrInvalidClaimID
	}
	claim, err := s.claimrepo.FindOne(ctx, &insurancedomain.InsuranceClaim{ID: claimID})
	if err != nil {
		return insurancedomain.InsuranceClaim{}, err
	}
	if claim == nil {
		return insurancedomain.InsuranceClaim{}, insurancedomain.ErrClaimNotFound
	}
	return *claim, nil
}

func (s *Service) UpdateClaimStatus(ctx context.Context, id string, status insurancedomain.ClaimStatus) (insurancedomain.InsuranceClaim, error) {
	claimID, err := parseID(id)
	if err != nil {
		return insurancedomain.InsuranceClaim{}, insurancedomain.ErrInvalidClaimID
	}
	if !validClaimStatus(status) {
		return insurancedomain.InsuranceClaim{}, insurancedomain.ErrInvalidStatus
	}

	var updated insurancedomain.InsuranceClaim
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		claim, err := s.claimrepo.WithTrx(tx).FindOne(ctx, &insurancedomain.InsuranceClaim{ID: claimID})
		if err != nil {
			return err
		}
		if claim == nil {
			return insurancedomain.ErrClaimNotFound
		}
		if !claim.Status.CanTransition(status) {
			return billingdomain.ErrInvalidState
		}

		now := s.clock.Now()
		var settledAt *time.Time
		if status == insurancedomain.ClaimStatusSettled {
			settledAt = &now
		} else {
			settledAt = claim.SettledAt
		}

		// Guard on the previous status so a concurrent transition loses
		// cleanly instead of double-applying.
		result := tx.WithContext(ctx).Exec(
			`UPDATE insurance_claims SET status = ?, settled_at = ?, updated_at = ? WHERE id = ? AND status = ?`,
			status, settledAt, now, claimID, claim.Status,
		)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return billingdomain.ErrConcurrentModification
		}

		claim.Status = status
		claim.SettledAt = settledAt
		claim.UpdatedAt = now
		updated = *claim
		return nil
	})
	if err != nil {
		return insurancedomain.InsuranceClaim{}, err
	}

	s.emitAudit(ctx, "claim.status_updated", "claim", updated.ID.String(), map[string]any{
		"bill_id": updated.BillID.String(),
		"status":  string(updated.Status),
	})
	return updated, nil
}

func (s *Service) CreateSettlement(ctx context.Context, req insurancedomain.CreateSettlementRequest) (insurancedomain.InsuranceSettlement, error) {
	if req.AmountSettled <= 0 {
		return insurancedomain.InsuranceSettlement{}, insurancedomain.ErrInvalidAmount
	}
	claimID, err := parseID(req.ClaimID)
	if err != nil {
		return insurancedomain.InsuranceSettlement{}, insurancedomain.ErrInvalidClaimID
	}

	cfg := s.billingCfg.Get()
	attempts := cfg.PaymentRetryLimit
	if attempts < 1 {
		attempts = 1
	}

	var settlement insurancedomain.InsuranceSettlement
	for attempt := 0; attempt < attempts; attempt++ {
		settlement, err = s.settle(ctx, claimID, req.AmountSettled, strings.TrimSpace(req.Remarks))
		if err == nil {
			break
		}
		if !errors.Is(err, billingdomain.ErrConcurrentModification) {
			return insurancedomain.InsuranceSettlement{}, err
		}
		s.log.Debug("settlement hit version conflict, retrying",
			zap.String("claim_id", claimID.String()),
			zap.Int("attempt", attempt+1),
		)
		time.Sleep(cfg.PaymentRetryBackoff)
	}
	if err != nil {
		return insurancedomain.InsuranceSettlement{}, err
	}

	s.obsMetrics.RecordClaimSettled(ctx)
	s.emitAudit(ctx, "claim.settled", "settlement", settlement.ID.String(), map[string]any{
		"claim_id":       settlement.ClaimID.String(),
		"amount_settled": money.Format(settlement.AmountSettled),
	})
	return settlement, nil
}

// settle is one optimistic attempt: the settlement row, the claim
// transition, and the bill's money write commit together or not at all.
func (s *Service) settle(ctx context.Context, claimID snowflake.ID, amount int64, remarks string) (insurancedomain.InsuranceSettlement, error) {
	var settlement insurancedomain.InsuranceSettlement
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		claim, err := s.claimrepo.WithTrx(tx).FindOne(ctx, &insurancedomain.InsuranceClaim{ID: claimID})
		if err != nil {
			return err
		}
		if claim == nil {
			return insurancedomain.ErrClaimNotFound
		}
		if claim.Status.Terminal() {
			return billingdomain.ErrInvalidState
		}
		if amount > claim.ClaimAmount {
			return insurancedomain.ErrAmountExceedsClaim
		}

		bill, err := s.loadBill(ctx, tx, claim.BillID)
		if err != nil {
			return err
		}
		if bill.Status.Terminal() {
			return billingdomain.ErrInvalidState
		}
		if amount > bill.OutstandingAmount {
			return insurancedomain.ErrAmountExceedsOutstanding
		}

		now := s.clock.Now()
		settlement = insurancedomain.InsuranceSettlement{
			ID:            s.genID.Generate(),
			ClaimID:       claim.ID,
			AmountSettled: amount,
			Remarks:       remarks,
			SettledAt:     now,
			CreatedAt:     now,
		}
		if err := s.settlementrepo.WithTrx(tx).Create(ctx, &settlement); err != nil {
			return err
		}

		result := tx.WithContext(ctx).Exec(
			`UPDATE insurance_claims SET status = ?, settled_at = ?, updated_at = ? WHERE id = ? AND status = ?`,
			insurancedomain.ClaimStatusSettled, now, now, claim.ID, claim.Status,
		)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return billingdomain.ErrConcurrentModification
		}

		paid := bill.PaidAmount + amount
		outstanding := bill.NetAmount - paid
		status := billingdomain.DeriveStatus(bill.Status, paid, bill.NetAmount)

		result = tx.WithContext(ctx).Exec(
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
			s.obsMetrics.RecordVersionConflict(ctx, "settlement.apply")
			return billingdomain.ErrConcurrentModification
		}
		return nil
	})
	if err != nil {
		return insurancedomain.InsuranceSettlement{}, err
	}
	return settlement, nil
}

func (s *Service) ListSettlementsByClaim(ctx context.Context, claimID string) ([]insurancedomain.InsuranceSettlement, error) {
	id, err := parseID(claimID)
	if err != nil {
		return nil, insurancedomain.ErrInvalidClaimID
	}
	rows, err := s.settlementrepo.Find(ctx, &insurancedomain.InsuranceSettlement{ClaimID: id})
	if err != nil {
		return nil, err
	}
	settlements := make([]insurancedomain.InsuranceSettlement, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		settlements = append(settlements, *row)
	}
	return settlements, nil
}

func (s *Service) ListClaimsByStatus(ctx context.Context, status insurancedomain.ClaimStatus) ([]insurancedomain.InsuranceClaim, error) {
	if !validClaimStatus(status) {
		return nil, insurancedomain.ErrInvalidStatus
	}
	return s.listClaims(ctx, &insurancedomain.InsuranceClaim{Status: status})
}

func (s *Service) ListClaimsByPatient(ctx context.Context, patientID string) ([]insurancedomain.InsuranceClaim, error) {
	id, err := parseID(patientID)
	if err != nil {
		return nil, insurancedomain.ErrInvalidClaimID
	}

	var rows []*insurancedomain.InsuranceClaim
	err = s.db.WithContext(ctx).
		Model(&insurancedomain.InsuranceClaim{}).
		Joins("JOIN bills ON bills.id = insurance_claims.bill_id").
		Where("bills.patient_id = ?", id).
		Order("insurance_claims.created_at desc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	claims := make([]insurancedomain.InsuranceClaim, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		claims = append(claims, *row)
	}
	return claims, nil
}

func (s *Service) ListClaimsByPolicy(ctx context.Context, policyID string) ([]insurancedomain.InsuranceClaim, error) {
	id, err := parseID(policyID)
	if err != nil {
		return nil, insurancedomain.ErrPolicyNotFound
	}
	return s.listClaims(ctx, &insurancedomain.InsuranceClaim{PolicyID: id})
}

func (s *Service) GetPolicy(ctx context.Context, id string) (insurancedomain.InsurancePolicy, error) {
	policyID, err := parseID(id)
	if err != nil {
		return insurancedomain.InsurancePolicy{}, insurancedomain.ErrPolicyNotFound
	}
	policy, err := s.policyrepo.FindOne(ctx, &insurancedomain.InsurancePolicy{ID: policyID})
	if err != nil {
		return insurancedomain.InsurancePolicy{}, err
	}
	if policy == nil {
		return insurancedomain.InsurancePolicy{}, insurancedomain.ErrPolicyNotFound
	}
	return *policy, nil
}

func (s *Service) listClaims(ctx context.Context, filter *insurancedomain.InsuranceClaim) ([]insurancedomain.InsuranceClaim, error) {
	rows, err := s.claimrepo.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	claims := make([]insurancedomain.InsuranceClaim, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		claims = append(claims, *row)
	}
	return claims, nil
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

func (s *Service) emitAudit(ctx context.Context, action, targetType, targetID string, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	_ = s.auditSvc.AuditLog(ctx, action, targetType, &targetID, metadata)
}

func validClaimStatus(status insurancedomain.ClaimStatus) bool {
	switch status {
	case insurancedomain.ClaimStatusSubmitted,
		insurancedomain.ClaimStatusPending,
		insurancedomain.ClaimStatusApproved,
		insurancedomain.ClaimStatusRejected,
		insurancedomain.ClaimStatusSettled,
		insurancedomain.ClaimStatusCancelled:
		return true
	}
	return false
}

func parseID(raw string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(raw))
}
