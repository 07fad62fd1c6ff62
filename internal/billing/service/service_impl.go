package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	auditdomain "github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/audit/domain"
	billingdomain "github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/billing/domain"
	"github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/billing/format"
	"github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/clock"
	"github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/config"
	directorydomain "github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/directory/domain"
	obsmetrics "github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/observability/metrics"
	"github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/pkg/db/pagination"
	"github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/pkg/money"
	"github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/pkg/repository"
)

type ServiceParam struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	BillingCfg   *config.BillingConfigHolder
	DirectorySvc directorydomain.Service
	AuditSvc     auditdomain.Service       `optional:"true"`
	ObsMetrics   *obsmetrics.Metrics       `optional:"true"`
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock

	billingCfg   *config.BillingConfigHolder
	directorySvc directorydomain.Service
	auditSvc     auditdomain.Service
	obsMetrics   *obsmetrics.Metrics

	billrepo repository.Repository[billingdomain.Bill]
	itemrepo repository.Repository[billingdomain.BillItem]
}

func NewService(p ServiceParam) billingdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("billing.service"),
		genID: p.GenID,
		clock: p.Clock,

		billingCfg:   p.BillingCfg,
		directorySvc: p.DirectorySvc,
		auditSvc:     p.AuditSvc,
		obsMetrics:   p.ObsMetrics,

		billrepo: repository.ProvideStore[billingdomain.Bill](p.DB),
		itemrepo: repository.ProvideStore[billingdomain.BillItem](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req billingdomain.CreateBillRequest) (billingdomain.Bill, error) {
	patientID, hospitalID, appointmentID, err := s.resolveRefs(ctx, req.PatientID, req.HospitalID, req.AppointmentID)
	if err != nil {
		return billingdomain.Bill{}, err
	}

	drafts, total, err := buildItems(req.Items)
	if err != nil {
		return billingdomain.Bill{}, err
	}

	net, err := computeNet(total, req.DiscountAmount, req.TaxAmount)
	if err != nil {
		return billingdomain.Bill{}, err
	}

	now := s.clock.Now()
	cfg := s.billingCfg.Get()
	dueDate := req.DueDate
	if dueDate == nil && cfg.DefaultDueDays > 0 {
		due := now.AddDate(0, 0, cfg.DefaultDueDays)
		dueDate = &due
	}

	bill := billingdomain.Bill{
		ID:                s.genID.Generate(),
		PatientID:         patientID,
		HospitalID:        hospitalID,
		AppointmentID:     appointmentID,
		BillDate:          now,
		DueDate:           dueDate,
		TotalAmount:       total,
		DiscountAmount:    req.DiscountAmount,
		TaxAmount:         req.TaxAmount,
		NetAmount:         net,
		PaidAmount:        0,
		OutstandingAmount: net,
		Status:            billingdomain.BillStatusDraft,
		Notes:             strings.TrimSpace(req.Notes),
		Active:            true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq, err := s.nextBillSeq(ctx, tx)
		if err != nil {
			return err
		}
		number, err := format.FormatBillNumber(cfg.BillNumberTemplate, now, seq)
		if err != nil {
			return err
		}
		bill.BillSeq = seq
		bill.BillNumber = number

		if err := s.billrepo.WithTrx(tx).Create(ctx, &bill); err != nil {
			return err
		}
		return s.insertItems(ctx, tx, bill.ID, drafts, now)
	})
	if err != nil {
		return billingdomain.Bill{}, err
	}

	s.emitAudit(ctx, "bill.created", &bill, map[string]any{
		"item_count": len(drafts),
	})
	return bill, nil
}

func (s *Service) Update(ctx context.Context, req billingdomain.UpdateBillRequest) (billingdomain.Bill, error) {
	billID, err := parseID(req.BillID)
	if err != nil {
		return billingdomain.Bill{}, billingdomain.ErrInvalidBillID
	}

	patientID, hospitalID, appointmentID, err := s.resolveRefs(ctx, req.PatientID, req.HospitalID, req.AppointmentID)
	if err != nil {
		return billingdomain.Bill{}, err
	}

	drafts, total, err := buildItems(req.Items)
	if err != nil {
		return billingdomain.Bill{}, err
	}
	net, err := computeNet(total, req.DiscountAmount, req.TaxAmount)
	if err != nil {
		return billingdomain.Bill{}, err
	}

	var updated billingdomain.Bill
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bill, err := s.loadBill(ctx, tx, billID)
		if err != nil {
			return err
		}
		if bill.Version != req.Version {
			return billingdomain.ErrConcurrentModification
		}
		if bill.Status.Frozen() {
			return billingdomain.ErrInvalidState
		}

		outstanding := net - bill.PaidAmount
		if outstanding < 0 {
			// The recorded payments would exceed the new net amount.
			return billingdomain.ErrInvalidAmount
		}

		bill.PatientID = patientID
		bill.HospitalID = hospitalID
		bill.AppointmentID = appointmentID
		bill.TotalAmount = total
		bill.DiscountAmount = req.DiscountAmount
		bill.TaxAmount = req.TaxAmount
		bill.NetAmount = net
		bill.OutstandingAmount = outstanding
		bill.Status = billingdomain.DeriveStatus(bill.Status, bill.PaidAmount, net)
		bill.Notes = strings.TrimSpace(req.Notes)

		now := s.clock.Now()
		if err := tx.WithContext(ctx).Exec(
			`DELETE FROM bill_items WHERE bill_id = ?`, billID,
		).Error; err != nil {
			return err
		}
		if err := s.insertItems(ctx, tx, billID, drafts, now); err != nil {
			return err
		}
		if err := s.casUpdateBill(ctx, tx, bill, now); err != nil {
			return err
		}
		updated = *bill
		return nil
	})
	if err != nil {
		return billingdomain.Bill{}, err
	}

	s.emitAudit(ctx, "bill.updated", &updated, map[string]any{
		"item_count": len(drafts),
	})
	return updated, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (billingdomain.Bill, error) {
	billID, err := parseID(id)
	if err != nil {
		return billingdomain.Bill{}, billingdomain.ErrInvalidBillID
	}

	bill, err := s.billrepo.FindOne(ctx, &billingdomain.Bill{ID: billID})
	if err != nil {
		return billingdomain.Bill{}, err
	}
	if bill == nil {
		return billingdomain.Bill{}, billingdomain.ErrBillNotFound
	}
	return *bill, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID string) ([]billingdomain.Bill, error) {
	id, err := parseID(patientID)
	if err != nil {
		return nil, billingdomain.ErrInvalidBillID
	}
	return s.listBills(ctx, &billingdomain.Bill{PatientID: id, Active: true})
}

func (s *Service) ListByHospital(ctx context.Context, hospitalID string) ([]billingdomain.Bill, error) {
	id, err := parseID(hospitalID)
	if err != nil {
		return nil, billingdomain.ErrInvalidBillID
	}
	return s.listBills(ctx, &billingdomain.Bill{HospitalID: id, Active: true})
}

func (s *Service) ListActive(ctx context.Context, req billingdomain.ListBillsRequest) (billingdomain.ListBillsResponse, error) {
	limit := req.PageSize
	if limit <= 0 {
		limit = 20
	}

	stmt := s.db.WithContext(ctx).Model(&billingdomain.Bill{}).Where("active = ?", true)
	if token := strings.TrimSpace(req.PageToken); token != "" {
		cursor, err := pagination.DecodeCursor(token)
		if err != nil {
			return billingdomain.ListBillsResponse{}, billingdomain.ErrInvalidPageToken
		}
		createdAt, err := time.Parse(time.RFC3339Nano, cursor.CreatedAt)
		if err != nil {
			return billingdomain.ListBillsResponse{}, billingdomain.ErrInvalidPageToken
		}
		stmt = stmt.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			createdAt, createdAt, cursor.ID)
	}

	var rows []*billingdomain.Bill
	if err := stmt.Order("created_at desc, id desc").Limit(limit + 1).Find(&rows).Error; err != nil {
		return billingdomain.ListBillsResponse{}, err
	}

	rows, pageInfo := pagination.BuildCursorPageInfo(rows, limit, func(bill *billingdomain.Bill) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{
			ID:        strconv.FormatInt(int64(bill.ID), 10),
			CreatedAt: bill.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
		return token
	})

	bills := make([]billingdomain.Bill, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		bills = append(bills, *row)
	}

	resp := billingdomain.ListBillsResponse{Bills: bills}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) AddItem(ctx context.Context, billIDRaw string, version int64, item billingdomain.ItemInput) (billingdomain.Bill, error) {
	billID, err := parseID(billIDRaw)
	if err != nil {
		return billingdomain.Bill{}, billingdomain.ErrInvalidBillID
	}

	drafts, lineTotal, err := buildItems([]billingdomain.ItemInput{item})
	if err != nil {
		return billingdomain.Bill{}, err
	}

	var updated billingdomain.Bill
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bill, err := s.loadBill(ctx, tx, billID)
		if err != nil {
			return err
		}
		if bill.Version != version {
			return billingdomain.ErrConcurrentModification
		}
		if bill.Status.Frozen() {
			return billingdomain.ErrInvalidState
		}

		total := bill.TotalAmount + lineTotal
		net, err := computeNet(total, bill.DiscountAmount, bill.TaxAmount)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		if err := s.insertItems(ctx, tx, billID, drafts, now); err != nil {
			return err
		}

		bill.TotalAmount = total
		bill.NetAmount = net
		bill.OutstandingAmount = net - bill.PaidAmount
		bill.Status = billingdomain.DeriveStatus(bill.Status, bill.PaidAmount, net)
		if err := s.casUpdateBill(ctx, tx, bill, now); err != nil {
			return err
		}
		updated = *bill
		return nil
	})
	if err != nil {
		return billingdomain.Bill{}, err
	}

	s.emitAudit(ctx, "bill.item_added", &updated, map[string]any{
		"line_total": lineTotal,
	})
	return updated, nil
}

func (s *Service) RemoveItem(ctx context.Context, billIDRaw string, version int64, itemIDRaw string) (billingdomain.Bill, error) {
	billID, err := parseID(billIDRaw)
	if err != nil {
		return billingdomain.Bill{}, billingdomain.ErrInvalidBillID
	}
	itemID, err := parseID(itemIDRaw)
	if err != nil {
		return billingdomain.Bill{}, billingdomain.ErrItemNotFound
	}

	var updated billingdomain.Bill
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bill, err := s.loadBill(ctx, tx, billID)
		if err != nil {
			return err
		}
		if bill.Version != version {
			return billingdomain.ErrConcurrentModification
		}
		if bill.Status.Frozen() {
			return billingdomain.ErrInvalidState
		}

		result := tx.WithContext(ctx).Exec(
			`DELETE FROM bill_items WHERE id = ? AND bill_id = ?`, itemID, billID,
		)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return billingdomain.ErrItemNotFound
		}

		total, err := s.sumItems(ctx, tx, billID)
		if err != nil {
			return err
		}
		net, err := computeNet(total, bill.DiscountAmount, bill.TaxAmount)
		if err != nil {
			return err
		}
		outstanding := net - bill.PaidAmount
		if outstanding < 0 {
			return billingdomain.ErrInvalidAmount
		}

		bill.TotalAmount = total
		bill.NetAmount = net
		bill.OutstandingAmount = outstanding
		bill.Status = billingdomain.DeriveStatus(bill.Status, bill.PaidAmount, net)
		if err := s.casUpdateBill(ctx, tx, bill, s.clock.Now()); err != nil {
			return err
		}
		updated = *bill
		return nil
	})
	if err != nil {
		return billingdomain.Bill{}, err
	}

	s.emitAudit(ctx, "bill.item_removed", &updated, map[string]any{
		"item_id": itemID.String(),
	})
	return updated, nil
}

func (s *Service) ListItems(ctx context.Context, billIDRaw string) ([]billingdomain.BillItem, error) {
	billID, err := parseID(billIDRaw)
	if err != nil {
		return nil, billingdomain.ErrInvalidBillID
	}

	rows, err := s.itemrepo.Find(ctx, &billingdomain.BillItem{BillID: billID})
	if err != nil {
		return nil, err
	}
	items := make([]billingdomain.BillItem, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		items = append(items, *row)
	}
	return items, nil
}

func (s *Service) MarkSent(ctx context.Context, billIDRaw string, version int64) (billingdomain.Bill, error) {
	bill, err := s.transition(ctx, billIDRaw, version, func(bill *billingdomain.Bill) error {
		if bill.Status != billingdomain.BillStatusDraft {
			return billingdomain.ErrInvalidState
		}
		bill.Status = billingdomain.BillStatusSent
		return nil
	})
	if err != nil {
		return billingdomain.Bill{}, err
	}
	s.emitAudit(ctx, "bill.sent", &bill, nil)
	return bill, nil
}

func (s *Service) Cancel(ctx context.Context, billIDRaw string, version int64) (billingdomain.Bill, error) {
	bill, err := s.transition(ctx, billIDRaw, version, func(bill *billingdomain.Bill) error {
		if bill.Status.Frozen() || bill.PaidAmount > 0 {
			return billingdomain.ErrInvalidState
		}
		bill.Status = billingdomain.BillStatusCancelled
		return nil
	})
	if err != nil {
		return billingdomain.Bill{}, err
	}
	s.emitAudit(ctx, "bill.cancelled", &bill, nil)
	return bill, nil
}

func (s *Service) Deactivate(ctx context.Context, billIDRaw string, version int64) error {
	billID, err := parseID(billIDRaw)
	if err != nil {
		return billingdomain.ErrInvalidBillID
	}

	var deactivated billingdomain.Bill
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bill, err := s.loadBill(ctx, tx, billID)
		if err != nil {
			return err
		}
		if bill.Version != version {
			return billingdomain.ErrConcurrentModification
		}

		var active int64
		if err := tx.WithContext(ctx).Raw(
			`SELECT COUNT(*) FROM payments WHERE bill_id = ? AND active = ?`, billID, true,
		).Scan(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return billingdomain.ErrHasDependents
		}

		bill.Active = false
		if err := s.casUpdateBill(ctx, tx, bill, s.clock.Now()); err != nil {
			return err
		}
		deactivated = *bill
		return nil
	})
	if err != nil {
		return err
	}

	s.emitAudit(ctx, "bill.deactivated", &deactivated, nil)
	return nil
}

func (s *Service) transition(ctx context.Context, billIDRaw string, version int64, mutate func(*billingdomain.Bill) error) (billingdomain.Bill, error) {
	billID, err := parseID(billIDRaw)
	if err != nil {
		return billingdomain.Bill{}, billingdomain.ErrInvalidBillID
	}

	var updated billingdomain.Bill
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bill, err := s.loadBill(ctx, tx, billID)
		if err != nil {
			return err
		}
		if bill.Version != version {
			return billingdomain.ErrConcurrentModification
		}
		if err := mutate(bill); err != nil {
			return err
		}
		if err := s.casUpdateBill(ctx, tx, bill, s.clock.Now()); err != nil {
			return err
		}
		updated = *bill
		return nil
	})
	if err != nil {
		return billingdomain.Bill{}, err
	}
	return updated, nil
}

func (s *Service) resolveRefs(ctx context.Context, patientRaw, hospitalRaw string, appointmentRaw *string) (snowflake.ID, snowflake.ID, *snowflake.ID, error) {
	exists, err := s.directorySvc.PatientExists(ctx, patientRaw)
	if err != nil {
		return 0, 0, nil, err
	}
	if !exists {
		return 0, 0, nil, directorydomain.ErrPatientNotFound
	}
	patientID, err := parseID(patientRaw)
	if err != nil {
		return 0, 0, nil, directorydomain.ErrInvalidID
	}

	exists, err = s.directorySvc.HospitalExists(ctx, hospitalRaw)
	if err != nil {
		return 0, 0, nil, err
	}
	if !exists {
		return 0, 0, nil, directorydomain.ErrHospitalNotFound
	}
	hospitalID, err := parseID(hospitalRaw)
	if err != nil {
		return 0, 0, nil, directorydomain.ErrInvalidID
	}

	var appointmentID *snowflake.ID
	if appointmentRaw != nil && strings.TrimSpace(*appointmentRaw) != "" {
		appointment, err := s.directorySvc.GetAppointment(ctx, *appointmentRaw)
		if err != nil {
			return 0, 0, nil, err
		}
		if appointment.HospitalID != hospitalID {
			return 0, 0, nil, billingdomain.ErrAppointmentMismatch
		}
		appointmentID = &appointment.ID
	}

	return patientID, hospitalID, appointmentID, nil
}

func (s *Service) listBills(ctx context.Context, filter *billingdomain.Bill) ([]billingdomain.Bill, error) {
	rows, err := s.billrepo.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	bills := make([]billingdomain.Bill, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		bills = append(bills, *row)
	}
	return bills, nil
}

func (s *Service) loadBill(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*billingdomain.Bill, error) {
	bill, err := s.billrepo.WithTrx(tx).FindOne(ctx, &billingdomain.Bill{ID: id})
	if err != nil {
		return nil, err
	}
	if bill == nil || !bill.Active {
		return nil, billingdomain.ErrBillNotFound
	}
	return bill, nil
}

func (s *Service) nextBillSeq(ctx context.Context, tx *gorm.DB) (int64, error) {
	var next int64
	err := tx.WithContext(ctx).Raw(
		`SELECT COALESCE(MAX(bill_seq), 0) + 1 FROM bills`,
	).Scan(&next).Error
	if err != nil {
		return 0, err
	}
	return next, nil
}

func (s *Service) sumItems(ctx context.Context, tx *gorm.DB, billID snowflake.ID) (int64, error) {
	var total int64
	err := tx.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(line_total), 0) FROM bill_items WHERE bill_id = ?`, billID,
	).Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Service) insertItems(ctx context.Context, tx *gorm.DB, billID snowflake.ID, drafts []itemDraft, now time.Time) error {
	if len(drafts) == 0 {
		return nil
	}
	items := make([]*billingdomain.BillItem, 0, len(drafts))
	for _, draft := range drafts {
		items = append(items, &billingdomain.BillItem{
			ID:          s.genID.Generate(),
			BillID:      billID,
			ServiceType: draft.ServiceType,
			Description: draft.Description,
			Quantity:    draft.Quantity,
			UnitPrice:   draft.UnitPrice,
			LineTotal:   draft.LineTotal,
			CreatedAt:   now,
		})
	}
	return s.itemrepo.WithTrx(tx).BatchCreate(ctx, items)
}

// casUpdateBill writes the bill back guarded by its version. RowsAffected 0
// means another writer got there first; the whole transaction must roll back.
func (s *Service) casUpdateBill(ctx context.Context, tx *gorm.DB, bill *billingdomain.Bill, now time.Time) error {
	result := tx.WithContext(ctx).Exec(
		`UPDATE bills
		 SET patient_id = ?, hospital_id = ?, appointment_id = ?, due_date = ?,
		     total_amount = ?, discount_amount = ?, tax_amount = ?, net_amount = ?,
		     paid_amount = ?, outstanding_amount = ?, status = ?, notes = ?,
		     active = ?, updated_at = ?, version = version + 1
		 WHERE id = ? AND version = ?`,
		bill.PatientID,
		bill.HospitalID,
		bill.AppointmentID,
		bill.DueDate,
		bill.TotalAmount,
		bill.DiscountAmount,
		bill.TaxAmount,
		bill.NetAmount,
		bill.PaidAmount,
		bill.OutstandingAmount,
		bill.Status,
		bill.Notes,
		bill.Active,
		now,
		bill.ID,
		bill.Version,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		s.obsMetrics.RecordVersionConflict(ctx, "bill.update")
		return billingdomain.ErrConcurrentModification
	}
	bill.Version++
	bill.UpdatedAt = now
	return nil
}

func (s *Service) emitAudit(ctx context.Context, action string, bill *billingdomain.Bill, extra map[string]any) {
	if s.auditSvc == nil || bill == nil {
		return
	}
	metadata := map[string]any{
		"bill_number":        bill.BillNumber,
		"patient_id":         bill.PatientID.String(),
		"hospital_id":        bill.HospitalID.String(),
		"status":             string(bill.Status),
		"net_amount":         money.Format(bill.NetAmount),
		"paid_amount":        money.Format(bill.PaidAmount),
		"outstanding_amount": money.Format(bill.OutstandingAmount),
	}
	for key, value := range extra {
		if key == "" {
			continue
		}
		metadata[key] = value
	}

	targetID := bill.ID.String()
	_ = s.auditSvc.AuditLog(ctx, action, "bill", &targetID, metadata)
}

type itemDraft struct {
	ServiceType string
	Description string
	Quantity    int64
	UnitPrice   int64
	LineTotal   int64
}

func buildItems(inputs []billingdomain.ItemInput) ([]itemDraft, int64, error) {
	drafts := make([]itemDraft, 0, len(inputs))
	var total int64
	for _, input := range inputs {
		if input.Quantity <= 0 || input.UnitPrice < 0 {
			return nil, 0, billingdomain.ErrInvalidAmount
		}
		serviceType := strings.TrimSpace(input.ServiceType)
		if serviceType == "" {
			return nil, 0, billingdomain.ErrInvalidAmount
		}
		lineTotal, err := money.Line(input.UnitPrice, input.Quantity)
		if err != nil {
			return nil, 0, billingdomain.ErrInvalidAmount
		}
		drafts = append(drafts, itemDraft{
			ServiceType: serviceType,
			Description: strings.TrimSpace(input.Description),
			Quantity:    input.Quantity,
			UnitPrice:   input.UnitPrice,
			LineTotal:   lineTotal,
		})
		total += lineTotal
	}
	return drafts, total, nil
}

func computeNet(total, discount, tax int64) (int64, error) {
	if discount < 0 || tax < 0 {
		return 0, billingdomain.ErrInvalidAmount
	}
	net := total - discount + tax
	if net < 0 {
		return 0, billingdomain.ErrInvalidAmount
	}
	return net, nil
}

func parseID(raw string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(raw))
}
