package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	billingdomain "github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/billing/domain"
	"github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/clock"
	"github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/config"
	directorydomain "github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/directory/domain"
	directoryservice "github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/directory/service"
	"github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/pkg/db/pagination"
)

type billingFixture struct {
	db           *gorm.DB
	node         *snowflake.Node
	clock        *clock.FakeClock
	svc          billingdomain.Service
	patientID    string
	hospitalID   string
	otherPatient string
}

func newBillingFixture(t *testing.T) *billingFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&billingdomain.Bill{},
		&billingdomain.BillItem{},
		&directorydomain.Patient{},
		&directorydomain.Hospital{},
		&directorydomain.Appointment{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC))

	directorySvc := directoryservice.NewService(directoryservice.Params{
		DB:  db,
		Log: zap.NewNop(),
	})

	svc := NewService(ServiceParam{
		DB:           db,
		Log:          zap.NewNop(),
		GenID:        node,
		Clock:        fake,
		BillingCfg:   config.NewStaticBillingConfigHolder(config.DefaultBillingConfig()),
		DirectorySvc: directorySvc,
	})

	patient := directorydomain.Patient{ID: node.Generate(), FirstName: "Amina", LastName: "Rahman", Active: true, CreatedAt: fake.Now()}
	other := directorydomain.Patient{ID: node.Generate(), FirstName: "Farid", LastName: "Khan", Active: true, CreatedAt: fake.Now()}
	hospital := directorydomain.Hospital{ID: node.Generate(), Name: "City General", Active: true, CreatedAt: fake.Now()}
	require.NoError(t, db.Create(&patient).Error)
	require.NoError(t, db.Create(&other).Error)
	require.NoError(t, db.Create(&hospital).Error)

	return &billingFixture{
		db:           db,
		node:         node,
		clock:        fake,
		svc:          svc,
		patientID:    patient.ID.String(),
		hospitalID:   hospital.ID.String(),
		otherPatient: other.ID.String(),
	}
}

func (f *billingFixture) createBill(t *testing.T, items []billingdomain.ItemInput, discount, tax int64) billingdomain.Bill {
	t.Helper()
	bill, err := f.svc.Create(context.Background(), billingdomain.CreateBillRequest{
		PatientID:      f.patientID,
		HospitalID:     f.hospitalID,
		Items:          items,
		DiscountAmount: discount,
		TaxAmount:      tax,
	})
	require.NoError(t, err)
	return bill
}

func standardItems() []billingdomain.ItemInput {
	return []billingdomain.ItemInput{
		{ServiceType: "CONSULTATION", Description: "Initial consult", Quantity: 1, UnitPrice: 20000},
		{ServiceType: "LAB_TEST", Description: "Blood panel", Quantity: 3, UnitPrice: 10000},
	}
}

func TestCreateBill_ComputesAmountsAndNumber(t *testing.T) {
	f := newBillingFixture(t)

	bill := f.createBill(t, standardItems(), 5000, 2000)

	assert.Equal(t, int64(50000), bill.TotalAmount)
	assert.Equal(t, int64(47000), bill.NetAmount)
	assert.Equal(t, int64(0), bill.PaidAmount)
	assert.Equal(t, int64(47000), bill.OutstandingAmount)
	assert.Equal(t, billingdomain.BillStatusDraft, bill.Status)
	assert.Equal(t, int64(0), bill.Version)
	assert.True(t, bill.Active)
	assert.Equal(t, "BILL-202603-000001", bill.BillNumber)
	require.NotNil(t, bill.DueDate)
	assert.Equal(t, f.clock.Now().AddDate(0, 0, 30), *bill.DueDate)

	items, err := f.svc.ListItems(context.Background(), bill.ID.String())
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestCreateBill_SequentialNumbers(t *testing.T) {
	f := newBillingFixture(t)

	first := f.createBill(t, standardItems(), 0, 0)
	second := f.createBill(t, standardItems(), 0, 0)

	assert.Equal(t, "BILL-202603-000001", first.BillNumber)
	assert.Equal(t, "BILL-202603-000002", second.BillNumber)
}

func TestCreateBill_RejectsUnknownPatient(t *testing.T) {
	f := newBillingFixture(t)

	_, err := f.svc.Create(context.Background(), billingdomain.CreateBillRequest{
		PatientID:  f.node.Generate().String(),
		HospitalID: f.hospitalID,
		Items:      standardItems(),
	})
	assert.ErrorIs(t, err, directorydomain.ErrPatientNotFound)
}

func TestCreateBill_RejectsNegativeNet(t *testing.T) {
	f := newBillingFixture(t)

	_, err := f.svc.Create(context.Background(), billingdomain.CreateBillRequest{
		PatientID:      f.patientID,
		HospitalID:     f.hospitalID,
		Items:          []billingdomain.ItemInput{{ServiceType: "CONSULTATION", Quantity: 1, UnitPrice: 100}},
		DiscountAmount: 500,
	})
	assert.ErrorIs(t, err, billingdomain.ErrInvalidAmount)
}

func TestCreateBill_RejectsInvalidItem(t *testing.T) {
	f := newBillingFixture(t)

	_, err := f.svc.Create(context.Background(), billingdomain.CreateBillRequest{
		PatientID:  f.patientID,
		HospitalID: f.hospitalID,
		Items:      []billingdomain.ItemInput{{ServiceType: "LAB_TEST", Quantity: 0, UnitPrice: 100}},
	})
	assert.ErrorIs(t, err, billingdomain.ErrInvalidAmount)
}

func TestCreateBill_AppointmentHospitalMustMatch(t *testing.T) {
	f := newBillingFixture(t)

	otherHospital := directorydomain.Hospital{ID: f.node.Generate(), Name: "North Clinic", Active: true, CreatedAt: f.clock.Now()}
	require.NoError(t, f.db.Create(&otherHospital).Error)

	appointment := directorydomain.Appointment{
		ID:          f.node.Generate(),
		PatientID:   mustParse(t, f.patientID),
		HospitalID:  otherHospital.ID,
		ScheduledAt: f.clock.Now(),
		CreatedAt:   f.clock.Now(),
	}
	require.NoError(t, f.db.Create(&appointment).Error)

	appointmentID := appointment.ID.String()
	_, err := f.svc.Create(context.Background(), billingdomain.CreateBillRequest{
		PatientID:     f.patientID,
		HospitalID:    f.hospitalID,
		AppointmentID: &appointmentID,
		Items:         standardItems(),
	})
	assert.ErrorIs(t, err, billingdomain.ErrAppointmentMismatch)
}

func TestUpdateBill_ReplacesItemsAndReprices(t *testing.T) {
	f := newBillingFixture(t)
	bill := f.createBill(t, standardItems(), 5000, 2000)

	updated, err := f.svc.Update(context.Background(), billingdomain.UpdateBillRequest{
		BillID:     bill.ID.String(),
		Version:    bill.Version,
		PatientID:  f.otherPatient,
		HospitalID: f.hospitalID,
		Items: []billingdomain.ItemInput{
			{ServiceType: "SURGERY", Description: "Appendectomy", Quantity: 1, UnitPrice: 90000},
		},
		DiscountAmount: 10000,
		TaxAmount:      3000,
		Notes:          "revised after review",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(90000), updated.TotalAmount)
	assert.Equal(t, int64(83000), updated.NetAmount)
	assert.Equal(t, int64(83000), updated.OutstandingAmount)
	assert.Equal(t, mustParse(t, f.otherPatient), updated.PatientID)
	assert.Equal(t, bill.Version+1, updated.Version)
	assert.Equal(t, "revised after review", updated.Notes)

	items, err := f.svc.ListItems(context.Background(), bill.ID.String())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "SURGERY", items[0].ServiceType)
}

func TestUpdateBill_StaleVersionFails(t *testing.T) {
	f := newBillingFixture(t)
	bill := f.createBill(t, standardItems(), 0, 0)

	req := billingdomain.UpdateBillRequest{
		BillID:     bill.ID.String(),
		Version:    bill.Version,
		PatientID:  f.patientID,
		HospitalID: f.hospitalID,
		Items:      standardItems(),
	}
	_, err := f.svc.Update(context.Background(), req)
	require.NoError(t, err)

	// Same version again: another writer already advanced it.
	_, err = f.svc.Update(context.Background(), req)
	assert.ErrorIs(t, err, billingdomain.ErrConcurrentModification)
}

func TestUpdateBill_RejectsNetBelowPaid(t *testing.T) {
	f := newBillingFixture(t)
	bill := f.createBill(t, standardItems(), 0, 0)

	// Simulate a recorded payment directly.
	require.NoError(t, f.db.Exec(
		`UPDATE bills SET paid_amount = ?, outstanding_amount = ?, status = ? WHERE id = ?`,
		int64(30000), bill.NetAmount-30000, billingdomain.BillStatusPartiallyPaid, bill.ID,
	).Error)

	_, err := f.svc.Update(context.Background(), billingdomain.UpdateBillRequest{
		BillID:     bill.ID.String(),
		Version:    bill.Version,
		PatientID:  f.patientID,
		HospitalID: f.hospitalID,
		Items: []billingdomain.ItemInput{
			{ServiceType: "CONSULTATION", Quantity: 1, UnitPrice: 10000},
		},
	})
	assert.ErrorIs(t, err, billingdomain.ErrInvalidAmount)

	reloaded, err := f.svc.GetByID(context.Background(), bill.ID.String())
	require.NoError(t, err)
	assert.Equal(t, int64(50000), reloaded.TotalAmount)
}

func TestUpdateBill_FrozenStatusRejected(t *testing.T) {
	f := newBillingFixture(t)
	bill := f.createBill(t, standardItems(), 0, 0)

	require.NoError(t, f.db.Exec(
		`UPDATE bills SET status = ? WHERE id = ?`, billingdomain.BillStatusCancelled, bill.ID,
	).Error)

	_, err := f.svc.Update(context.Background(), billingdomain.UpdateBillRequest{
		BillID:     bill.ID.String(),
		Version:    bill.Version,
		PatientID:  f.patientID,
		HospitalID: f.hospitalID,
		Items:      standardItems(),
	})
	assert.ErrorIs(t, err, billingdomain.ErrInvalidState)
}

func TestAddItem_RecomputesTotals(t *testing.T) {
	f := newBillingFixture(t)
	bill := f.createBill(t, standardItems(), 5000, 2000)

	updated, err := f.svc.AddItem(context.Background(), bill.ID.String(), bill.Version, billingdomain.ItemInput{
		ServiceType: "MEDICATION",
		Description: "Antibiotics",
		Quantity:    2,
		UnitPrice:   1500,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(53000), updated.TotalAmount)
	assert.Equal(t, int64(50000), updated.NetAmount)
	assert.Equal(t, int64(50000), updated.OutstandingAmount)
	assert.Equal(t, bill.Version+1, updated.Version)

	items, err := f.svc.ListItems(context.Background(), bill.ID.String())
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestRemoveItem_RecomputesTotals(t *testing.T) {
	f := newBillingFixture(t)
	bill := f.createBill(t, standardItems(), 0, 0)

	items, err := f.svc.ListItems(context.Background(), bill.ID.String())
	require.NoError(t, err)
	require.Len(t, items, 2)

	var removeID string
	for _, item := range items {
		if item.ServiceType == "LAB_TEST" {
			removeID = item.ID.String()
		}
	}
	require.NotEmpty(t, removeID)

	updated, err := f.svc.RemoveItem(context.Background(), bill.ID.String(), bill.Version, removeID)
	require.NoError(t, err)

	assert.Equal(t, int64(20000), updated.TotalAmount)
	assert.Equal(t, int64(20000), updated.NetAmount)
	assert.Equal(t, int64(20000), updated.OutstandingAmount)
}

func TestRemoveItem_UnknownItem(t *testing.T) {
	f := newBillingFixture(t)
	bill := f.createBill(t, standardItems(), 0, 0)

	_, err := f.svc.RemoveItem(context.Background(), bill.ID.String(), bill.Version, f.node.Generate().String())
	assert.ErrorIs(t, err, billingdomain.ErrItemNotFound)
}

func TestMarkSent_OnlyFromDraft(t *testing.T) {
	f := newBillingFixture(t)
	bill := f.createBill(t, standardItems(), 0, 0)

	sent, err := f.svc.MarkSent(context.Background(), bill.ID.String(), bill.Version)
	require.NoError(t, err)
	assert.Equal(t, billingdomain.BillStatusSent, sent.Status)

	_, err = f.svc.MarkSent(context.Background(), bill.ID.String(), sent.Version)
	assert.ErrorIs(t, err, billingdomain.ErrInvalidState)
}

func TestCancel_RejectedOncePaid(t *testing.T) {
	f := newBillingFixture(t)
	bill := f.createBill(t, standardItems(), 0, 0)

	require.NoError(t, f.db.Exec(
		`UPDATE bills SET paid_amount = ?, status = ? WHERE id = ?`,
		int64(100), billingdomain.BillStatusPartiallyPaid, bill.ID,
	).Error)

	_, err := f.svc.Cancel(context.Background(), bill.ID.String(), bill.Version)
	assert.ErrorIs(t, err, billingdomain.ErrInvalidState)
}

func TestCancel_UnpaidBill(t *testing.T) {
	f := newBillingFixture(t)
	bill := f.createBill(t, standardItems(), 0, 0)

	cancelled, err := f.svc.Cancel(context.Background(), bill.ID.String(), bill.Version)
	require.NoError(t, err)
	assert.Equal(t, billingdomain.BillStatusCancelled, cancelled.Status)
}

func TestDeactivate_HidesBillFromLookups(t *testing.T) {
	f := newBillingFixture(t)
	bill := f.createBill(t, standardItems(), 0, 0)

	require.NoError(t, f.db.Exec(`CREATE TABLE IF NOT EXISTS payments (id integer primary key, bill_id integer, active boolean)`).Error)

	require.NoError(t, f.svc.Deactivate(context.Background(), bill.ID.String(), bill.Version))

	bills, err := f.svc.ListByPatient(context.Background(), f.patientID)
	require.NoError(t, err)
	assert.Empty(t, bills)
}

func TestDeactivate_BlockedByActivePayments(t *testing.T) {
	f := newBillingFixture(t)
	bill := f.createBill(t, standardItems(), 0, 0)

	require.NoError(t, f.db.Exec(`CREATE TABLE IF NOT EXISTS payments (id integer primary key, bill_id integer, active boolean)`).Error)
	require.NoError(t, f.db.Exec(
		`INSERT INTO payments (id, bill_id, active) VALUES (?, ?, ?)`, 1, bill.ID, true,
	).Error)

	err := f.svc.Deactivate(context.Background(), bill.ID.String(), bill.Version)
	assert.ErrorIs(t, err, billingdomain.ErrHasDependents)
}

func TestListActive_CursorPagination(t *testing.T) {
	f := newBillingFixture(t)

	for i := 0; i < 5; i++ {
		f.createBill(t, standardItems(), 0, 0)
		f.clock.Advance(time.Second)
	}

	resp, err := f.svc.ListActive(context.Background(), billingdomain.ListBillsRequest{})
	require.NoError(t, err)
	assert.Len(t, resp.Bills, 5)
	assert.False(t, resp.HasMore)

	first, err := f.svc.ListActive(context.Background(), billingdomain.ListBillsRequest{
		Pagination: pageRequest(2, ""),
	})
	require.NoError(t, err)
	require.Len(t, first.Bills, 2)
	assert.True(t, first.HasMore)

	second, err := f.svc.ListActive(context.Background(), billingdomain.ListBillsRequest{
		Pagination: pageRequest(2, first.NextPageToken),
	})
	require.NoError(t, err)
	require.Len(t, second.Bills, 2)
	assert.NotEqual(t, first.Bills[0].ID, second.Bills[0].ID)
}

func TestListActive_BadToken(t *testing.T) {
	f := newBillingFixture(t)

	_, err := f.svc.ListActive(context.Background(), billingdomain.ListBillsRequest{
		Pagination: pageRequest(10, "not-base64!"),
	})
	assert.ErrorIs(t, err, billingdomain.ErrInvalidPageToken)
}

func TestGetByID_NotFound(t *testing.T) {
	f := newBillingFixture(t)

	_, err := f.svc.GetByID(context.Background(), f.node.Generate().String())
	assert.ErrorIs(t, err, billingdomain.ErrBillNotFound)
}

func pageRequest(size int, token string) pagination.Pagination {
	return pagination.Pagination{PageSize: size, PageToken: token}
}

func mustParse(t *testing.T, raw string) snowflake.ID {
	t.Helper()
	id, err := snowflake.ParseString(raw)
	require.NoError(t, err)
	return id
}
