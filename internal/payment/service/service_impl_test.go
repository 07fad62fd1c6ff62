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
	billingservice "github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/billing/service"
	"github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/clock"
	"github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/config"
	directorydomain "github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/directory/domain"
	directoryservice "github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/directory/service"
	paymentdomain "github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/payment/domain"
	"github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/pkg/db/pagination"
)

func pageRequest(size int, token string) pagination.Pagination {
	return pagination.Pagination{PageSize: size, PageToken: token}
}

type paymentFixture struct {
	db     *gorm.DB
	node   *snowflake.Node
	clock  *clock.FakeClock
	bills  billingdomain.Service
	svc    paymentdomain.Service
	billID string
}

// newPaymentFixture seeds one bill with net 47000 (total 50000, discount
// 5000, tax 2000) owned by a real patient and hospital.
func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&billingdomain.Bill{},
		&billingdomain.BillItem{},
		&paymentdomain.Payment{},
		&directorydomain.Patient{},
		&directorydomain.Hospital{},
	))

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC))
	holder := config.NewStaticBillingConfigHolder(config.DefaultBillingConfig())

	directorySvc := directoryservice.NewService(directoryservice.Params{DB: db, Log: zap.NewNop()})

	bills := billingservice.NewService(billingservice.ServiceParam{
		DB:           db,
		Log:          zap.NewNop(),
		GenID:        node,
		Clock:        fake,
		BillingCfg:   holder,
		DirectorySvc: directorySvc,
	})

	svc := NewService(ServiceParam{
		DB:         db,
		Log:        zap.NewNop(),
		GenID:      node,
		Clock:      fake,
		BillingCfg: holder,
	})

	patient := directorydomain.Patient{ID: node.Generate(), FirstName: "Amina", LastName: "Rahman", Active: true, CreatedAt: fake.Now()}
	hospital := directorydomain.Hospital{ID: node.Generate(), Name: "City General", Active: true, CreatedAt: fake.Now()}
	require.NoError(t, db.Create(&patient).Error)
	require.NoError(t, db.Create(&hospital).Error)

	bill, err := bills.Create(context.Background(), billingdomain.CreateBillRequest{
		PatientID:  patient.ID.String(),
		HospitalID: hospital.ID.String(),
		Items: []billingdomain.ItemInput{
			{ServiceType: "CONSULTATION", Quantity: 1, UnitPrice: 20000},
			{ServiceType: "LAB_TEST", Quantity: 3, UnitPrice: 10000},
		},
		DiscountAmount: 5000,
		TaxAmount:      2000,
	})
	require.NoError(t, err)
	require.Equal(t, int64(47000), bill.NetAmount)

	return &paymentFixture{
		db:     db,
		node:   node,
		clock:  fake,
		bills:  bills,
		svc:    svc,
		billID: bill.ID.String(),
	}
}

func (f *paymentFixture) reloadBill(t *testing.T) billingdomain.Bill {
	t.Helper()
	bill, err := f.bills.GetByID(context.Background(), f.billID)
	require.NoError(t, err)
	return bill
}

func TestProcessPayment_PartialThenFull(t *testing.T) {
	f := newPaymentFixture(t)

	first, err := f.svc.Process(context.Background(), paymentdomain.ProcessPaymentRequest{
		BillID: f.billID,
		Amount: 20000,
		Method: "CASH",
	})
	require.NoError(t, err)
	assert.True(t, first.Active)
	assert.NotEmpty(t, first.ReferenceNo)

	bill := f.reloadBill(t)
	assert.Equal(t, int64(20000), bill.PaidAmount)
	assert.Equal(t, int64(27000), bill.OutstandingAmount)
	assert.Equal(t, billingdomain.BillStatusPartiallyPaid, bill.Status)

	_, err = f.svc.Process(context.Background(), paymentdomain.ProcessPaymentRequest{
		BillID:      f.billID,
		Amount:      27000,
		Method:      "CARD",
		ReferenceNo: "TXN-42",
	})
	require.NoError(t, err)

	bill = f.reloadBill(t)
	assert.Equal(t, int64(47000), bill.PaidAmount)
	assert.Equal(t, int64(0), bill.OutstandingAmount)
	assert.Equal(t, billingdomain.BillStatusPaid, bill.Status)
}

func TestProcessPayment_BoundNeverMutates(t *testing.T) {
	f := newPaymentFixture(t)

	_, err := f.svc.Process(context.Background(), paymentdomain.ProcessPaymentRequest{
		BillID: f.billID,
		Amount: 47001,
		Method: "CASH",
	})
	assert.ErrorIs(t, err, paymentdomain.ErrAmountExceedsOutstanding)

	bill := f.reloadBill(t)
	assert.Equal(t, int64(0), bill.PaidAmount)
	assert.Equal(t, int64(47000), bill.OutstandingAmount)

	payments, err := f.svc.ListByBill(context.Background(), f.billID)
	require.NoError(t, err)
	assert.Empty(t, payments)
}

func TestProcessPayment_RejectsInvalidInput(t *testing.T) {
	f := newPaymentFixture(t)

	_, err := f.svc.Process(context.Background(), paymentdomain.ProcessPaymentRequest{
		BillID: f.billID, Amount: 0, Method: "CASH",
	})
	assert.ErrorIs(t, err, paymentdomain.ErrInvalidAmount)

	_, err = f.svc.Process(context.Background(), paymentdomain.ProcessPaymentRequest{
		BillID: f.billID, Amount: 100, Method: "  ",
	})
	assert.ErrorIs(t, err, paymentdomain.ErrInvalidAmount)
}

func TestProcessPayment_UnknownBill(t *testing.T) {
	f := newPaymentFixture(t)

	_, err := f.svc.Process(context.Background(), paymentdomain.ProcessPaymentRequest{
		BillID: f.node.Generate().String(),
		Amount: 100,
		Method: "CASH",
	})
	assert.ErrorIs(t, err, billingdomain.ErrBillNotFound)
}

func TestVoidPayment_RoundTrip(t *testing.T) {
	f := newPaymentFixture(t)

	payment, err := f.svc.Process(context.Background(), paymentdomain.ProcessPaymentRequest{
		BillID: f.billID,
		Amount: 47000,
		Method: "CARD",
	})
	require.NoError(t, err)
	require.Equal(t, billingdomain.BillStatusPaid, f.reloadBill(t).Status)

	voided, err := f.svc.Void(context.Background(), payment.ID.String())
	require.NoError(t, err)
	assert.False(t, voided.Active)

	bill := f.reloadBill(t)
	assert.Equal(t, int64(0), bill.PaidAmount)
	assert.Equal(t, int64(47000), bill.OutstandingAmount)
	assert.Equal(t, billingdomain.BillStatusDraft, bill.Status)
}

func TestVoidPayment_AlreadyVoided(t *testing.T) {
	f := newPaymentFixture(t)

	payment, err := f.svc.Process(context.Background(), paymentdomain.ProcessPaymentRequest{
		BillID: f.billID,
		Amount: 1000,
		Method: "CASH",
	})
	require.NoError(t, err)

	_, err = f.svc.Void(context.Background(), payment.ID.String())
	require.NoError(t, err)

	_, err = f.svc.Void(context.Background(), payment.ID.String())
	assert.ErrorIs(t, err, paymentdomain.ErrAlreadyVoided)
}

func TestVoidPayment_NeverDrivesPaidNegative(t *testing.T) {
	f := newPaymentFixture(t)

	payment, err := f.svc.Process(context.Background(), paymentdomain.ProcessPaymentRequest{
		BillID: f.billID,
		Amount: 30000,
		Method: "CASH",
	})
	require.NoError(t, err)

	// A refund has since consumed most of the paid balance.
	require.NoError(t, f.db.Exec(
		`UPDATE bills SET paid_amount = ?, outstanding_amount = ?, version = version + 1 WHERE id = ?`,
		int64(10000), int64(37000), payment.BillID,
	).Error)

	_, err = f.svc.Void(context.Background(), payment.ID.String())
	require.NoError(t, err)

	bill := f.reloadBill(t)
	assert.Equal(t, int64(0), bill.PaidAmount)
	assert.Equal(t, int64(47000), bill.OutstandingAmount)
}

func TestProcessPayment_SerializedOverOutstanding(t *testing.T) {
	f := newPaymentFixture(t)

	// Two payments individually valid against the initial outstanding but
	// jointly exceeding it. The second must observe the first's write and
	// fail the bound, never producing a negative outstanding.
	_, err := f.svc.Process(context.Background(), paymentdomain.ProcessPaymentRequest{
		BillID: f.billID,
		Amount: 30000,
		Method: "CASH",
	})
	require.NoError(t, err)

	_, err = f.svc.Process(context.Background(), paymentdomain.ProcessPaymentRequest{
		BillID: f.billID,
		Amount: 30000,
		Method: "CASH",
	})
	assert.ErrorIs(t, err, paymentdomain.ErrAmountExceedsOutstanding)

	bill := f.reloadBill(t)
	assert.GreaterOrEqual(t, bill.OutstandingAmount, int64(0))
	assert.Equal(t, int64(30000), bill.PaidAmount)
}

func TestProcessPayment_TerminalBillRejected(t *testing.T) {
	f := newPaymentFixture(t)

	require.NoError(t, f.db.Exec(
		`UPDATE bills SET status = ?`, billingdomain.BillStatusCancelled,
	).Error)

	_, err := f.svc.Process(context.Background(), paymentdomain.ProcessPaymentRequest{
		BillID: f.billID,
		Amount: 100,
		Method: "CASH",
	})
	assert.ErrorIs(t, err, billingdomain.ErrInvalidState)
}

func TestListByBillPaged(t *testing.T) {
	f := newPaymentFixture(t)

	for i := 0; i < 5; i++ {
		_, err := f.svc.Process(context.Background(), paymentdomain.ProcessPaymentRequest{
			BillID: f.billID,
			Amount: 1000,
			Method: "CASH",
		})
		require.NoError(t, err)
		f.clock.Advance(time.Second)
	}

	first, err := f.svc.ListByBillPaged(context.Background(), paymentdomain.ListPaymentsRequest{
		BillID:     f.billID,
		Pagination: pageRequest(3, ""),
	})
	require.NoError(t, err)
	require.Len(t, first.Payments, 3)
	assert.True(t, first.HasMore)

	rest, err := f.svc.ListByBillPaged(context.Background(), paymentdomain.ListPaymentsRequest{
		BillID:     f.billID,
		Pagination: pageRequest(3, first.NextPageToken),
	})
	require.NoError(t, err)
	assert.Len(t, rest.Payments, 2)
	assert.False(t, rest.HasMore)
}

func TestListByPatientAndHospital(t *testing.T) {
	f := newPaymentFixture(t)

	payment, err := f.svc.Process(context.Background(), paymentdomain.ProcessPaymentRequest{
		BillID: f.billID,
		Amount: 500,
		Method: "CASH",
	})
	require.NoError(t, err)

	byPatient, err := f.svc.ListByPatient(context.Background(), payment.PatientID.String())
	require.NoError(t, err)
	assert.Len(t, byPatient, 1)

	byHospital, err := f.svc.ListByHospital(context.Background(), payment.HospitalID.String())
	require.NoError(t, err)
	assert.Len(t, byHospital, 1)
}
