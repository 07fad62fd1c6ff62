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
	paymentservice "github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/payment/service"
	refunddomain "github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/refund/domain"
)

type refundFixture struct {
	db       *gorm.DB
	node     *snowflake.Node
	bills    billingdomain.Service
	payments paymentdomain.Service
	svc      refunddomain.Service
	billID   string
}

// newRefundFixture seeds a bill with items totalling 500.00,
// discount 50.00, tax 20.00, net 470.00, in minor units.
func newRefundFixture(t *testing.T) *refundFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&billingdomain.Bill{},
		&billingdomain.BillItem{},
		&paymentdomain.Payment{},
		&refunddomain.Refund{},
		&directorydomain.Patient{},
		&directorydomain.Hospital{},
	))

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC))
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
	payments := paymentservice.NewService(paymentservice.ServiceParam{
		DB:         db,
		Log:        zap.NewNop(),
		GenID:      node,
		Clock:      fake,
		BillingCfg: holder,
	})
	svc := NewService(ServiceParam{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fake,
	})

	patient := directorydomain.Patient{ID: node.Generate(), FirstName: "Amina", LastName: "Rahman", Active: true, CreatedAt: fake.Now()}
	hospital := directorydomain.Hospital{ID: node.Generate(), Name: "City General", Active: true, CreatedAt: fake.Now()}
	require.NoError(t, db.Create(&patient).Error)
	require.NoError(t, db.Create(&hospital).Error)

	bill, err := bills.Create(context.Background(), billingdomain.CreateBillRequest{
		PatientID:  patient.ID.String(),
		HospitalID: hospital.ID.String(),
		Items: []billingdomain.ItemInput{
			{ServiceType: "SURGERY", Quantity: 1, UnitPrice: 50000},
		},
		DiscountAmount: 5000,
		TaxAmount:      2000,
	})
	require.NoError(t, err)
	require.Equal(t, int64(47000), bill.NetAmount)

	return &refundFixture{
		db:       db,
		node:     node,
		bills:    bills,
		payments: payments,
		svc:      svc,
		billID:   bill.ID.String(),
	}
}

func (f *refundFixture) pay(t *testing.T, amount int64) {
	t.Helper()
	_, err := f.payments.Process(context.Background(), paymentdomain.ProcessPaymentRequest{
		BillID: f.billID,
		Amount: amount,
		Method: "CASH",
	})
	require.NoError(t, err)
}

func (f *refundFixture) reloadBill(t *testing.T) billingdomain.Bill {
	t.Helper()
	bill, err := f.bills.GetByID(context.Background(), f.billID)
	require.NoError(t, err)
	return bill
}

func TestProcessRefund_FullRefundClosesBill(t *testing.T) {
	f := newRefundFixture(t)
	f.pay(t, 47000)
	require.Equal(t, billingdomain.BillStatusPaid, f.reloadBill(t).Status)

	refund, err := f.svc.Process(context.Background(), refunddomain.ProcessRefundRequest{
		BillID: f.billID,
		Amount: 47000,
		Reason: "procedure cancelled",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(47000), refund.Amount)

	bill := f.reloadBill(t)
	assert.Equal(t, billingdomain.BillStatusRefunded, bill.Status)
	assert.Equal(t, int64(0), bill.PaidAmount)
	assert.Equal(t, int64(47000), bill.OutstandingAmount)
}

func TestProcessRefund_PartialKeepsBillOpen(t *testing.T) {
	f := newRefundFixture(t)
	f.pay(t, 47000)

	_, err := f.svc.Process(context.Background(), refunddomain.ProcessRefundRequest{
		BillID: f.billID,
		Amount: 10000,
		Reason: "billing correction",
	})
	require.NoError(t, err)

	bill := f.reloadBill(t)
	assert.Equal(t, billingdomain.BillStatusPartiallyPaid, bill.Status)
	assert.Equal(t, int64(37000), bill.PaidAmount)
	assert.Equal(t, int64(10000), bill.OutstandingAmount)
}

func TestProcessRefund_BoundNeverMutates(t *testing.T) {
	f := newRefundFixture(t)
	f.pay(t, 10000)

	_, err := f.svc.Process(context.Background(), refunddomain.ProcessRefundRequest{
		BillID: f.billID,
		Amount: 10001,
		Reason: "overcharge",
	})
	assert.ErrorIs(t, err, refunddomain.ErrAmountExceedsPaid)

	bill := f.reloadBill(t)
	assert.Equal(t, int64(10000), bill.PaidAmount)

	refunds, err := f.svc.ListByBill(context.Background(), f.billID)
	require.NoError(t, err)
	assert.Empty(t, refunds)
}

func TestProcessRefund_RefundedBillIsTerminal(t *testing.T) {
	f := newRefundFixture(t)
	f.pay(t, 47000)

	_, err := f.svc.Process(context.Background(), refunddomain.ProcessRefundRequest{
		BillID: f.billID,
		Amount: 47000,
		Reason: "procedure cancelled",
	})
	require.NoError(t, err)

	_, err = f.svc.Process(context.Background(), refunddomain.ProcessRefundRequest{
		BillID: f.billID,
		Amount: 1,
		Reason: "again",
	})
	assert.ErrorIs(t, err, billingdomain.ErrInvalidState)
}

func TestProcessRefund_InvalidAmount(t *testing.T) {
	f := newRefundFixture(t)

	_, err := f.svc.Process(context.Background(), refunddomain.ProcessRefundRequest{
		BillID: f.billID,
		Amount: 0,
		Reason: "noop",
	})
	assert.ErrorIs(t, err, refunddomain.ErrInvalidAmount)
}
