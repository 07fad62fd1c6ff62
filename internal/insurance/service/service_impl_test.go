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
	insurancedomain "github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/insurance/domain"
)

type insuranceFixture struct {
	db       *gorm.DB
	node     *snowflake.Node
	clock    *clock.FakeClock
	bills    billingdomain.Service
	svc      insurancedomain.Service
	billID   string
	policyID string
	patient  snowflake.ID
}

// newInsuranceFixture seeds a bill with net 47000 and a policy valid for
// all of 2026.
func newInsuranceFixture(t *testing.T) *insuranceFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&billingdomain.Bill{},
		&billingdomain.BillItem{},
		&insurancedomain.InsurancePolicy{},
		&insurancedomain.InsuranceClaim{},
		&insurancedomain.InsuranceSettlement{},
		&directorydomain.Patient{},
		&directorydomain.Hospital{},
	))

	node, err := snowflake.NewNode(4)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC))
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

	policy := insurancedomain.InsurancePolicy{
		ID:           node.Generate(),
		PolicyNumber: "POL-2026-0001",
		Provider:     "MetLife",
		HolderName:   "Amina Rahman",
		ValidFrom:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		ValidTo:      time.Date(2026, 12, 31, 23, 59, 59, 0, time.UTC),
		Active:       true,
		CreatedAt:    fake.Now(),
	}
	require.NoError(t, db.Create(&policy).Error)

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

	return &insuranceFixture{
		db:       db,
		node:     node,
		clock:    fake,
		bills:    bills,
		svc:      svc,
		billID:   bill.ID.String(),
		policyID: policy.ID.String(),
		patient:  patient.ID,
	}
}

func (f *insuranceFixture) createClaim(t *testing.T, amount int64) insurancedomain.InsuranceClaim {
	t.Helper()
	claim, err := f.svc.CreateClaim(context.Background(), insurancedomain.CreateClaimRequest{
		BillID:      f.billID,
		PolicyID:    f.policyID,
		ClaimAmount: amount,
	})
	require.NoError(t, err)
	return claim
}

func (f *insuranceFixture) reloadBill(t *testing.T) billingdomain.Bill {
	t.Helper()
	bill, err := f.bills.GetByID(context.Background(), f.billID)
	require.NoError(t, err)
	return bill
}

func TestCreateClaim(t *testing.T) {
	f := newInsuranceFixture(t)

	claim := f.createClaim(t, 30000)
	assert.Equal(t, insurancedomain.ClaimStatusSubmitted, claim.Status)
	assert.Equal(t, f.clock.Now(), claim.SubmittedAt)
	assert.Nil(t, claim.SettledAt)
}

func TestCreateClaim_DuplicateBlocked(t *testing.T) {
	f := newInsuranceFixture(t)
	f.createClaim(t, 30000)

	_, err := f.svc.CreateClaim(context.Background(), insurancedomain.CreateClaimRequest{
		BillID:      f.billID,
		PolicyID:    f.policyID,
		ClaimAmount: 10000,
	})
	assert.ErrorIs(t, err, insurancedomain.ErrDuplicateClaim)
}

func TestCreateClaim_RejectedClaimDoesNotBlock(t *testing.T) {
	f := newInsuranceFixture(t)
	claim := f.createClaim(t, 30000)

	_, err := f.svc.UpdateClaimStatus(context.Background(), claim.ID.String(), insurancedomain.ClaimStatusRejected)
	require.NoError(t, err)

	f.createClaim(t, 20000)
}

func TestCreateClaim_PolicyWindowEnforced(t *testing.T) {
	f := newInsuranceFixture(t)

	f.clock.Advance(366 * 24 * time.Hour) // past 2026

	_, err := f.svc.CreateClaim(context.Background(), insurancedomain.CreateClaimRequest{
		BillID:      f.billID,
		PolicyID:    f.policyID,
		ClaimAmount: 10000,
	})
	assert.ErrorIs(t, err, insurancedomain.ErrPolicyNotEffective)
}

func TestCreateClaim_ExceedsNet(t *testing.T) {
	f := newInsuranceFixture(t)

	_, err := f.svc.CreateClaim(context.Background(), insurancedomain.CreateClaimRequest{
		BillID:      f.billID,
		PolicyID:    f.policyID,
		ClaimAmount: 47001,
	})
	assert.ErrorIs(t, err, insurancedomain.ErrAmountExceedsNet)
}

func TestCreateClaim_UnknownPolicy(t *testing.T) {
	f := newInsuranceFixture(t)

	_, err := f.svc.CreateClaim(context.Background(), insurancedomain.CreateClaimRequest{
		BillID:      f.billID,
		PolicyID:    f.node.Generate().String(),
		ClaimAmount: 10000,
	})
	assert.ErrorIs(t, err, insurancedomain.ErrPolicyNotFound)
}

func TestUpdateClaimStatus_ForwardOnly(t *testing.T) {
	f := newInsuranceFixture(t)
	claim := f.createClaim(t, 30000)

	updated, err := f.svc.UpdateClaimStatus(context.Background(), claim.ID.String(), insurancedomain.ClaimStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, insurancedomain.ClaimStatusApproved, updated.Status)

	// Backwards is rejected.
	_, err = f.svc.UpdateClaimStatus(context.Background(), claim.ID.String(), insurancedomain.ClaimStatusPending)
	assert.ErrorIs(t, err, billingdomain.ErrInvalidState)
}

func TestUpdateClaimStatus_TerminalFrozen(t *testing.T) {
	f := newInsuranceFixture(t)
	claim := f.createClaim(t, 30000)

	_, err := f.svc.UpdateClaimStatus(context.Background(), claim.ID.String(), insurancedomain.ClaimStatusCancelled)
	require.NoError(t, err)

	_, err = f.svc.UpdateClaimStatus(context.Background(), claim.ID.String(), insurancedomain.ClaimStatusApproved)
	assert.ErrorIs(t, err, billingdomain.ErrInvalidState)
}

func TestUpdateClaimStatus_SettledStampsTime(t *testing.T) {
	f := newInsuranceFixture(t)
	claim := f.createClaim(t, 30000)

	updated, err := f.svc.UpdateClaimStatus(context.Background(), claim.ID.String(), insurancedomain.ClaimStatusSettled)
	require.NoError(t, err)
	require.NotNil(t, updated.SettledAt)
	assert.Equal(t, f.clock.Now(), *updated.SettledAt)
}

func TestCreateSettlement_AppliesToBillLikePayment(t *testing.T) {
	f := newInsuranceFixture(t)
	claim := f.createClaim(t, 30000)

	settlement, err := f.svc.CreateSettlement(context.Background(), insurancedomain.CreateSettlementRequest{
		ClaimID:       claim.ID.String(),
		AmountSettled: 30000,
		Remarks:       "approved payout",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(30000), settlement.AmountSettled)

	settled, err := f.svc.GetClaim(context.Background(), claim.ID.String())
	require.NoError(t, err)
	assert.Equal(t, insurancedomain.ClaimStatusSettled, settled.Status)
	require.NotNil(t, settled.SettledAt)

	bill := f.reloadBill(t)
	assert.Equal(t, int64(30000), bill.PaidAmount)
	assert.Equal(t, int64(17000), bill.OutstandingAmount)
	assert.Equal(t, billingdomain.BillStatusPartiallyPaid, bill.Status)
}

func TestCreateSettlement_ExceedsClaim(t *testing.T) {
	f := newInsuranceFixture(t)
	claim := f.createClaim(t, 30000)

	_, err := f.svc.CreateSettlement(context.Background(), insurancedomain.CreateSettlementRequest{
		ClaimID:       claim.ID.String(),
		AmountSettled: 30001,
	})
	assert.ErrorIs(t, err, insurancedomain.ErrAmountExceedsClaim)

	bill := f.reloadBill(t)
	assert.Equal(t, int64(0), bill.PaidAmount)
}

func TestCreateSettlement_SettledClaimFrozen(t *testing.T) {
	f := newInsuranceFixture(t)
	claim := f.createClaim(t, 30000)

	_, err := f.svc.CreateSettlement(context.Background(), insurancedomain.CreateSettlementRequest{
		ClaimID:       claim.ID.String(),
		AmountSettled: 30000,
	})
	require.NoError(t, err)

	_, err = f.svc.CreateSettlement(context.Background(), insurancedomain.CreateSettlementRequest{
		ClaimID:       claim.ID.String(),
		AmountSettled: 1000,
	})
	assert.ErrorIs(t, err, billingdomain.ErrInvalidState)
}

func TestCreateSettlement_BoundedByOutstanding(t *testing.T) {
	f := newInsuranceFixture(t)
	claim := f.createClaim(t, 47000)

	// Direct payments have since covered most of the bill.
	require.NoError(t, f.db.Exec(
		`UPDATE bills SET paid_amount = ?, outstanding_amount = ?, status = ?, version = version + 1`,
		int64(40000), int64(7000), billingdomain.BillStatusPartiallyPaid,
	).Error)

	_, err := f.svc.CreateSettlement(context.Background(), insurancedomain.CreateSettlementRequest{
		ClaimID:       claim.ID.String(),
		AmountSettled: 10000,
	})
	assert.ErrorIs(t, err, insurancedomain.ErrAmountExceedsOutstanding)
}

func TestListClaims(t *testing.T) {
	f := newInsuranceFixture(t)
	claim := f.createClaim(t, 30000)

	byStatus, err := f.svc.ListClaimsByStatus(context.Background(), insurancedomain.ClaimStatusSubmitted)
	require.NoError(t, err)
	assert.Len(t, byStatus, 1)

	byPatient, err := f.svc.ListClaimsByPatient(context.Background(), f.patient.String())
	require.NoError(t, err)
	require.Len(t, byPatient, 1)
	assert.Equal(t, claim.ID, byPatient[0].ID)

	byPolicy, err := f.svc.ListClaimsByPolicy(context.Background(), f.policyID)
	require.NoError(t, err)
	assert.Len(t, byPolicy, 1)
}

func TestListSettlementsByClaim(t *testing.T) {
	f := newInsuranceFixture(t)
	claim := f.createClaim(t, 30000)

	_, err := f.svc.CreateSettlement(context.Background(), insurancedomain.CreateSettlementRequest{
		ClaimID:       claim.ID.String(),
		AmountSettled: 30000,
	})
	require.NoError(t, err)

	settlements, err := f.svc.ListSettlementsByClaim(context.Background(), claim.ID.String())
	require.NoError(t, err)
	assert.Len(t, settlements, 1)
}
