package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name    string
		current BillStatus
		paid    int64
		net     int64
		want    BillStatus
	}{
		{"unpaid draft stays draft", BillStatusDraft, 0, 10000, BillStatusDraft},
		{"unpaid sent stays sent", BillStatusSent, 0, 10000, BillStatusSent},
		{"unpaid overdue stays overdue", BillStatusOverdue, 0, 10000, BillStatusOverdue},
		{"unpaid partial falls back to draft", BillStatusPartiallyPaid, 0, 10000, BillStatusDraft},
		{"partial payment", BillStatusSent, 4000, 10000, BillStatusPartiallyPaid},
		{"full payment", BillStatusSent, 10000, 10000, BillStatusPaid},
		{"overpaid clamps to paid", BillStatusSent, 12000, 10000, BillStatusPaid},
		{"zero net with payment is paid", BillStatusSent, 100, 0, BillStatusPaid},
		{"cancelled is sticky", BillStatusCancelled, 4000, 10000, BillStatusCancelled},
		{"refunded is sticky", BillStatusRefunded, 0, 10000, BillStatusRefunded},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DeriveStatus(tc.current, tc.paid, tc.net))
		})
	}
}

func TestBillStatusFrozen(t *testing.T) {
	assert.True(t, BillStatusPaid.Frozen())
	assert.True(t, BillStatusCancelled.Frozen())
	assert.True(t, BillStatusRefunded.Frozen())
	assert.False(t, BillStatusDraft.Frozen())
	assert.False(t, BillStatusPartiallyPaid.Frozen())
	assert.False(t, BillStatusOverdue.Frozen())
}
