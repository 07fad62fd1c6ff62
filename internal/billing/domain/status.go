package domain

// DeriveStatus computes the bill status from its amounts. It is the single
// authority for status: every write path funnels through it after changing
// paid or net amounts.
//
// CANCELLED and REFUNDED are sticky; they are entered explicitly and never
// overwritten here. While nothing is paid, the unpaid states DRAFT, SENT,
// and OVERDUE are preserved as-is.
func DeriveStatus(current BillStatus, paid, net int64) BillStatus {
	if current.Terminal() {
		return current
	}

	switch {
	case paid == 0:
		switch current {
		case BillStatusDraft, BillStatusSent, BillStatusOverdue:
			return current
		default:
			return BillStatusDraft
		}
	case paid < net:
		return BillStatusPartiallyPaid
	default:
		return BillStatusPaid
	}
}
