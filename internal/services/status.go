package services

import "github.com/shopspring/decimal"

// Payment status values as persisted. The historical data set stores the
// Arabic labels, so they stay the canonical stored form.
const (
	StatusPaid          = "مدفوعة"
	StatusPartiallyPaid = "مدفوعة جزئياً"
	StatusUnpaid        = "غير مدفوعة"
)

var statusEnglish = map[string]string{
	StatusPaid:          "Paid",
	StatusPartiallyPaid: "Partially Paid",
	StatusUnpaid:        "Unpaid",
}

// PaymentStatus classifies an invoice from its total and paid amounts.
// paid >= total is fully paid, 0 < paid < total is partially paid,
// paid <= 0 is unpaid. Both boundaries are exact.
func PaymentStatus(total, paid decimal.Decimal) string {
	switch {
	case paid.GreaterThanOrEqual(total):
		return StatusPaid
	case paid.Sign() > 0:
		return StatusPartiallyPaid
	default:
		return StatusUnpaid
	}
}

// StatusLabel translates a stored status into English; unknown values pass through.
func StatusLabel(status string) string {
	if en, ok := statusEnglish[status]; ok {
		return en
	}
	return status
}

// UnpaidAmount is max(0, total - paid).
func UnpaidAmount(total, paid decimal.Decimal) decimal.Decimal {
	unpaid := total.Sub(paid)
	if unpaid.Sign() < 0 {
		return decimal.Zero
	}
	return unpaid
}
