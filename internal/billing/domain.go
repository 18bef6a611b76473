package billing

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Invoice statuses. An invoice moves issued -> partially_paid -> paid
// as payments arrive; the overdue sweep marks unpaid invoices past
// their due date. Void is terminal.
const (
	StatusIssued        = "issued"
	StatusPartiallyPaid = "partially_paid"
	StatusPaid          = "paid"
	StatusOverdue       = "overdue"
	StatusVoid          = "void"
)

// Invoice is a charge raised against a unit. Amounts are stored in
// minor units (paise, cents) to avoid float arithmetic.
type Invoice struct {
	ID          int64     `json:"id"`
	SocietyID   int64     `json:"society_id"`
	UnitLabel   string    `json:"unit_label"`
	Description string    `json:"description"`
	AmountMinor int64     `json:"amount_minor"`
	PaidMinor   int64     `json:"paid_minor"`
	Currency    string    `json:"currency"`
	Status      string    `json:"status"`
	DueDate     time.Time `json:"due_date"`
	IssuedAt    time.Time `json:"issued_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Outstanding returns the unpaid balance in minor units.
func (i Invoice) Outstanding() int64 {
	if i.PaidMinor >= i.AmountMinor {
		return 0
	}
	return i.AmountMinor - i.PaidMinor
}

// Payment records money received against an invoice.
type Payment struct {
	ID          int64     `json:"id"`
	InvoiceID   int64     `json:"invoice_id"`
	AmountMinor int64     `json:"amount_minor"`
	Method      string    `json:"method"`
	Reference   string    `json:"reference"`
	ReceivedAt  time.Time `json:"received_at"`
}

var displayPrinter = message.NewPrinter(language.English)

// FormatAmount renders a minor-unit amount for display, with digit
// grouping, e.g. FormatAmount(1234550, "INR") == "INR 12,345.50".
func FormatAmount(minor int64, currency string) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return displayPrinter.Sprintf("%s %s%d.%02d", currency, sign, minor/100, minor%100)
}
