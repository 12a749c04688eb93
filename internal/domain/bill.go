package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bill statuses as reported by the platform.
const (
	BillPending   = "pending"
	BillPaid      = "paid"
	BillPartial   = "partial"
	BillOverdue   = "overdue"
	BillCancelled = "cancelled"
)

// Bill is one billing-period invoice for a subscription. All amounts are
// computed server-side; the console only displays them.
type Bill struct {
	ID              int64           `json:"id"`
	BillNumber      string          `json:"bill_number"`
	Subscription    int64           `json:"subscription"`
	CustomerName    string          `json:"customer_name"`
	PackageName     string          `json:"package_name"`
	BillingMonth    int             `json:"billing_month"`
	BillingYear     int             `json:"billing_year"`
	BillingDate     string          `json:"billing_date"`
	PackagePrice    decimal.Decimal `json:"package_price"`
	Discount        decimal.Decimal `json:"discount"`
	OtherCharges    decimal.Decimal `json:"other_charges"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	DueAmount       decimal.Decimal `json:"due_amount"`
	Status          string          `json:"status"`
	StatusDisplay   string          `json:"status_display"`
	Notes           string          `json:"notes"`
	IsAutoGenerated bool            `json:"is_auto_generated"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// BillParams is the manual bill creation/update payload.
type BillParams struct {
	Subscription int64  `json:"subscription"`
	BillingMonth int    `json:"billing_month"`
	BillingYear  int    `json:"billing_year"`
	BillingDate  string `json:"billing_date"`
	PackagePrice string `json:"package_price,omitempty"`
	Discount     string `json:"discount,omitempty"`
	OtherCharges string `json:"other_charges,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// GenerateBillsParams triggers the monthly bill run on the platform.
type GenerateBillsParams struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// GenerateBillsResult is the platform's summary of a monthly bill run.
type GenerateBillsResult struct {
	Generated int    `json:"generated"`
	Skipped   int    `json:"skipped"`
	Message   string `json:"message"`
}

// AddPaymentParams records a payment against a bill.
type AddPaymentParams struct {
	Amount        string `json:"amount"`
	PaymentMethod string `json:"payment_method"`
	TransactionID string `json:"transaction_id,omitempty"`
	Notes         string `json:"notes,omitempty"`
	PaymentDate   string `json:"payment_date"`
}
