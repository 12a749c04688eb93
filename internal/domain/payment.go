package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment methods accepted by the platform.
var PaymentMethods = []string{"cash", "bkash", "nagad", "rocket", "bank", "card", "other"}

// Payment is a recorded payment against a bill.
type Payment struct {
	ID                   int64           `json:"id"`
	PaymentNumber        string          `json:"payment_number"`
	Bill                 int64           `json:"bill"`
	BillNumber           string          `json:"bill_number"`
	Amount               decimal.Decimal `json:"amount"`
	PaymentMethod        string          `json:"payment_method"`
	PaymentMethodDisplay string          `json:"payment_method_display"`
	PaymentDate          time.Time       `json:"payment_date"`
	TransactionID        string          `json:"transaction_id"`
	ReferenceNumber      string          `json:"reference_number"`
	Status               string          `json:"status"`
	StatusDisplay        string          `json:"status_display"`
	Notes                string          `json:"notes"`
	ReceivedByName       string          `json:"received_by_name"`
	CreatedAt            time.Time       `json:"created_at"`
}

// AdvancePayment is a customer credit recorded ahead of billing.
type AdvancePayment struct {
	ID                   int64           `json:"id"`
	AdvanceNumber        string          `json:"advance_number"`
	Customer             int64           `json:"customer"`
	CustomerName         string          `json:"customer_name"`
	Amount               decimal.Decimal `json:"amount"`
	RemainingAmount      decimal.Decimal `json:"remaining_amount"`
	PaymentMethod        string          `json:"payment_method"`
	PaymentMethodDisplay string          `json:"payment_method_display"`
	PaymentDate          time.Time       `json:"payment_date"`
	TransactionID        string          `json:"transaction_id"`
	Notes                string          `json:"notes"`
	ReceivedByName       string          `json:"received_by_name"`
	CreatedAt            time.Time       `json:"created_at"`
}

// AdvancePaymentParams is the create payload for an advance payment.
type AdvancePaymentParams struct {
	Customer      int64  `json:"customer"`
	Amount        string `json:"amount"`
	PaymentMethod string `json:"payment_method"`
	PaymentDate   string `json:"payment_date"`
	TransactionID string `json:"transaction_id,omitempty"`
	Notes         string `json:"notes,omitempty"`
}
