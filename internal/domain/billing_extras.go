package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is the printable artifact of a bill. The PDF lives on the
// platform; the console only links to it.
type Invoice struct {
	ID            int64     `json:"id"`
	InvoiceNumber string    `json:"invoice_number"`
	Bill          int64     `json:"bill"`
	BillNumber    string    `json:"bill_number"`
	CustomerName  string    `json:"customer_name"`
	IssueDate     string    `json:"issue_date"`
	PDFFile       string    `json:"pdf_file"`
	CreatedAt     time.Time `json:"created_at"`
}

// InvoiceParams creates an invoice for a bill.
type InvoiceParams struct {
	Bill      int64  `json:"bill"`
	IssueDate string `json:"issue_date"`
}

// Discount is a recurring or one-off price reduction.
type Discount struct {
	ID            int64           `json:"id"`
	Customer      int64           `json:"customer"`
	CustomerName  string          `json:"customer_name"`
	DiscountType  string          `json:"discount_type"`
	Amount        decimal.Decimal `json:"amount"`
	Percentage    decimal.Decimal `json:"percentage"`
	Reason        string          `json:"reason"`
	ValidFrom     string          `json:"valid_from"`
	ValidUntil    string          `json:"valid_until"`
	Status        string          `json:"status"`
	StatusDisplay string          `json:"status_display"`
	CreatedAt     time.Time       `json:"created_at"`
}

// DiscountParams is the create/update payload for a discount.
type DiscountParams struct {
	Customer     int64  `json:"customer"`
	DiscountType string `json:"discount_type"`
	Amount       string `json:"amount,omitempty"`
	Percentage   string `json:"percentage,omitempty"`
	Reason       string `json:"reason"`
	ValidFrom    string `json:"valid_from,omitempty"`
	ValidUntil   string `json:"valid_until,omitempty"`
	Status       string `json:"status,omitempty"`
}

// Refund statuses as reported by the platform.
const (
	RefundPending   = "pending"
	RefundApproved  = "approved"
	RefundRejected  = "rejected"
	RefundCompleted = "completed"
)

// Refund is a money-return request with an approval workflow. All state
// transitions happen on the platform via the action endpoints.
type Refund struct {
	ID              int64           `json:"id"`
	RefundNumber    string          `json:"refund_number"`
	Customer        int64           `json:"customer"`
	CustomerName    string          `json:"customer_name"`
	Amount          decimal.Decimal `json:"amount"`
	RefundMethod    string          `json:"refund_method"`
	RefundDate      *time.Time      `json:"refund_date"`
	Status          string          `json:"status"`
	StatusDisplay   string          `json:"status_display"`
	RequestReason   string          `json:"request_reason"`
	ApprovalNotes   string          `json:"approval_notes"`
	RejectionReason string          `json:"rejection_reason"`
	TransactionID   string          `json:"transaction_id"`
	RequestedByName string          `json:"requested_by_name"`
	ApprovedByName  string          `json:"approved_by_name"`
	CreatedAt       time.Time       `json:"created_at"`
}

// RefundParams is the create payload for a refund request.
type RefundParams struct {
	Customer      int64  `json:"customer"`
	Amount        string `json:"amount"`
	RefundMethod  string `json:"refund_method"`
	RequestReason string `json:"request_reason"`
}

// ConnectionFee is a one-time charge attached to a subscription.
type ConnectionFee struct {
	ID            int64           `json:"id"`
	Subscription  int64           `json:"subscription"`
	CustomerName  string          `json:"customer_name"`
	FeeType       string          `json:"fee_type"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	Status        string          `json:"status"`
	StatusDisplay string          `json:"status_display"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ConnectionFeeParams is the create payload for a connection fee.
type ConnectionFeeParams struct {
	Subscription int64  `json:"subscription"`
	FeeType      string `json:"fee_type"`
	Amount       string `json:"amount"`
	Description  string `json:"description,omitempty"`
}
