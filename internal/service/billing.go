package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dhakanet/ispconsole/internal/api"
	"github.com/dhakanet/ispconsole/internal/domain"
)

// InvoiceService wraps the platform's invoice endpoints.
type InvoiceService interface {
	List(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.Invoice], error)
	Get(ctx context.Context, id int64) (*domain.Invoice, error)
	Create(ctx context.Context, params domain.InvoiceParams) (*domain.Invoice, error)
	Update(ctx context.Context, id int64, params domain.InvoiceParams) (*domain.Invoice, error)
	Delete(ctx context.Context, id int64) error
}

type invoiceService struct {
	client *api.Client
	logger *slog.Logger
}

// NewInvoiceService creates an InvoiceService backed by the platform API.
func NewInvoiceService(client *api.Client, logger *slog.Logger) InvoiceService {
	return &invoiceService{client: client, logger: logger}
}

func (s *invoiceService) List(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.Invoice], error) {
	var out domain.Page[domain.Invoice]
	if err := s.client.Get(ctx, "invoices.list", "/invoices/", api.ListQueryValues(q), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *invoiceService) Get(ctx context.Context, id int64) (*domain.Invoice, error) {
	var out domain.Invoice
	if err := s.client.Get(ctx, "invoices.get", fmt.Sprintf("/invoices/%d/", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *invoiceService) Create(ctx context.Context, params domain.InvoiceParams) (*domain.Invoice, error) {
	var out domain.Invoice
	if err := s.client.Post(ctx, "invoices.create", "/invoices/", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *invoiceService) Update(ctx context.Context, id int64, params domain.InvoiceParams) (*domain.Invoice, error) {
	var out domain.Invoice
	if err := s.client.Patch(ctx, "invoices.update", fmt.Sprintf("/invoices/%d/", id), params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *invoiceService) Delete(ctx context.Context, id int64) error {
	return s.client.Delete(ctx, "invoices.delete", fmt.Sprintf("/invoices/%d/", id))
}

// DiscountService wraps the platform's discount endpoints. Discount
// updates are full replacements (PUT), unlike every other resource.
type DiscountService interface {
	List(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.Discount], error)
	Get(ctx context.Context, id int64) (*domain.Discount, error)
	Create(ctx context.Context, params domain.DiscountParams) (*domain.Discount, error)
	Update(ctx context.Context, id int64, params domain.DiscountParams) (*domain.Discount, error)
	Delete(ctx context.Context, id int64) error
}

type discountService struct {
	client *api.Client
	logger *slog.Logger
}

// NewDiscountService creates a DiscountService backed by the platform API.
func NewDiscountService(client *api.Client, logger *slog.Logger) DiscountService {
	return &discountService{client: client, logger: logger}
}

func (s *discountService) List(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.Discount], error) {
	var out domain.Page[domain.Discount]
	if err := s.client.Get(ctx, "discounts.list", "/discounts/", api.ListQueryValues(q), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *discountService) Get(ctx context.Context, id int64) (*domain.Discount, error) {
	var out domain.Discount
	if err := s.client.Get(ctx, "discounts.get", fmt.Sprintf("/discounts/%d/", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *discountService) Create(ctx context.Context, params domain.DiscountParams) (*domain.Discount, error) {
	var out domain.Discount
	if err := s.client.Post(ctx, "discounts.create", "/discounts/", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *discountService) Update(ctx context.Context, id int64, params domain.DiscountParams) (*domain.Discount, error) {
	var out domain.Discount
	if err := s.client.Put(ctx, "discounts.update", fmt.Sprintf("/discounts/%d/", id), params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *discountService) Delete(ctx context.Context, id int64) error {
	return s.client.Delete(ctx, "discounts.delete", fmt.Sprintf("/discounts/%d/", id))
}

// RefundService wraps the platform's refund endpoints. Refunds follow
// an approval workflow: requested, then approved or rejected, then
// completed once the money moves.
type RefundService interface {
	List(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.Refund], error)
	Get(ctx context.Context, id int64) (*domain.Refund, error)
	Create(ctx context.Context, params domain.RefundParams) (*domain.Refund, error)
	Delete(ctx context.Context, id int64) error

	Approve(ctx context.Context, id int64) error
	Reject(ctx context.Context, id int64, reason string) error
	Complete(ctx context.Context, id int64) error
}

type refundService struct {
	client *api.Client
	logger *slog.Logger
}

// NewRefundService creates a RefundService backed by the platform API.
func NewRefundService(client *api.Client, logger *slog.Logger) RefundService {
	return &refundService{client: client, logger: logger}
}

func (s *refundService) List(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.Refund], error) {
	var out domain.Page[domain.Refund]
	if err := s.client.Get(ctx, "refunds.list", "/refunds/", api.ListQueryValues(q), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *refundService) Get(ctx context.Context, id int64) (*domain.Refund, error) {
	var out domain.Refund
	if err := s.client.Get(ctx, "refunds.get", fmt.Sprintf("/refunds/%d/", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *refundService) Create(ctx context.Context, params domain.RefundParams) (*domain.Refund, error) {
	var out domain.Refund
	if err := s.client.Post(ctx, "refunds.create", "/refunds/", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *refundService) Delete(ctx context.Context, id int64) error {
	return s.client.Delete(ctx, "refunds.delete", fmt.Sprintf("/refunds/%d/", id))
}

func (s *refundService) Approve(ctx context.Context, id int64) error {
	return s.client.Post(ctx, "refunds.approve", fmt.Sprintf("/refunds/%d/approve/", id), nil, nil)
}

func (s *refundService) Reject(ctx context.Context, id int64, reason string) error {
	body := map[string]string{"reason": reason}
	return s.client.Post(ctx, "refunds.reject", fmt.Sprintf("/refunds/%d/reject/", id), body, nil)
}

func (s *refundService) Complete(ctx context.Context, id int64) error {
	return s.client.Post(ctx, "refunds.complete", fmt.Sprintf("/refunds/%d/complete/", id), nil, nil)
}

// ConnectionFeeService wraps the platform's connection fee endpoints.
type ConnectionFeeService interface {
	List(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.ConnectionFee], error)
	Create(ctx context.Context, params domain.ConnectionFeeParams) (*domain.ConnectionFee, error)
	Update(ctx context.Context, id int64, params domain.ConnectionFeeParams) (*domain.ConnectionFee, error)
	Delete(ctx context.Context, id int64) error
}

type connectionFeeService struct {
	client *api.Client
	logger *slog.Logger
}

// NewConnectionFeeService creates a ConnectionFeeService backed by the platform API.
func NewConnectionFeeService(client *api.Client, logger *slog.Logger) ConnectionFeeService {
	return &connectionFeeService{client: client, logger: logger}
}

func (s *connectionFeeService) List(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.ConnectionFee], error) {
	var out domain.Page[domain.ConnectionFee]
	if err := s.client.Get(ctx, "connection_fees.list", "/connection-fees/", api.ListQueryValues(q), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *connectionFeeService) Create(ctx context.Context, params domain.ConnectionFeeParams) (*domain.ConnectionFee, error) {
	var out domain.ConnectionFee
	if err := s.client.Post(ctx, "connection_fees.create", "/connection-fees/", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *connectionFeeService) Update(ctx context.Context, id int64, params domain.ConnectionFeeParams) (*domain.ConnectionFee, error) {
	var out domain.ConnectionFee
	if err := s.client.Patch(ctx, "connection_fees.update", fmt.Sprintf("/connection-fees/%d/", id), params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *connectionFeeService) Delete(ctx context.Context, id int64) error {
	return s.client.Delete(ctx, "connection_fees.delete", fmt.Sprintf("/connection-fees/%d/", id))
}
