package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dhakanet/ispconsole/internal/api"
	"github.com/dhakanet/ispconsole/internal/domain"
)

// PaymentService wraps the platform's payment endpoints. Most payments
// are created through BillService.AddPayment; this service covers the
// standalone payment ledger and advance payments.
type PaymentService interface {
	List(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.Payment], error)
	Get(ctx context.Context, id int64) (*domain.Payment, error)
	Delete(ctx context.Context, id int64) error

	ListAdvance(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.AdvancePayment], error)
	CreateAdvance(ctx context.Context, params domain.AdvancePaymentParams) (*domain.AdvancePayment, error)
	DeleteAdvance(ctx context.Context, id int64) error
}

type paymentService struct {
	client *api.Client
	logger *slog.Logger
}

// NewPaymentService creates a PaymentService backed by the platform API.
func NewPaymentService(client *api.Client, logger *slog.Logger) PaymentService {
	return &paymentService{client: client, logger: logger}
}

func (s *paymentService) List(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.Payment], error) {
	var out domain.Page[domain.Payment]
	if err := s.client.Get(ctx, "payments.list", "/payments/", api.ListQueryValues(q), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *paymentService) Get(ctx context.Context, id int64) (*domain.Payment, error) {
	var out domain.Payment
	if err := s.client.Get(ctx, "payments.get", fmt.Sprintf("/payments/%d/", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *paymentService) Delete(ctx context.Context, id int64) error {
	return s.client.Delete(ctx, "payments.delete", fmt.Sprintf("/payments/%d/", id))
}

func (s *paymentService) ListAdvance(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.AdvancePayment], error) {
	var out domain.Page[domain.AdvancePayment]
	if err := s.client.Get(ctx, "advance_payments.list", "/advance-payments/", api.ListQueryValues(q), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *paymentService) CreateAdvance(ctx context.Context, params domain.AdvancePaymentParams) (*domain.AdvancePayment, error) {
	var out domain.AdvancePayment
	if err := s.client.Post(ctx, "advance_payments.create", "/advance-payments/", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *paymentService) DeleteAdvance(ctx context.Context, id int64) error {
	return s.client.Delete(ctx, "advance_payments.delete", fmt.Sprintf("/advance-payments/%d/", id))
}
