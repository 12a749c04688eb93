package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dhakanet/ispconsole/internal/api"
	"github.com/dhakanet/ispconsole/internal/domain"
)

// BillService wraps the platform's bill endpoints. Supported list
// filters: status, month, year.
type BillService interface {
	List(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.Bill], error)
	Get(ctx context.Context, id int64) (*domain.Bill, error)
	Create(ctx context.Context, params domain.BillParams) (*domain.Bill, error)
	Update(ctx context.Context, id int64, params domain.BillParams) (*domain.Bill, error)
	Delete(ctx context.Context, id int64) error

	// GenerateMonthly triggers the platform's monthly bill run.
	GenerateMonthly(ctx context.Context, params domain.GenerateBillsParams) (*domain.GenerateBillsResult, error)

	// AddPayment records a payment against a bill.
	AddPayment(ctx context.Context, billID int64, params domain.AddPaymentParams) (*domain.Payment, error)
}

type billService struct {
	client *api.Client
	logger *slog.Logger
}

// NewBillService creates a BillService backed by the platform API.
func NewBillService(client *api.Client, logger *slog.Logger) BillService {
	return &billService{client: client, logger: logger}
}

func (s *billService) List(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.Bill], error) {
	var out domain.Page[domain.Bill]
	if err := s.client.Get(ctx, "bills.list", "/bills/", api.ListQueryValues(q), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *billService) Get(ctx context.Context, id int64) (*domain.Bill, error) {
	var out domain.Bill
	if err := s.client.Get(ctx, "bills.get", fmt.Sprintf("/bills/%d/", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *billService) Create(ctx context.Context, params domain.BillParams) (*domain.Bill, error) {
	var out domain.Bill
	if err := s.client.Post(ctx, "bills.create", "/bills/create/", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *billService) Update(ctx context.Context, id int64, params domain.BillParams) (*domain.Bill, error) {
	var out domain.Bill
	if err := s.client.Patch(ctx, "bills.update", fmt.Sprintf("/bills/%d/", id), params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *billService) Delete(ctx context.Context, id int64) error {
	return s.client.Delete(ctx, "bills.delete", fmt.Sprintf("/bills/%d/", id))
}

func (s *billService) GenerateMonthly(ctx context.Context, params domain.GenerateBillsParams) (*domain.GenerateBillsResult, error) {
	var out domain.GenerateBillsResult
	if err := s.client.Post(ctx, "bills.generate_monthly", "/bills/generate-monthly/", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *billService) AddPayment(ctx context.Context, billID int64, params domain.AddPaymentParams) (*domain.Payment, error) {
	var out domain.Payment
	path := fmt.Sprintf("/bills/%d/add-payment/", billID)
	if err := s.client.Post(ctx, "bills.add_payment", path, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
