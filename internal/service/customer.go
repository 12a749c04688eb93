package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dhakanet/ispconsole/internal/api"
	"github.com/dhakanet/ispconsole/internal/domain"
)

// CustomerService wraps the platform's customer endpoints.
//
// The platform uses explicit action suffixes for customers
// (/customers/create/, /customers/{id}/update/, /customers/{id}/delete/)
// while most other resources use bare REST paths; the paths here follow
// the platform, not a convention.
type CustomerService interface {
	// List retrieves a customer page. Supported filters: status, zone.
	List(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.Customer], error)

	// Get retrieves one customer by ID.
	// Returns domain.ENOTFOUND if the customer does not exist.
	Get(ctx context.Context, id int64) (*domain.Customer, error)

	// Create registers a new customer.
	// Returns a domain.ValidationError with field messages on rejection.
	Create(ctx context.Context, params domain.CustomerParams) (*domain.Customer, error)

	// Update patches an existing customer.
	Update(ctx context.Context, id int64, params domain.CustomerParams) (*domain.Customer, error)

	// Delete removes a customer.
	Delete(ctx context.Context, id int64) error
}

type customerService struct {
	client *api.Client
	logger *slog.Logger
}

// NewCustomerService creates a CustomerService backed by the platform API.
func NewCustomerService(client *api.Client, logger *slog.Logger) CustomerService {
	return &customerService{client: client, logger: logger}
}

func (s *customerService) List(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.Customer], error) {
	var out domain.Page[domain.Customer]
	if err := s.client.Get(ctx, "customers.list", "/customers/", api.ListQueryValues(q), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *customerService) Get(ctx context.Context, id int64) (*domain.Customer, error) {
	var out domain.Customer
	if err := s.client.Get(ctx, "customers.get", fmt.Sprintf("/customers/%d/", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *customerService) Create(ctx context.Context, params domain.CustomerParams) (*domain.Customer, error) {
	var out domain.Customer
	if err := s.client.Post(ctx, "customers.create", "/customers/create/", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *customerService) Update(ctx context.Context, id int64, params domain.CustomerParams) (*domain.Customer, error) {
	var out domain.Customer
	if err := s.client.Patch(ctx, "customers.update", fmt.Sprintf("/customers/%d/update/", id), params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *customerService) Delete(ctx context.Context, id int64) error {
	return s.client.Delete(ctx, "customers.delete", fmt.Sprintf("/customers/%d/delete/", id))
}
