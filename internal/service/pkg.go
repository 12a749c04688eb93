package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dhakanet/ispconsole/internal/api"
	"github.com/dhakanet/ispconsole/internal/domain"
)

// PackageService wraps the platform's bandwidth package endpoints.
type PackageService interface {
	List(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.Package], error)
	Get(ctx context.Context, id int64) (*domain.Package, error)
	Create(ctx context.Context, params domain.PackageParams) (*domain.Package, error)
	Update(ctx context.Context, id int64, params domain.PackageParams) (*domain.Package, error)
	Delete(ctx context.Context, id int64) error
}

type packageService struct {
	client *api.Client
	logger *slog.Logger
}

// NewPackageService creates a PackageService backed by the platform API.
func NewPackageService(client *api.Client, logger *slog.Logger) PackageService {
	return &packageService{client: client, logger: logger}
}

func (s *packageService) List(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.Package], error) {
	var out domain.Page[domain.Package]
	if err := s.client.Get(ctx, "packages.list", "/packages/", api.ListQueryValues(q), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *packageService) Get(ctx context.Context, id int64) (*domain.Package, error) {
	var out domain.Package
	if err := s.client.Get(ctx, "packages.get", fmt.Sprintf("/packages/%d/", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *packageService) Create(ctx context.Context, params domain.PackageParams) (*domain.Package, error) {
	var out domain.Package
	if err := s.client.Post(ctx, "packages.create", "/packages/create/", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *packageService) Update(ctx context.Context, id int64, params domain.PackageParams) (*domain.Package, error) {
	var out domain.Package
	if err := s.client.Patch(ctx, "packages.update", fmt.Sprintf("/packages/%d/update/", id), params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *packageService) Delete(ctx context.Context, id int64) error {
	return s.client.Delete(ctx, "packages.delete", fmt.Sprintf("/packages/%d/delete/", id))
}
