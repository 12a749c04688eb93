package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dhakanet/ispconsole/internal/api"
	"github.com/dhakanet/ispconsole/internal/domain"
)

// UserService wraps the platform's staff account endpoints. These are
// admin-only on the platform side; non-admin calls come back EFORBIDDEN.
type UserService interface {
	List(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.User], error)
	Get(ctx context.Context, id int64) (*domain.User, error)
	Create(ctx context.Context, params domain.UserParams) (*domain.User, error)
	Update(ctx context.Context, id int64, params domain.UserParams) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
}

type userService struct {
	client *api.Client
	logger *slog.Logger
}

// NewUserService creates a UserService backed by the platform API.
func NewUserService(client *api.Client, logger *slog.Logger) UserService {
	return &userService{client: client, logger: logger}
}

func (s *userService) List(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.User], error) {
	var out domain.Page[domain.User]
	if err := s.client.Get(ctx, "users.list", "/users/", api.ListQueryValues(q), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *userService) Get(ctx context.Context, id int64) (*domain.User, error) {
	var out domain.User
	if err := s.client.Get(ctx, "users.get", fmt.Sprintf("/users/%d/", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *userService) Create(ctx context.Context, params domain.UserParams) (*domain.User, error) {
	var out domain.User
	if err := s.client.Post(ctx, "users.create", "/users/create/", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *userService) Update(ctx context.Context, id int64, params domain.UserParams) (*domain.User, error) {
	var out domain.User
	if err := s.client.Patch(ctx, "users.update", fmt.Sprintf("/users/%d/", id), params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *userService) Delete(ctx context.Context, id int64) error {
	return s.client.Delete(ctx, "users.delete", fmt.Sprintf("/users/%d/", id))
}
