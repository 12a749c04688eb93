package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dhakanet/ispconsole/internal/api"
	"github.com/dhakanet/ispconsole/internal/domain"
)

// RouterService wraps the platform's MikroTik router endpoints along
// with the router-adjacent resources (queue profiles, sync logs) and
// the bulk package sync action.
type RouterService interface {
	List(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.Router], error)
	Get(ctx context.Context, id int64) (*domain.Router, error)
	Create(ctx context.Context, params domain.RouterParams) (*domain.Router, error)
	Update(ctx context.Context, id int64, params domain.RouterParams) (*domain.Router, error)
	Delete(ctx context.Context, id int64) error

	// Test asks the platform to open a live connection to the router
	// and report reachability. Slow by nature; callers should pass a
	// context with a generous deadline.
	Test(ctx context.Context, id int64) (*domain.RouterTestResult, error)

	// SyncPackage pushes one package's rate limits to one router.
	SyncPackage(ctx context.Context, packageID, routerID int64) (*domain.SyncResult, error)

	QueueProfiles(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.QueueProfile], error)
	SyncLogs(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.SyncLog], error)
}

type routerService struct {
	client *api.Client
	logger *slog.Logger
}

// NewRouterService creates a RouterService backed by the platform API.
func NewRouterService(client *api.Client, logger *slog.Logger) RouterService {
	return &routerService{client: client, logger: logger}
}

func (s *routerService) List(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.Router], error) {
	var out domain.Page[domain.Router]
	if err := s.client.Get(ctx, "routers.list", "/routers/", api.ListQueryValues(q), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *routerService) Get(ctx context.Context, id int64) (*domain.Router, error) {
	var out domain.Router
	if err := s.client.Get(ctx, "routers.get", fmt.Sprintf("/routers/%d/", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *routerService) Create(ctx context.Context, params domain.RouterParams) (*domain.Router, error) {
	var out domain.Router
	if err := s.client.Post(ctx, "routers.create", "/routers/create/", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *routerService) Update(ctx context.Context, id int64, params domain.RouterParams) (*domain.Router, error) {
	var out domain.Router
	if err := s.client.Patch(ctx, "routers.update", fmt.Sprintf("/routers/%d/", id), params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *routerService) Delete(ctx context.Context, id int64) error {
	return s.client.Delete(ctx, "routers.delete", fmt.Sprintf("/routers/%d/", id))
}

func (s *routerService) Test(ctx context.Context, id int64) (*domain.RouterTestResult, error) {
	var out domain.RouterTestResult
	if err := s.client.Post(ctx, "routers.test", fmt.Sprintf("/routers/%d/test/", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *routerService) SyncPackage(ctx context.Context, packageID, routerID int64) (*domain.SyncResult, error) {
	var out domain.SyncResult
	path := fmt.Sprintf("/sync/package/%d/router/%d/", packageID, routerID)
	if err := s.client.Post(ctx, "routers.sync_package", path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *routerService) QueueProfiles(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.QueueProfile], error) {
	var out domain.Page[domain.QueueProfile]
	if err := s.client.Get(ctx, "queue_profiles.list", "/queue-profiles/", api.ListQueryValues(q), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *routerService) SyncLogs(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.SyncLog], error) {
	var out domain.Page[domain.SyncLog]
	if err := s.client.Get(ctx, "sync_logs.list", "/sync-logs/", api.ListQueryValues(q), &out); err != nil {
		return nil, err
	}
	return &out, nil
}
