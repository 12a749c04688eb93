package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dhakanet/ispconsole/internal/api"
	"github.com/dhakanet/ispconsole/internal/domain"
)

// SubscriptionService wraps the platform's subscription endpoints,
// including the lifecycle actions (activate/suspend/sync).
//
// Create has a three-way outcome: success, an ordinary validation error,
// or a recoverable conflict — the platform rolls the subscription back
// and answers with a mikrotik_error field when the PPPoE username
// already exists on the router. Callers detect the conflict with
// IsRouterConflict and may resubmit with ForceLink set.
type SubscriptionService interface {
	List(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.Subscription], error)
	Get(ctx context.Context, id int64) (*domain.Subscription, error)
	Create(ctx context.Context, params domain.SubscriptionParams) (*domain.Subscription, error)
	Update(ctx context.Context, id int64, params domain.SubscriptionParams) (*domain.Subscription, error)
	Delete(ctx context.Context, id int64) error

	// Activate provisions the subscription on its router and starts billing.
	Activate(ctx context.Context, id int64) error

	// Suspend disables the PPPoE user without cancelling the subscription.
	Suspend(ctx context.Context, id int64) error

	// Sync re-pushes the subscription's state to its router.
	Sync(ctx context.Context, id int64) error

	// History lists the subscription's audit trail, newest first.
	History(ctx context.Context, id int64, q domain.ListQuery) (*domain.Page[domain.SubscriptionHistory], error)

	// ActiveConnections returns the live PPPoE session snapshot.
	ActiveConnections(ctx context.Context) (*domain.ActiveConnections, error)
}

// IsRouterConflict reports whether err is the platform's PPPoE username
// collision signal, which the pages resolve with a force-link
// confirmation instead of a plain error toast.
func IsRouterConflict(err error) (string, bool) {
	fields := domain.FieldErrors(err)
	if fields == nil {
		return "", false
	}
	msg, ok := fields["mikrotik_error"]
	if !ok {
		return "", false
	}
	return msg, true
}

type subscriptionService struct {
	client *api.Client
	logger *slog.Logger
}

// NewSubscriptionService creates a SubscriptionService backed by the platform API.
func NewSubscriptionService(client *api.Client, logger *slog.Logger) SubscriptionService {
	return &subscriptionService{client: client, logger: logger}
}

func (s *subscriptionService) List(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.Subscription], error) {
	var out domain.Page[domain.Subscription]
	if err := s.client.Get(ctx, "subscriptions.list", "/subscriptions/", api.ListQueryValues(q), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *subscriptionService) Get(ctx context.Context, id int64) (*domain.Subscription, error) {
	var out domain.Subscription
	if err := s.client.Get(ctx, "subscriptions.get", fmt.Sprintf("/subscriptions/%d/", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *subscriptionService) Create(ctx context.Context, params domain.SubscriptionParams) (*domain.Subscription, error) {
	var out domain.Subscription
	if err := s.client.Post(ctx, "subscriptions.create", "/subscriptions/create/", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *subscriptionService) Update(ctx context.Context, id int64, params domain.SubscriptionParams) (*domain.Subscription, error) {
	var out domain.Subscription
	if err := s.client.Patch(ctx, "subscriptions.update", fmt.Sprintf("/subscriptions/%d/update/", id), params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *subscriptionService) Delete(ctx context.Context, id int64) error {
	return s.client.Delete(ctx, "subscriptions.delete", fmt.Sprintf("/subscriptions/%d/delete/", id))
}

func (s *subscriptionService) Activate(ctx context.Context, id int64) error {
	return s.client.Post(ctx, "subscriptions.activate", fmt.Sprintf("/subscriptions/%d/activate/", id), nil, nil)
}

func (s *subscriptionService) Suspend(ctx context.Context, id int64) error {
	return s.client.Post(ctx, "subscriptions.suspend", fmt.Sprintf("/subscriptions/%d/suspend/", id), nil, nil)
}

func (s *subscriptionService) Sync(ctx context.Context, id int64) error {
	return s.client.Post(ctx, "subscriptions.sync", fmt.Sprintf("/subscriptions/%d/sync/", id), nil, nil)
}

func (s *subscriptionService) History(ctx context.Context, id int64, q domain.ListQuery) (*domain.Page[domain.SubscriptionHistory], error) {
	var out domain.Page[domain.SubscriptionHistory]
	path := fmt.Sprintf("/subscriptions/%d/history/", id)
	if err := s.client.Get(ctx, "subscriptions.history", path, api.ListQueryValues(q), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *subscriptionService) ActiveConnections(ctx context.Context) (*domain.ActiveConnections, error) {
	var out domain.ActiveConnections
	if err := s.client.Get(ctx, "subscriptions.active_connections", "/subscriptions/active-connections/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
