package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dhakanet/ispconsole/internal/api"
	"github.com/dhakanet/ispconsole/internal/domain"
)

// ZoneService wraps the platform's zone endpoints.
type ZoneService interface {
	List(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.Zone], error)
	Get(ctx context.Context, id int64) (*domain.Zone, error)
	Create(ctx context.Context, params domain.ZoneParams) (*domain.Zone, error)
	Update(ctx context.Context, id int64, params domain.ZoneParams) (*domain.Zone, error)
	Delete(ctx context.Context, id int64) error
}

type zoneService struct {
	client *api.Client
	logger *slog.Logger
}

// NewZoneService creates a ZoneService backed by the platform API.
func NewZoneService(client *api.Client, logger *slog.Logger) ZoneService {
	return &zoneService{client: client, logger: logger}
}

func (s *zoneService) List(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.Zone], error) {
	var out domain.Page[domain.Zone]
	if err := s.client.Get(ctx, "zones.list", "/zones/", api.ListQueryValues(q), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *zoneService) Get(ctx context.Context, id int64) (*domain.Zone, error) {
	var out domain.Zone
	if err := s.client.Get(ctx, "zones.get", fmt.Sprintf("/zones/%d/", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *zoneService) Create(ctx context.Context, params domain.ZoneParams) (*domain.Zone, error) {
	var out domain.Zone
	if err := s.client.Post(ctx, "zones.create", "/zones/", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *zoneService) Update(ctx context.Context, id int64, params domain.ZoneParams) (*domain.Zone, error) {
	var out domain.Zone
	if err := s.client.Patch(ctx, "zones.update", fmt.Sprintf("/zones/%d/", id), params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *zoneService) Delete(ctx context.Context, id int64) error {
	return s.client.Delete(ctx, "zones.delete", fmt.Sprintf("/zones/%d/", id))
}

// ConnectionTypeService wraps the platform's connection type endpoints.
type ConnectionTypeService interface {
	List(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.ConnectionType], error)
	Create(ctx context.Context, params domain.ConnectionTypeParams) (*domain.ConnectionType, error)
	Update(ctx context.Context, id int64, params domain.ConnectionTypeParams) (*domain.ConnectionType, error)
	Delete(ctx context.Context, id int64) error
}

type connectionTypeService struct {
	client *api.Client
	logger *slog.Logger
}

// NewConnectionTypeService creates a ConnectionTypeService backed by the platform API.
func NewConnectionTypeService(client *api.Client, logger *slog.Logger) ConnectionTypeService {
	return &connectionTypeService{client: client, logger: logger}
}

func (s *connectionTypeService) List(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.ConnectionType], error) {
	var out domain.Page[domain.ConnectionType]
	if err := s.client.Get(ctx, "connection_types.list", "/connection-types/", api.ListQueryValues(q), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *connectionTypeService) Create(ctx context.Context, params domain.ConnectionTypeParams) (*domain.ConnectionType, error) {
	var out domain.ConnectionType
	if err := s.client.Post(ctx, "connection_types.create", "/connection-types/", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *connectionTypeService) Update(ctx context.Context, id int64, params domain.ConnectionTypeParams) (*domain.ConnectionType, error) {
	var out domain.ConnectionType
	if err := s.client.Patch(ctx, "connection_types.update", fmt.Sprintf("/connection-types/%d/", id), params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *connectionTypeService) Delete(ctx context.Context, id int64) error {
	return s.client.Delete(ctx, "connection_types.delete", fmt.Sprintf("/connection-types/%d/", id))
}
