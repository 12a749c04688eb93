package service

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/dhakanet/ispconsole/internal/api"
	"github.com/dhakanet/ispconsole/internal/domain"
)

// ScheduleService wraps the platform's scheduler endpoints: the
// per-job cron configuration plus aggregate execution stats.
type ScheduleService interface {
	List(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.ScheduleConfig], error)
	Get(ctx context.Context, jobID string) (*domain.ScheduleConfig, error)
	Update(ctx context.Context, jobID string, params domain.ScheduleConfigParams) (*domain.ScheduleConfig, error)

	// Toggle flips a job between enabled and disabled.
	Toggle(ctx context.Context, jobID string) (*domain.ScheduleConfig, error)

	Stats(ctx context.Context) (*domain.SchedulerStats, error)
}

type scheduleService struct {
	client *api.Client
	logger *slog.Logger
}

// NewScheduleService creates a ScheduleService backed by the platform API.
func NewScheduleService(client *api.Client, logger *slog.Logger) ScheduleService {
	return &scheduleService{client: client, logger: logger}
}

func (s *scheduleService) List(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.ScheduleConfig], error) {
	var out domain.Page[domain.ScheduleConfig]
	if err := s.client.Get(ctx, "schedule.list", "/schedule-config/", api.ListQueryValues(q), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *scheduleService) Get(ctx context.Context, jobID string) (*domain.ScheduleConfig, error) {
	var out domain.ScheduleConfig
	if err := s.client.Get(ctx, "schedule.get", "/schedule-config/"+url.PathEscape(jobID)+"/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *scheduleService) Update(ctx context.Context, jobID string, params domain.ScheduleConfigParams) (*domain.ScheduleConfig, error) {
	var out domain.ScheduleConfig
	if err := s.client.Patch(ctx, "schedule.update", "/schedule-config/"+url.PathEscape(jobID)+"/", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *scheduleService) Toggle(ctx context.Context, jobID string) (*domain.ScheduleConfig, error) {
	var out domain.ScheduleConfig
	if err := s.client.Post(ctx, "schedule.toggle", "/schedule-config/"+url.PathEscape(jobID)+"/toggle/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *scheduleService) Stats(ctx context.Context) (*domain.SchedulerStats, error) {
	var out domain.SchedulerStats
	if err := s.client.Get(ctx, "schedule.stats", "/scheduler/stats/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
