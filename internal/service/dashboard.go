package service

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/dhakanet/ispconsole/internal/api"
	"github.com/dhakanet/ispconsole/internal/domain"
)

// DashboardService wraps the platform's dashboard aggregates. Each
// method maps to one widget on the overview page; the handler fans
// them out concurrently.
type DashboardService interface {
	Overview(ctx context.Context) (*domain.Overview, error)
	QuickStats(ctx context.Context) (*domain.QuickStats, error)
	CustomerGrowth(ctx context.Context, months int) ([]domain.GrowthPoint, error)
	MonthlyRevenue(ctx context.Context, months int) ([]domain.RevenuePoint, error)
	RecentActivity(ctx context.Context, limit int) ([]domain.Activity, error)
}

type dashboardService struct {
	client *api.Client
	logger *slog.Logger
}

// NewDashboardService creates a DashboardService backed by the platform API.
func NewDashboardService(client *api.Client, logger *slog.Logger) DashboardService {
	return &dashboardService{client: client, logger: logger}
}

func (s *dashboardService) Overview(ctx context.Context) (*domain.Overview, error) {
	var out domain.Overview
	if err := s.client.Get(ctx, "dashboard.overview", "/dashboard/overview/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *dashboardService) QuickStats(ctx context.Context) (*domain.QuickStats, error) {
	var out domain.QuickStats
	if err := s.client.Get(ctx, "dashboard.quick_stats", "/dashboard/quick-stats/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *dashboardService) CustomerGrowth(ctx context.Context, months int) ([]domain.GrowthPoint, error) {
	var out []domain.GrowthPoint
	q := url.Values{}
	if months > 0 {
		q.Set("months", strconv.Itoa(months))
	}
	if err := s.client.Get(ctx, "dashboard.customer_growth", "/dashboard/customer-growth/", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *dashboardService) MonthlyRevenue(ctx context.Context, months int) ([]domain.RevenuePoint, error) {
	var out []domain.RevenuePoint
	q := url.Values{}
	if months > 0 {
		q.Set("months", strconv.Itoa(months))
	}
	if err := s.client.Get(ctx, "dashboard.monthly_revenue", "/dashboard/monthly-revenue/", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *dashboardService) RecentActivity(ctx context.Context, limit int) ([]domain.Activity, error) {
	var out []domain.Activity
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if err := s.client.Get(ctx, "dashboard.recent_activity", "/dashboard/recent-activity/", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}
