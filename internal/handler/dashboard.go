package handler

import (
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/dhakanet/ispconsole/internal/domain"
	"github.com/dhakanet/ispconsole/internal/service"
)

// Dashboard chart defaults.
const (
	growthMonths  = 12
	revenueMonths = 12
	activityLimit = 10
)

// DashboardHandler renders the overview page.
type DashboardHandler struct {
	dashboard service.DashboardService
	renderer  TemplateRenderer
	logger    *slog.Logger
	isSecure  bool
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboard service.DashboardService, renderer TemplateRenderer, logger *slog.Logger, isSecure bool) *DashboardHandler {
	return &DashboardHandler{
		dashboard: dashboard,
		renderer:  renderer,
		logger:    logger,
		isSecure:  isSecure,
	}
}

// DashboardPageData is passed to the dashboard template.
type DashboardPageData struct {
	PageData
	Overview       *domain.Overview
	QuickStats     *domain.QuickStats
	CustomerGrowth []domain.GrowthPoint
	MonthlyRevenue []domain.RevenuePoint
	RecentActivity []domain.Activity
}

// Index renders the dashboard. The five widget endpoints are independent,
// so they are fetched concurrently; one slow widget must not serialize the
// whole page.
func (h *DashboardHandler) Index(w http.ResponseWriter, r *http.Request) {
	data := DashboardPageData{
		PageData: NewPageData(w, r, h.isSecure),
	}

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		overview, err := h.dashboard.Overview(ctx)
		if err != nil {
			return err
		}
		data.Overview = overview
		return nil
	})
	g.Go(func() error {
		stats, err := h.dashboard.QuickStats(ctx)
		if err != nil {
			return err
		}
		data.QuickStats = stats
		return nil
	})
	g.Go(func() error {
		growth, err := h.dashboard.CustomerGrowth(ctx, growthMonths)
		if err != nil {
			return err
		}
		data.CustomerGrowth = growth
		return nil
	})
	g.Go(func() error {
		revenue, err := h.dashboard.MonthlyRevenue(ctx, revenueMonths)
		if err != nil {
			return err
		}
		data.MonthlyRevenue = revenue
		return nil
	})
	g.Go(func() error {
		activity, err := h.dashboard.RecentActivity(ctx, activityLimit)
		if err != nil {
			return err
		}
		data.RecentActivity = activity
		return nil
	})

	if err := g.Wait(); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	h.renderer.RenderHTTP(w, "dashboard", data)
}
