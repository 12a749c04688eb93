package poller

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dhakanet/ispconsole/internal/domain"
	"github.com/dhakanet/ispconsole/internal/metrics"
	"github.com/dhakanet/ispconsole/internal/session"
	"github.com/dhakanet/ispconsole/internal/storage"
)

// RouterLister is the slice of the router service the status task needs.
type RouterLister interface {
	List(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.Router], error)
}

// RouterStatusTask refreshes the online/offline router gauges from the
// platform's router list. It pages through the full set each run.
type RouterStatusTask struct {
	routers RouterLister
	logger  *slog.Logger
}

// NewRouterStatusTask creates the router status refresh task.
func NewRouterStatusTask(routers RouterLister, logger *slog.Logger) *RouterStatusTask {
	return &RouterStatusTask{routers: routers, logger: logger}
}

func (t *RouterStatusTask) Name() string { return "router_status" }

func (t *RouterStatusTask) Run(ctx context.Context) error {
	var online, offline float64

	page := 1
	seen := 0
	for {
		res, err := t.routers.List(ctx, domain.ListQuery{Page: page})
		if err != nil {
			return fmt.Errorf("list routers page %d: %w", page, err)
		}

		for _, r := range res.Results {
			if r.IsOnline {
				online++
			} else {
				offline++
			}
		}

		seen += len(res.Results)
		if seen >= res.Count || len(res.Results) == 0 {
			break
		}
		page++
	}

	metrics.RoutersOnline.Set(online)
	metrics.RoutersOffline.Set(offline)

	t.logger.Debug("router status refreshed", "online", online, "offline", offline)
	return nil
}

// SessionCleanupTask deletes expired console sessions.
type SessionCleanupTask struct {
	sessions *session.Store
	logger   *slog.Logger
}

// NewSessionCleanupTask creates the session cleanup task.
func NewSessionCleanupTask(sessions *session.Store, logger *slog.Logger) *SessionCleanupTask {
	return &SessionCleanupTask{sessions: sessions, logger: logger}
}

func (t *SessionCleanupTask) Name() string { return "session_cleanup" }

func (t *SessionCleanupTask) Run(ctx context.Context) error {
	n, err := t.sessions.DeleteExpired(ctx)
	if err != nil {
		return fmt.Errorf("delete expired sessions: %w", err)
	}
	if n > 0 {
		t.logger.Info("expired sessions removed", "count", n)
	}
	return nil
}

// ExportCleanupTask deletes export artifacts older than the retention
// window. Export keys carry their creation date, so no extra bookkeeping
// is needed.
type ExportCleanupTask struct {
	store     storage.Storage
	retention time.Duration
	logger    *slog.Logger
}

// NewExportCleanupTask creates the export cleanup task.
func NewExportCleanupTask(store storage.Storage, retention time.Duration, logger *slog.Logger) *ExportCleanupTask {
	return &ExportCleanupTask{store: store, retention: retention, logger: logger}
}

func (t *ExportCleanupTask) Name() string { return "export_cleanup" }

func (t *ExportCleanupTask) Run(ctx context.Context) error {
	cutoff := time.Now().Add(-t.retention)

	objects, err := t.store.List(ctx, "exports/")
	if err != nil {
		return fmt.Errorf("list exports: %w", err)
	}

	removed := 0
	for _, obj := range objects {
		day, ok := storage.ExportKeyDate(obj.Key)
		if !ok || !day.Before(cutoff) {
			continue
		}
		if err := t.store.Delete(ctx, obj.Key); err != nil {
			t.logger.Warn("failed to delete stale export", "key", obj.Key, "error", err)
			continue
		}
		removed++
	}
	if removed > 0 {
		t.logger.Info("stale exports removed", "count", removed)
	}
	return nil
}
