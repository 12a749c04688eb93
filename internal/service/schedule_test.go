package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dhakanet/ispconsole/internal/api"
	"github.com/dhakanet/ispconsole/internal/domain"
)

func TestScheduleService_EscapesJobID(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.EscapedPath())
		json.NewEncoder(w).Encode(domain.ScheduleConfig{JobID: "generate monthly bills"})
	}))
	defer srv.Close()

	svc := NewScheduleService(api.New(srv.URL, nil, newTestLogger()), newTestLogger())
	ctx := context.Background()

	if _, err := svc.Get(ctx, "generate monthly bills"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, err := svc.Toggle(ctx, "generate monthly bills"); err != nil {
		t.Fatalf("Toggle: %v", err)
	}

	want := []string{
		"GET /schedule-config/generate%20monthly%20bills/",
		"POST /schedule-config/generate%20monthly%20bills/toggle/",
	}
	if len(paths) != len(want) {
		t.Fatalf("paths = %v", paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("paths[%d] = %q, want %q", i, paths[i], want[i])
		}
	}
}

func TestScheduleService_UpdatePatchesConfig(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(domain.ScheduleConfig{JobID: "suspend_overdue", IntervalValue: 6, IntervalUnit: "hours"})
	}))
	defer srv.Close()

	svc := NewScheduleService(api.New(srv.URL, nil, newTestLogger()), newTestLogger())
	job, err := svc.Update(context.Background(), "suspend_overdue", domain.ScheduleConfigParams{
		IntervalValue: 6,
		IntervalUnit:  "hours",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotMethod != http.MethodPatch || gotPath != "/schedule-config/suspend_overdue/" {
		t.Errorf("request = %s %s", gotMethod, gotPath)
	}
	if gotBody["interval_unit"] != "hours" {
		t.Errorf("interval_unit = %v", gotBody["interval_unit"])
	}
	if job.IntervalValue != 6 {
		t.Errorf("interval_value = %d", job.IntervalValue)
	}
}

func TestScheduleService_Stats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/scheduler/stats/" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(domain.SchedulerStats{TotalJobs: 4, SuccessfulExecutions: 12, FailedExecutions: 1})
	}))
	defer srv.Close()

	svc := NewScheduleService(api.New(srv.URL, nil, newTestLogger()), newTestLogger())
	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalJobs != 4 || stats.SuccessfulExecutions != 12 || stats.FailedExecutions != 1 {
		t.Errorf("stats = %+v", stats)
	}
}
