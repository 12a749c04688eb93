package domain

import "time"

// ScheduleConfig is one background job's schedule on the platform's
// scheduler. The console edits intervals and toggles jobs; it never
// runs anything itself.
type ScheduleConfig struct {
	JobID          string    `json:"job_id"`
	JobName        string    `json:"job_name"`
	IsEnabled      bool      `json:"is_enabled"`
	IntervalValue  int       `json:"interval_value"`
	IntervalUnit   string    `json:"interval_unit"`
	CronExpression string    `json:"cron_expression"`
	ScheduleTime   string    `json:"schedule_time"`
	Description    string    `json:"description"`
	NextRunTime    *time.Time `json:"next_run_time"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ScheduleConfigParams is the edit payload for a schedule entry.
type ScheduleConfigParams struct {
	IntervalValue int    `json:"interval_value,omitempty"`
	IntervalUnit  string `json:"interval_unit,omitempty"`
	ScheduleTime  string `json:"schedule_time,omitempty"`
}

// JobExecution is one recent run reported by the scheduler.
type JobExecution struct {
	JobID    string    `json:"job_id"`
	Status   string    `json:"status"`
	RunTime  time.Time `json:"run_time"`
	Duration string    `json:"duration"`
}

// SchedulerStats is the scheduler's aggregate health snapshot.
type SchedulerStats struct {
	TotalJobs            int            `json:"total_jobs"`
	TotalExecutions      int            `json:"total_executions"`
	SuccessfulExecutions int            `json:"successful_executions"`
	FailedExecutions     int            `json:"failed_executions"`
	RecentExecutions     []JobExecution `json:"recent_executions"`
}
