package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/dhakanet/ispconsole/internal/domain"
	"github.com/dhakanet/ispconsole/internal/service"
)

// Interval units accepted by the platform scheduler.
var intervalUnits = []string{"minutes", "hours", "days"}

// ScheduleHandler handles the platform scheduler pages. The stats panel
// refreshes itself every 30 seconds over htmx.
type ScheduleHandler struct {
	schedule service.ScheduleService
	renderer TemplateRenderer
	logger   *slog.Logger
	isSecure bool
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(schedule service.ScheduleService, renderer TemplateRenderer, logger *slog.Logger, isSecure bool) *ScheduleHandler {
	return &ScheduleHandler{
		schedule: schedule,
		renderer: renderer,
		logger:   logger,
		isSecure: isSecure,
	}
}

// SchedulePageData is passed to the schedule/index template.
type SchedulePageData struct {
	PageData
	Jobs  []domain.ScheduleConfig
	Stats *domain.SchedulerStats
}

// ScheduleFormPageData is passed to the schedule/edit template.
type ScheduleFormPageData struct {
	PageData
	Job           *domain.ScheduleConfig
	IntervalUnits []string
	Form          map[string]string
	Errors        map[string]string
}

// List renders the scheduler overview: every job plus the stats panel.
func (h *ScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.schedule.List(r.Context(), domain.ListQuery{})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	stats, err := h.schedule.Stats(r.Context())
	if err != nil {
		h.logger.Warn("failed to load scheduler stats", "error", err)
		stats = &domain.SchedulerStats{}
	}

	data := SchedulePageData{
		PageData: NewPageData(w, r, h.isSecure),
		Jobs:     jobs.Results,
		Stats:    stats,
	}
	h.renderer.RenderHTTP(w, "schedule/index", data)
}

// Edit renders the schedule edit form for one job.
func (h *ScheduleHandler) Edit(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("jobId")
	if jobID == "" {
		NotFoundResponse(w, r, h.logger)
		return
	}

	job, err := h.schedule.Get(r.Context(), jobID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	h.renderScheduleForm(w, r, job, map[string]string{
		"interval_value": strconv.Itoa(job.IntervalValue),
		"interval_unit":  job.IntervalUnit,
		"schedule_time":  job.ScheduleTime,
	}, nil)
}

// Update processes the schedule edit form.
func (h *ScheduleHandler) Update(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("jobId")
	if jobID == "" {
		NotFoundResponse(w, r, h.logger)
		return
	}
	if err := r.ParseForm(); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("schedule.update", "Invalid form submission"))
		return
	}
	if !CheckCSRF(w, r) {
		return
	}

	formValues := map[string]string{
		"interval_value": strings.TrimSpace(r.FormValue("interval_value")),
		"interval_unit":  strings.TrimSpace(r.FormValue("interval_unit")),
		"schedule_time":  strings.TrimSpace(r.FormValue("schedule_time")),
	}

	fieldErrors := make(map[string]string)
	var intervalValue int
	if formValues["interval_value"] != "" {
		v, err := strconv.Atoi(formValues["interval_value"])
		if err != nil || v < 1 {
			fieldErrors["interval_value"] = "Interval must be a positive number"
		}
		intervalValue = v
	}
	if unit := formValues["interval_unit"]; unit != "" {
		valid := false
		for _, u := range intervalUnits {
			if u == unit {
				valid = true
				break
			}
		}
		if !valid {
			fieldErrors["interval_unit"] = "Select a valid interval unit"
		}
	}
	if len(fieldErrors) > 0 {
		job, err := h.schedule.Get(r.Context(), jobID)
		if err != nil {
			ErrorResponse(w, r, h.logger, err)
			return
		}
		h.renderScheduleForm(w, r, job, formValues, fieldErrors)
		return
	}

	params := domain.ScheduleConfigParams{
		IntervalValue: intervalValue,
		IntervalUnit:  formValues["interval_unit"],
		ScheduleTime:  formValues["schedule_time"],
	}

	job, err := h.schedule.Update(r.Context(), jobID, params)
	if err != nil {
		if fields := domain.FieldErrors(err); fields != nil {
			current, gerr := h.schedule.Get(r.Context(), jobID)
			if gerr != nil {
				ErrorResponse(w, r, h.logger, gerr)
				return
			}
			h.renderScheduleForm(w, r, current, formValues, fields)
			return
		}
		ErrorResponse(w, r, h.logger, err)
		return
	}

	SetFlash(w, "success", "Schedule for "+job.JobName+" updated.")
	http.Redirect(w, r, "/schedule", http.StatusSeeOther)
}

// Toggle flips a job between enabled and disabled.
func (h *ScheduleHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("jobId")
	if jobID == "" {
		NotFoundResponse(w, r, h.logger)
		return
	}
	if !CheckCSRF(w, r) {
		return
	}

	job, err := h.schedule.Toggle(r.Context(), jobID)
	if err != nil {
		SetFlash(w, "error", domain.ErrorMessage(err))
		http.Redirect(w, r, "/schedule", http.StatusSeeOther)
		return
	}

	state := "disabled"
	if job.IsEnabled {
		state = "enabled"
	}
	SetFlash(w, "success", job.JobName+" "+state+".")
	http.Redirect(w, r, "/schedule", http.StatusSeeOther)
}

// Stats renders the scheduler stats panel. Requested by htmx on a
// 30-second poll from the scheduler page.
func (h *ScheduleHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.schedule.Stats(r.Context())
	if err != nil {
		// Let the page keep its last panel rather than replacing it
		// with an error.
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.renderer.RenderPartial(w, "scheduler-stats", stats)
}

func (h *ScheduleHandler) renderScheduleForm(w http.ResponseWriter, r *http.Request, job *domain.ScheduleConfig, formValues, fieldErrors map[string]string) {
	if formValues == nil {
		formValues = make(map[string]string)
	}
	if fieldErrors == nil {
		fieldErrors = make(map[string]string)
	}
	data := ScheduleFormPageData{
		PageData:      NewPageData(w, r, h.isSecure),
		Job:           job,
		IntervalUnits: intervalUnits,
		Form:          formValues,
		Errors:        fieldErrors,
	}
	h.renderer.RenderHTTP(w, "schedule/edit", data)
}
