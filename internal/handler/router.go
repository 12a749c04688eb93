package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/dhakanet/ispconsole/internal/domain"
	"github.com/dhakanet/ispconsole/internal/service"
)

// RouterHandler handles MikroTik router pages, the connectivity test,
// queue profiles, sync logs, and the package sync trigger.
type RouterHandler struct {
	routers  service.RouterService
	packages service.PackageService
	zones    service.ZoneService
	renderer TemplateRenderer
	logger   *slog.Logger
	isSecure bool
}

// NewRouterHandler creates a new RouterHandler.
func NewRouterHandler(
	routers service.RouterService,
	packages service.PackageService,
	zones service.ZoneService,
	renderer TemplateRenderer,
	logger *slog.Logger,
	isSecure bool,
) *RouterHandler {
	return &RouterHandler{
		routers:  routers,
		packages: packages,
		zones:    zones,
		renderer: renderer,
		logger:   logger,
		isSecure: isSecure,
	}
}

// RouterListPageData is passed to the routers/index template.
type RouterListPageData struct {
	PageData
	Routers    []domain.Router
	Query      domain.ListQuery
	Pagination domain.Pagination
	QueryFunc  func(page int) string
}

// RouterFormPageData is passed to the routers/new and routers/edit templates.
type RouterFormPageData struct {
	PageData
	Router *domain.Router
	Zones  []domain.Zone
	Form   map[string]string
	Errors map[string]string
}

// List renders the router list.
func (h *RouterHandler) List(w http.ResponseWriter, r *http.Request) {
	q := ParseListQuery(r, "zone")

	page, err := h.routers.List(r.Context(), q)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	data := RouterListPageData{
		PageData:   NewPageData(w, r, h.isSecure),
		Routers:    page.Results,
		Query:      q,
		Pagination: domain.NewPagination(q.Page, page.Count),
		QueryFunc:  func(p int) string { return ListQueryString(q, p) },
	}
	h.renderer.RenderHTTP(w, "routers/index", data)
}

// Show renders one router with its sync log tail and a package sync form.
func (h *RouterHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(r, "id")
	if !ok {
		NotFoundResponse(w, r, h.logger)
		return
	}

	router, err := h.routers.Get(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	logs, err := h.routers.SyncLogs(r.Context(), domain.ListQuery{
		Filters: map[string]string{"router": strconv.FormatInt(id, 10)},
	})
	if err != nil {
		h.logger.Warn("failed to load sync logs", "error", err, "router_id", id)
		logs = &domain.Page[domain.SyncLog]{}
	}

	packages, err := h.packages.List(r.Context(), domain.ListQuery{Status: "active"})
	if err != nil {
		h.logger.Warn("failed to load packages for sync form", "error", err)
		packages = &domain.Page[domain.Package]{}
	}

	data := struct {
		PageData
		Router   *domain.Router
		SyncLogs []domain.SyncLog
		Packages []domain.Package
	}{
		PageData: NewPageData(w, r, h.isSecure),
		Router:   router,
		SyncLogs: logs.Results,
		Packages: packages.Results,
	}
	h.renderer.RenderHTTP(w, "routers/show", data)
}

// New renders the router create form.
func (h *RouterHandler) New(w http.ResponseWriter, r *http.Request) {
	h.renderRouterForm(w, r, "routers/new", nil, nil, nil)
}

// Create processes the router create form.
func (h *RouterHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("routers.create", "Invalid form submission"))
		return
	}
	if !CheckCSRF(w, r) {
		return
	}

	params, formValues, fieldErrors := parseRouterForm(r, true)
	if len(fieldErrors) > 0 {
		h.renderRouterForm(w, r, "routers/new", nil, formValues, fieldErrors)
		return
	}

	router, err := h.routers.Create(r.Context(), params)
	if err != nil {
		if fields := domain.FieldErrors(err); fields != nil {
			h.renderRouterForm(w, r, "routers/new", nil, formValues, fields)
			return
		}
		ErrorResponse(w, r, h.logger, err)
		return
	}

	SetFlash(w, "success", "Router "+router.Name+" added.")
	http.Redirect(w, r, "/routers", http.StatusSeeOther)
}

// Edit renders the router update form.
func (h *RouterHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(r, "id")
	if !ok {
		NotFoundResponse(w, r, h.logger)
		return
	}

	router, err := h.routers.Get(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	h.renderRouterForm(w, r, "routers/edit", router, routerFormValues(router), nil)
}

// Update processes the router update form. An empty password leaves the
// stored credential untouched.
func (h *RouterHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(r, "id")
	if !ok {
		NotFoundResponse(w, r, h.logger)
		return
	}
	if err := r.ParseForm(); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("routers.update", "Invalid form submission"))
		return
	}
	if !CheckCSRF(w, r) {
		return
	}

	params, formValues, fieldErrors := parseRouterForm(r, false)
	if len(fieldErrors) > 0 {
		h.renderRouterEditForm(w, r, id, formValues, fieldErrors)
		return
	}

	router, err := h.routers.Update(r.Context(), id, params)
	if err != nil {
		if fields := domain.FieldErrors(err); fields != nil {
			h.renderRouterEditForm(w, r, id, formValues, fields)
			return
		}
		ErrorResponse(w, r, h.logger, err)
		return
	}

	SetFlash(w, "success", "Router "+router.Name+" updated.")
	http.Redirect(w, r, "/routers", http.StatusSeeOther)
}

// Delete removes a router.
func (h *RouterHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(r, "id")
	if !ok {
		NotFoundResponse(w, r, h.logger)
		return
	}
	if !CheckCSRF(w, r) {
		return
	}

	if err := h.routers.Delete(r.Context(), id); err != nil {
		// Routers with subscriptions attached come back as a conflict.
		if domain.ErrorCode(err) == domain.ECONFLICT {
			SetFlash(w, "error", domain.ErrorMessage(err))
			http.Redirect(w, r, "/routers", http.StatusSeeOther)
			return
		}
		ErrorResponse(w, r, h.logger, err)
		return
	}

	SetFlash(w, "success", "Router deleted.")
	http.Redirect(w, r, "/routers", http.StatusSeeOther)
}

// Test probes the router and reports the result. Called from the list
// page via htmx, so it renders the result row partial.
func (h *RouterHandler) Test(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(r, "id")
	if !ok {
		NotFoundResponse(w, r, h.logger)
		return
	}
	if !CheckCSRF(w, r) {
		return
	}

	result, err := h.routers.Test(r.Context(), id)
	if err != nil {
		result = &domain.RouterTestResult{Success: false, Message: domain.ErrorMessage(err)}
	}

	if r.Header.Get("HX-Request") == "true" {
		h.renderer.RenderPartial(w, "router-test-result", result)
		return
	}

	if result.Success {
		msg := "Router reachable."
		if result.Version != "" {
			msg = "Router reachable, RouterOS " + result.Version + "."
		}
		SetFlash(w, "success", msg)
	} else {
		SetFlash(w, "error", "Router unreachable: "+result.Message)
	}
	http.Redirect(w, r, "/routers/"+strconv.FormatInt(id, 10), http.StatusSeeOther)
}

// SyncPackage pushes one package's rate limits to one router.
func (h *RouterHandler) SyncPackage(w http.ResponseWriter, r *http.Request) {
	routerID, ok := ParseID(r, "id")
	if !ok {
		NotFoundResponse(w, r, h.logger)
		return
	}
	if err := r.ParseForm(); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("routers.sync_package", "Invalid form submission"))
		return
	}
	if !CheckCSRF(w, r) {
		return
	}

	packageID, err := strconv.ParseInt(strings.TrimSpace(r.FormValue("package")), 10, 64)
	if err != nil || packageID < 1 {
		SetFlash(w, "error", "Select a package to sync.")
		http.Redirect(w, r, "/routers/"+strconv.FormatInt(routerID, 10), http.StatusSeeOther)
		return
	}

	result, err := h.routers.SyncPackage(r.Context(), packageID, routerID)
	if err != nil {
		SetFlash(w, "error", domain.ErrorMessage(err))
		http.Redirect(w, r, "/routers/"+strconv.FormatInt(routerID, 10), http.StatusSeeOther)
		return
	}

	if result.Success {
		SetFlash(w, "success", result.Message)
	} else {
		SetFlash(w, "error", result.Message)
	}
	http.Redirect(w, r, "/routers/"+strconv.FormatInt(routerID, 10), http.StatusSeeOther)
}

// QueueProfilePageData is passed to the queue-profiles/index template.
type QueueProfilePageData struct {
	PageData
	Profiles   []domain.QueueProfile
	Query      domain.ListQuery
	Pagination domain.Pagination
	QueryFunc  func(page int) string
}

// QueueProfiles renders the queue profile sync matrix.
func (h *RouterHandler) QueueProfiles(w http.ResponseWriter, r *http.Request) {
	q := ParseListQuery(r, "router", "package", "synced")

	page, err := h.routers.QueueProfiles(r.Context(), q)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	data := QueueProfilePageData{
		PageData:   NewPageData(w, r, h.isSecure),
		Profiles:   page.Results,
		Query:      q,
		Pagination: domain.NewPagination(q.Page, page.Count),
		QueryFunc:  func(p int) string { return ListQueryString(q, p) },
	}
	h.renderer.RenderHTTP(w, "queue-profiles/index", data)
}

// SyncLogPageData is passed to the sync-logs/index template.
type SyncLogPageData struct {
	PageData
	Logs       []domain.SyncLog
	Query      domain.ListQuery
	Pagination domain.Pagination
	QueryFunc  func(page int) string
}

// SyncLogs renders the reconciliation log.
func (h *RouterHandler) SyncLogs(w http.ResponseWriter, r *http.Request) {
	q := ParseListQuery(r, "router", "action")

	page, err := h.routers.SyncLogs(r.Context(), q)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	data := SyncLogPageData{
		PageData:   NewPageData(w, r, h.isSecure),
		Logs:       page.Results,
		Query:      q,
		Pagination: domain.NewPagination(q.Page, page.Count),
		QueryFunc:  func(p int) string { return ListQueryString(q, p) },
	}
	h.renderer.RenderHTTP(w, "sync-logs/index", data)
}

func (h *RouterHandler) renderRouterForm(w http.ResponseWriter, r *http.Request, template string, router *domain.Router, formValues, fieldErrors map[string]string) {
	zones, err := h.zones.List(r.Context(), domain.ListQuery{})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	if formValues == nil {
		formValues = make(map[string]string)
	}
	if fieldErrors == nil {
		fieldErrors = make(map[string]string)
	}
	data := RouterFormPageData{
		PageData: NewPageData(w, r, h.isSecure),
		Router:   router,
		Zones:    zones.Results,
		Form:     formValues,
		Errors:   fieldErrors,
	}
	h.renderer.RenderHTTP(w, template, data)
}

func (h *RouterHandler) renderRouterEditForm(w http.ResponseWriter, r *http.Request, id int64, formValues, fieldErrors map[string]string) {
	router, err := h.routers.Get(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	h.renderRouterForm(w, r, "routers/edit", router, formValues, fieldErrors)
}

// parseRouterForm extracts and validates the router form fields. The
// password is mandatory on create only.
func parseRouterForm(r *http.Request, isCreate bool) (domain.RouterParams, map[string]string, map[string]string) {
	formValues := map[string]string{
		"name":       strings.TrimSpace(r.FormValue("name")),
		"ip_address": strings.TrimSpace(r.FormValue("ip_address")),
		"api_port":   strings.TrimSpace(r.FormValue("api_port")),
		"username":   strings.TrimSpace(r.FormValue("username")),
		"zone":       strings.TrimSpace(r.FormValue("zone")),
		"status":     strings.TrimSpace(r.FormValue("status")),
	}

	fieldErrors := make(map[string]string)
	if formValues["name"] == "" {
		fieldErrors["name"] = "Name is required"
	}
	if formValues["ip_address"] == "" {
		fieldErrors["ip_address"] = "IP address is required"
	}
	if formValues["username"] == "" {
		fieldErrors["username"] = "API username is required"
	}

	var apiPort int
	if formValues["api_port"] != "" {
		port, err := strconv.Atoi(formValues["api_port"])
		if err != nil || port < 1 || port > 65535 {
			fieldErrors["api_port"] = "API port must be between 1 and 65535"
		}
		apiPort = port
	}

	var zone int64
	if formValues["zone"] != "" {
		z, err := strconv.ParseInt(formValues["zone"], 10, 64)
		if err != nil || z < 1 {
			fieldErrors["zone"] = "Select a valid zone"
		}
		zone = z
	}

	password := r.FormValue("password")
	if isCreate && password == "" {
		fieldErrors["password"] = "API password is required"
	}

	params := domain.RouterParams{
		Name:      formValues["name"],
		IPAddress: formValues["ip_address"],
		APIPort:   apiPort,
		Username:  formValues["username"],
		Password:  password,
		Zone:      zone,
		Status:    formValues["status"],
	}
	return params, formValues, fieldErrors
}

// routerFormValues seeds the edit form from an existing router. The
// password is never echoed back.
func routerFormValues(rt *domain.Router) map[string]string {
	values := map[string]string{
		"name":       rt.Name,
		"ip_address": rt.IPAddress,
		"username":   rt.Username,
		"status":     rt.Status,
	}
	if rt.APIPort > 0 {
		values["api_port"] = strconv.Itoa(rt.APIPort)
	}
	if rt.Zone > 0 {
		values["zone"] = strconv.FormatInt(rt.Zone, 10)
	}
	return values
}
