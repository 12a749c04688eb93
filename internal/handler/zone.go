package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dhakanet/ispconsole/internal/domain"
	"github.com/dhakanet/ispconsole/internal/service"
)

// ZoneHandler handles zone and connection type pages. The two resources
// share one settings-style page since both are small reference lists.
type ZoneHandler struct {
	zones     service.ZoneService
	connTypes service.ConnectionTypeService
	renderer  TemplateRenderer
	logger    *slog.Logger
	isSecure  bool
}

// NewZoneHandler creates a new ZoneHandler.
func NewZoneHandler(
	zones service.ZoneService,
	connTypes service.ConnectionTypeService,
	renderer TemplateRenderer,
	logger *slog.Logger,
	isSecure bool,
) *ZoneHandler {
	return &ZoneHandler{
		zones:     zones,
		connTypes: connTypes,
		renderer:  renderer,
		logger:    logger,
		isSecure:  isSecure,
	}
}

// ZoneListPageData is passed to the zones/index template.
type ZoneListPageData struct {
	PageData
	Zones      []domain.Zone
	Query      domain.ListQuery
	Pagination domain.Pagination
	QueryFunc  func(page int) string
}

// ZoneFormPageData is passed to the zones/new and zones/edit templates.
type ZoneFormPageData struct {
	PageData
	Zone   *domain.Zone
	Form   map[string]string
	Errors map[string]string
}

// List renders the zone list.
func (h *ZoneHandler) List(w http.ResponseWriter, r *http.Request) {
	q := ParseListQuery(r)

	page, err := h.zones.List(r.Context(), q)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	data := ZoneListPageData{
		PageData:   NewPageData(w, r, h.isSecure),
		Zones:      page.Results,
		Query:      q,
		Pagination: domain.NewPagination(q.Page, page.Count),
		QueryFunc:  func(p int) string { return ListQueryString(q, p) },
	}
	h.renderer.RenderHTTP(w, "zones/index", data)
}

// New renders the zone create form.
func (h *ZoneHandler) New(w http.ResponseWriter, r *http.Request) {
	data := ZoneFormPageData{
		PageData: NewPageData(w, r, h.isSecure),
		Form:     make(map[string]string),
		Errors:   make(map[string]string),
	}
	h.renderer.RenderHTTP(w, "zones/new", data)
}

// Create processes the zone create form.
func (h *ZoneHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("zones.create", "Invalid form submission"))
		return
	}
	if !CheckCSRF(w, r) {
		return
	}

	params, formValues, fieldErrors := parseZoneForm(r)
	if len(fieldErrors) > 0 {
		h.renderZoneForm(w, r, "zones/new", nil, formValues, fieldErrors)
		return
	}

	zone, err := h.zones.Create(r.Context(), params)
	if err != nil {
		if fields := domain.FieldErrors(err); fields != nil {
			h.renderZoneForm(w, r, "zones/new", nil, formValues, fields)
			return
		}
		ErrorResponse(w, r, h.logger, err)
		return
	}

	SetFlash(w, "success", "Zone "+zone.Name+" created.")
	http.Redirect(w, r, "/zones", http.StatusSeeOther)
}

// Edit renders the zone update form.
func (h *ZoneHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(r, "id")
	if !ok {
		NotFoundResponse(w, r, h.logger)
		return
	}

	zone, err := h.zones.Get(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	h.renderZoneForm(w, r, "zones/edit", zone, map[string]string{
		"name":        zone.Name,
		"code":        zone.Code,
		"description": zone.Description,
		"status":      zone.Status,
	}, nil)
}

// Update processes the zone update form.
func (h *ZoneHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(r, "id")
	if !ok {
		NotFoundResponse(w, r, h.logger)
		return
	}
	if err := r.ParseForm(); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("zones.update", "Invalid form submission"))
		return
	}
	if !CheckCSRF(w, r) {
		return
	}

	params, formValues, fieldErrors := parseZoneForm(r)
	if len(fieldErrors) > 0 {
		zone, err := h.zones.Get(r.Context(), id)
		if err != nil {
			ErrorResponse(w, r, h.logger, err)
			return
		}
		h.renderZoneForm(w, r, "zones/edit", zone, formValues, fieldErrors)
		return
	}

	zone, err := h.zones.Update(r.Context(), id, params)
	if err != nil {
		if fields := domain.FieldErrors(err); fields != nil {
			current, gerr := h.zones.Get(r.Context(), id)
			if gerr != nil {
				ErrorResponse(w, r, h.logger, gerr)
				return
			}
			h.renderZoneForm(w, r, "zones/edit", current, formValues, fields)
			return
		}
		ErrorResponse(w, r, h.logger, err)
		return
	}

	SetFlash(w, "success", "Zone "+zone.Name+" updated.")
	http.Redirect(w, r, "/zones", http.StatusSeeOther)
}

// Delete removes a zone.
func (h *ZoneHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(r, "id")
	if !ok {
		NotFoundResponse(w, r, h.logger)
		return
	}
	if !CheckCSRF(w, r) {
		return
	}

	if err := h.zones.Delete(r.Context(), id); err != nil {
		// Zones with customers attached come back as a conflict.
		if domain.ErrorCode(err) == domain.ECONFLICT {
			SetFlash(w, "error", domain.ErrorMessage(err))
			http.Redirect(w, r, "/zones", http.StatusSeeOther)
			return
		}
		ErrorResponse(w, r, h.logger, err)
		return
	}

	SetFlash(w, "success", "Zone deleted.")
	http.Redirect(w, r, "/zones", http.StatusSeeOther)
}

func (h *ZoneHandler) renderZoneForm(w http.ResponseWriter, r *http.Request, template string, zone *domain.Zone, formValues, fieldErrors map[string]string) {
	if formValues == nil {
		formValues = make(map[string]string)
	}
	if fieldErrors == nil {
		fieldErrors = make(map[string]string)
	}
	data := ZoneFormPageData{
		PageData: NewPageData(w, r, h.isSecure),
		Zone:     zone,
		Form:     formValues,
		Errors:   fieldErrors,
	}
	h.renderer.RenderHTTP(w, template, data)
}

func parseZoneForm(r *http.Request) (domain.ZoneParams, map[string]string, map[string]string) {
	formValues := map[string]string{
		"name":        strings.TrimSpace(r.FormValue("name")),
		"code":        strings.TrimSpace(r.FormValue("code")),
		"description": strings.TrimSpace(r.FormValue("description")),
		"status":      strings.TrimSpace(r.FormValue("status")),
	}

	fieldErrors := make(map[string]string)
	if formValues["name"] == "" {
		fieldErrors["name"] = "Name is required"
	}
	if formValues["code"] == "" {
		fieldErrors["code"] = "Code is required"
	}

	params := domain.ZoneParams{
		Name:        formValues["name"],
		Code:        formValues["code"],
		Description: formValues["description"],
		Status:      formValues["status"],
	}
	return params, formValues, fieldErrors
}

// ConnectionTypeHandler handles connection type pages.
type ConnectionTypeHandler struct {
	connTypes service.ConnectionTypeService
	renderer  TemplateRenderer
	logger    *slog.Logger
	isSecure  bool
}

// NewConnectionTypeHandler creates a new ConnectionTypeHandler.
func NewConnectionTypeHandler(connTypes service.ConnectionTypeService, renderer TemplateRenderer, logger *slog.Logger, isSecure bool) *ConnectionTypeHandler {
	return &ConnectionTypeHandler{
		connTypes: connTypes,
		renderer:  renderer,
		logger:    logger,
		isSecure:  isSecure,
	}
}

// ConnectionTypeListPageData is passed to the connection-types/index template.
type ConnectionTypeListPageData struct {
	PageData
	ConnectionTypes []domain.ConnectionType
	Query           domain.ListQuery
	Pagination      domain.Pagination
	QueryFunc       func(page int) string
	Form            map[string]string
	Errors          map[string]string
}

// List renders the connection type list with an inline create form.
func (h *ConnectionTypeHandler) List(w http.ResponseWriter, r *http.Request) {
	q := ParseListQuery(r)

	page, err := h.connTypes.List(r.Context(), q)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	data := ConnectionTypeListPageData{
		PageData:        NewPageData(w, r, h.isSecure),
		ConnectionTypes: page.Results,
		Query:           q,
		Pagination:      domain.NewPagination(q.Page, page.Count),
		QueryFunc:       func(p int) string { return ListQueryString(q, p) },
		Form:            make(map[string]string),
		Errors:          make(map[string]string),
	}
	h.renderer.RenderHTTP(w, "connection-types/index", data)
}

// Create processes the inline create form.
func (h *ConnectionTypeHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("connection_types.create", "Invalid form submission"))
		return
	}
	if !CheckCSRF(w, r) {
		return
	}

	params := domain.ConnectionTypeParams{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Code:        strings.TrimSpace(r.FormValue("code")),
		Description: strings.TrimSpace(r.FormValue("description")),
	}
	if params.Name == "" {
		SetFlash(w, "error", "Connection type name is required.")
		http.Redirect(w, r, "/connection-types", http.StatusSeeOther)
		return
	}

	ct, err := h.connTypes.Create(r.Context(), params)
	if err != nil {
		SetFlash(w, "error", domain.ErrorMessage(err))
		http.Redirect(w, r, "/connection-types", http.StatusSeeOther)
		return
	}

	SetFlash(w, "success", "Connection type "+ct.Name+" created.")
	http.Redirect(w, r, "/connection-types", http.StatusSeeOther)
}

// Update processes the inline update form.
func (h *ConnectionTypeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(r, "id")
	if !ok {
		NotFoundResponse(w, r, h.logger)
		return
	}
	if err := r.ParseForm(); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("connection_types.update", "Invalid form submission"))
		return
	}
	if !CheckCSRF(w, r) {
		return
	}

	params := domain.ConnectionTypeParams{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Code:        strings.TrimSpace(r.FormValue("code")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Status:      strings.TrimSpace(r.FormValue("status")),
	}
	if params.Name == "" {
		SetFlash(w, "error", "Connection type name is required.")
		http.Redirect(w, r, "/connection-types", http.StatusSeeOther)
		return
	}

	if _, err := h.connTypes.Update(r.Context(), id, params); err != nil {
		SetFlash(w, "error", domain.ErrorMessage(err))
		http.Redirect(w, r, "/connection-types", http.StatusSeeOther)
		return
	}

	SetFlash(w, "success", "Connection type updated.")
	http.Redirect(w, r, "/connection-types", http.StatusSeeOther)
}

// Delete removes a connection type.
func (h *ConnectionTypeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(r, "id")
	if !ok {
		NotFoundResponse(w, r, h.logger)
		return
	}
	if !CheckCSRF(w, r) {
		return
	}

	if err := h.connTypes.Delete(r.Context(), id); err != nil {
		if domain.ErrorCode(err) == domain.ECONFLICT {
			SetFlash(w, "error", domain.ErrorMessage(err))
			http.Redirect(w, r, "/connection-types", http.StatusSeeOther)
			return
		}
		ErrorResponse(w, r, h.logger, err)
		return
	}

	SetFlash(w, "success", "Connection type deleted.")
	http.Redirect(w, r, "/connection-types", http.StatusSeeOther)
}
