package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dhakanet/ispconsole/internal/domain"
	"github.com/dhakanet/ispconsole/internal/service"
)

// PackageHandler handles bandwidth package pages.
type PackageHandler struct {
	packages service.PackageService
	renderer TemplateRenderer
	logger   *slog.Logger
	isSecure bool
}

// NewPackageHandler creates a new PackageHandler.
func NewPackageHandler(packages service.PackageService, renderer TemplateRenderer, logger *slog.Logger, isSecure bool) *PackageHandler {
	return &PackageHandler{
		packages: packages,
		renderer: renderer,
		logger:   logger,
		isSecure: isSecure,
	}
}

// PackageListPageData is passed to the packages/index template.
type PackageListPageData struct {
	PageData
	Packages   []domain.Package
	Query      domain.ListQuery
	Pagination domain.Pagination
	QueryFunc  func(page int) string
}

// PackageFormPageData is passed to the packages/new and packages/edit templates.
type PackageFormPageData struct {
	PageData
	Package *domain.Package
	Form    map[string]string
	Errors  map[string]string
}

// List renders the package list.
func (h *PackageHandler) List(w http.ResponseWriter, r *http.Request) {
	q := ParseListQuery(r)

	page, err := h.packages.List(r.Context(), q)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	data := PackageListPageData{
		PageData:   NewPageData(w, r, h.isSecure),
		Packages:   page.Results,
		Query:      q,
		Pagination: domain.NewPagination(q.Page, page.Count),
		QueryFunc:  func(p int) string { return ListQueryString(q, p) },
	}
	h.renderer.RenderHTTP(w, "packages/index", data)
}

// New renders the package create form.
func (h *PackageHandler) New(w http.ResponseWriter, r *http.Request) {
	h.renderPackageForm(w, r, "packages/new", nil, nil, nil)
}

// Create processes the package create form.
func (h *PackageHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("packages.create", "Invalid form submission"))
		return
	}
	if !CheckCSRF(w, r) {
		return
	}

	params, formValues, fieldErrors := parsePackageForm(r)
	if len(fieldErrors) > 0 {
		h.renderPackageForm(w, r, "packages/new", nil, formValues, fieldErrors)
		return
	}

	pkg, err := h.packages.Create(r.Context(), params)
	if err != nil {
		if fields := domain.FieldErrors(err); fields != nil {
			h.renderPackageForm(w, r, "packages/new", nil, formValues, fields)
			return
		}
		ErrorResponse(w, r, h.logger, err)
		return
	}

	SetFlash(w, "success", "Package "+pkg.Name+" created.")
	http.Redirect(w, r, "/packages", http.StatusSeeOther)
}

// Edit renders the package update form.
func (h *PackageHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(r, "id")
	if !ok {
		NotFoundResponse(w, r, h.logger)
		return
	}

	pkg, err := h.packages.Get(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	h.renderPackageForm(w, r, "packages/edit", pkg, packageFormValues(pkg), nil)
}

// Update processes the package update form.
func (h *PackageHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(r, "id")
	if !ok {
		NotFoundResponse(w, r, h.logger)
		return
	}
	if err := r.ParseForm(); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("packages.update", "Invalid form submission"))
		return
	}
	if !CheckCSRF(w, r) {
		return
	}

	params, formValues, fieldErrors := parsePackageForm(r)
	if len(fieldErrors) > 0 {
		h.renderPackageEditForm(w, r, id, formValues, fieldErrors)
		return
	}

	pkg, err := h.packages.Update(r.Context(), id, params)
	if err != nil {
		if fields := domain.FieldErrors(err); fields != nil {
			h.renderPackageEditForm(w, r, id, formValues, fields)
			return
		}
		ErrorResponse(w, r, h.logger, err)
		return
	}

	SetFlash(w, "success", "Package "+pkg.Name+" updated.")
	http.Redirect(w, r, "/packages", http.StatusSeeOther)
}

// Delete removes a package.
func (h *PackageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(r, "id")
	if !ok {
		NotFoundResponse(w, r, h.logger)
		return
	}
	if !CheckCSRF(w, r) {
		return
	}

	if err := h.packages.Delete(r.Context(), id); err != nil {
		// Packages with active subscriptions come back as a conflict.
		if domain.ErrorCode(err) == domain.ECONFLICT {
			SetFlash(w, "error", domain.ErrorMessage(err))
			http.Redirect(w, r, "/packages", http.StatusSeeOther)
			return
		}
		ErrorResponse(w, r, h.logger, err)
		return
	}

	SetFlash(w, "success", "Package deleted.")
	http.Redirect(w, r, "/packages", http.StatusSeeOther)
}

func (h *PackageHandler) renderPackageForm(w http.ResponseWriter, r *http.Request, template string, pkg *domain.Package, formValues, fieldErrors map[string]string) {
	if formValues == nil {
		formValues = make(map[string]string)
	}
	if fieldErrors == nil {
		fieldErrors = make(map[string]string)
	}
	data := PackageFormPageData{
		PageData: NewPageData(w, r, h.isSecure),
		Package:  pkg,
		Form:     formValues,
		Errors:   fieldErrors,
	}
	h.renderer.RenderHTTP(w, template, data)
}

func (h *PackageHandler) renderPackageEditForm(w http.ResponseWriter, r *http.Request, id int64, formValues, fieldErrors map[string]string) {
	pkg, err := h.packages.Get(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	h.renderPackageForm(w, r, "packages/edit", pkg, formValues, fieldErrors)
}

// parsePackageForm extracts and validates the package form fields.
func parsePackageForm(r *http.Request) (domain.PackageParams, map[string]string, map[string]string) {
	formValues := map[string]string{
		"name":                strings.TrimSpace(r.FormValue("name")),
		"bandwidth_download":  strings.TrimSpace(r.FormValue("bandwidth_download")),
		"bandwidth_upload":    strings.TrimSpace(r.FormValue("bandwidth_upload")),
		"price":               strings.TrimSpace(r.FormValue("price")),
		"validity_days":       strings.TrimSpace(r.FormValue("validity_days")),
		"description":         strings.TrimSpace(r.FormValue("description")),
		"mikrotik_queue_name": strings.TrimSpace(r.FormValue("mikrotik_queue_name")),
		"priority":            strings.TrimSpace(r.FormValue("priority")),
		"status":              strings.TrimSpace(r.FormValue("status")),
	}

	fieldErrors := make(map[string]string)
	if formValues["name"] == "" {
		fieldErrors["name"] = "Name is required"
	}

	download, err := strconv.Atoi(formValues["bandwidth_download"])
	if err != nil || download < 1 {
		fieldErrors["bandwidth_download"] = "Download bandwidth must be a positive number of Mbps"
	}
	upload, err := strconv.Atoi(formValues["bandwidth_upload"])
	if err != nil || upload < 1 {
		fieldErrors["bandwidth_upload"] = "Upload bandwidth must be a positive number of Mbps"
	}

	price, err := decimal.NewFromString(formValues["price"])
	if err != nil || price.IsNegative() {
		fieldErrors["price"] = "Price must be a non-negative amount"
	}

	var validityDays int
	if formValues["validity_days"] != "" {
		validityDays, err = strconv.Atoi(formValues["validity_days"])
		if err != nil || validityDays < 1 {
			fieldErrors["validity_days"] = "Validity must be a positive number of days"
		}
	}

	var priority int
	if formValues["priority"] != "" {
		priority, err = strconv.Atoi(formValues["priority"])
		if err != nil || priority < 1 || priority > 8 {
			fieldErrors["priority"] = "Priority must be between 1 and 8"
		}
	}

	params := domain.PackageParams{
		Name:              formValues["name"],
		BandwidthDownload: download,
		BandwidthUpload:   upload,
		Price:             price,
		ValidityDays:      validityDays,
		Description:       formValues["description"],
		MikrotikQueueName: formValues["mikrotik_queue_name"],
		Priority:          priority,
		Status:            formValues["status"],
	}
	return params, formValues, fieldErrors
}

// packageFormValues seeds the edit form from an existing package.
func packageFormValues(p *domain.Package) map[string]string {
	values := map[string]string{
		"name":                p.Name,
		"bandwidth_download":  strconv.Itoa(p.BandwidthDownload),
		"bandwidth_upload":    strconv.Itoa(p.BandwidthUpload),
		"price":               p.Price.StringFixed(2),
		"description":         p.Description,
		"mikrotik_queue_name": p.MikrotikQueueName,
		"status":              p.Status,
	}
	if p.ValidityDays > 0 {
		values["validity_days"] = strconv.Itoa(p.ValidityDays)
	}
	if p.Priority > 0 {
		values["priority"] = strconv.Itoa(p.Priority)
	}
	return values
}
