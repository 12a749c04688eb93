package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/dhakanet/ispconsole/internal/domain"
	"github.com/dhakanet/ispconsole/internal/export"
	"github.com/dhakanet/ispconsole/internal/service"
)

// CustomerHandler handles customer pages.
type CustomerHandler struct {
	customers service.CustomerService
	zones     service.ZoneService
	connTypes service.ConnectionTypeService
	exporter  *export.Exporter
	renderer  TemplateRenderer
	logger    *slog.Logger
	isSecure  bool
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(
	customers service.CustomerService,
	zones service.ZoneService,
	connTypes service.ConnectionTypeService,
	exporter *export.Exporter,
	renderer TemplateRenderer,
	logger *slog.Logger,
	isSecure bool,
) *CustomerHandler {
	return &CustomerHandler{
		customers: customers,
		zones:     zones,
		connTypes: connTypes,
		exporter:  exporter,
		renderer:  renderer,
		logger:    logger,
		isSecure:  isSecure,
	}
}

// CustomerListPageData is passed to the customers/index template.
type CustomerListPageData struct {
	PageData
	Customers  []domain.Customer
	Zones      []domain.Zone
	Query      domain.ListQuery
	Pagination domain.Pagination
	QueryFunc  func(page int) string
}

// CustomerFormPageData is passed to the customers/new and customers/edit templates.
type CustomerFormPageData struct {
	PageData
	Customer        *domain.Customer  // nil on the create form
	Zones           []domain.Zone
	ConnectionTypes []domain.ConnectionType
	Form            map[string]string
	Errors          map[string]string
}

// List renders the customer list with search, status, and zone filters.
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	q := ParseListQuery(r, "zone")

	page, err := h.customers.List(r.Context(), q)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	zones, err := h.zones.List(r.Context(), domain.ListQuery{})
	if err != nil {
		h.logger.Warn("failed to load zones for filter", "error", err)
		zones = &domain.Page[domain.Zone]{}
	}

	data := CustomerListPageData{
		PageData:   NewPageData(w, r, h.isSecure),
		Customers:  page.Results,
		Zones:      zones.Results,
		Query:      q,
		Pagination: domain.NewPagination(q.Page, page.Count),
		QueryFunc:  func(p int) string { return ListQueryString(q, p) },
	}
	h.renderer.RenderHTTP(w, "customers/index", data)
}

// Show renders one customer's detail page.
func (h *CustomerHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(r, "id")
	if !ok {
		NotFoundResponse(w, r, h.logger)
		return
	}

	customer, err := h.customers.Get(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	data := struct {
		PageData
		Customer *domain.Customer
	}{
		PageData: NewPageData(w, r, h.isSecure),
		Customer: customer,
	}
	h.renderer.RenderHTTP(w, "customers/show", data)
}

// New renders the create form.
func (h *CustomerHandler) New(w http.ResponseWriter, r *http.Request) {
	data, err := h.formPageData(w, r, nil, nil, nil)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	h.renderer.RenderHTTP(w, "customers/new", data)
}

// Create processes the create form.
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("customers.create", "Invalid form submission"))
		return
	}
	if !CheckCSRF(w, r) {
		return
	}

	params, formValues, fieldErrors := parseCustomerForm(r)
	if len(fieldErrors) > 0 {
		h.renderCustomerForm(w, r, "customers/new", nil, formValues, fieldErrors)
		return
	}

	customer, err := h.customers.Create(r.Context(), params)
	if err != nil {
		if fields := domain.FieldErrors(err); fields != nil {
			h.renderCustomerForm(w, r, "customers/new", nil, formValues, fields)
			return
		}
		ErrorResponse(w, r, h.logger, err)
		return
	}

	SetFlash(w, "success", "Customer "+customer.Name+" created.")
	http.Redirect(w, r, "/customers", http.StatusSeeOther)
}

// Edit renders the update form.
func (h *CustomerHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(r, "id")
	if !ok {
		NotFoundResponse(w, r, h.logger)
		return
	}

	customer, err := h.customers.Get(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	data, err := h.formPageData(w, r, customer, customerFormValues(customer), nil)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	h.renderer.RenderHTTP(w, "customers/edit", data)
}

// Update processes the update form.
func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(r, "id")
	if !ok {
		NotFoundResponse(w, r, h.logger)
		return
	}
	if err := r.ParseForm(); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("customers.update", "Invalid form submission"))
		return
	}
	if !CheckCSRF(w, r) {
		return
	}

	params, formValues, fieldErrors := parseCustomerForm(r)
	if len(fieldErrors) > 0 {
		h.renderCustomerEditForm(w, r, id, formValues, fieldErrors)
		return
	}

	customer, err := h.customers.Update(r.Context(), id, params)
	if err != nil {
		if fields := domain.FieldErrors(err); fields != nil {
			h.renderCustomerEditForm(w, r, id, formValues, fields)
			return
		}
		ErrorResponse(w, r, h.logger, err)
		return
	}

	SetFlash(w, "success", "Customer "+customer.Name+" updated.")
	http.Redirect(w, r, "/customers", http.StatusSeeOther)
}

// Delete removes a customer.
func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(r, "id")
	if !ok {
		NotFoundResponse(w, r, h.logger)
		return
	}
	if !CheckCSRF(w, r) {
		return
	}

	if err := h.customers.Delete(r.Context(), id); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	SetFlash(w, "success", "Customer deleted.")
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/customers")
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, "/customers", http.StatusSeeOther)
}

// Export writes the filtered customer list as CSV and redirects to the
// download URL. All pages matching the current filters are included.
func (h *CustomerHandler) Export(w http.ResponseWriter, r *http.Request) {
	q := ParseListQuery(r, "zone")

	var all []domain.Customer
	q.Page = 1
	for {
		page, err := h.customers.List(r.Context(), q)
		if err != nil {
			ErrorResponse(w, r, h.logger, err)
			return
		}
		all = append(all, page.Results...)
		if len(all) >= page.Count || len(page.Results) == 0 {
			break
		}
		q.Page++
	}

	url, err := h.exporter.Customers(r.Context(), all)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

func (h *CustomerHandler) formPageData(w http.ResponseWriter, r *http.Request, customer *domain.Customer, formValues, fieldErrors map[string]string) (CustomerFormPageData, error) {
	zones, err := h.zones.List(r.Context(), domain.ListQuery{})
	if err != nil {
		return CustomerFormPageData{}, err
	}
	connTypes, err := h.connTypes.List(r.Context(), domain.ListQuery{})
	if err != nil {
		return CustomerFormPageData{}, err
	}

	if formValues == nil {
		formValues = make(map[string]string)
	}
	if fieldErrors == nil {
		fieldErrors = make(map[string]string)
	}
	return CustomerFormPageData{
		PageData:        NewPageData(w, r, h.isSecure),
		Customer:        customer,
		Zones:           zones.Results,
		ConnectionTypes: connTypes.Results,
		Form:            formValues,
		Errors:          fieldErrors,
	}, nil
}

func (h *CustomerHandler) renderCustomerForm(w http.ResponseWriter, r *http.Request, template string, customer *domain.Customer, formValues, fieldErrors map[string]string) {
	data, err := h.formPageData(w, r, customer, formValues, fieldErrors)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	h.renderer.RenderHTTP(w, template, data)
}

func (h *CustomerHandler) renderCustomerEditForm(w http.ResponseWriter, r *http.Request, id int64, formValues, fieldErrors map[string]string) {
	customer, err := h.customers.Get(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	h.renderCustomerForm(w, r, "customers/edit", customer, formValues, fieldErrors)
}

// parseCustomerForm extracts and validates the customer form fields.
func parseCustomerForm(r *http.Request) (domain.CustomerParams, map[string]string, map[string]string) {
	formValues := map[string]string{
		"name":            strings.TrimSpace(r.FormValue("name")),
		"email":           strings.TrimSpace(r.FormValue("email")),
		"phone":           strings.TrimSpace(r.FormValue("phone")),
		"nid":             strings.TrimSpace(r.FormValue("nid")),
		"address":         strings.TrimSpace(r.FormValue("address")),
		"zone":            strings.TrimSpace(r.FormValue("zone")),
		"billing_type":    strings.TrimSpace(r.FormValue("billing_type")),
		"connection_type": strings.TrimSpace(r.FormValue("connection_type")),
		"mac_address":     strings.TrimSpace(r.FormValue("mac_address")),
		"status":          strings.TrimSpace(r.FormValue("status")),
	}

	fieldErrors := make(map[string]string)
	if formValues["name"] == "" {
		fieldErrors["name"] = "Name is required"
	}
	if formValues["phone"] == "" {
		fieldErrors["phone"] = "Phone number is required"
	}
	if formValues["address"] == "" {
		fieldErrors["address"] = "Address is required"
	}

	zone, err := strconv.ParseInt(formValues["zone"], 10, 64)
	if err != nil || zone < 1 {
		fieldErrors["zone"] = "Select a zone"
	}
	if formValues["billing_type"] == "" {
		fieldErrors["billing_type"] = "Select a billing type"
	}

	var connType int64
	if formValues["connection_type"] != "" {
		connType, err = strconv.ParseInt(formValues["connection_type"], 10, 64)
		if err != nil || connType < 1 {
			fieldErrors["connection_type"] = "Select a valid connection type"
		}
	}

	params := domain.CustomerParams{
		Name:           formValues["name"],
		Email:          formValues["email"],
		Phone:          formValues["phone"],
		NID:            formValues["nid"],
		Address:        formValues["address"],
		Zone:           zone,
		BillingType:    formValues["billing_type"],
		ConnectionType: connType,
		MACAddress:     formValues["mac_address"],
		Status:         formValues["status"],
	}
	return params, formValues, fieldErrors
}

// customerFormValues seeds the edit form from an existing customer.
func customerFormValues(c *domain.Customer) map[string]string {
	values := map[string]string{
		"name":         c.Name,
		"email":        c.Email,
		"phone":        c.Phone,
		"nid":          c.NID,
		"address":      c.Address,
		"zone":         strconv.FormatInt(c.Zone, 10),
		"billing_type": c.BillingType,
		"mac_address":  c.MACAddress,
		"status":       c.Status,
	}
	if c.ConnectionType > 0 {
		values["connection_type"] = strconv.FormatInt(c.ConnectionType, 10)
	}
	return values
}
