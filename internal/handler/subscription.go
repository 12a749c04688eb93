package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/dhakanet/ispconsole/internal/domain"
	"github.com/dhakanet/ispconsole/internal/service"
)

// SubscriptionHandler handles subscription pages, the lifecycle actions,
// and the force-link confirmation flow.
type SubscriptionHandler struct {
	subscriptions service.SubscriptionService
	customers     service.CustomerService
	packages      service.PackageService
	routers       service.RouterService
	renderer      TemplateRenderer
	logger        *slog.Logger
	isSecure      bool
}

// NewSubscriptionHandler creates a new SubscriptionHandler.
func NewSubscriptionHandler(
	subscriptions service.SubscriptionService,
	customers service.CustomerService,
	packages service.PackageService,
	routers service.RouterService,
	renderer TemplateRenderer,
	logger *slog.Logger,
	isSecure bool,
) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptions: subscriptions,
		customers:     customers,
		packages:      packages,
		routers:       routers,
		renderer:      renderer,
		logger:        logger,
		isSecure:      isSecure,
	}
}

// SubscriptionListPageData is passed to the subscriptions/index template.
type SubscriptionListPageData struct {
	PageData
	Subscriptions []domain.Subscription
	Query         domain.ListQuery
	Pagination    domain.Pagination
	QueryFunc     func(page int) string
}

// SubscriptionFormPageData is passed to the subscriptions/new and
// subscriptions/edit templates.
type SubscriptionFormPageData struct {
	PageData
	Subscription *domain.Subscription
	Customers    []domain.Customer
	Packages     []domain.Package
	Routers      []domain.Router
	Form         map[string]string
	Errors       map[string]string
}

// ForceLinkPageData is passed to the subscriptions/confirm-force template.
// Form carries every submitted field so the confirmation can resubmit the
// identical payload with force_link set.
type ForceLinkPageData struct {
	PageData
	RouterMessage string
	Form          map[string]string
}

// List renders the subscription list.
func (h *SubscriptionHandler) List(w http.ResponseWriter, r *http.Request) {
	q := ParseListQuery(r, "customer", "package", "router")

	page, err := h.subscriptions.List(r.Context(), q)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	data := SubscriptionListPageData{
		PageData:      NewPageData(w, r, h.isSecure),
		Subscriptions: page.Results,
		Query:         q,
		Pagination:    domain.NewPagination(q.Page, page.Count),
		QueryFunc:     func(p int) string { return ListQueryString(q, p) },
	}
	h.renderer.RenderHTTP(w, "subscriptions/index", data)
}

// Show renders one subscription with its audit history.
func (h *SubscriptionHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(r, "id")
	if !ok {
		NotFoundResponse(w, r, h.logger)
		return
	}

	sub, err := h.subscriptions.Get(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	history, err := h.subscriptions.History(r.Context(), id, domain.ListQuery{})
	if err != nil {
		h.logger.Warn("failed to load subscription history", "error", err, "subscription_id", id)
		history = &domain.Page[domain.SubscriptionHistory]{}
	}

	data := struct {
		PageData
		Subscription *domain.Subscription
		History      []domain.SubscriptionHistory
	}{
		PageData:     NewPageData(w, r, h.isSecure),
		Subscription: sub,
		History:      history.Results,
	}
	h.renderer.RenderHTTP(w, "subscriptions/show", data)
}

// New renders the subscription create form.
func (h *SubscriptionHandler) New(w http.ResponseWriter, r *http.Request) {
	formValues := make(map[string]string)
	// Deep links from a customer page preselect the customer.
	if customer := r.URL.Query().Get("customer"); customer != "" {
		formValues["customer"] = customer
	}
	h.renderSubscriptionForm(w, r, "subscriptions/new", nil, formValues, nil)
}

// Create processes the create form. When the platform reports a PPPoE
// username collision it renders a confirmation page instead of an error;
// confirming resubmits the same form with force_link set.
func (h *SubscriptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("subscriptions.create", "Invalid form submission"))
		return
	}
	if !CheckCSRF(w, r) {
		return
	}

	params, formValues, fieldErrors := parseSubscriptionForm(r)
	if len(fieldErrors) > 0 {
		h.renderSubscriptionForm(w, r, "subscriptions/new", nil, formValues, fieldErrors)
		return
	}

	sub, err := h.subscriptions.Create(r.Context(), params)
	if err != nil {
		if msg, ok := service.IsRouterConflict(err); ok && !params.ForceLink {
			data := ForceLinkPageData{
				PageData:      NewPageData(w, r, h.isSecure),
				RouterMessage: msg,
				Form:          formValues,
			}
			h.renderer.RenderHTTP(w, "subscriptions/confirm-force", data)
			return
		}
		if fields := domain.FieldErrors(err); fields != nil {
			h.renderSubscriptionForm(w, r, "subscriptions/new", nil, formValues, fields)
			return
		}
		ErrorResponse(w, r, h.logger, err)
		return
	}

	SetFlash(w, "success", "Subscription for "+sub.CustomerName+" created.")
	http.Redirect(w, r, "/subscriptions", http.StatusSeeOther)
}

// Edit renders the subscription update form.
func (h *SubscriptionHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(r, "id")
	if !ok {
		NotFoundResponse(w, r, h.logger)
		return
	}

	sub, err := h.subscriptions.Get(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	h.renderSubscriptionForm(w, r, "subscriptions/edit", sub, subscriptionFormValues(sub), nil)
}

// Update processes the subscription update form.
func (h *SubscriptionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(r, "id")
	if !ok {
		NotFoundResponse(w, r, h.logger)
		return
	}
	if err := r.ParseForm(); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("subscriptions.update", "Invalid form submission"))
		return
	}
	if !CheckCSRF(w, r) {
		return
	}

	params, formValues, fieldErrors := parseSubscriptionForm(r)
	if len(fieldErrors) > 0 {
		h.renderSubscriptionEditForm(w, r, id, formValues, fieldErrors)
		return
	}

	if _, err := h.subscriptions.Update(r.Context(), id, params); err != nil {
		if fields := domain.FieldErrors(err); fields != nil {
			h.renderSubscriptionEditForm(w, r, id, formValues, fields)
			return
		}
		ErrorResponse(w, r, h.logger, err)
		return
	}

	SetFlash(w, "success", "Subscription updated.")
	http.Redirect(w, r, "/subscriptions", http.StatusSeeOther)
}

// Delete removes a subscription.
func (h *SubscriptionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(r, "id")
	if !ok {
		NotFoundResponse(w, r, h.logger)
		return
	}
	if !CheckCSRF(w, r) {
		return
	}

	if err := h.subscriptions.Delete(r.Context(), id); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	SetFlash(w, "success", "Subscription deleted.")
	http.Redirect(w, r, "/subscriptions", http.StatusSeeOther)
}

// Activate provisions the subscription on its router.
func (h *SubscriptionHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.lifecycleAction(w, r, h.subscriptions.Activate, "Subscription activated.")
}

// Suspend disables the subscription's PPPoE user.
func (h *SubscriptionHandler) Suspend(w http.ResponseWriter, r *http.Request) {
	h.lifecycleAction(w, r, h.subscriptions.Suspend, "Subscription suspended.")
}

// Sync re-pushes the subscription to its router.
func (h *SubscriptionHandler) Sync(w http.ResponseWriter, r *http.Request) {
	h.lifecycleAction(w, r, h.subscriptions.Sync, "Subscription synced to router.")
}

// ActiveConnections renders the live PPPoE session snapshot.
func (h *SubscriptionHandler) ActiveConnections(w http.ResponseWriter, r *http.Request) {
	conns, err := h.subscriptions.ActiveConnections(r.Context())
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	data := struct {
		PageData
		Connections *domain.ActiveConnections
	}{
		PageData:    NewPageData(w, r, h.isSecure),
		Connections: conns,
	}
	if r.Header.Get("HX-Request") == "true" {
		h.renderer.RenderPartial(w, "active-connections", data)
		return
	}
	h.renderer.RenderHTTP(w, "subscriptions/connections", data)
}

// lifecycleAction runs one of the activate/suspend/sync actions and
// redirects back to the subscription page.
func (h *SubscriptionHandler) lifecycleAction(w http.ResponseWriter, r *http.Request, action func(ctx context.Context, id int64) error, success string) {
	id, ok := ParseID(r, "id")
	if !ok {
		NotFoundResponse(w, r, h.logger)
		return
	}
	if !CheckCSRF(w, r) {
		return
	}

	target := "/subscriptions/" + strconv.FormatInt(id, 10)

	if err := action(r.Context(), id); err != nil {
		// Router-side failures are routine (offline router, stale
		// profile); show them on the page instead of a 5xx.
		SetFlash(w, "error", domain.ErrorMessage(err))
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}

	SetFlash(w, "success", success)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func parseSubscriptionForm(r *http.Request) (domain.SubscriptionParams, map[string]string, map[string]string) {
	formValues := map[string]string{
		"customer":          strings.TrimSpace(r.FormValue("customer")),
		"package":           strings.TrimSpace(r.FormValue("package")),
		"start_date":        strings.TrimSpace(r.FormValue("start_date")),
		"billing_day":       strings.TrimSpace(r.FormValue("billing_day")),
		"router":            strings.TrimSpace(r.FormValue("router")),
		"protocol":          strings.TrimSpace(r.FormValue("protocol")),
		"mikrotik_username": strings.TrimSpace(r.FormValue("mikrotik_username")),
		"mikrotik_password": r.FormValue("mikrotik_password"),
		"framed_ip_address": strings.TrimSpace(r.FormValue("framed_ip_address")),
		"mac_address":       strings.TrimSpace(r.FormValue("mac_address")),
		"connection_fee":    strings.TrimSpace(r.FormValue("connection_fee")),
		"force_link":        strings.TrimSpace(r.FormValue("force_link")),
	}

	fieldErrors := make(map[string]string)

	customer, err := strconv.ParseInt(formValues["customer"], 10, 64)
	if err != nil || customer < 1 {
		fieldErrors["customer"] = "Select a customer"
	}
	pkg, err := strconv.ParseInt(formValues["package"], 10, 64)
	if err != nil || pkg < 1 {
		fieldErrors["package"] = "Select a package"
	}
	if formValues["start_date"] == "" {
		fieldErrors["start_date"] = "Start date is required"
	}

	var billingDay int
	if formValues["billing_day"] != "" {
		billingDay, err = strconv.Atoi(formValues["billing_day"])
		if err != nil || billingDay < 1 || billingDay > 28 {
			fieldErrors["billing_day"] = "Billing day must be between 1 and 28"
		}
	}

	var router int64
	if formValues["router"] != "" {
		router, err = strconv.ParseInt(formValues["router"], 10, 64)
		if err != nil || router < 1 {
			fieldErrors["router"] = "Select a valid router"
		}
	}

	if formValues["protocol"] == "pppoe" {
		if formValues["mikrotik_username"] == "" {
			fieldErrors["mikrotik_username"] = "PPPoE username is required"
		}
		if router == 0 {
			fieldErrors["router"] = "PPPoE subscriptions need a router"
		}
	}

	params := domain.SubscriptionParams{
		Customer:         customer,
		Package:          pkg,
		StartDate:        formValues["start_date"],
		BillingDay:       billingDay,
		Router:           router,
		Protocol:         formValues["protocol"],
		MikrotikUsername: formValues["mikrotik_username"],
		MikrotikPassword: formValues["mikrotik_password"],
		FramedIPAddress:  formValues["framed_ip_address"],
		MACAddress:       formValues["mac_address"],
		ConnectionFee:    formValues["connection_fee"],
		ForceLink:        formValues["force_link"] == "true" || formValues["force_link"] == "1",
	}
	return params, formValues, fieldErrors
}

// subscriptionFormValues seeds the edit form from an existing subscription.
func subscriptionFormValues(s *domain.Subscription) map[string]string {
	values := map[string]string{
		"customer":          strconv.FormatInt(s.Customer, 10),
		"package":           strconv.FormatInt(s.Package, 10),
		"start_date":        s.StartDate,
		"protocol":          s.Protocol,
		"mikrotik_username": s.MikrotikUsername,
		"framed_ip_address": s.FramedIPAddress,
		"mac_address":       s.MACAddress,
	}
	if s.BillingDay > 0 {
		values["billing_day"] = strconv.Itoa(s.BillingDay)
	}
	if s.Router > 0 {
		values["router"] = strconv.FormatInt(s.Router, 10)
	}
	return values
}

func (h *SubscriptionHandler) renderSubscriptionForm(w http.ResponseWriter, r *http.Request, template string, sub *domain.Subscription, formValues, fieldErrors map[string]string) {
	customers, err := h.customers.List(r.Context(), domain.ListQuery{Status: domain.CustomerActive})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	packages, err := h.packages.List(r.Context(), domain.ListQuery{Status: "active"})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	routers, err := h.routers.List(r.Context(), domain.ListQuery{})
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
	data := SubscriptionFormPageData{
		PageData:     NewPageData(w, r, h.isSecure),
		Subscription: sub,
		Customers:    customers.Results,
		Packages:     packages.Results,
		Routers:      routers.Results,
		Form:         formValues,
		Errors:       fieldErrors,
	}
	h.renderer.RenderHTTP(w, template, data)
}

func (h *SubscriptionHandler) renderSubscriptionEditForm(w http.ResponseWriter, r *http.Request, id int64, formValues, fieldErrors map[string]string) {
	sub, err := h.subscriptions.Get(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	h.renderSubscriptionForm(w, r, "subscriptions/edit", sub, formValues, fieldErrors)
}
