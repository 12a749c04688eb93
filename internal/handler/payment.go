package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dhakanet/ispconsole/internal/domain"
	"github.com/dhakanet/ispconsole/internal/export"
	"github.com/dhakanet/ispconsole/internal/service"
)

// PaymentHandler handles the payment ledger and advance payments.
type PaymentHandler struct {
	payments  service.PaymentService
	customers service.CustomerService
	exporter  *export.Exporter
	renderer  TemplateRenderer
	logger    *slog.Logger
	isSecure  bool
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(
	payments service.PaymentService,
	customers service.CustomerService,
	exporter *export.Exporter,
	renderer TemplateRenderer,
	logger *slog.Logger,
	isSecure bool,
) *PaymentHandler {
	return &PaymentHandler{
		payments:  payments,
		customers: customers,
		exporter:  exporter,
		renderer:  renderer,
		logger:    logger,
		isSecure:  isSecure,
	}
}

// PaymentListPageData is passed to the payments/index template.
type PaymentListPageData struct {
	PageData
	Payments   []domain.Payment
	Query      domain.ListQuery
	Pagination domain.Pagination
	QueryFunc  func(page int) string
}

// AdvanceListPageData is passed to the advance-payments/index template.
type AdvanceListPageData struct {
	PageData
	Advances       []domain.AdvancePayment
	Customers      []domain.Customer
	PaymentMethods []string
	Query          domain.ListQuery
	Pagination     domain.Pagination
	QueryFunc      func(page int) string
	Form           map[string]string
	Errors         map[string]string
}

// List renders the payment ledger.
func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	q := ParseListQuery(r, "method")

	page, err := h.payments.List(r.Context(), q)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	data := PaymentListPageData{
		PageData:   NewPageData(w, r, h.isSecure),
		Payments:   page.Results,
		Query:      q,
		Pagination: domain.NewPagination(q.Page, page.Count),
		QueryFunc:  func(p int) string { return ListQueryString(q, p) },
	}
	h.renderer.RenderHTTP(w, "payments/index", data)
}

// Show renders one payment receipt.
func (h *PaymentHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(r, "id")
	if !ok {
		NotFoundResponse(w, r, h.logger)
		return
	}

	payment, err := h.payments.Get(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	data := struct {
		PageData
		Payment *domain.Payment
	}{
		PageData: NewPageData(w, r, h.isSecure),
		Payment:  payment,
	}
	h.renderer.RenderHTTP(w, "payments/show", data)
}

// Delete voids a payment record.
func (h *PaymentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(r, "id")
	if !ok {
		NotFoundResponse(w, r, h.logger)
		return
	}
	if !CheckCSRF(w, r) {
		return
	}

	if err := h.payments.Delete(r.Context(), id); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	SetFlash(w, "success", "Payment deleted.")
	http.Redirect(w, r, "/payments", http.StatusSeeOther)
}

// Export writes the filtered payment list as CSV and redirects to the
// download URL.
func (h *PaymentHandler) Export(w http.ResponseWriter, r *http.Request) {
	q := ParseListQuery(r, "method")

	var all []domain.Payment
	q.Page = 1
	for {
		page, err := h.payments.List(r.Context(), q)
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

	url, err := h.exporter.Payments(r.Context(), all)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// ListAdvance renders the advance payment list with an inline create form.
func (h *PaymentHandler) ListAdvance(w http.ResponseWriter, r *http.Request) {
	h.renderAdvanceList(w, r, nil, nil)
}

// CreateAdvance records a customer credit ahead of billing.
func (h *PaymentHandler) CreateAdvance(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("advance_payments.create", "Invalid form submission"))
		return
	}
	if !CheckCSRF(w, r) {
		return
	}

	params, formValues, fieldErrors := parseAdvanceForm(r)
	if len(fieldErrors) > 0 {
		h.renderAdvanceList(w, r, formValues, fieldErrors)
		return
	}

	advance, err := h.payments.CreateAdvance(r.Context(), params)
	if err != nil {
		if fields := domain.FieldErrors(err); fields != nil {
			h.renderAdvanceList(w, r, formValues, fields)
			return
		}
		ErrorResponse(w, r, h.logger, err)
		return
	}

	SetFlash(w, "success", "Advance payment "+advance.AdvanceNumber+" recorded.")
	http.Redirect(w, r, "/advance-payments", http.StatusSeeOther)
}

// DeleteAdvance removes an unapplied advance payment.
func (h *PaymentHandler) DeleteAdvance(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(r, "id")
	if !ok {
		NotFoundResponse(w, r, h.logger)
		return
	}
	if !CheckCSRF(w, r) {
		return
	}

	if err := h.payments.DeleteAdvance(r.Context(), id); err != nil {
		// Advances already applied to bills come back as a conflict.
		if domain.ErrorCode(err) == domain.ECONFLICT {
			SetFlash(w, "error", domain.ErrorMessage(err))
			http.Redirect(w, r, "/advance-payments", http.StatusSeeOther)
			return
		}
		ErrorResponse(w, r, h.logger, err)
		return
	}

	SetFlash(w, "success", "Advance payment deleted.")
	http.Redirect(w, r, "/advance-payments", http.StatusSeeOther)
}

func (h *PaymentHandler) renderAdvanceList(w http.ResponseWriter, r *http.Request, formValues, fieldErrors map[string]string) {
	q := ParseListQuery(r, "customer")

	page, err := h.payments.ListAdvance(r.Context(), q)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	customers, err := h.customers.List(r.Context(), domain.ListQuery{Status: domain.CustomerActive})
	if err != nil {
		h.logger.Warn("failed to load customers for advance form", "error", err)
		customers = &domain.Page[domain.Customer]{}
	}

	if formValues == nil {
		formValues = map[string]string{
			"payment_date": time.Now().Format("2006-01-02"),
		}
	}
	if fieldErrors == nil {
		fieldErrors = make(map[string]string)
	}
	data := AdvanceListPageData{
		PageData:       NewPageData(w, r, h.isSecure),
		Advances:       page.Results,
		Customers:      customers.Results,
		PaymentMethods: domain.PaymentMethods,
		Query:          q,
		Pagination:     domain.NewPagination(q.Page, page.Count),
		QueryFunc:      func(p int) string { return ListQueryString(q, p) },
		Form:           formValues,
		Errors:         fieldErrors,
	}
	h.renderer.RenderHTTP(w, "advance-payments/index", data)
}

// parseAdvanceForm extracts and validates the advance payment form fields.
func parseAdvanceForm(r *http.Request) (domain.AdvancePaymentParams, map[string]string, map[string]string) {
	formValues := map[string]string{
		"customer":       strings.TrimSpace(r.FormValue("customer")),
		"amount":         strings.TrimSpace(r.FormValue("amount")),
		"payment_method": strings.TrimSpace(r.FormValue("payment_method")),
		"payment_date":   strings.TrimSpace(r.FormValue("payment_date")),
		"transaction_id": strings.TrimSpace(r.FormValue("transaction_id")),
		"notes":          strings.TrimSpace(r.FormValue("notes")),
	}

	fieldErrors := make(map[string]string)

	customer, err := strconv.ParseInt(formValues["customer"], 10, 64)
	if err != nil || customer < 1 {
		fieldErrors["customer"] = "Select a customer"
	}
	amount, err := decimal.NewFromString(formValues["amount"])
	if err != nil || !amount.IsPositive() {
		fieldErrors["amount"] = "Amount must be a positive number"
	}
	if formValues["payment_method"] == "" {
		fieldErrors["payment_method"] = "Select a payment method"
	}
	if formValues["payment_date"] == "" {
		fieldErrors["payment_date"] = "Payment date is required"
	} else if _, err := time.Parse("2006-01-02", formValues["payment_date"]); err != nil {
		fieldErrors["payment_date"] = "Payment date must be YYYY-MM-DD"
	}

	params := domain.AdvancePaymentParams{
		Customer:      customer,
		Amount:        formValues["amount"],
		PaymentMethod: formValues["payment_method"],
		PaymentDate:   formValues["payment_date"],
		TransactionID: formValues["transaction_id"],
		Notes:         formValues["notes"],
	}
	return params, formValues, fieldErrors
}
