package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dhakanet/ispconsole/internal/domain"
	"github.com/dhakanet/ispconsole/internal/service"
)

// BillingExtrasHandler handles invoices, discounts, refunds, and
// connection fees. These are smaller resources sharing the same
// list-plus-inline-form page shape.
type BillingExtrasHandler struct {
	invoices  service.InvoiceService
	discounts service.DiscountService
	refunds   service.RefundService
	fees      service.ConnectionFeeService
	customers service.CustomerService
	renderer  TemplateRenderer
	logger    *slog.Logger
	isSecure  bool
}

// NewBillingExtrasHandler creates a new BillingExtrasHandler.
func NewBillingExtrasHandler(
	invoices service.InvoiceService,
	discounts service.DiscountService,
	refunds service.RefundService,
	fees service.ConnectionFeeService,
	customers service.CustomerService,
	renderer TemplateRenderer,
	logger *slog.Logger,
	isSecure bool,
) *BillingExtrasHandler {
	return &BillingExtrasHandler{
		invoices:  invoices,
		discounts: discounts,
		refunds:   refunds,
		fees:      fees,
		customers: customers,
		renderer:  renderer,
		logger:    logger,
		isSecure:  isSecure,
	}
}

// InvoiceListPageData is passed to the invoices/index template.
type InvoiceListPageData struct {
	PageData
	Invoices   []domain.Invoice
	Query      domain.ListQuery
	Pagination domain.Pagination
	QueryFunc  func(page int) string
}

// ListInvoices renders the invoice list.
func (h *BillingExtrasHandler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	q := ParseListQuery(r)

	page, err := h.invoices.List(r.Context(), q)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	data := InvoiceListPageData{
		PageData:   NewPageData(w, r, h.isSecure),
		Invoices:   page.Results,
		Query:      q,
		Pagination: domain.NewPagination(q.Page, page.Count),
		QueryFunc:  func(p int) string { return ListQueryString(q, p) },
	}
	h.renderer.RenderHTTP(w, "invoices/index", data)
}

// CreateInvoice issues an invoice for a bill.
func (h *BillingExtrasHandler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("invoices.create", "Invalid form submission"))
		return
	}
	if !CheckCSRF(w, r) {
		return
	}

	bill, err := strconv.ParseInt(strings.TrimSpace(r.FormValue("bill")), 10, 64)
	if err != nil || bill < 1 {
		SetFlash(w, "error", "Select a bill to invoice.")
		http.Redirect(w, r, "/invoices", http.StatusSeeOther)
		return
	}

	issueDate := strings.TrimSpace(r.FormValue("issue_date"))
	if issueDate == "" {
		issueDate = time.Now().Format("2006-01-02")
	}

	invoice, err := h.invoices.Create(r.Context(), domain.InvoiceParams{Bill: bill, IssueDate: issueDate})
	if err != nil {
		SetFlash(w, "error", domain.ErrorMessage(err))
		http.Redirect(w, r, "/invoices", http.StatusSeeOther)
		return
	}

	SetFlash(w, "success", "Invoice "+invoice.InvoiceNumber+" issued.")
	http.Redirect(w, r, "/invoices", http.StatusSeeOther)
}

// DeleteInvoice removes an invoice.
func (h *BillingExtrasHandler) DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(r, "id")
	if !ok {
		NotFoundResponse(w, r, h.logger)
		return
	}
	if !CheckCSRF(w, r) {
		return
	}

	if err := h.invoices.Delete(r.Context(), id); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	SetFlash(w, "success", "Invoice deleted.")
	http.Redirect(w, r, "/invoices", http.StatusSeeOther)
}

// DiscountListPageData is passed to the discounts/index template.
type DiscountListPageData struct {
	PageData
	Discounts  []domain.Discount
	Customers  []domain.Customer
	Query      domain.ListQuery
	Pagination domain.Pagination
	QueryFunc  func(page int) string
	Form       map[string]string
	Errors     map[string]string
}

// ListDiscounts renders the discount list with an inline create form.
func (h *BillingExtrasHandler) ListDiscounts(w http.ResponseWriter, r *http.Request) {
	h.renderDiscountList(w, r, nil, nil)
}

// CreateDiscount processes the discount create form.
func (h *BillingExtrasHandler) CreateDiscount(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("discounts.create", "Invalid form submission"))
		return
	}
	if !CheckCSRF(w, r) {
		return
	}

	params, formValues, fieldErrors := parseDiscountForm(r)
	if len(fieldErrors) > 0 {
		h.renderDiscountList(w, r, formValues, fieldErrors)
		return
	}

	if _, err := h.discounts.Create(r.Context(), params); err != nil {
		if fields := domain.FieldErrors(err); fields != nil {
			h.renderDiscountList(w, r, formValues, fields)
			return
		}
		ErrorResponse(w, r, h.logger, err)
		return
	}

	SetFlash(w, "success", "Discount created.")
	http.Redirect(w, r, "/discounts", http.StatusSeeOther)
}

// UpdateDiscount processes the discount update form. Updates are full
// replacements, so the form must carry every field.
func (h *BillingExtrasHandler) UpdateDiscount(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(r, "id")
	if !ok {
		NotFoundResponse(w, r, h.logger)
		return
	}
	if err := r.ParseForm(); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("discounts.update", "Invalid form submission"))
		return
	}
	if !CheckCSRF(w, r) {
		return
	}

	params, formValues, fieldErrors := parseDiscountForm(r)
	if len(fieldErrors) > 0 {
		h.renderDiscountList(w, r, formValues, fieldErrors)
		return
	}

	if _, err := h.discounts.Update(r.Context(), id, params); err != nil {
		SetFlash(w, "error", domain.ErrorMessage(err))
		http.Redirect(w, r, "/discounts", http.StatusSeeOther)
		return
	}

	SetFlash(w, "success", "Discount updated.")
	http.Redirect(w, r, "/discounts", http.StatusSeeOther)
}

// DeleteDiscount removes a discount.
func (h *BillingExtrasHandler) DeleteDiscount(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(r, "id")
	if !ok {
		NotFoundResponse(w, r, h.logger)
		return
	}
	if !CheckCSRF(w, r) {
		return
	}

	if err := h.discounts.Delete(r.Context(), id); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	SetFlash(w, "success", "Discount deleted.")
	http.Redirect(w, r, "/discounts", http.StatusSeeOther)
}

// RefundListPageData is passed to the refunds/index template.
type RefundListPageData struct {
	PageData
	Refunds    []domain.Refund
	Customers  []domain.Customer
	Query      domain.ListQuery
	Pagination domain.Pagination
	QueryFunc  func(page int) string
	Form       map[string]string
	Errors     map[string]string
}

// ListRefunds renders the refund list with an inline request form.
func (h *BillingExtrasHandler) ListRefunds(w http.ResponseWriter, r *http.Request) {
	h.renderRefundList(w, r, nil, nil)
}

// CreateRefund submits a refund request.
func (h *BillingExtrasHandler) CreateRefund(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("refunds.create", "Invalid form submission"))
		return
	}
	if !CheckCSRF(w, r) {
		return
	}

	params, formValues, fieldErrors := parseRefundForm(r)
	if len(fieldErrors) > 0 {
		h.renderRefundList(w, r, formValues, fieldErrors)
		return
	}

	refund, err := h.refunds.Create(r.Context(), params)
	if err != nil {
		if fields := domain.FieldErrors(err); fields != nil {
			h.renderRefundList(w, r, formValues, fields)
			return
		}
		ErrorResponse(w, r, h.logger, err)
		return
	}

	SetFlash(w, "success", "Refund "+refund.RefundNumber+" requested.")
	http.Redirect(w, r, "/refunds", http.StatusSeeOther)
}

// ApproveRefund moves a pending refund to approved.
func (h *BillingExtrasHandler) ApproveRefund(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(r, "id")
	if !ok {
		NotFoundResponse(w, r, h.logger)
		return
	}
	if !CheckCSRF(w, r) {
		return
	}

	if err := h.refunds.Approve(r.Context(), id); err != nil {
		SetFlash(w, "error", domain.ErrorMessage(err))
		http.Redirect(w, r, "/refunds", http.StatusSeeOther)
		return
	}

	SetFlash(w, "success", "Refund approved.")
	http.Redirect(w, r, "/refunds", http.StatusSeeOther)
}

// RejectRefund rejects a pending refund with a reason.
func (h *BillingExtrasHandler) RejectRefund(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(r, "id")
	if !ok {
		NotFoundResponse(w, r, h.logger)
		return
	}
	if err := r.ParseForm(); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("refunds.reject", "Invalid form submission"))
		return
	}
	if !CheckCSRF(w, r) {
		return
	}

	reason := strings.TrimSpace(r.FormValue("reason"))
	if reason == "" {
		SetFlash(w, "error", "A rejection reason is required.")
		http.Redirect(w, r, "/refunds", http.StatusSeeOther)
		return
	}

	if err := h.refunds.Reject(r.Context(), id, reason); err != nil {
		SetFlash(w, "error", domain.ErrorMessage(err))
		http.Redirect(w, r, "/refunds", http.StatusSeeOther)
		return
	}

	SetFlash(w, "success", "Refund rejected.")
	http.Redirect(w, r, "/refunds", http.StatusSeeOther)
}

// CompleteRefund marks an approved refund as paid out.
func (h *BillingExtrasHandler) CompleteRefund(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(r, "id")
	if !ok {
		NotFoundResponse(w, r, h.logger)
		return
	}
	if !CheckCSRF(w, r) {
		return
	}

	if err := h.refunds.Complete(r.Context(), id); err != nil {
		SetFlash(w, "error", domain.ErrorMessage(err))
		http.Redirect(w, r, "/refunds", http.StatusSeeOther)
		return
	}

	SetFlash(w, "success", "Refund completed.")
	http.Redirect(w, r, "/refunds", http.StatusSeeOther)
}

// DeleteRefund removes a refund request.
func (h *BillingExtrasHandler) DeleteRefund(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(r, "id")
	if !ok {
		NotFoundResponse(w, r, h.logger)
		return
	}
	if !CheckCSRF(w, r) {
		return
	}

	if err := h.refunds.Delete(r.Context(), id); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	SetFlash(w, "success", "Refund deleted.")
	http.Redirect(w, r, "/refunds", http.StatusSeeOther)
}

// FeeListPageData is passed to the connection-fees/index template.
type FeeListPageData struct {
	PageData
	Fees       []domain.ConnectionFee
	Query      domain.ListQuery
	Pagination domain.Pagination
	QueryFunc  func(page int) string
	Form       map[string]string
	Errors     map[string]string
}

// ListFees renders the connection fee list with an inline create form.
func (h *BillingExtrasHandler) ListFees(w http.ResponseWriter, r *http.Request) {
	h.renderFeeList(w, r, nil, nil)
}

// CreateFee attaches a one-time fee to a subscription.
func (h *BillingExtrasHandler) CreateFee(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("connection_fees.create", "Invalid form submission"))
		return
	}
	if !CheckCSRF(w, r) {
		return
	}

	params, formValues, fieldErrors := parseFeeForm(r)
	if len(fieldErrors) > 0 {
		h.renderFeeList(w, r, formValues, fieldErrors)
		return
	}

	if _, err := h.fees.Create(r.Context(), params); err != nil {
		if fields := domain.FieldErrors(err); fields != nil {
			h.renderFeeList(w, r, formValues, fields)
			return
		}
		ErrorResponse(w, r, h.logger, err)
		return
	}

	SetFlash(w, "success", "Connection fee added.")
	http.Redirect(w, r, "/connection-fees", http.StatusSeeOther)
}

// DeleteFee removes a connection fee.
func (h *BillingExtrasHandler) DeleteFee(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(r, "id")
	if !ok {
		NotFoundResponse(w, r, h.logger)
		return
	}
	if !CheckCSRF(w, r) {
		return
	}

	if err := h.fees.Delete(r.Context(), id); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	SetFlash(w, "success", "Connection fee deleted.")
	http.Redirect(w, r, "/connection-fees", http.StatusSeeOther)
}

func (h *BillingExtrasHandler) renderDiscountList(w http.ResponseWriter, r *http.Request, formValues, fieldErrors map[string]string) {
	q := ParseListQuery(r, "customer")

	page, err := h.discounts.List(r.Context(), q)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	customers, err := h.customers.List(r.Context(), domain.ListQuery{Status: domain.CustomerActive})
	if err != nil {
		h.logger.Warn("failed to load customers for discount form", "error", err)
		customers = &domain.Page[domain.Customer]{}
	}

	if formValues == nil {
		formValues = make(map[string]string)
	}
	if fieldErrors == nil {
		fieldErrors = make(map[string]string)
	}
	data := DiscountListPageData{
		PageData:   NewPageData(w, r, h.isSecure),
		Discounts:  page.Results,
		Customers:  customers.Results,
		Query:      q,
		Pagination: domain.NewPagination(q.Page, page.Count),
		QueryFunc:  func(p int) string { return ListQueryString(q, p) },
		Form:       formValues,
		Errors:     fieldErrors,
	}
	h.renderer.RenderHTTP(w, "discounts/index", data)
}

func (h *BillingExtrasHandler) renderRefundList(w http.ResponseWriter, r *http.Request, formValues, fieldErrors map[string]string) {
	q := ParseListQuery(r, "customer")

	page, err := h.refunds.List(r.Context(), q)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	customers, err := h.customers.List(r.Context(), domain.ListQuery{Status: domain.CustomerActive})
	if err != nil {
		h.logger.Warn("failed to load customers for refund form", "error", err)
		customers = &domain.Page[domain.Customer]{}
	}

	if formValues == nil {
		formValues = make(map[string]string)
	}
	if fieldErrors == nil {
		fieldErrors = make(map[string]string)
	}
	data := RefundListPageData{
		PageData:   NewPageData(w, r, h.isSecure),
		Refunds:    page.Results,
		Customers:  customers.Results,
		Query:      q,
		Pagination: domain.NewPagination(q.Page, page.Count),
		QueryFunc:  func(p int) string { return ListQueryString(q, p) },
		Form:       formValues,
		Errors:     fieldErrors,
	}
	h.renderer.RenderHTTP(w, "refunds/index", data)
}

func (h *BillingExtrasHandler) renderFeeList(w http.ResponseWriter, r *http.Request, formValues, fieldErrors map[string]string) {
	q := ParseListQuery(r)

	page, err := h.fees.List(r.Context(), q)
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
	data := FeeListPageData{
		PageData:   NewPageData(w, r, h.isSecure),
		Fees:       page.Results,
		Query:      q,
		Pagination: domain.NewPagination(q.Page, page.Count),
		QueryFunc:  func(p int) string { return ListQueryString(q, p) },
		Form:       formValues,
		Errors:     fieldErrors,
	}
	h.renderer.RenderHTTP(w, "connection-fees/index", data)
}

func parseDiscountForm(r *http.Request) (domain.DiscountParams, map[string]string, map[string]string) {
	formValues := map[string]string{
		"customer":      strings.TrimSpace(r.FormValue("customer")),
		"discount_type": strings.TrimSpace(r.FormValue("discount_type")),
		"amount":        strings.TrimSpace(r.FormValue("amount")),
		"percentage":    strings.TrimSpace(r.FormValue("percentage")),
		"reason":        strings.TrimSpace(r.FormValue("reason")),
		"valid_from":    strings.TrimSpace(r.FormValue("valid_from")),
		"valid_until":   strings.TrimSpace(r.FormValue("valid_until")),
		"status":        strings.TrimSpace(r.FormValue("status")),
	}

	fieldErrors := make(map[string]string)

	customer, err := strconv.ParseInt(formValues["customer"], 10, 64)
	if err != nil || customer < 1 {
		fieldErrors["customer"] = "Select a customer"
	}
	if formValues["reason"] == "" {
		fieldErrors["reason"] = "A reason is required"
	}

	switch formValues["discount_type"] {
	case "fixed":
		if amount, err := decimal.NewFromString(formValues["amount"]); err != nil || !amount.IsPositive() {
			fieldErrors["amount"] = "Amount must be a positive number"
		}
	case "percentage":
		pct, err := decimal.NewFromString(formValues["percentage"])
		if err != nil || !pct.IsPositive() || pct.GreaterThan(decimal.NewFromInt(100)) {
			fieldErrors["percentage"] = "Percentage must be between 0 and 100"
		}
	default:
		fieldErrors["discount_type"] = "Select a discount type"
	}

	params := domain.DiscountParams{
		Customer:     customer,
		DiscountType: formValues["discount_type"],
		Amount:       formValues["amount"],
		Percentage:   formValues["percentage"],
		Reason:       formValues["reason"],
		ValidFrom:    formValues["valid_from"],
		ValidUntil:   formValues["valid_until"],
		Status:       formValues["status"],
	}
	return params, formValues, fieldErrors
}

func parseRefundForm(r *http.Request) (domain.RefundParams, map[string]string, map[string]string) {
	formValues := map[string]string{
		"customer":       strings.TrimSpace(r.FormValue("customer")),
		"amount":         strings.TrimSpace(r.FormValue("amount")),
		"refund_method":  strings.TrimSpace(r.FormValue("refund_method")),
		"request_reason": strings.TrimSpace(r.FormValue("request_reason")),
	}

	fieldErrors := make(map[string]string)

	customer, err := strconv.ParseInt(formValues["customer"], 10, 64)
	if err != nil || customer < 1 {
		fieldErrors["customer"] = "Select a customer"
	}
	if amount, err := decimal.NewFromString(formValues["amount"]); err != nil || !amount.IsPositive() {
		fieldErrors["amount"] = "Amount must be a positive number"
	}
	if formValues["refund_method"] == "" {
		fieldErrors["refund_method"] = "Select a refund method"
	}
	if formValues["request_reason"] == "" {
		fieldErrors["request_reason"] = "A reason is required"
	}

	params := domain.RefundParams{
		Customer:      customer,
		Amount:        formValues["amount"],
		RefundMethod:  formValues["refund_method"],
		RequestReason: formValues["request_reason"],
	}
	return params, formValues, fieldErrors
}

func parseFeeForm(r *http.Request) (domain.ConnectionFeeParams, map[string]string, map[string]string) {
	formValues := map[string]string{
		"subscription": strings.TrimSpace(r.FormValue("subscription")),
		"fee_type":     strings.TrimSpace(r.FormValue("fee_type")),
		"amount":       strings.TrimSpace(r.FormValue("amount")),
		"description":  strings.TrimSpace(r.FormValue("description")),
	}

	fieldErrors := make(map[string]string)

	subscription, err := strconv.ParseInt(formValues["subscription"], 10, 64)
	if err != nil || subscription < 1 {
		fieldErrors["subscription"] = "Select a subscription"
	}
	if formValues["fee_type"] == "" {
		fieldErrors["fee_type"] = "Select a fee type"
	}
	if amount, err := decimal.NewFromString(formValues["amount"]); err != nil || !amount.IsPositive() {
		fieldErrors["amount"] = "Amount must be a positive number"
	}

	params := domain.ConnectionFeeParams{
		Subscription: subscription,
		FeeType:      formValues["fee_type"],
		Amount:       formValues["amount"],
		Description:  formValues["description"],
	}
	return params, formValues, fieldErrors
}
