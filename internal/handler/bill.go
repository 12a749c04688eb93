package handler

import (
	"fmt"
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

// BillHandler handles bill pages, the monthly generation run, and the
// add-payment dialog.
type BillHandler struct {
	bills    service.BillService
	exporter *export.Exporter
	renderer TemplateRenderer
	logger   *slog.Logger
	isSecure bool
}

// NewBillHandler creates a new BillHandler.
func NewBillHandler(bills service.BillService, exporter *export.Exporter, renderer TemplateRenderer, logger *slog.Logger, isSecure bool) *BillHandler {
	return &BillHandler{
		bills:    bills,
		exporter: exporter,
		renderer: renderer,
		logger:   logger,
		isSecure: isSecure,
	}
}

// BillListPageData is passed to the bills/index template.
type BillListPageData struct {
	PageData
	Bills      []domain.Bill
	Query      domain.ListQuery
	Pagination domain.Pagination
	QueryFunc  func(page int) string
	Months     []time.Month
	Years      []int
}

// BillShowPageData is passed to the bills/show template. The add-payment
// form is seeded with the outstanding due amount.
type BillShowPageData struct {
	PageData
	Bill           *domain.Bill
	PaymentMethods []string
	Form           map[string]string
	Errors         map[string]string
}

// List renders the bill list with status, month, and year filters.
func (h *BillHandler) List(w http.ResponseWriter, r *http.Request) {
	q := ParseListQuery(r, "month", "year")

	page, err := h.bills.List(r.Context(), q)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	data := BillListPageData{
		PageData:   NewPageData(w, r, h.isSecure),
		Bills:      page.Results,
		Query:      q,
		Pagination: domain.NewPagination(q.Page, page.Count),
		QueryFunc:  func(p int) string { return ListQueryString(q, p) },
		Months:     monthOptions(),
		Years:      yearOptions(),
	}
	h.renderer.RenderHTTP(w, "bills/index", data)
}

// Show renders one bill with the add-payment form.
func (h *BillHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(r, "id")
	if !ok {
		NotFoundResponse(w, r, h.logger)
		return
	}

	bill, err := h.bills.Get(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	h.renderBillShow(w, r, bill, nil, nil)
}

// AddPayment records a payment against a bill from the show page.
func (h *BillHandler) AddPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(r, "id")
	if !ok {
		NotFoundResponse(w, r, h.logger)
		return
	}
	if err := r.ParseForm(); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("bills.add_payment", "Invalid form submission"))
		return
	}
	if !CheckCSRF(w, r) {
		return
	}

	params, formValues, fieldErrors := parsePaymentForm(r)
	if len(fieldErrors) > 0 {
		bill, err := h.bills.Get(r.Context(), id)
		if err != nil {
			ErrorResponse(w, r, h.logger, err)
			return
		}
		h.renderBillShow(w, r, bill, formValues, fieldErrors)
		return
	}

	payment, err := h.bills.AddPayment(r.Context(), id, params)
	if err != nil {
		if fields := domain.FieldErrors(err); fields != nil {
			bill, gerr := h.bills.Get(r.Context(), id)
			if gerr != nil {
				ErrorResponse(w, r, h.logger, gerr)
				return
			}
			h.renderBillShow(w, r, bill, formValues, fields)
			return
		}
		ErrorResponse(w, r, h.logger, err)
		return
	}

	SetFlash(w, "success", "Payment "+payment.PaymentNumber+" recorded.")
	http.Redirect(w, r, "/bills/"+strconv.FormatInt(id, 10), http.StatusSeeOther)
}

// GenerateMonthly triggers the platform's monthly bill run.
func (h *BillHandler) GenerateMonthly(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("bills.generate_monthly", "Invalid form submission"))
		return
	}
	if !CheckCSRF(w, r) {
		return
	}

	year, yerr := strconv.Atoi(strings.TrimSpace(r.FormValue("year")))
	month, merr := strconv.Atoi(strings.TrimSpace(r.FormValue("month")))
	if yerr != nil || merr != nil || month < 1 || month > 12 || year < 2000 {
		SetFlash(w, "error", "Pick a valid billing month and year.")
		http.Redirect(w, r, "/bills", http.StatusSeeOther)
		return
	}

	result, err := h.bills.GenerateMonthly(r.Context(), domain.GenerateBillsParams{Year: year, Month: month})
	if err != nil {
		SetFlash(w, "error", domain.ErrorMessage(err))
		http.Redirect(w, r, "/bills", http.StatusSeeOther)
		return
	}

	msg := result.Message
	if msg == "" {
		msg = fmt.Sprintf("Generated %d bills, skipped %d.", result.Generated, result.Skipped)
	}
	SetFlash(w, "success", msg)
	http.Redirect(w, r, "/bills", http.StatusSeeOther)
}

// Delete removes a bill.
func (h *BillHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(r, "id")
	if !ok {
		NotFoundResponse(w, r, h.logger)
		return
	}
	if !CheckCSRF(w, r) {
		return
	}

	if err := h.bills.Delete(r.Context(), id); err != nil {
		// Bills with payments recorded come back as a conflict.
		if domain.ErrorCode(err) == domain.ECONFLICT {
			SetFlash(w, "error", domain.ErrorMessage(err))
			http.Redirect(w, r, "/bills", http.StatusSeeOther)
			return
		}
		ErrorResponse(w, r, h.logger, err)
		return
	}

	SetFlash(w, "success", "Bill deleted.")
	http.Redirect(w, r, "/bills", http.StatusSeeOther)
}

// Export writes the filtered bill list as CSV and redirects to the
// download URL.
func (h *BillHandler) Export(w http.ResponseWriter, r *http.Request) {
	q := ParseListQuery(r, "month", "year")

	var all []domain.Bill
	q.Page = 1
	for {
		page, err := h.bills.List(r.Context(), q)
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

	url, err := h.exporter.Bills(r.Context(), all)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

func (h *BillHandler) renderBillShow(w http.ResponseWriter, r *http.Request, bill *domain.Bill, formValues, fieldErrors map[string]string) {
	if formValues == nil {
		formValues = map[string]string{
			// Seed the payment form with the outstanding amount and today.
			"amount":       bill.DueAmount.StringFixed(2),
			"payment_date": time.Now().Format("2006-01-02"),
		}
	}
	if fieldErrors == nil {
		fieldErrors = make(map[string]string)
	}
	data := BillShowPageData{
		PageData:       NewPageData(w, r, h.isSecure),
		Bill:           bill,
		PaymentMethods: domain.PaymentMethods,
		Form:           formValues,
		Errors:         fieldErrors,
	}
	h.renderer.RenderHTTP(w, "bills/show", data)
}

// parsePaymentForm extracts and validates the add-payment form fields.
func parsePaymentForm(r *http.Request) (domain.AddPaymentParams, map[string]string, map[string]string) {
	formValues := map[string]string{
		"amount":         strings.TrimSpace(r.FormValue("amount")),
		"payment_method": strings.TrimSpace(r.FormValue("payment_method")),
		"transaction_id": strings.TrimSpace(r.FormValue("transaction_id")),
		"notes":          strings.TrimSpace(r.FormValue("notes")),
		"payment_date":   strings.TrimSpace(r.FormValue("payment_date")),
	}

	fieldErrors := make(map[string]string)

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

	params := domain.AddPaymentParams{
		Amount:        formValues["amount"],
		PaymentMethod: formValues["payment_method"],
		TransactionID: formValues["transaction_id"],
		Notes:         formValues["notes"],
		PaymentDate:   formValues["payment_date"],
	}
	return params, formValues, fieldErrors
}

// monthOptions lists the billing month filter choices.
func monthOptions() []time.Month {
	months := make([]time.Month, 0, 12)
	for m := time.January; m <= time.December; m++ {
		months = append(months, m)
	}
	return months
}

// yearOptions lists the billing year filter choices, newest first.
func yearOptions() []int {
	current := time.Now().Year()
	years := make([]int, 0, 5)
	for y := current; y > current-5; y-- {
		years = append(years, y)
	}
	return years
}
