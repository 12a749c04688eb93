// Package export builds CSV files for the console's list pages and writes
// them through the storage backend, returning a download URL.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/dhakanet/ispconsole/internal/domain"
	"github.com/dhakanet/ispconsole/internal/metrics"
	"github.com/dhakanet/ispconsole/internal/storage"
)

// URLTTL is how long export download links stay valid on presigned backends.
const URLTTL = 15 * time.Minute

// Exporter writes CSV exports to the configured storage backend.
type Exporter struct {
	store  storage.Storage
	logger *slog.Logger
}

// NewExporter creates an Exporter backed by the given storage.
func NewExporter(store storage.Storage, logger *slog.Logger) *Exporter {
	return &Exporter{store: store, logger: logger}
}

// Customers writes a customer list export and returns its download URL.
func (e *Exporter) Customers(ctx context.Context, customers []domain.Customer) (string, error) {
	header := []string{"id", "name", "phone", "email", "address", "zone", "status", "created_at"}
	rows := make([][]string, 0, len(customers))
	for _, c := range customers {
		rows = append(rows, []string{
			strconv.FormatInt(c.ID, 10),
			c.Name,
			c.Phone,
			c.Email,
			c.Address,
			c.ZoneName,
			c.Status,
			c.CreatedAt.Format(time.RFC3339),
		})
	}
	return e.write(ctx, "customers", header, rows)
}

// Bills writes a bill list export and returns its download URL.
func (e *Exporter) Bills(ctx context.Context, bills []domain.Bill) (string, error) {
	header := []string{"bill_number", "customer", "package", "month", "year", "total_amount", "paid_amount", "due_amount", "status"}
	rows := make([][]string, 0, len(bills))
	for _, b := range bills {
		rows = append(rows, []string{
			b.BillNumber,
			b.CustomerName,
			b.PackageName,
			strconv.Itoa(b.BillingMonth),
			strconv.Itoa(b.BillingYear),
			b.TotalAmount.StringFixed(2),
			b.PaidAmount.StringFixed(2),
			b.DueAmount.StringFixed(2),
			b.Status,
		})
	}
	return e.write(ctx, "bills", header, rows)
}

// Payments writes a payment list export and returns its download URL.
func (e *Exporter) Payments(ctx context.Context, payments []domain.Payment) (string, error) {
	header := []string{"payment_number", "bill_number", "amount", "method", "transaction_id", "payment_date"}
	rows := make([][]string, 0, len(payments))
	for _, p := range payments {
		rows = append(rows, []string{
			p.PaymentNumber,
			p.BillNumber,
			p.Amount.StringFixed(2),
			p.PaymentMethod,
			p.TransactionID,
			p.PaymentDate.Format("2006-01-02"),
		})
	}
	return e.write(ctx, "payments", header, rows)
}

// write encodes the rows as CSV, stores the file, and returns its URL.
func (e *Exporter) write(ctx context.Context, resource string, header []string, rows [][]string) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(header); err != nil {
		metrics.ExportsTotal.WithLabelValues(resource, "error").Inc()
		return "", fmt.Errorf("failed to write csv header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		metrics.ExportsTotal.WithLabelValues(resource, "error").Inc()
		return "", fmt.Errorf("failed to write csv rows: %w", err)
	}

	key := storage.ExportKey(resource, time.Now())
	err := e.store.Put(ctx, key, &buf, storage.PutOptions{
		ContentType: storage.ContentTypeCSV,
		Overwrite:   true,
	})
	if err != nil {
		metrics.ExportsTotal.WithLabelValues(resource, "error").Inc()
		return "", fmt.Errorf("failed to store export: %w", err)
	}

	url, err := e.store.URL(ctx, key, URLTTL)
	if err != nil {
		metrics.ExportsTotal.WithLabelValues(resource, "error").Inc()
		return "", fmt.Errorf("failed to build export url: %w", err)
	}

	metrics.ExportsTotal.WithLabelValues(resource, "success").Inc()
	e.logger.Info("export written", "resource", resource, "rows", len(rows), "key", key)
	return url, nil
}
