package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dhakanet/ispconsole/internal/domain"
	"github.com/dhakanet/ispconsole/internal/storage"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// memoryStorage captures the last Put for assertions.
type memoryStorage struct {
	key  string
	data []byte
	opts storage.PutOptions
}

func (m *memoryStorage) Put(ctx context.Context, key string, data io.Reader, opts storage.PutOptions) error {
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	m.key = key
	m.data = b
	m.opts = opts
	return nil
}

func (m *memoryStorage) Get(ctx context.Context, key string) (io.ReadCloser, storage.ObjectInfo, error) {
	return io.NopCloser(bytes.NewReader(m.data)), storage.ObjectInfo{Key: key}, nil
}

func (m *memoryStorage) List(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	if m.key == "" || !strings.HasPrefix(m.key, prefix) {
		return nil, nil
	}
	return []storage.ObjectInfo{{Key: m.key, Size: int64(len(m.data))}}, nil
}

func (m *memoryStorage) Delete(ctx context.Context, key string) error { return nil }

func (m *memoryStorage) URL(ctx context.Context, key string, expires time.Duration) (string, error) {
	return "http://localhost:8080/files/" + key, nil
}

func TestExporter_Customers(t *testing.T) {
	store := &memoryStorage{}
	e := NewExporter(store, newTestLogger())

	created := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	url, err := e.Customers(context.Background(), []domain.Customer{
		{ID: 7, Name: "Rahim Uddin", Phone: "01711000000", Email: "rahim@example.com", Address: "Mirpur", ZoneName: "Mirpur-10", Status: "active", CreatedAt: created},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(url, "http://localhost:8080/files/exports/customers/") {
		t.Errorf("url = %q", url)
	}
	if !store.opts.Overwrite {
		t.Error("export written without overwrite")
	}
	if store.opts.ContentType != storage.ContentTypeCSV {
		t.Errorf("content type = %q", store.opts.ContentType)
	}

	records, err := csv.NewReader(bytes.NewReader(store.data)).ReadAll()
	if err != nil {
		t.Fatalf("stored file is not valid csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("rows = %d, want header plus one", len(records))
	}
	if records[0][0] != "id" || records[0][1] != "name" {
		t.Errorf("header = %v", records[0])
	}
	want := []string{"7", "Rahim Uddin", "01711000000", "rahim@example.com", "Mirpur", "Mirpur-10", "active", created.Format(time.RFC3339)}
	for i, cell := range want {
		if records[1][i] != cell {
			t.Errorf("row[%d] = %q, want %q", i, records[1][i], cell)
		}
	}
}

func TestExporter_BillsFormatsAmounts(t *testing.T) {
	store := &memoryStorage{}
	e := NewExporter(store, newTestLogger())

	_, err := e.Bills(context.Background(), []domain.Bill{
		{
			BillNumber:   "BILL-2026-0001",
			CustomerName: "Karim",
			PackageName:  "Home 20",
			BillingMonth: 3,
			BillingYear:  2026,
			TotalAmount:  decimal.NewFromInt(1500),
			PaidAmount:   decimal.NewFromFloat(500.5),
			DueAmount:    decimal.NewFromFloat(999.5),
			Status:       "partial",
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := csv.NewReader(bytes.NewReader(store.data)).ReadAll()
	if err != nil {
		t.Fatalf("stored file is not valid csv: %v", err)
	}
	row := records[1]
	if row[5] != "1500.00" || row[6] != "500.50" || row[7] != "999.50" {
		t.Errorf("amounts = %v", row[5:8])
	}
}

func TestExporter_EmptyListStillWritesHeader(t *testing.T) {
	store := &memoryStorage{}
	e := NewExporter(store, newTestLogger())

	if _, err := e.Payments(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	records, err := csv.NewReader(bytes.NewReader(store.data)).ReadAll()
	if err != nil {
		t.Fatalf("stored file is not valid csv: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("rows = %d, want header only", len(records))
	}
}
