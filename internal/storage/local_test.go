package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestLocalStorage(t *testing.T) *LocalStorage {
	t.Helper()
	s, err := NewLocalStorage(LocalConfig{
		BasePath: t.TempDir(),
		BaseURL:  "http://localhost:8080/files/",
	}, newTestLogger())
	if err != nil {
		t.Fatalf("failed to create local storage: %v", err)
	}
	return s
}

func TestLocalStorage_PutGetRoundTrip(t *testing.T) {
	s := newTestLocalStorage(t)
	ctx := context.Background()

	data := "id,name\n1,Rahim\n"
	err := s.Put(ctx, "exports/customers/2026-08-31/a.csv", strings.NewReader(data), PutOptions{
		ContentType: ContentTypeCSV,
	})
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	rc, info, err := s.Get(ctx, "exports/customers/2026-08-31/a.csv")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	defer rc.Close()

	got, _ := io.ReadAll(rc)
	if string(got) != data {
		t.Errorf("content = %q, want %q", got, data)
	}
	if info.Size != int64(len(data)) {
		t.Errorf("size = %d, want %d", info.Size, len(data))
	}
}

func TestLocalStorage_PutRejectsDuplicateWithoutOverwrite(t *testing.T) {
	s := newTestLocalStorage(t)
	ctx := context.Background()

	if err := s.Put(ctx, "a.csv", strings.NewReader("x"), PutOptions{}); err != nil {
		t.Fatalf("first Put failed: %v", err)
	}
	err := s.Put(ctx, "a.csv", strings.NewReader("y"), PutOptions{})
	if !errors.Is(err, ErrKeyExists) {
		t.Errorf("second Put error = %v, want ErrKeyExists", err)
	}
	if err := s.Put(ctx, "a.csv", strings.NewReader("y"), PutOptions{Overwrite: true}); err != nil {
		t.Errorf("overwrite Put failed: %v", err)
	}
}

func TestLocalStorage_PutEnforcesMaxSize(t *testing.T) {
	s := newTestLocalStorage(t)
	ctx := context.Background()

	err := s.Put(ctx, "big.csv", bytes.NewReader(make([]byte, 100)), PutOptions{MaxSize: 10})
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("error = %v, want ErrTooLarge", err)
	}
	if _, _, err := s.Get(ctx, "big.csv"); !errors.Is(err, ErrNotFound) {
		t.Errorf("oversized file left behind: %v", err)
	}
}

func TestLocalStorage_RejectsPathTraversal(t *testing.T) {
	s := newTestLocalStorage(t)
	ctx := context.Background()

	for _, key := range []string{"", "../outside.csv", "exports/../../etc/passwd"} {
		if err := s.Put(ctx, key, strings.NewReader("x"), PutOptions{}); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("Put(%q) error = %v, want ErrInvalidKey", key, err)
		}
	}
}

func TestLocalStorage_GetMissingKey(t *testing.T) {
	s := newTestLocalStorage(t)

	_, _, err := s.Get(context.Background(), "missing.csv")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestLocalStorage_DeleteIsIdempotent(t *testing.T) {
	s := newTestLocalStorage(t)
	ctx := context.Background()

	if err := s.Put(ctx, "a.csv", strings.NewReader("x"), PutOptions{}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := s.Delete(ctx, "a.csv"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := s.Delete(ctx, "a.csv"); err != nil {
		t.Errorf("second Delete failed: %v", err)
	}
	if _, _, err := s.Get(ctx, "a.csv"); !errors.Is(err, ErrNotFound) {
		t.Errorf("file still readable after delete: %v", err)
	}
}

func TestLocalStorage_ListFiltersByPrefix(t *testing.T) {
	s := newTestLocalStorage(t)
	ctx := context.Background()

	keys := []string{
		"exports/customers/2026-08-01/a.csv",
		"exports/bills/2026-08-15/b.csv",
		"misc/readme.txt",
	}
	for _, key := range keys {
		if err := s.Put(ctx, key, strings.NewReader("x"), PutOptions{}); err != nil {
			t.Fatalf("Put(%q) failed: %v", key, err)
		}
	}

	objects, err := s.List(ctx, "exports/")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(objects) != 2 {
		t.Fatalf("len(objects) = %d, want 2", len(objects))
	}
	for _, obj := range objects {
		if !strings.HasPrefix(obj.Key, "exports/") {
			t.Errorf("key %q outside prefix", obj.Key)
		}
		if obj.Size != 1 {
			t.Errorf("size = %d, want 1", obj.Size)
		}
	}

	empty, err := s.List(ctx, "exports/payments/")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("len(empty) = %d, want 0", len(empty))
	}
}

func TestLocalStorage_URL(t *testing.T) {
	s := newTestLocalStorage(t)

	url, err := s.URL(context.Background(), "exports/bills/2026-08-31/b.csv", time.Minute)
	if err != nil {
		t.Fatalf("URL failed: %v", err)
	}
	want := "http://localhost:8080/files/exports/bills/2026-08-31/b.csv"
	if url != want {
		t.Errorf("url = %q, want %q", url, want)
	}
}

func TestExportKey(t *testing.T) {
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	key := ExportKey("customers", now)
	if !strings.HasPrefix(key, "exports/customers/2026-08-31/") {
		t.Errorf("key = %q, want exports/customers/2026-08-31/ prefix", key)
	}
	if !strings.HasSuffix(key, ".csv") {
		t.Errorf("key = %q, want .csv suffix", key)
	}
	if key == ExportKey("customers", now) {
		t.Error("two export keys for the same instant collide")
	}
}

func TestExportKeyDate(t *testing.T) {
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	day, ok := ExportKeyDate(ExportKey("bills", now))
	if !ok {
		t.Fatal("export key not recognized")
	}
	if want := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC); !day.Equal(want) {
		t.Errorf("day = %v, want %v", day, want)
	}

	for _, key := range []string{"", "misc/readme.txt", "exports/bills/not-a-date/a.csv", "exports/a.csv"} {
		if _, ok := ExportKeyDate(key); ok {
			t.Errorf("ExportKeyDate(%q) = true, want false", key)
		}
	}
}
