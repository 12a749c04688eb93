// Package storage persists the console's generated export artifacts.
//
// Exports are small CSV files written once and downloaded a handful of
// times before they age out. Two backends exist: the local filesystem
// for development and Cloudflare R2 (S3 API) for production. Keys are
// forward-slash paths of the form exports/{resource}/{date}/{id}.csv,
// which lets the cleanup task date objects without extra metadata.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Storage is the export artifact store.
type Storage interface {
	// Put stores data at key. Fails with ErrKeyExists when the key is
	// taken and opts.Overwrite is false.
	Put(ctx context.Context, key string, data io.Reader, opts PutOptions) error

	// Get opens the object at key. The caller closes the reader.
	// Fails with ErrNotFound for missing keys.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)

	// List returns metadata for every object whose key starts with
	// prefix. A prefix with no objects yields an empty slice.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)

	// Delete removes the object at key. Deleting a missing key is not
	// an error.
	Delete(ctx context.Context, key string) error

	// URL returns a download URL for the object at key. Backends with
	// a public base URL ignore expires; otherwise the URL is presigned
	// for that duration.
	URL(ctx context.Context, key string, expires time.Duration) (string, error)
}

// PutOptions configures how an object is stored.
type PutOptions struct {
	// ContentType is the MIME type to record. Empty means detect from
	// the key's extension.
	ContentType string

	// MaxSize caps the object size in bytes; ErrTooLarge past it.
	// Zero means no cap.
	MaxSize int64

	// Overwrite allows replacing an existing object at the same key.
	Overwrite bool
}

// ObjectInfo is the metadata a backend reports for a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
	ETag         string
}

// LocalConfig configures filesystem storage.
type LocalConfig struct {
	// BasePath is the directory objects are written under.
	BasePath string

	// BaseURL prefixes download URLs, e.g. "http://localhost:8080/files".
	BaseURL string
}

// R2Config configures Cloudflare R2 storage.
type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string

	// PublicURL is the bucket's custom-domain URL. When empty every
	// download URL is presigned.
	PublicURL string

	// Region is what the SDK signs with; R2 expects "auto".
	Region string
}

const (
	ProviderLocal = "local"
	ProviderR2    = "r2"
)

// ExportKey builds the storage key for a CSV export of the named
// resource: exports/{resource}/{YYYY-MM-DD}/{uuid}.csv.
func ExportKey(resource string, now time.Time) string {
	return fmt.Sprintf("exports/%s/%s/%s.csv", resource, now.Format("2006-01-02"), uuid.New())
}

// ExportKeyDate reads the date segment out of a key produced by
// ExportKey. ok is false for keys in any other layout.
func ExportKeyDate(key string) (time.Time, bool) {
	parts := strings.Split(key, "/")
	if len(parts) != 4 || parts[0] != "exports" {
		return time.Time{}, false
	}
	day, err := time.Parse("2006-01-02", parts[2])
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}
