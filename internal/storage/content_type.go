package storage

import (
	"mime"
	"path/filepath"
	"strings"
)

// ContentTypeCSV is the MIME type the exporters write with.
const ContentTypeCSV = "text/csv; charset=utf-8"

// DetectContentType picks the MIME type to record for a stored object:
// the provided type when the caller set one, otherwise the key's file
// extension, otherwise application/octet-stream.
func DetectContentType(providedType, key string) string {
	if providedType != "" {
		return providedType
	}
	ext := strings.ToLower(filepath.Ext(key))
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
