package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dhakanet/ispconsole/internal/domain"
	"github.com/dhakanet/ispconsole/internal/storage"
)

// ExportFileHandler streams stored export artifacts to the operator's
// browser. It is only routed when the console runs on local storage; R2
// hands out its own URLs.
type ExportFileHandler struct {
	store  storage.Storage
	logger *slog.Logger
}

// NewExportFileHandler creates a new ExportFileHandler.
func NewExportFileHandler(store storage.Storage, logger *slog.Logger) *ExportFileHandler {
	return &ExportFileHandler{store: store, logger: logger}
}

// Download streams the artifact named by the {key...} path value.
func (h *ExportFileHandler) Download(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	rc, info, err := h.store.Get(r.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidKey) {
			NotFoundResponse(w, r, h.logger)
			return
		}
		ErrorResponse(w, r, h.logger, domain.Internal(err, "exports.download", "Failed to open the export file"))
		return
	}
	defer rc.Close()

	if info.ContentType != "" {
		w.Header().Set("Content-Type", info.ContentType)
	}
	if info.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	}
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("export download interrupted", "key", key, "error", err)
	}
}
