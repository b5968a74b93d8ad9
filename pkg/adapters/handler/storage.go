package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/wadjakorntonsri/trimlink/pkg/adapters/storage"
	"github.com/wadjakorntonsri/trimlink/pkg/ports"
	"go.uber.org/zap"
)

// ObjectHandler serves public bucket objects such as QR images.
type ObjectHandler struct {
	bucket ports.Bucket
	logger *zap.Logger
}

func NewObjectHandler(bucket ports.Bucket, logger *zap.Logger) *ObjectHandler {
	return &ObjectHandler{bucket: bucket, logger: logger.Named("storage")}
}

func (h *ObjectHandler) Serve(w http.ResponseWriter, r *http.Request) {
	if r.PathValue("bucket") != h.bucket.Name() {
		http.NotFound(w, r)
		return
	}

	data, contentType, err := h.bucket.Download(r.Context(), r.PathValue("name"))
	if errors.Is(err, storage.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.logger.Error("download failed", zap.String("name", r.PathValue("name")), zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
