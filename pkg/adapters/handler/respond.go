package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wadjakorntonsri/trimlink/pkg/core/domain"
	"go.uber.org/zap"
)

// errorBody is the error envelope of every JSON response. Validation
// failures are keyed by field, everything else by "general".
type errorBody struct {
	Errors map[string]string `json:"errors"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Errors: map[string]string{"general": msg}})
}

func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusUnprocessableEntity
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var fields domain.FieldErrors
	if errors.As(err, &fields) {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Errors: fields})
		return
	}

	status := statusFor(domain.KindOf(err))
	if status == http.StatusInternalServerError {
		logger.Error("request failed", zap.Error(err))
	}
	writeMessage(w, status, domain.PublicMessage(err))
}
