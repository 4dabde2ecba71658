package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"agrishop-be/internal/apperror"
	"agrishop-be/internal/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

func init() {
	// Prices and totals go out as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders err as {"error": "..."}. Infrastructure details are
// logged and replaced by a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperror.HTTPStatus(err)
	log := logger.FromCtx(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	} else {
		log.Info("request rejected", zap.Int("status", status), zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": apperror.PublicMessage(err)})
}

// decodeJSON reads a single JSON object. Unknown fields are dropped.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
	var maxErr *http.MaxBytesError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF):
		return apperror.Invalid("request body is required")
	case errors.As(err, &maxErr):
		return apperror.Invalid("request body is too large")
	default:
		return apperror.Invalid("invalid JSON body")
	}
}
