package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"

	apperrors "github.com/matzehuels/astlens/pkg/errors"
)

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Error string         `json:"error"`
	Code  apperrors.Code `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to a status code and writes it as JSON. Internal
// errors are logged and their details withheld.
func writeError(w http.ResponseWriter, logger *log.Logger, err error) {
	status := statusFor(err)
	resp := errorResponse{Error: apperrors.UserMessage(err), Code: apperrors.GetCode(err)}
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
		resp.Error = "internal error"
	}
	writeJSON(w, status, resp)
}

// statusFor returns the HTTP status for an error code.
func statusFor(err error) int {
	if errors.Is(err, ErrTooManySessions) {
		return http.StatusServiceUnavailable
	}
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeInvalidInput,
		apperrors.ErrCodeInvalidFormat,
		apperrors.ErrCodeInvalidConfig,
		apperrors.ErrCodeInvalidLayout:
		return http.StatusBadRequest
	case apperrors.ErrCodeNotFound,
		apperrors.ErrCodeFileNotFound,
		apperrors.ErrCodeSessionNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "invalid request body: %v", err)
	}
	return nil
}
