package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/moolapay/agency-service/internal/domain"
)

// Localization message keys shared with the mobile clients. The key, not a
// rendered string, travels in the envelope; clients resolve it against their
// own bundles using the Accept-Language value they sent.
const (
	msgFormsRetrieved     = "data_collection.forms_retrieved_successfully"
	msgFormSubmitted      = "data_collection.form_submitted_successfully"
	msgMissingFormID      = "validation.missing_form_id"
	msgMissingFormFields  = "validation.missing_form_fields"
	msgInvalidFormData    = "data_collection.invalid_form_data"
	msgAuthFailed         = "data_collection.authentication_failed"
	msgFormsNotFound      = "data_collection.forms_not_found"
	msgServiceUnavailable = "data_collection.service_unavailable"
	msgServerError        = "common.server_error"
)

type envelope struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode,omitempty"`
	Data       any    `json:"data,omitempty"`
	Error      any    `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeSuccess(w http.ResponseWriter, statusCode int, messageKey string, data any) {
	writeJSON(w, statusCode, envelope{
		Success: true,
		Message: messageKey,
		Data:    data,
	})
}

func writeError(w http.ResponseWriter, statusCode int, messageKey string, detail any) {
	writeJSON(w, statusCode, envelope{
		Success:    false,
		Message:    messageKey,
		StatusCode: statusCode,
		Error:      detail,
	})
}

// mapDomainError translates the error taxonomy into the documented status
// codes and message keys. Raw messages ride along in the error detail for
// diagnostics; stack traces never do.
func mapDomainError(err error) (int, string, any) {
	var detail any
	if ge, ok := domain.AsGatewayError(err); ok {
		detail = map[string]any{"error": ge.Message}
	} else if err != nil {
		detail = map[string]any{"error": err.Error()}
	}

	switch {
	case errors.Is(err, domain.ErrMissingFormID):
		return http.StatusBadRequest, msgMissingFormID, map[string]any{"missingFields": []string{"formId"}}
	case errors.Is(err, domain.ErrMissingFormData):
		return http.StatusBadRequest, msgMissingFormFields, map[string]any{"missingFields": []string{"data"}}
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, msgInvalidFormData, detail
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, msgAuthFailed, nil
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, msgFormsNotFound, nil
	case errors.Is(err, domain.ErrUnavailable):
		return http.StatusServiceUnavailable, msgServiceUnavailable, nil
	default:
		return http.StatusInternalServerError, msgServerError, detail
	}
}
