package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/moolapay/agency-service/internal/application"
	"github.com/moolapay/agency-service/internal/domain"
)

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, http.StatusOK, "ok", nil)
}

func (h *Handler) readyz(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, http.StatusOK, "ready", nil)
}

func (h *Handler) listForms(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	response, err := h.service.ListForms(r.Context(), actor)
	if err != nil {
		writeMappedError(r.Context(), w, "list_forms", err)
		return
	}
	writeSuccess(w, http.StatusOK, msgFormsRetrieved, response)
}

type submitFormRequest struct {
	Data   json.RawMessage `json:"data"`
	Status string          `json:"status"`
}

func (h *Handler) submitForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := actorFromContext(ctx)
	formID := chi.URLParam(r, "formId")

	var req submitFormRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgMissingFormFields,
			map[string]any{"missingFields": []string{"data"}})
		return
	}

	out, err := h.service.SubmitForm(ctx, actor, application.SubmitFormInput{
		FormID: formID,
		Data:   req.Data,
		Status: req.Status,
	})
	if err != nil {
		writeMappedError(ctx, w, "submit_form", err)
		return
	}

	data := map[string]any{}
	for k, v := range out.Response {
		data[k] = v
	}
	data["dbId"] = out.RecordID
	data["status"] = out.Status
	if out.Commission != nil {
		data["commission"] = out.Commission
	} else {
		data["commission"] = nil
	}
	writeSuccess(w, http.StatusCreated, msgFormSubmitted, data)
}

// gatesMiddleware runs the balance and quota gates before the pipeline. Both
// fail open on their own infrastructure failures inside the service layer;
// only genuine rejections surface here.
func (h *Handler) gatesMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		actor := actorFromContext(ctx)
		formID := chi.URLParam(r, "formId")

		balance, err := h.service.CheckAccountBalance(ctx)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrInsufficientBalance):
				writeError(w, http.StatusBadRequest, msgServerError, map[string]any{
					"error":           "Insufficient account balance to proceed with this form submission.",
					"currentBalance":  balance.Balance,
					"minimumRequired": balance.MinimumRequired,
					"deficit":         balance.MinimumRequired - balance.Balance,
				})
			case errors.Is(err, domain.ErrUnauthorized):
				writeError(w, http.StatusUnauthorized, msgAuthFailed, map[string]any{
					"error": "Account authentication failed. Unable to verify your account balance.",
				})
			default:
				writeMappedError(ctx, w, "balance_gate", err)
			}
			return
		}

		quota, err := h.service.CheckSubmissionQuota(ctx, formID, actor.AgentID)
		if err != nil {
			if errors.Is(err, domain.ErrQuotaExceeded) {
				// The advertised limit of 5 predates the enforced threshold
				// of 10; mobile clients still expect this copy.
				writeError(w, http.StatusTooManyRequests, msgServerError, map[string]any{
					"error":              "You have reached your submission limit for this form. You can submit a maximum of 5 forms. Please contact support for assistance.",
					"limit":              quota.Limit,
					"currentSubmissions": quota.CurrentSubmissions,
					"formId":             formID,
				})
				return
			}
			writeMappedError(ctx, w, "quota_gate", err)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (h *Handler) transactionHistory(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	out, err := h.service.ListTransactionHistory(r.Context(), actor,
		parseIntDefault(r.URL.Query().Get("limit"), 20),
		parseIntDefault(r.URL.Query().Get("offset"), 0),
	)
	if err != nil {
		writeMappedError(r.Context(), w, "transaction_history", err)
		return
	}
	writeSuccess(w, http.StatusOK, "data_collection.transactions_retrieved", map[string]any{
		"items": out.Items,
		"pagination": map[string]any{
			"limit":  out.Limit,
			"offset": out.Offset,
			"total":  out.Total,
		},
	})
}

func (h *Handler) transactionByID(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	entry, err := h.service.GetTransaction(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		writeMappedError(r.Context(), w, "transaction_by_id", err)
		return
	}
	writeSuccess(w, http.StatusOK, "data_collection.transaction_retrieved", entry)
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("request body must contain a single JSON value")
	}
	return nil
}
