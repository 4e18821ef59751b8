package application

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/moolapay/agency-service/internal/domain"
	"github.com/moolapay/agency-service/internal/ports"
)

// ListForms proxies the collector's form catalog for the caller's language.
func (s *Service) ListForms(ctx context.Context, actor Actor) (map[string]any, error) {
	body, err := s.collector.ListForms(ctx, actor.Language, actor.BearerToken)
	if err != nil {
		return nil, err
	}
	var response map[string]any
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("decode forms response: %w", err)
	}
	return response, nil
}

// SubmitForm runs the transactional submission pipeline:
//
//	validate -> ledger pre-write -> record pre-write -> collector call ->
//	reconcile -> commission side effect -> ledger finalize
//
// Only the collector call aborts the run. The ledger and record pre-writes
// are observability, not gates: their failures are logged and swallowed.
// Commission failure is folded into the response and never downgrades the
// primary result.
func (s *Service) SubmitForm(ctx context.Context, actor Actor, input SubmitFormInput) (SubmitFormOutput, error) {
	if err := domain.ValidateSubmissionInput(input.FormID, input.Data); err != nil {
		return SubmitFormOutput{}, err
	}

	now := s.nowFn()

	// Ledger pre-write. The transaction id stays nil until the commission
	// assigns one; the returned handle keys every later update in this run,
	// so no match-by-null-transaction-id lookup is ever needed.
	ledgerHandle, ledgerOK := int64(0), false
	handle, err := s.ledger.Insert(ctx, ports.InsertLedgerParams{
		TransactionID:    nil,
		Status:           domain.LedgerStatusPending,
		Description:      fmt.Sprintf("AQS Form Submission - Form ID: %s, Agent: %s", input.FormID, actor.AgentName),
		Amount:           "0",
		CustomerCharge:   "0",
		AgentID:          actor.AgentID,
		AgentName:        actor.AgentName,
		ThirdPartyStatus: domain.ThirdPartyStatusPending,
		ServiceName:      domain.ServiceFormSubmission,
		Reference:        input.FormID,
		CustomerID:       actor.AgentID,
		At:               now,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "ledger pre-write failed",
			"module", "application", "layer", "service",
			"operation", "submit_form", "outcome", "degraded",
			"form_id", input.FormID, "agent_id", actor.AgentID, "error", err,
		)
	} else {
		ledgerHandle, ledgerOK = handle, true
	}

	// Local record pre-write, equally best-effort.
	recordID, recordOK := int64(0), false
	id, err := s.submissions.Create(ctx, ports.CreateSubmissionParams{
		FormID:      input.FormID,
		CustomerID:  actor.AgentID,
		AgentID:     actor.AgentID,
		FormData:    input.Data,
		SubmittedAt: now,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "submission record pre-write failed",
			"module", "application", "layer", "service",
			"operation", "submit_form", "outcome", "degraded",
			"form_id", input.FormID, "agent_id", actor.AgentID, "error", err,
		)
	} else {
		recordID, recordOK = id, true
	}

	// From here on, state must reflect the true outcome even if the caller
	// disconnects: the collector call is side-effecting and must not be
	// canceled mid-flight. The client applies its own 30s deadline.
	ctx = context.WithoutCancel(ctx)

	payload, err := json.Marshal(map[string]any{
		"data":   json.RawMessage(input.Data),
		"status": statusOrDefault(input.Status),
	})
	if err != nil {
		return SubmitFormOutput{}, fmt.Errorf("encode submission payload: %w", err)
	}

	body, err := s.collector.SubmitForm(ctx, input.FormID, payload, actor.Language, actor.BearerToken)
	if err != nil {
		s.failSubmission(ctx, actor, input.FormID, recordID, recordOK, ledgerHandle, ledgerOK, err)
		return SubmitFormOutput{}, err
	}

	var response map[string]any
	if err := json.Unmarshal(body, &response); err != nil {
		// The collector accepted the submission; a malformed body is a
		// reconciliation problem, not a failed submission.
		s.logger.WarnContext(ctx, "collector response not decodable",
			"module", "application", "layer", "service",
			"operation", "submit_form", "outcome", "degraded",
			"form_id", input.FormID, "error", err,
		)
		response = map[string]any{}
	}

	outcome := extractOutcome(response, body)

	if recordOK {
		if err := s.submissions.Reconcile(ctx, recordID, outcome, s.nowFn()); err != nil {
			s.logger.ErrorContext(ctx, "submission reconcile failed",
				"module", "application", "layer", "service",
				"operation", "submit_form", "outcome", "degraded",
				"record_id", recordID, "submission_id", outcome.SubmissionID, "error", err,
			)
		}
	}

	commission := s.GenerateCommission(ctx, actor.AgentID, actor.AgentName)

	s.finalizeSubmission(ctx, actor, input.FormID, outcome, ledgerHandle, ledgerOK, commission)
	s.enqueueEvent(ctx, domain.EventSubmissionProcessing, actor.AgentID, map[string]any{
		"form_id":       input.FormID,
		"submission_id": outcome.SubmissionID,
		"agent_id":      actor.AgentID,
		"record_id":     recordID,
	})

	return SubmitFormOutput{
		Response:   response,
		RecordID:   recordID,
		Status:     domain.SubmissionStatusProcessing,
		Commission: commission,
	}, nil
}

// finalizeSubmission moves the pipeline's pending ledger entry to success,
// adopting the commission transaction id when one exists.
func (s *Service) finalizeSubmission(ctx context.Context, actor Actor, formID string, outcome domain.SubmissionOutcome, ledgerHandle int64, ledgerOK bool, commission *domain.CommissionResult) {
	var txnID *string
	commissionRef := "N/A"
	if commission != nil && commission.TransactionID != "" {
		txnID = &commission.TransactionID
		commissionRef = commission.TransactionID
	}

	thirdParty := outcome.ThirdPartyStatus
	if thirdParty == "" {
		thirdParty = string(domain.SubmissionStatusSubmitted)
	}
	params := ports.FinalizeLedgerParams{
		TransactionID:    txnID,
		Status:           domain.LedgerStatusSuccess,
		ThirdPartyStatus: thirdParty,
		Token:            outcome.SubmissionID,
		Description: fmt.Sprintf("AQS Form Submission - Submission ID: %s, Form ID: %s, Agent: %s, Commission ID: %s",
			outcome.SubmissionID, formID, actor.AgentName, commissionRef),
		At: s.nowFn(),
	}

	var err error
	if ledgerOK {
		err = s.ledger.FinalizeByHandle(ctx, ledgerHandle, params)
	} else {
		err = s.ledger.FinalizeByAgentFallback(ctx, actor.AgentID, domain.ServiceFormSubmission, params)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "ledger finalize failed",
			"module", "application", "layer", "service",
			"operation", "submit_form", "outcome", "degraded",
			"form_id", formID, "submission_id", outcome.SubmissionID, "error", err,
		)
	}

	if outcome.SubmissionID != "" && s.transfers != nil {
		description := fmt.Sprintf("AQS Form Submission - Form ID: %s, Submission ID: %s, Agent: %s, Commission ID: %s",
			formID, outcome.SubmissionID, actor.AgentName, commissionRef)
		if err := s.transfers.UpdateDescriptionBySubmission(ctx, outcome.SubmissionID, description, s.nowFn()); err != nil {
			s.logger.WarnContext(ctx, "transfers touch-up failed",
				"module", "application", "layer", "service",
				"operation", "submit_form", "outcome", "degraded",
				"submission_id", outcome.SubmissionID, "error", err,
			)
		}
	}
}

// failSubmission is the terminal path after a collector failure: mark the
// local record failed (when one exists), finalize the pending ledger entry as
// failed, and record the lifecycle event. Every step is best-effort; the
// classified collector error is what surfaces to the caller.
func (s *Service) failSubmission(ctx context.Context, actor Actor, formID string, recordID int64, recordOK bool, ledgerHandle int64, ledgerOK bool, cause error) {
	now := s.nowFn()

	if recordOK {
		if err := s.submissions.MarkFailed(ctx, recordID, cause.Error(), now); err != nil {
			s.logger.ErrorContext(ctx, "submission mark-failed failed",
				"module", "application", "layer", "service",
				"operation", "submit_form", "outcome", "degraded",
				"record_id", recordID, "error", err,
			)
		}
	}

	params := ports.FinalizeLedgerParams{
		TransactionID:    nil,
		Status:           domain.LedgerStatusFailed,
		ThirdPartyStatus: domain.ThirdPartyStatusFailed,
		Description: fmt.Sprintf("AQS Form Submission Failed - Form ID: %s, Error: %s, Agent: %s",
			formID, cause.Error(), actor.AgentName),
		At: now,
	}
	var err error
	if ledgerOK {
		err = s.ledger.FinalizeByHandle(ctx, ledgerHandle, params)
	} else {
		err = s.ledger.FinalizeByAgentFallback(ctx, actor.AgentID, domain.ServiceFormSubmission, params)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "failed-submission ledger finalize failed",
			"module", "application", "layer", "service",
			"operation", "submit_form", "outcome", "degraded",
			"form_id", formID, "error", err,
		)
	}

	s.enqueueEvent(ctx, domain.EventSubmissionFailed, actor.AgentID, map[string]any{
		"form_id":  formID,
		"agent_id": actor.AgentID,
		"error":    cause.Error(),
	})
}

func statusOrDefault(status string) string {
	if status == "" {
		return string(domain.SubmissionStatusSubmitted)
	}
	return status
}

// extractOutcome pulls the reconciliation fields out of the collector
// response. Field locations follow the collector's nested shape; absent
// fields simply stay empty.
func extractOutcome(response map[string]any, raw []byte) domain.SubmissionOutcome {
	submission := childMap(response, "submission")
	apiDetails := childMap(response, "apiDetails")
	form := childMap(submission, "form")
	organization := childMap(submission, "organization")
	validation := childMap(submission, "validation")
	workflow := childMap(submission, "workflow")
	submitterDisplay := childMap(submission, "submitterDisplay")
	flags := childMap(submission, "flags")

	submissionID := stringField(response, "submissionId")
	if submissionID == "" {
		submissionID = stringField(apiDetails, "submissionId")
	}
	if submissionID == "" {
		submissionID = stringField(submission, "_id")
	}

	thirdParty := stringField(submission, "status")
	if thirdParty == "" {
		thirdParty = stringField(response, "status")
	}
	if thirdParty == "" {
		thirdParty = string(domain.SubmissionStatusProcessing)
	}

	validationStatus := "invalid"
	if b, ok := validation["isValid"].(bool); ok && b {
		validationStatus = "valid"
	}

	syncStatus := stringField(submission, "syncStatus")
	if syncStatus == "" {
		syncStatus = "synced"
	}
	submitterType := stringField(submission, "submissionType")
	if submitterType == "" {
		submitterType = "api"
	}
	submitterKey := stringField(submitterDisplay, "apiKeyName")
	if submitterKey == "" {
		submitterKey = stringField(apiDetails, "apiKeyName")
	}

	isFlagged, _ := flags["isFlagged"].(bool)

	return domain.SubmissionOutcome{
		SubmissionID:        submissionID,
		ThirdPartyStatus:    thirdParty,
		ExternalResponse:    raw,
		FormTitle:           stringField(form, "title"),
		FormDescription:     stringField(form, "description"),
		OrganizationID:      stringField(organization, "_id"),
		OrganizationName:    stringField(organization, "name"),
		SyncStatus:          syncStatus,
		SubmitterType:       submitterType,
		SubmitterDisplay:    stringField(submitterDisplay, "displayName"),
		SubmitterAPIKeyName: submitterKey,
		ValidationStatus:    validationStatus,
		ValidationErrors:    marshalField(validation, "errors"),
		WorkflowCurrentStep: stringField(workflow, "currentStep"),
		WorkflowSteps:       marshalField(workflow, "steps"),
		IsFlagged:           isFlagged,
		APIKeyName:          stringField(apiDetails, "apiKeyName"),
		ExternalID:          stringField(apiDetails, "externalId"),
	}
}

func childMap(parent map[string]any, key string) map[string]any {
	if parent == nil {
		return map[string]any{}
	}
	if m, ok := parent[key].(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func stringField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	default:
		return ""
	}
}

func marshalField(m map[string]any, key string) []byte {
	if m == nil {
		return nil
	}
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	blob, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return blob
}
