package domain

import (
	"fmt"
	"strings"
	"time"
)

// SubmissionStatus is the local lifecycle of one form submission attempt.
// Transitions are strictly forward: submitted -> processing -> success|failed.
type SubmissionStatus string

const (
	SubmissionStatusSubmitted  SubmissionStatus = "submitted"
	SubmissionStatusProcessing SubmissionStatus = "processing"
	SubmissionStatusSuccess    SubmissionStatus = "success"
	SubmissionStatusFailed     SubmissionStatus = "failed"
)

// Submission is the service's own record of one push to the collector API.
// ExternalID fields stay empty until the collector responds.
type Submission struct {
	ID               int64            `json:"id"`
	FormID           string           `json:"form_id"`
	CustomerID       string           `json:"customer_id"`
	AgentID          string           `json:"agent_id"`
	FormData         []byte           `json:"-"`
	Status           SubmissionStatus `json:"status"`
	ThirdPartyStatus string           `json:"third_party_status,omitempty"`
	SubmissionID     string           `json:"submission_id,omitempty"`
	ErrorMessage     string           `json:"error_message,omitempty"`
	SubmittedAt      time.Time        `json:"submitted_at"`
	ProcessedAt      *time.Time       `json:"processed_at,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// SubmissionOutcome carries everything extracted from a successful collector
// response that must be written back onto the local record in one update.
type SubmissionOutcome struct {
	SubmissionID        string
	ThirdPartyStatus    string
	ExternalResponse    []byte
	FormTitle           string
	FormDescription     string
	OrganizationID      string
	OrganizationName    string
	SyncStatus          string
	SubmitterType       string
	SubmitterDisplay    string
	SubmitterAPIKeyName string
	ValidationStatus    string
	ValidationErrors    []byte
	WorkflowCurrentStep string
	WorkflowSteps       []byte
	IsFlagged           bool
	APIKeyName          string
	ExternalID          string
}

// Distinct validation failures keep their own localization keys at the HTTP
// layer while still matching ErrInvalidInput.
var (
	ErrMissingFormID   = fmt.Errorf("%w: formId is required", ErrInvalidInput)
	ErrMissingFormData = fmt.Errorf("%w: data is required", ErrInvalidInput)
)

func ValidateSubmissionInput(formID string, data []byte) error {
	if strings.TrimSpace(formID) == "" {
		return ErrMissingFormID
	}
	if len(data) == 0 || string(data) == "null" {
		return ErrMissingFormData
	}
	return nil
}
