package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/moolapay/agency-service/internal/domain"
	"github.com/moolapay/agency-service/internal/ports"
)

type submissionRepository struct {
	db *gorm.DB
}

func (r *submissionRepository) Create(ctx context.Context, params ports.CreateSubmissionParams) (int64, error) {
	rec := submissionModel{
		FormID:      params.FormID,
		CustomerID:  params.CustomerID,
		AgentID:     params.AgentID,
		FormData:    string(params.FormData),
		Status:      string(domain.SubmissionStatusSubmitted),
		SubmittedAt: params.SubmittedAt,
		CreatedAt:   params.SubmittedAt,
		UpdatedAt:   params.SubmittedAt,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return 0, err
	}
	return rec.ID, nil
}

// Reconcile is the single post-collector update: every derived field lands in
// one statement and processed_at is stamped here, exactly once.
func (r *submissionRepository) Reconcile(ctx context.Context, id int64, outcome domain.SubmissionOutcome, at time.Time) error {
	updates := map[string]any{
		"submission_id":          strPtr(outcome.SubmissionID),
		"status":                 string(domain.SubmissionStatusProcessing),
		"third_party_status":     strPtr(outcome.ThirdPartyStatus),
		"external_response":      strPtr(string(outcome.ExternalResponse)),
		"form_title":             strPtr(outcome.FormTitle),
		"form_description":       strPtr(outcome.FormDescription),
		"organization_id":        strPtr(outcome.OrganizationID),
		"organization_name":      strPtr(outcome.OrganizationName),
		"sync_status":            strPtr(outcome.SyncStatus),
		"submitter_type":         strPtr(outcome.SubmitterType),
		"submitter_display":      strPtr(outcome.SubmitterDisplay),
		"submitter_api_key_name": strPtr(outcome.SubmitterAPIKeyName),
		"validation_status":      strPtr(outcome.ValidationStatus),
		"validation_errors":      strPtr(string(outcome.ValidationErrors)),
		"workflow_current_step":  strPtr(outcome.WorkflowCurrentStep),
		"workflow_steps":         strPtr(string(outcome.WorkflowSteps)),
		"is_flagged":             outcome.IsFlagged,
		"api_key_name":           strPtr(outcome.APIKeyName),
		"external_id":            strPtr(outcome.ExternalID),
		"processed_at":           at,
		"updated_at":             at,
	}
	res := r.db.WithContext(ctx).
		Model(&submissionModel{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *submissionRepository) MarkFailed(ctx context.Context, id int64, message string, at time.Time) error {
	if message == "" {
		message = "Unknown error occurred"
	}
	return r.db.WithContext(ctx).
		Model(&submissionModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":        string(domain.SubmissionStatusFailed),
			"error_message": message,
			"updated_at":    at,
		}).Error
}

func (r *submissionRepository) GetByID(ctx context.Context, id int64) (domain.Submission, error) {
	var rec submissionModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Submission{}, domain.ErrNotFound
		}
		return domain.Submission{}, err
	}
	return toDomainSubmission(rec), nil
}

func (r *submissionRepository) CountSubmitted(ctx context.Context, formID, agentID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&submissionModel{}).
		Where("form_id = ? AND agent_id = ? AND third_party_status = ?", formID, agentID, string(domain.SubmissionStatusSubmitted)).
		Count(&count).Error
	return count, err
}

func toDomainSubmission(rec submissionModel) domain.Submission {
	return domain.Submission{
		ID:               rec.ID,
		FormID:           rec.FormID,
		CustomerID:       rec.CustomerID,
		AgentID:          rec.AgentID,
		FormData:         []byte(rec.FormData),
		Status:           domain.SubmissionStatus(rec.Status),
		ThirdPartyStatus: strVal(rec.ThirdPartyStatus),
		SubmissionID:     strVal(rec.SubmissionID),
		ErrorMessage:     strVal(rec.ErrorMessage),
		SubmittedAt:      rec.SubmittedAt,
		ProcessedAt:      rec.ProcessedAt,
		CreatedAt:        rec.CreatedAt,
		UpdatedAt:        rec.UpdatedAt,
	}
}
