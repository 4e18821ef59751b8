package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type transferRepository struct {
	db *gorm.DB
}

// UpdateDescriptionBySubmission is a best-effort touch-up: when a transfer
// row already references the submission it gets the enriched description,
// otherwise nothing happens.
func (r *transferRepository) UpdateDescriptionBySubmission(ctx context.Context, submissionID, description string, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&transferModel{}).
		Where("submission_id = ?", submissionID).
		Updates(map[string]any{
			"description": description,
			"updated_at":  at,
		})
	if res.Error != nil && !errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return res.Error
	}
	return nil
}
