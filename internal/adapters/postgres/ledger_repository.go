package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/moolapay/agency-service/internal/domain"
	"github.com/moolapay/agency-service/internal/ports"
)

type ledgerRepository struct {
	db *gorm.DB
}

func (r *ledgerRepository) Insert(ctx context.Context, params ports.InsertLedgerParams) (int64, error) {
	rec := ledgerModel{
		TransactionID:    params.TransactionID,
		Status:           string(params.Status),
		ThirdPartyStatus: params.ThirdPartyStatus,
		Description:      params.Description,
		Amount:           params.Amount,
		CustomerCharge:   params.CustomerCharge,
		AgentID:          params.AgentID,
		AgentName:        params.AgentName,
		ServiceName:      params.ServiceName,
		Reference:        strPtr(params.Reference),
		CustomerID:       strPtr(params.CustomerID),
		Token:            strPtr(params.Token),
		CreatedAt:        params.At,
		UpdatedAt:        params.At,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return 0, err
	}
	return rec.ID, nil
}

func (r *ledgerRepository) FinalizeByHandle(ctx context.Context, id int64, params ports.FinalizeLedgerParams) error {
	res := r.db.WithContext(ctx).
		Model(&ledgerModel{}).
		Where("id = ?", id).
		Updates(finalizeUpdates(params))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// FinalizeByAgentFallback locates the most recent pending entry for the
// actor/service pair and finalizes that row. Matching by recency is racy when
// the same agent has concurrent pending entries; the handle-based path above
// is the primary mechanism and this exists only for callers without a handle.
// Matching nothing is a no-op by contract.
func (r *ledgerRepository) FinalizeByAgentFallback(ctx context.Context, agentID, serviceName string, params ports.FinalizeLedgerParams) error {
	var rec ledgerModel
	err := r.db.WithContext(ctx).
		Where("agent_id = ? AND service_name = ? AND status = ?", agentID, serviceName, string(domain.LedgerStatusPending)).
		Order("created_at DESC").
		Take(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	return r.db.WithContext(ctx).
		Model(&ledgerModel{}).
		Where("id = ?", rec.ID).
		Updates(finalizeUpdates(params)).Error
}

func (r *ledgerRepository) GetByTransactionID(ctx context.Context, transactionID string) (domain.LedgerEntry, error) {
	var rec ledgerModel
	if err := r.db.WithContext(ctx).Where("transaction_id = ?", transactionID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.LedgerEntry{}, domain.ErrNotFound
		}
		return domain.LedgerEntry{}, err
	}
	return toDomainLedgerEntry(rec), nil
}

func (r *ledgerRepository) List(ctx context.Context, query ports.LedgerQuery) ([]domain.LedgerEntry, int64, error) {
	base := r.db.WithContext(ctx).Model(&ledgerModel{}).Where("agent_id = ?", query.AgentID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []ledgerModel
	if err := base.
		Order("created_at DESC").
		Limit(query.Limit).
		Offset(query.Offset).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	items := make([]domain.LedgerEntry, 0, len(rows))
	for _, row := range rows {
		items = append(items, toDomainLedgerEntry(row))
	}
	return items, total, nil
}

func finalizeUpdates(params ports.FinalizeLedgerParams) map[string]any {
	updates := map[string]any{
		"status":             string(params.Status),
		"third_party_status": params.ThirdPartyStatus,
		"description":        params.Description,
		"updated_at":         params.At,
	}
	// The pending row for a form submission is created without a transaction
	// id; the commission's id is adopted here (two-phase identity).
	if params.TransactionID != nil {
		updates["transaction_id"] = *params.TransactionID
	}
	if params.Token != "" {
		updates["token"] = params.Token
	}
	return updates
}

func toDomainLedgerEntry(rec ledgerModel) domain.LedgerEntry {
	return domain.LedgerEntry{
		ID:               rec.ID,
		TransactionID:    rec.TransactionID,
		Status:           domain.LedgerStatus(rec.Status),
		ThirdPartyStatus: rec.ThirdPartyStatus,
		Description:      rec.Description,
		Amount:           rec.Amount,
		CustomerCharge:   rec.CustomerCharge,
		AgentID:          rec.AgentID,
		AgentName:        rec.AgentName,
		ServiceName:      rec.ServiceName,
		Reference:        strVal(rec.Reference),
		CustomerID:       strVal(rec.CustomerID),
		Token:            strVal(rec.Token),
		CreatedAt:        rec.CreatedAt,
		UpdatedAt:        rec.UpdatedAt,
	}
}
