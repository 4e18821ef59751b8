package application

import (
	"context"

	"github.com/moolapay/agency-service/internal/domain"
	"github.com/moolapay/agency-service/internal/ports"
)

// ListTransactionHistory returns the caller's own ledger entries, newest
// first.
func (s *Service) ListTransactionHistory(ctx context.Context, actor Actor, limit, offset int) (HistoryOutput, error) {
	if actor.AgentID == "" {
		return HistoryOutput{}, domain.ErrUnauthorized
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	items, total, err := s.ledger.List(ctx, ports.LedgerQuery{
		AgentID: actor.AgentID,
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		return HistoryOutput{}, err
	}
	return HistoryOutput{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

// GetTransaction returns one ledger entry by its transaction id, scoped to
// the caller.
func (s *Service) GetTransaction(ctx context.Context, actor Actor, transactionID string) (domain.LedgerEntry, error) {
	if actor.AgentID == "" {
		return domain.LedgerEntry{}, domain.ErrUnauthorized
	}
	if transactionID == "" {
		return domain.LedgerEntry{}, domain.ErrInvalidInput
	}
	entry, err := s.ledger.GetByTransactionID(ctx, transactionID)
	if err != nil {
		return domain.LedgerEntry{}, err
	}
	if entry.AgentID != actor.AgentID {
		return domain.LedgerEntry{}, domain.ErrNotFound
	}
	return entry, nil
}

// LookupTransaction returns a ledger entry without agent scoping. It backs
// the internal gRPC surface, which only trusted sibling services reach.
func (s *Service) LookupTransaction(ctx context.Context, transactionID string) (domain.LedgerEntry, error) {
	if transactionID == "" {
		return domain.LedgerEntry{}, domain.ErrInvalidInput
	}
	return s.ledger.GetByTransactionID(ctx, transactionID)
}
