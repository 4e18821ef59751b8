package application

import (
	"context"
	"errors"

	"github.com/moolapay/agency-service/internal/domain"
)

// BalanceGateResult reports the balance check so the HTTP layer can include
// the deficit in its response body.
type BalanceGateResult struct {
	Balance         float64
	MinimumRequired float64
}

// CheckAccountBalance gates submissions on the agency float account held in
// Cyclos. Policy: insufficient balance rejects, an upstream auth failure
// rejects, and every other infrastructure failure fails OPEN — availability
// over strictness.
func (s *Service) CheckAccountBalance(ctx context.Context) (BalanceGateResult, error) {
	result := BalanceGateResult{MinimumRequired: s.cfg.MinimumBalance}

	if s.balances != nil {
		if balance, ok, err := s.balances.Get(ctx); err == nil && ok {
			result.Balance = balance
			if balance < s.cfg.MinimumBalance {
				return result, domain.ErrInsufficientBalance
			}
			return result, nil
		}
	}

	balance, err := s.payments.AccountBalance(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			s.logger.ErrorContext(ctx, "account authentication failed",
				"module", "application", "layer", "service",
				"operation", "check_account_balance", "outcome", "failure",
				"error", err,
			)
			return result, domain.ErrUnauthorized
		}
		s.logger.ErrorContext(ctx, "balance check failed, allowing request through",
			"module", "application", "layer", "service",
			"operation", "check_account_balance", "outcome", "fail_open",
			"error", err,
		)
		return result, nil
	}

	result.Balance = balance
	if s.balances != nil {
		if err := s.balances.Set(ctx, balance, s.cfg.BalanceCacheTTL); err != nil {
			s.logger.WarnContext(ctx, "balance cache write failed",
				"module", "application", "layer", "service",
				"operation", "check_account_balance", "outcome", "degraded",
				"error", err,
			)
		}
	}

	s.logger.InfoContext(ctx, "account balance check",
		"module", "application", "layer", "service",
		"operation", "check_account_balance", "outcome", "success",
		"balance", balance, "minimum_balance", s.cfg.MinimumBalance,
		"sufficient", balance >= s.cfg.MinimumBalance,
	)

	if balance < s.cfg.MinimumBalance {
		return result, domain.ErrInsufficientBalance
	}
	return result, nil
}

// QuotaGateResult reports the quota check for the 429 response body.
type QuotaGateResult struct {
	CurrentSubmissions int64
	Limit              int64
}

// CheckSubmissionQuota gates repeat submissions of the same form by the same
// agent. A storage failure fails OPEN.
func (s *Service) CheckSubmissionQuota(ctx context.Context, formID, agentID string) (QuotaGateResult, error) {
	count, err := s.submissions.CountSubmitted(ctx, formID, agentID)
	if err != nil {
		s.logger.ErrorContext(ctx, "submission quota check failed, allowing request through",
			"module", "application", "layer", "service",
			"operation", "check_submission_quota", "outcome", "fail_open",
			"form_id", formID, "agent_id", agentID, "error", err,
		)
		return QuotaGateResult{Limit: s.cfg.SubmissionLimit}, nil
	}

	result := QuotaGateResult{CurrentSubmissions: count, Limit: s.cfg.SubmissionLimit}
	s.logger.InfoContext(ctx, "form submission quota check",
		"module", "application", "layer", "service",
		"operation", "check_submission_quota", "outcome", "success",
		"form_id", formID, "agent_id", agentID,
		"current_submissions", count, "limit", s.cfg.SubmissionLimit,
	)

	if count >= s.cfg.SubmissionLimit {
		return result, domain.ErrQuotaExceeded
	}
	return result, nil
}
