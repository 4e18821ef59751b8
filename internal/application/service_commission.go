package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/moolapay/agency-service/internal/domain"
	"github.com/moolapay/agency-service/internal/ports"
)

// GenerateCommission pays the per-submission agent commission through Cyclos.
// It generates the transaction id locally before any ledger or network
// activity, writes its own pending ledger entry, and finalizes it to a
// terminal state on every path. It never returns an error: the pipeline must
// receive a result object so a commission failure stays fire-isolated.
func (s *Service) GenerateCommission(ctx context.Context, agentID, agentName string) *domain.CommissionResult {
	if agentID == "" {
		s.logger.WarnContext(ctx, "missing agent id for commission generation",
			"module", "application", "layer", "service",
			"operation", "generate_commission", "outcome", "failure",
		)
		return &domain.CommissionResult{
			Success: false,
			Message: "Agent ID is required for commission generation",
			Error:   "MISSING_AGENT_ID",
		}
	}
	if agentName == "" {
		agentName = "Unknown"
	}

	transactionID := s.newIDFn()
	now := s.nowFn()

	handle, err := s.ledger.Insert(ctx, ports.InsertLedgerParams{
		TransactionID:    &transactionID,
		Status:           domain.LedgerStatusPending,
		Description:      s.cfg.CommissionDescription + " - Initiating payment",
		Amount:           s.cfg.CommissionAmount,
		CustomerCharge:   "0",
		AgentID:          agentID,
		AgentName:        agentName,
		ThirdPartyStatus: domain.ThirdPartyStatusPending,
		ServiceName:      domain.ServiceCommission,
		CustomerID:       agentID,
		At:               now,
	})
	ledgerOK := err == nil
	if err != nil {
		s.logger.ErrorContext(ctx, "commission ledger pre-write failed",
			"module", "application", "layer", "service",
			"operation", "generate_commission", "outcome", "degraded",
			"transaction_id", transactionID, "agent_id", agentID, "error", err,
		)
	}

	s.logger.InfoContext(ctx, "generating agent commission",
		"module", "application", "layer", "service",
		"operation", "generate_commission", "outcome", "start",
		"transaction_id", transactionID, "agent_id", agentID,
		"amount", s.cfg.CommissionAmount, "transfer_type_id", s.cfg.CommissionTransferTypeID,
	)

	response, err := s.payments.ConfirmMemberPayment(ctx, ports.PaymentRequest{
		ToMemberID:     agentID,
		Amount:         s.cfg.CommissionAmount,
		TransferTypeID: s.cfg.CommissionTransferTypeID,
		CurrencySymbol: s.cfg.CommissionCurrency,
		Description:    s.cfg.CommissionDescription,
	})
	if err != nil {
		return s.commissionFailed(ctx, transactionID, handle, ledgerOK, agentID, err)
	}

	// The expected contract is {id, pending}, but any response carrying an
	// id is accepted as success even when the pending flag is missing. The
	// unexpected shape is logged, not rejected.
	if response.ID != "" && response.Pending != nil {
		s.finalizeCommission(ctx, transactionID, agentID, handle, ledgerOK, domain.LedgerStatusSuccessful,
			domain.ThirdPartyStatusSuccessful, response.ID,
			fmt.Sprintf("Commission payment successful - Commission ID: %s", response.ID))
		s.enqueueEvent(ctx, domain.EventCommissionPaid, agentID, map[string]any{
			"transaction_id": transactionID,
			"commission_id":  response.ID,
			"agent_id":       agentID,
			"amount":         s.cfg.CommissionAmount,
		})
		return &domain.CommissionResult{
			Success:       true,
			Message:       "Commission generated successfully",
			Data:          map[string]any{"id": response.ID, "pending": *response.Pending},
			TransactionID: transactionID,
		}
	}

	s.logger.WarnContext(ctx, "unexpected commission response format",
		"module", "application", "layer", "service",
		"operation", "generate_commission", "outcome", "degraded",
		"transaction_id", transactionID, "agent_id", agentID,
	)
	s.finalizeCommission(ctx, transactionID, agentID, handle, ledgerOK, domain.LedgerStatusSuccess,
		string(domain.LedgerStatusSuccess), response.ID,
		"Commission payment processed with unexpected response format")
	return &domain.CommissionResult{
		Success:       true,
		Message:       "Commission generated successfully",
		Data:          response.Raw,
		TransactionID: transactionID,
	}
}

func (s *Service) commissionFailed(ctx context.Context, transactionID string, handle int64, ledgerOK bool, agentID string, cause error) *domain.CommissionResult {
	thirdParty := domain.ThirdPartyStatusFailed
	description := cause.Error()
	if ge, ok := domain.AsGatewayError(cause); ok && ge.Kind == domain.GatewayAuthFailed {
		thirdParty = domain.ThirdPartyStatusAuthFailed
		description = "Authentication failed: " + ge.Message
	} else if errors.Is(cause, domain.ErrUnauthorized) {
		thirdParty = domain.ThirdPartyStatusAuthFailed
	}

	s.logger.ErrorContext(ctx, "commission generation failed",
		"module", "application", "layer", "service",
		"operation", "generate_commission", "outcome", "failure",
		"transaction_id", transactionID, "agent_id", agentID,
		"third_party_status", thirdParty, "error", cause,
	)

	s.finalizeCommission(ctx, transactionID, agentID, handle, ledgerOK, domain.LedgerStatusFailed, thirdParty, "", description)
	s.enqueueEvent(ctx, domain.EventCommissionFailed, agentID, map[string]any{
		"transaction_id": transactionID,
		"agent_id":       agentID,
		"error":          cause.Error(),
	})
	return &domain.CommissionResult{
		Success:       false,
		Message:       "Failed to generate commission",
		Error:         cause.Error(),
		TransactionID: transactionID,
	}
}

func (s *Service) finalizeCommission(ctx context.Context, transactionID, agentID string, handle int64, ledgerOK bool, status domain.LedgerStatus, thirdParty, token, description string) {
	params := ports.FinalizeLedgerParams{
		TransactionID:    &transactionID,
		Status:           status,
		ThirdPartyStatus: thirdParty,
		Token:            token,
		Description:      description,
		At:               s.nowFn(),
	}
	var err error
	if ledgerOK {
		err = s.ledger.FinalizeByHandle(ctx, handle, params)
	} else {
		err = s.ledger.FinalizeByAgentFallback(ctx, agentID, domain.ServiceCommission, params)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "commission ledger finalize failed",
			"module", "application", "layer", "service",
			"operation", "generate_commission", "outcome", "degraded",
			"transaction_id", transactionID, "error", err,
		)
	}
}
