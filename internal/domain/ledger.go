package domain

import "time"

// LedgerStatus is the audit-log lifecycle: one pending write per pipeline
// run, exactly one terminal transition afterwards.
type LedgerStatus string

const (
	LedgerStatusPending    LedgerStatus = "pending"
	LedgerStatusSuccess    LedgerStatus = "success"
	LedgerStatusSuccessful LedgerStatus = "successful"
	LedgerStatusFailed     LedgerStatus = "failed"
)

// Third-party statuses recorded alongside the local one. auth_failed is kept
// distinct from failed so reconciliation can separate credential problems
// from transport problems.
const (
	ThirdPartyStatusPending    = "pending"
	ThirdPartyStatusSuccessful = "successful"
	ThirdPartyStatusFailed     = "failed"
	ThirdPartyStatusAuthFailed = "auth_failed"
)

const (
	ServiceFormSubmission = "AQS"
	ServiceCommission     = "Commission"
)

// LedgerEntry is one audit row in transaction_logs. TransactionID is nil at
// creation for form submissions and is replaced by the commission transaction
// id once the downstream payment completes (two-phase identity assignment).
type LedgerEntry struct {
	ID               int64        `json:"id"`
	TransactionID    *string      `json:"transaction_id,omitempty"`
	Status           LedgerStatus `json:"status"`
	ThirdPartyStatus string       `json:"third_party_status"`
	Description      string       `json:"description"`
	Amount           string       `json:"amount"`
	CustomerCharge   string       `json:"customer_charge"`
	AgentID          string       `json:"agent_id"`
	AgentName        string       `json:"agent_name"`
	ServiceName      string       `json:"service_name"`
	Reference        string       `json:"reference,omitempty"`
	CustomerID       string       `json:"customer_id,omitempty"`
	Token            string       `json:"token,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// CommissionResult is the value returned by the commission invoker. It is
// never an error: the pipeline folds it into the response as-is so a failed
// commission can never downgrade a successful submission.
type CommissionResult struct {
	Success       bool           `json:"success"`
	Message       string         `json:"message"`
	Data          map[string]any `json:"data,omitempty"`
	Error         string         `json:"error,omitempty"`
	TransactionID string         `json:"transactionId,omitempty"`
}
