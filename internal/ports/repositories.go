package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/moolapay/agency-service/internal/domain"
)

// CreateSubmissionParams is the pre-flight local record written before the
// collector is called.
type CreateSubmissionParams struct {
	FormID      string
	CustomerID  string
	AgentID     string
	FormData    []byte
	SubmittedAt time.Time
}

// SubmissionRepository owns aqs_data_collection rows. Reconcile and
// MarkFailed are keyed by the id returned from Create; rows are never
// deleted.
type SubmissionRepository interface {
	Create(ctx context.Context, params CreateSubmissionParams) (int64, error)
	// Reconcile rewrites the row after a successful collector response in a
	// single update, moving status to processing and stamping processed_at.
	Reconcile(ctx context.Context, id int64, outcome domain.SubmissionOutcome, at time.Time) error
	MarkFailed(ctx context.Context, id int64, message string, at time.Time) error
	GetByID(ctx context.Context, id int64) (domain.Submission, error)
	// CountSubmitted backs the quota gate: rows for (formID, agentID) whose
	// third-party status is still "submitted".
	CountSubmitted(ctx context.Context, formID, agentID string) (int64, error)
}

// InsertLedgerParams is the full column set for one audit row. TransactionID
// is nil for form submissions until the commission assigns one.
type InsertLedgerParams struct {
	TransactionID    *string
	Status           domain.LedgerStatus
	Description      string
	Amount           string
	CustomerCharge   string
	AgentID          string
	AgentName        string
	ThirdPartyStatus string
	ServiceName      string
	Reference        string
	CustomerID       string
	Token            string
	At               time.Time
}

// FinalizeLedgerParams is the single terminal update applied to a pending
// entry.
type FinalizeLedgerParams struct {
	TransactionID    *string
	Status           domain.LedgerStatus
	ThirdPartyStatus string
	Token            string
	Description      string
	At               time.Time
}

type LedgerQuery struct {
	AgentID string
	Limit   int
	Offset  int
}

// LedgerRepository appends and finalizes transaction_logs rows.
//
// Insert returns the row id so the pipeline can finalize its own entry
// without any lookup. FinalizeByHandle uses that id. FinalizeByAgentFallback
// matches the most recent pending row for callers that only know the actor
// and service; it is inherently racy when one agent runs concurrent
// submissions and exists as a best-effort fallback only. A fallback that
// matches no pending row is a no-op, not an error.
type LedgerRepository interface {
	Insert(ctx context.Context, params InsertLedgerParams) (int64, error)
	FinalizeByHandle(ctx context.Context, id int64, params FinalizeLedgerParams) error
	FinalizeByAgentFallback(ctx context.Context, agentID, serviceName string, params FinalizeLedgerParams) error
	GetByTransactionID(ctx context.Context, transactionID string) (domain.LedgerEntry, error)
	List(ctx context.Context, query LedgerQuery) ([]domain.LedgerEntry, int64, error)
}

// TransferRepository performs the best-effort description touch-up on the
// transfers table after a successful submission.
type TransferRepository interface {
	UpdateDescriptionBySubmission(ctx context.Context, submissionID, description string, at time.Time) error
}

type OutboxEvent struct {
	EventID      uuid.UUID
	EventType    string
	PartitionKey string
	Payload      []byte
	OccurredAt   time.Time
}

type OutboxRecord struct {
	OutboxID     uuid.UUID
	EventType    string
	PartitionKey string
	Payload      []byte
	RetryCount   int
	CreatedAt    time.Time
	PublishedAt  *time.Time
	LastError    *string
	ClaimToken   *string
	ClaimUntil   *time.Time
}

// OutboxRepository stores lifecycle events transactionally beside the tables
// they describe; a worker drains them to the broker.
type OutboxRepository interface {
	Enqueue(ctx context.Context, event OutboxEvent) error
	ClaimUnpublished(ctx context.Context, limit int, claimToken string, claimUntil time.Time) ([]OutboxRecord, error)
	MarkPublished(ctx context.Context, outboxID uuid.UUID, claimToken string, at time.Time) error
	MarkFailed(ctx context.Context, outboxID uuid.UUID, claimToken, errMsg string, at time.Time) error
}
