package application

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/moolapay/agency-service/internal/domain"
	"github.com/moolapay/agency-service/internal/ports"
)

// Config holds the business knobs resolved once at bootstrap. Nothing in
// this package reads the process environment.
type Config struct {
	CommissionAmount         string
	CommissionTransferTypeID string
	CommissionCurrency       string
	CommissionDescription    string

	MinimumBalance  float64
	BalanceCacheTTL time.Duration

	// SubmissionLimit is the quota-gate threshold. User-facing copy still
	// advertises a limit of 5 while enforcement sits at 10; the HTTP layer
	// owns that copy and the discrepancy is deliberate, not to be silently
	// resolved.
	SubmissionLimit int64
}

// Actor is the authenticated agent extracted from the bearer token, plus the
// request-scoped bits the pipeline forwards to the collector.
type Actor struct {
	AgentID       string
	AgentName     string
	AgentCategory string
	UserAuth      string
	BearerToken   string
	Language      string
	RequestID     string
}

type SubmitFormInput struct {
	FormID string
	Data   json.RawMessage
	Status string
}

// SubmitFormOutput is the composed success payload: the raw collector
// response, the local record id, the reported status and the commission
// summary (nil when commission generation never produced a result).
type SubmitFormOutput struct {
	Response   map[string]any
	RecordID   int64
	Status     domain.SubmissionStatus
	Commission *domain.CommissionResult
}

type HistoryOutput struct {
	Items  []domain.LedgerEntry
	Total  int64
	Limit  int
	Offset int
}

type Service struct {
	cfg         Config
	submissions ports.SubmissionRepository
	ledger      ports.LedgerRepository
	transfers   ports.TransferRepository
	outbox      ports.OutboxRepository
	collector   ports.CollectorClient
	payments    ports.PaymentClient
	balances    ports.BalanceCache
	logger      *slog.Logger
	nowFn       func() time.Time
	newIDFn     func() string
}

type Dependencies struct {
	Config      Config
	Submissions ports.SubmissionRepository
	Ledger      ports.LedgerRepository
	Transfers   ports.TransferRepository
	Outbox      ports.OutboxRepository
	Collector   ports.CollectorClient
	Payments    ports.PaymentClient
	Balances    ports.BalanceCache
	Logger      *slog.Logger
}

func NewService(deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:         deps.Config,
		submissions: deps.Submissions,
		ledger:      deps.Ledger,
		transfers:   deps.Transfers,
		outbox:      deps.Outbox,
		collector:   deps.Collector,
		payments:    deps.Payments,
		balances:    deps.Balances,
		logger:      logger,
		nowFn:       func() time.Time { return time.Now().UTC() },
		newIDFn:     uuid.NewString,
	}
}
