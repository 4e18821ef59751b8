package unit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/moolapay/agency-service/internal/application"
	"github.com/moolapay/agency-service/internal/domain"
	"github.com/moolapay/agency-service/internal/ports"
)

func TestSubmitFormSuccess(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	out, err := f.service.SubmitForm(ctx, testActor(), application.SubmitFormInput{
		FormID: "form-1",
		Data:   json.RawMessage(`{"field":"value"}`),
	})
	if err != nil {
		t.Fatalf("submit form failed: %v", err)
	}
	if out.Status != domain.SubmissionStatusProcessing {
		t.Fatalf("status = %s, want processing", out.Status)
	}
	if out.RecordID == 0 {
		t.Fatalf("expected a local record id")
	}
	if out.Commission == nil || !out.Commission.Success {
		t.Fatalf("expected successful commission, got %+v", out.Commission)
	}
	if out.Commission.TransactionID == "" {
		t.Fatalf("expected commission transaction id")
	}

	rec := f.submissions.get(out.RecordID)
	if rec == nil {
		t.Fatalf("local record missing")
	}
	if rec.status != domain.SubmissionStatusProcessing {
		t.Fatalf("record status = %s, want processing", rec.status)
	}
	if rec.outcome.SubmissionID != "sub-001" {
		t.Fatalf("record submission id = %q, want sub-001", rec.outcome.SubmissionID)
	}

	aqs := f.ledger.byService(domain.ServiceFormSubmission)
	if len(aqs) != 1 {
		t.Fatalf("expected exactly one AQS ledger entry, got %d", len(aqs))
	}
	if aqs[0].status != domain.LedgerStatusSuccess {
		t.Fatalf("AQS ledger status = %s, want success", aqs[0].status)
	}
	if aqs[0].token != "sub-001" {
		t.Fatalf("AQS ledger token = %q, want sub-001", aqs[0].token)
	}
	if aqs[0].transactionID == nil || *aqs[0].transactionID != out.Commission.TransactionID {
		t.Fatalf("AQS ledger should adopt the commission transaction id")
	}

	commission := f.ledger.byService(domain.ServiceCommission)
	if len(commission) != 1 {
		t.Fatalf("expected exactly one commission ledger entry, got %d", len(commission))
	}
	if commission[0].status != domain.LedgerStatusSuccessful {
		t.Fatalf("commission ledger status = %s, want successful", commission[0].status)
	}

	if !f.outbox.hasEvent(domain.EventSubmissionProcessing) {
		t.Fatalf("expected submission processing event")
	}
	if !f.outbox.hasEvent(domain.EventCommissionPaid) {
		t.Fatalf("expected commission paid event")
	}
}

func TestSubmitFormValidationWritesNothing(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	_, err := f.service.SubmitForm(ctx, testActor(), application.SubmitFormInput{
		FormID: "  ",
		Data:   json.RawMessage(`{"field":"value"}`),
	})
	if !errors.Is(err, domain.ErrMissingFormID) {
		t.Fatalf("expected ErrMissingFormID, got %v", err)
	}

	_, err = f.service.SubmitForm(ctx, testActor(), application.SubmitFormInput{
		FormID: "form-1",
		Data:   nil,
	})
	if !errors.Is(err, domain.ErrMissingFormData) {
		t.Fatalf("expected ErrMissingFormData, got %v", err)
	}

	if f.submissions.count() != 0 {
		t.Fatalf("validation failure must not create local records")
	}
	if f.ledger.count() != 0 {
		t.Fatalf("validation failure must not write ledger entries")
	}
	if f.collector.submitCalls != 0 {
		t.Fatalf("validation failure must not reach the collector")
	}
}

func TestSubmitFormCollectorFailure(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.collector.submitErr = &domain.GatewayError{Kind: domain.GatewayUnavailable, Status: 503, Message: "down"}
	ctx := context.Background()

	_, err := f.service.SubmitForm(ctx, testActor(), application.SubmitFormInput{
		FormID: "form-1",
		Data:   json.RawMessage(`{"field":"value"}`),
	})
	if !errors.Is(err, domain.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}

	recs := f.submissions.all()
	if len(recs) != 1 {
		t.Fatalf("expected one local record, got %d", len(recs))
	}
	if recs[0].status != domain.SubmissionStatusFailed {
		t.Fatalf("record status = %s, want failed", recs[0].status)
	}
	if recs[0].errorMessage == "" {
		t.Fatalf("expected stored error message")
	}

	aqs := f.ledger.byService(domain.ServiceFormSubmission)
	if len(aqs) != 1 || aqs[0].status != domain.LedgerStatusFailed {
		t.Fatalf("expected one failed AQS ledger entry, got %+v", aqs)
	}
	if aqs[0].thirdParty != domain.ThirdPartyStatusFailed {
		t.Fatalf("AQS third-party status = %s, want failed", aqs[0].thirdParty)
	}

	if len(f.ledger.byService(domain.ServiceCommission)) != 0 {
		t.Fatalf("failed submission must not attempt a commission")
	}
	if f.payments.confirmCalls != 0 {
		t.Fatalf("failed submission must not call the payment API")
	}
	if !f.outbox.hasEvent(domain.EventSubmissionFailed) {
		t.Fatalf("expected submission failed event")
	}
}

func TestCommissionFailureNeverDowngradesSubmission(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.payments.confirmErr = &domain.GatewayError{Kind: domain.GatewayUnavailable, Status: 503, Message: "cyclos down"}
	ctx := context.Background()

	out, err := f.service.SubmitForm(ctx, testActor(), application.SubmitFormInput{
		FormID: "form-1",
		Data:   json.RawMessage(`{"field":"value"}`),
	})
	if err != nil {
		t.Fatalf("submit form should still succeed: %v", err)
	}
	if out.Commission == nil || out.Commission.Success {
		t.Fatalf("expected failed commission result, got %+v", out.Commission)
	}
	if out.Commission.Error == "" {
		t.Fatalf("expected commission error detail")
	}

	aqs := f.ledger.byService(domain.ServiceFormSubmission)
	if len(aqs) != 1 || aqs[0].status != domain.LedgerStatusSuccess {
		t.Fatalf("AQS ledger must stay success, got %+v", aqs)
	}
	commission := f.ledger.byService(domain.ServiceCommission)
	if len(commission) != 1 || commission[0].status != domain.LedgerStatusFailed {
		t.Fatalf("expected failed commission ledger entry, got %+v", commission)
	}
	if !f.outbox.hasEvent(domain.EventCommissionFailed) {
		t.Fatalf("expected commission failed event")
	}
}

func TestCommissionAuthFailureRecordsAuthFailedStatus(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.payments.confirmErr = &domain.GatewayError{Kind: domain.GatewayAuthFailed, Status: 401, Message: "bad credentials"}
	ctx := context.Background()

	result := f.service.GenerateCommission(ctx, "agent-1", "Jane Agent")
	if result.Success {
		t.Fatalf("expected failed commission")
	}

	commission := f.ledger.byService(domain.ServiceCommission)
	if len(commission) != 1 {
		t.Fatalf("expected one commission ledger entry, got %d", len(commission))
	}
	if commission[0].thirdParty != domain.ThirdPartyStatusAuthFailed {
		t.Fatalf("third-party status = %s, want auth_failed", commission[0].thirdParty)
	}
}

func TestLedgerPreWriteFailureDoesNotBlockSubmission(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.ledger.failNextInsert = true
	ctx := context.Background()

	out, err := f.service.SubmitForm(ctx, testActor(), application.SubmitFormInput{
		FormID: "form-1",
		Data:   json.RawMessage(`{"field":"value"}`),
	})
	if err != nil {
		t.Fatalf("ledger pre-write failure must not block the pipeline: %v", err)
	}
	if f.collector.submitCalls != 1 {
		t.Fatalf("collector should have been called")
	}
	if out.Status != domain.SubmissionStatusProcessing {
		t.Fatalf("status = %s, want processing", out.Status)
	}
	if f.ledger.fallbackCalls == 0 {
		t.Fatalf("expected agent-fallback finalize when the handle is missing")
	}
}

func TestGenerateCommissionMissingAgent(t *testing.T) {
	t.Parallel()

	f := newFixture()
	result := f.service.GenerateCommission(context.Background(), "", "")
	if result.Success {
		t.Fatalf("expected failure without agent id")
	}
	if result.Error != "MISSING_AGENT_ID" {
		t.Fatalf("error = %q, want MISSING_AGENT_ID", result.Error)
	}
	if f.ledger.count() != 0 {
		t.Fatalf("missing agent must not write ledger entries")
	}
	if f.payments.confirmCalls != 0 {
		t.Fatalf("missing agent must not call the payment API")
	}
}

func TestGenerateCommissionLenientResponse(t *testing.T) {
	t.Parallel()

	f := newFixture()
	// Response carries an id but no pending flag: accepted as success.
	f.payments.confirmResp = ports.PaymentResponse{
		ID:  "pay-9",
		Raw: map[string]any{"id": "pay-9", "extra": "field"},
	}
	ctx := context.Background()

	result := f.service.GenerateCommission(ctx, "agent-1", "Jane Agent")
	if !result.Success {
		t.Fatalf("lenient response must still succeed, got %+v", result)
	}
	if result.TransactionID == "" {
		t.Fatalf("expected transaction id")
	}

	commission := f.ledger.byService(domain.ServiceCommission)
	if len(commission) != 1 || commission[0].status != domain.LedgerStatusSuccess {
		t.Fatalf("expected success ledger status for lenient path, got %+v", commission)
	}
}

func TestBalanceGate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("sufficient", func(t *testing.T) {
		f := newFixture()
		f.payments.balance = 1000
		if _, err := f.service.CheckAccountBalance(ctx); err != nil {
			t.Fatalf("expected pass, got %v", err)
		}
		if f.balances.value == nil || *f.balances.value != 1000 {
			t.Fatalf("expected balance cached after live check")
		}
	})

	t.Run("insufficient", func(t *testing.T) {
		f := newFixture()
		f.payments.balance = 100
		res, err := f.service.CheckAccountBalance(ctx)
		if !errors.Is(err, domain.ErrInsufficientBalance) {
			t.Fatalf("expected ErrInsufficientBalance, got %v", err)
		}
		if res.Balance != 100 || res.MinimumRequired != 500 {
			t.Fatalf("unexpected gate result: %+v", res)
		}
	})

	t.Run("fails open on infrastructure error", func(t *testing.T) {
		f := newFixture()
		f.payments.balanceErr = &domain.GatewayError{Kind: domain.GatewayUnavailable, Status: 503, Message: "down"}
		if _, err := f.service.CheckAccountBalance(ctx); err != nil {
			t.Fatalf("infrastructure failure must fail open, got %v", err)
		}
	})

	t.Run("fails closed on auth error", func(t *testing.T) {
		f := newFixture()
		f.payments.balanceErr = &domain.GatewayError{Kind: domain.GatewayAuthFailed, Status: 401, Message: "bad credentials"}
		if _, err := f.service.CheckAccountBalance(ctx); !errors.Is(err, domain.ErrUnauthorized) {
			t.Fatalf("auth failure must fail closed, got %v", err)
		}
	})

	t.Run("cache short-circuits the payment api", func(t *testing.T) {
		f := newFixture()
		cached := 2000.0
		f.balances.value = &cached
		if _, err := f.service.CheckAccountBalance(ctx); err != nil {
			t.Fatalf("expected pass, got %v", err)
		}
		if f.payments.balanceCalls != 0 {
			t.Fatalf("cached balance must not hit the payment API")
		}
	})
}

func TestSubmissionQuotaGate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("under limit", func(t *testing.T) {
		f := newFixture()
		f.submissions.submittedCount = 9
		if _, err := f.service.CheckSubmissionQuota(ctx, "form-1", "agent-1"); err != nil {
			t.Fatalf("expected pass, got %v", err)
		}
	})

	t.Run("at limit", func(t *testing.T) {
		f := newFixture()
		f.submissions.submittedCount = 10
		res, err := f.service.CheckSubmissionQuota(ctx, "form-1", "agent-1")
		if !errors.Is(err, domain.ErrQuotaExceeded) {
			t.Fatalf("expected ErrQuotaExceeded, got %v", err)
		}
		if res.CurrentSubmissions != 10 || res.Limit != 10 {
			t.Fatalf("unexpected gate result: %+v", res)
		}
	})

	t.Run("fails open on storage error", func(t *testing.T) {
		f := newFixture()
		f.submissions.countErr = errors.New("db down")
		if _, err := f.service.CheckSubmissionQuota(ctx, "form-1", "agent-1"); err != nil {
			t.Fatalf("storage failure must fail open, got %v", err)
		}
	})
}

func TestListFormsProxiesCollector(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.collector.listResp = []byte(`{"forms":[{"id":"form-1"}]}`)

	res, err := f.service.ListForms(context.Background(), testActor())
	if err != nil {
		t.Fatalf("list forms failed: %v", err)
	}
	if _, ok := res["forms"]; !ok {
		t.Fatalf("expected forms field in response")
	}
	if f.collector.lastLanguage != "en" || f.collector.lastBearer != "bearer-token" {
		t.Fatalf("collector should receive language and bearer token")
	}
}

func TestTransactionHistoryScopedToAgent(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	mine := "txn-mine"
	theirs := "txn-theirs"
	f.ledger.seed(ledgerRow{transactionID: &mine, agentID: "agent-1", service: domain.ServiceCommission, status: domain.LedgerStatusSuccessful})
	f.ledger.seed(ledgerRow{transactionID: &theirs, agentID: "agent-2", service: domain.ServiceCommission, status: domain.LedgerStatusSuccessful})

	history, err := f.service.ListTransactionHistory(ctx, testActor(), 0, 0)
	if err != nil {
		t.Fatalf("list history failed: %v", err)
	}
	if history.Total != 1 || len(history.Items) != 1 {
		t.Fatalf("expected exactly the caller's entry, got %+v", history)
	}
	if history.Limit != 20 {
		t.Fatalf("default limit = %d, want 20", history.Limit)
	}

	if _, err := f.service.GetTransaction(ctx, testActor(), "txn-mine"); err != nil {
		t.Fatalf("own transaction should resolve: %v", err)
	}
	if _, err := f.service.GetTransaction(ctx, testActor(), "txn-theirs"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("other agent's transaction must look absent, got %v", err)
	}
	if _, err := f.service.GetTransaction(ctx, application.Actor{}, "txn-mine"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("anonymous caller must be rejected, got %v", err)
	}
}

func testActor() application.Actor {
	return application.Actor{
		AgentID:     "agent-1",
		AgentName:   "Jane Agent",
		BearerToken: "bearer-token",
		Language:    "en",
		RequestID:   "req-1",
	}
}

func defaultTestConfig() application.Config {
	return application.Config{
		CommissionAmount:         "500",
		CommissionTransferTypeID: "178",
		CommissionCurrency:       "Rwf",
		CommissionDescription:    "AQS Commission Payment to Agent",
		MinimumBalance:           500,
		BalanceCacheTTL:          30 * time.Second,
		SubmissionLimit:          10,
	}
}

func newFixture() *fixture {
	submissions := &fakeSubmissions{records: map[int64]*submissionRow{}}
	ledger := &fakeLedger{}
	transfers := &fakeTransfers{}
	outbox := &fakeOutbox{}
	pendingFalse := false
	collector := &fakeCollector{
		listResp: []byte(`{"forms":[]}`),
		submitResp: []byte(`{
			"submissionId": "sub-001",
			"submission": {"_id": "sub-001", "status": "processing", "form": {"title": "Census"}},
			"apiDetails": {"apiKeyName": "agency-key"}
		}`),
	}
	payments := &fakePayments{
		confirmResp: ports.PaymentResponse{
			ID:      "pay-1",
			Pending: &pendingFalse,
			Raw:     map[string]any{"id": "pay-1", "pending": false},
		},
		balance: 1000,
	}
	balances := &fakeBalances{}

	svc := application.NewService(application.Dependencies{
		Config:      defaultTestConfig(),
		Submissions: submissions,
		Ledger:      ledger,
		Transfers:   transfers,
		Outbox:      outbox,
		Collector:   collector,
		Payments:    payments,
		Balances:    balances,
	})

	return &fixture{
		service:     svc,
		submissions: submissions,
		ledger:      ledger,
		transfers:   transfers,
		outbox:      outbox,
		collector:   collector,
		payments:    payments,
		balances:    balances,
	}
}

type fixture struct {
	service     *application.Service
	submissions *fakeSubmissions
	ledger      *fakeLedger
	transfers   *fakeTransfers
	outbox      *fakeOutbox
	collector   *fakeCollector
	payments    *fakePayments
	balances    *fakeBalances
}

type submissionRow struct {
	id           int64
	formID       string
	agentID      string
	status       domain.SubmissionStatus
	outcome      domain.SubmissionOutcome
	errorMessage string
}

type fakeSubmissions struct {
	mu             sync.Mutex
	records        map[int64]*submissionRow
	nextID         int64
	submittedCount int64
	countErr       error
	createErr      error
}

func (f *fakeSubmissions) Create(_ context.Context, params ports.CreateSubmissionParams) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return 0, f.createErr
	}
	f.nextID++
	f.records[f.nextID] = &submissionRow{
		id:      f.nextID,
		formID:  params.FormID,
		agentID: params.AgentID,
		status:  domain.SubmissionStatusSubmitted,
	}
	return f.nextID, nil
}

func (f *fakeSubmissions) Reconcile(_ context.Context, id int64, outcome domain.SubmissionOutcome, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[id]
	if !ok {
		return domain.ErrNotFound
	}
	rec.status = domain.SubmissionStatusProcessing
	rec.outcome = outcome
	return nil
}

func (f *fakeSubmissions) MarkFailed(_ context.Context, id int64, message string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[id]
	if !ok {
		return domain.ErrNotFound
	}
	rec.status = domain.SubmissionStatusFailed
	rec.errorMessage = message
	return nil
}

func (f *fakeSubmissions) GetByID(_ context.Context, id int64) (domain.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[id]
	if !ok {
		return domain.Submission{}, domain.ErrNotFound
	}
	return domain.Submission{ID: rec.id, FormID: rec.formID, AgentID: rec.agentID, Status: rec.status}, nil
}

func (f *fakeSubmissions) CountSubmitted(context.Context, string, string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.submittedCount, nil
}

func (f *fakeSubmissions) get(id int64) *submissionRow {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records[id]
}

func (f *fakeSubmissions) all() []*submissionRow {
	f.mu.Lock()
	defer f.mu.Unlock()
	rows := make([]*submissionRow, 0, len(f.records))
	for _, rec := range f.records {
		rows = append(rows, rec)
	}
	return rows
}

func (f *fakeSubmissions) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

type ledgerRow struct {
	id            int64
	transactionID *string
	status        domain.LedgerStatus
	thirdParty    string
	description   string
	amount        string
	agentID       string
	agentName     string
	service       string
	token         string
}

type fakeLedger struct {
	mu             sync.Mutex
	rows           []*ledgerRow
	nextID         int64
	failNextInsert bool
	fallbackCalls  int
}

func (f *fakeLedger) Insert(_ context.Context, params ports.InsertLedgerParams) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNextInsert {
		f.failNextInsert = false
		return 0, errors.New("ledger write failed")
	}
	f.nextID++
	f.rows = append(f.rows, &ledgerRow{
		id:            f.nextID,
		transactionID: params.TransactionID,
		status:        params.Status,
		thirdParty:    params.ThirdPartyStatus,
		description:   params.Description,
		amount:        params.Amount,
		agentID:       params.AgentID,
		agentName:     params.AgentName,
		service:       params.ServiceName,
		token:         params.Token,
	})
	return f.nextID, nil
}

func (f *fakeLedger) FinalizeByHandle(_ context.Context, id int64, params ports.FinalizeLedgerParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.id == id {
			applyFinalize(row, params)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeLedger) FinalizeByAgentFallback(_ context.Context, agentID, serviceName string, params ports.FinalizeLedgerParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fallbackCalls++
	for i := len(f.rows) - 1; i >= 0; i-- {
		row := f.rows[i]
		if row.agentID == agentID && row.service == serviceName && row.status == domain.LedgerStatusPending {
			applyFinalize(row, params)
			return nil
		}
	}
	return nil
}

func applyFinalize(row *ledgerRow, params ports.FinalizeLedgerParams) {
	row.status = params.Status
	row.thirdParty = params.ThirdPartyStatus
	if params.TransactionID != nil {
		row.transactionID = params.TransactionID
	}
	if params.Token != "" {
		row.token = params.Token
	}
	if params.Description != "" {
		row.description = params.Description
	}
}

func (f *fakeLedger) GetByTransactionID(_ context.Context, transactionID string) (domain.LedgerEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.transactionID != nil && *row.transactionID == transactionID {
			return toEntry(row), nil
		}
	}
	return domain.LedgerEntry{}, domain.ErrNotFound
}

func (f *fakeLedger) List(_ context.Context, query ports.LedgerQuery) ([]domain.LedgerEntry, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var entries []domain.LedgerEntry
	for _, row := range f.rows {
		if row.agentID == query.AgentID {
			entries = append(entries, toEntry(row))
		}
	}
	total := int64(len(entries))
	if query.Offset < len(entries) {
		entries = entries[query.Offset:]
	} else {
		entries = nil
	}
	if query.Limit > 0 && query.Limit < len(entries) {
		entries = entries[:query.Limit]
	}
	return entries, total, nil
}

func toEntry(row *ledgerRow) domain.LedgerEntry {
	return domain.LedgerEntry{
		ID:               row.id,
		TransactionID:    row.transactionID,
		Status:           row.status,
		ThirdPartyStatus: row.thirdParty,
		Description:      row.description,
		Amount:           row.amount,
		AgentID:          row.agentID,
		AgentName:        row.agentName,
		ServiceName:      row.service,
		Token:            row.token,
	}
}

func (f *fakeLedger) seed(row ledgerRow) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	row.id = f.nextID
	f.rows = append(f.rows, &row)
}

func (f *fakeLedger) byService(serviceName string) []*ledgerRow {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*ledgerRow
	for _, row := range f.rows {
		if row.service == serviceName {
			out = append(out, row)
		}
	}
	return out
}

func (f *fakeLedger) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type fakeTransfers struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeTransfers) UpdateDescriptionBySubmission(_ context.Context, submissionID, _ string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, submissionID)
	return nil
}

type fakeOutbox struct {
	mu     sync.Mutex
	events []ports.OutboxEvent
}

func (f *fakeOutbox) Enqueue(_ context.Context, event ports.OutboxEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeOutbox) ClaimUnpublished(context.Context, int, string, time.Time) ([]ports.OutboxRecord, error) {
	return nil, nil
}

func (f *fakeOutbox) MarkPublished(context.Context, uuid.UUID, string, time.Time) error { return nil }

func (f *fakeOutbox) MarkFailed(context.Context, uuid.UUID, string, string, time.Time) error {
	return nil
}

func (f *fakeOutbox) hasEvent(eventType string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, event := range f.events {
		if event.EventType == eventType {
			return true
		}
	}
	return false
}

type fakeCollector struct {
	mu           sync.Mutex
	listResp     []byte
	submitResp   []byte
	submitErr    error
	submitCalls  int
	lastLanguage string
	lastBearer   string
	lastPayload  []byte
}

func (f *fakeCollector) ListForms(_ context.Context, language, bearerToken string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLanguage = language
	f.lastBearer = bearerToken
	return f.listResp, nil
}

func (f *fakeCollector) SubmitForm(_ context.Context, formID string, payload []byte, language, bearerToken string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitCalls++
	f.lastLanguage = language
	f.lastBearer = bearerToken
	f.lastPayload = payload
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	if !strings.Contains(string(payload), `"data"`) {
		return nil, fmt.Errorf("payload missing data wrapper: %s", payload)
	}
	_ = formID
	return f.submitResp, nil
}

type fakePayments struct {
	mu           sync.Mutex
	confirmResp  ports.PaymentResponse
	confirmErr   error
	confirmCalls int
	balance      float64
	balanceErr   error
	balanceCalls int
}

func (f *fakePayments) ConfirmMemberPayment(_ context.Context, _ ports.PaymentRequest) (ports.PaymentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirmCalls++
	if f.confirmErr != nil {
		return ports.PaymentResponse{}, f.confirmErr
	}
	return f.confirmResp, nil
}

func (f *fakePayments) AccountBalance(context.Context) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balanceCalls++
	if f.balanceErr != nil {
		return 0, f.balanceErr
	}
	return f.balance, nil
}

type fakeBalances struct {
	mu    sync.Mutex
	value *float64
}

func (f *fakeBalances) Get(context.Context) (float64, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.value == nil {
		return 0, false, nil
	}
	return *f.value, true, nil
}

func (f *fakeBalances) Set(_ context.Context, balance float64, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.value = &balance
	return nil
}
