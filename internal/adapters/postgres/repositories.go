package postgres

import (
	"gorm.io/gorm"

	"github.com/moolapay/agency-service/internal/ports"
)

type Repositories struct {
	Submissions ports.SubmissionRepository
	Ledger      ports.LedgerRepository
	Transfers   ports.TransferRepository
	Outbox      ports.OutboxRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Submissions: &submissionRepository{db: db},
		Ledger:      &ledgerRepository{db: db},
		Transfers:   &transferRepository{db: db},
		Outbox:      &outboxRepository{db: db},
	}
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func strVal(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
