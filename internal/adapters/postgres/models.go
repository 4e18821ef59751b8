package postgres

import (
	"time"

	"github.com/google/uuid"
)

type submissionModel struct {
	ID                  int64      `gorm:"column:id;primaryKey;autoIncrement"`
	FormID              string     `gorm:"column:form_id"`
	CustomerID          string     `gorm:"column:customer_id"`
	AgentID             string     `gorm:"column:agent_id"`
	FormData            string     `gorm:"column:form_data;type:jsonb"`
	Status              string     `gorm:"column:status"`
	ThirdPartyStatus    *string    `gorm:"column:third_party_status"`
	SubmissionID        *string    `gorm:"column:submission_id"`
	ExternalResponse    *string    `gorm:"column:external_response;type:jsonb"`
	FormTitle           *string    `gorm:"column:form_title"`
	FormDescription     *string    `gorm:"column:form_description"`
	OrganizationID      *string    `gorm:"column:organization_id"`
	OrganizationName    *string    `gorm:"column:organization_name"`
	SyncStatus          *string    `gorm:"column:sync_status"`
	SubmitterType       *string    `gorm:"column:submitter_type"`
	SubmitterDisplay    *string    `gorm:"column:submitter_display"`
	SubmitterAPIKeyName *string    `gorm:"column:submitter_api_key_name"`
	ValidationStatus    *string    `gorm:"column:validation_status"`
	ValidationErrors    *string    `gorm:"column:validation_errors;type:jsonb"`
	WorkflowCurrentStep *string    `gorm:"column:workflow_current_step"`
	WorkflowSteps       *string    `gorm:"column:workflow_steps;type:jsonb"`
	IsFlagged           bool       `gorm:"column:is_flagged"`
	APIKeyName          *string    `gorm:"column:api_key_name"`
	ExternalID          *string    `gorm:"column:external_id"`
	ErrorMessage        *string    `gorm:"column:error_message"`
	SubmittedAt         time.Time  `gorm:"column:submitted_at"`
	ProcessedAt         *time.Time `gorm:"column:processed_at"`
	CreatedAt           time.Time  `gorm:"column:created_at"`
	UpdatedAt           time.Time  `gorm:"column:updated_at"`
}

func (submissionModel) TableName() string { return "aqs_data_collection" }

type ledgerModel struct {
	ID               int64     `gorm:"column:id;primaryKey;autoIncrement"`
	TransactionID    *string   `gorm:"column:transaction_id"`
	Status           string    `gorm:"column:status"`
	ThirdPartyStatus string    `gorm:"column:third_party_status"`
	Description      string    `gorm:"column:description"`
	Amount           string    `gorm:"column:amount"`
	CustomerCharge   string    `gorm:"column:customer_charge"`
	AgentID          string    `gorm:"column:agent_id"`
	AgentName        string    `gorm:"column:agent_name"`
	ServiceName      string    `gorm:"column:service_name"`
	Reference        *string   `gorm:"column:transaction_reference"`
	CustomerID       *string   `gorm:"column:customer_id"`
	Token            *string   `gorm:"column:token"`
	CreatedAt        time.Time `gorm:"column:created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at"`
}

func (ledgerModel) TableName() string { return "transaction_logs" }

type transferModel struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	SubmissionID *string   `gorm:"column:submission_id"`
	Description  *string   `gorm:"column:description"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (transferModel) TableName() string { return "transfers" }

type outboxModel struct {
	OutboxID     uuid.UUID  `gorm:"column:outbox_id;type:uuid;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      string     `gorm:"column:payload;type:jsonb"`
	RetryCount   int        `gorm:"column:retry_count"`
	LastError    *string    `gorm:"column:last_error"`
	ClaimToken   *string    `gorm:"column:claim_token"`
	ClaimUntil   *time.Time `gorm:"column:claim_until"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
}

func (outboxModel) TableName() string { return "agency_outbox" }
