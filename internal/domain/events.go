package domain

const (
	EventSubmissionProcessing = "submission.processing"
	EventSubmissionFailed     = "submission.failed"
	EventCommissionPaid       = "commission.paid"
	EventCommissionFailed     = "commission.failed"
)
