package ports

import "context"

// CollectorClient is the gateway to the external data-collection API. It
// attaches the static API key, the caller's language and bearer token, and a
// bounded timeout; it never logs or persists. Failures come back as
// *domain.GatewayError.
type CollectorClient interface {
	ListForms(ctx context.Context, language, bearerToken string) ([]byte, error)
	SubmitForm(ctx context.Context, formID string, payload []byte, language, bearerToken string) ([]byte, error)
}

// PaymentRequest is the Cyclos confirmMemberPayment body.
type PaymentRequest struct {
	ToMemberID     string `json:"toMemberId"`
	Amount         string `json:"amount"`
	TransferTypeID string `json:"transferTypeId"`
	CurrencySymbol string `json:"currencySymbol"`
	Description    string `json:"description"`
}

// PaymentResponse is deliberately loose: the commission invoker treats any
// response carrying an id as success, so the raw body is kept alongside the
// two fields it actually inspects.
type PaymentResponse struct {
	ID      string
	Pending *bool
	Raw     map[string]any
}

// PaymentClient is the basic-auth Cyclos gateway used for commissions and the
// balance gate. Failures come back as *domain.GatewayError.
type PaymentClient interface {
	ConfirmMemberPayment(ctx context.Context, req PaymentRequest) (PaymentResponse, error)
	AccountBalance(ctx context.Context) (float64, error)
}

// AgentClaims is what the identity service put into the bearer token.
type AgentClaims struct {
	AgentID       string
	AgentName     string
	AgentCategory string
	UserAuth      string
}

// TokenVerifier parses and validates agent bearer tokens. Issuance lives in
// the identity service; this side only verifies.
type TokenVerifier interface {
	Verify(raw string) (AgentClaims, error)
}
