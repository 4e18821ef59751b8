package ports

import (
	"context"
	"time"
)

// BalanceCache keeps the last Cyclos float-account balance for a short TTL so
// the balance gate does not hit the payment API on every submission. A miss
// is (0, false, nil); cache errors are for the caller to swallow, the gate
// fails open.
type BalanceCache interface {
	Get(ctx context.Context) (float64, bool, error)
	Set(ctx context.Context, balance float64, ttl time.Duration) error
}
