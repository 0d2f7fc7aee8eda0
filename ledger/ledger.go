package ledger

import (
	"context"
	"errors"

	"github.com/arenaforge/tournament-engine/repositories"
)

// Category tags a credit in the wallet ledger.
type Category string

const (
	CategoryPrize      Category = "PRIZE"
	CategoryHostProfit Category = "HOST_PROFIT"
)

var ErrCreditFailed = errors.New("ledger credit failed")

// Credit is a single balance credit. Reference is a deterministic
// idempotency key (e.g. "pay:<tournament>:<position>:<user>"); the
// ledger guarantees a reference is applied at most once, so a retried
// settlement cannot double-pay.
type Credit struct {
	RecipientUserID int
	Amount          int64
	Category        Category
	Memo            string
	Reference       string
	Metadata        map[string]interface{}
}

// Ledger credits user wallets. Implementations must be atomic per call
// and must honor a caller-supplied executor so that many credits can
// share one transaction and roll back together.
type Ledger interface {
	Credit(ctx context.Context, exec repositories.SQLExecutor, credit Credit) error
}
