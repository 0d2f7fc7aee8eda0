package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/arenaforge/tournament-engine/repositories"
	"github.com/google/uuid"
)

// postgresLedger writes wallet_transactions rows and bumps the wallet
// balance in the same executor. The unique index on reference makes a
// replayed credit a no-op instead of a double-pay.
type postgresLedger struct{}

func NewPostgresLedger() Ledger {
	return &postgresLedger{}
}

func (l *postgresLedger) Credit(ctx context.Context, exec repositories.SQLExecutor, credit Credit) error {
	if credit.Amount <= 0 {
		return fmt.Errorf("%w: non-positive amount %d for reference %q", ErrCreditFailed, credit.Amount, credit.Reference)
	}
	if credit.Reference == "" {
		return fmt.Errorf("%w: empty reference", ErrCreditFailed)
	}

	metadata, err := json.Marshal(credit.Metadata)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal metadata: %v", ErrCreditFailed, err)
	}

	insert := `
		INSERT INTO wallet_transactions (id, user_id, amount, category, memo, reference, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (reference) DO NOTHING`

	result, err := exec.ExecContext(ctx, insert,
		uuid.NewString(),
		credit.RecipientUserID,
		credit.Amount,
		string(credit.Category),
		credit.Memo,
		credit.Reference,
		metadata,
	)
	if err != nil {
		return fmt.Errorf("%w: insert for reference %q: %v", ErrCreditFailed, credit.Reference, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: affected rows for reference %q: %v", ErrCreditFailed, credit.Reference, err)
	}
	if rowsAffected == 0 {
		// Reference already applied in an earlier run.
		return nil
	}

	update := `UPDATE wallets SET balance = balance + $1 WHERE user_id = $2`
	result, err = exec.ExecContext(ctx, update, credit.Amount, credit.RecipientUserID)
	if err != nil {
		return fmt.Errorf("%w: balance update for user %d: %v", ErrCreditFailed, credit.RecipientUserID, err)
	}
	rowsAffected, err = result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: affected rows for user %d: %v", ErrCreditFailed, credit.RecipientUserID, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: no wallet for user %d", ErrCreditFailed, credit.RecipientUserID)
	}
	return nil
}
