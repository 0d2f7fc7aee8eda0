package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/arenaforge/tournament-engine/models"
)

// Caller identifies the authenticated user behind a request, as
// extracted from JWT claims by the middleware.
type Caller struct {
	UserID int
	Role   models.UserRole
}

// canManageTournament: only the owning host or an admin may generate
// brackets, submit results, or settle.
func canManageTournament(caller Caller, t *models.Tournament) bool {
	if caller.Role == models.UserRoleAdmin {
		return true
	}
	return caller.UserID == t.HostID
}

// txRunner scopes a unit of work to a database transaction. Services
// hold this instead of *sql.DB directly so tests can substitute a
// pass-through runner.
type txRunner interface {
	Run(ctx context.Context, fn func(tx *sql.Tx) error) error
}

type sqlTxRunner struct {
	db *sql.DB
}

// Run executes fn inside a transaction, committing on nil and rolling
// back on error or panic.
func (r sqlTxRunner) Run(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
			}
			return
		}
		if cErr := tx.Commit(); cErr != nil {
			err = fmt.Errorf("failed to commit transaction: %w", cErr)
		}
	}()
	err = fn(tx)
	return err
}

func extensionFromContentType(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/webp":
		return ".webp", nil
	case "video/mp4":
		return ".mp4", nil
	case "application/pdf":
		return ".pdf", nil
	}
	parts := strings.Split(contentType, "/")
	if len(parts) == 2 && (parts[0] == "image" || parts[0] == "video") && parts[1] != "" {
		return "." + strings.Split(parts[1], "+")[0], nil
	}
	return "", fmt.Errorf("unsupported proof content type %q", contentType)
}
