package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/mfukui/lockgate/internal/database"
	"github.com/mfukui/lockgate/internal/models"
)

// LastLoginRepository tracks the most recent successful login per user.
type LastLoginRepository struct {
	db *database.DB
}

func NewLastLoginRepository(db *database.DB) *LastLoginRepository {
	return &LastLoginRepository{db: db}
}

// Get returns the current record, or ErrNotFound when the user has never
// logged in successfully.
func (r *LastLoginRepository) Get(ctx context.Context, userID int64) (*models.LastLogin, error) {
	query := `SELECT user_id, created_at, ip FROM last_login WHERE user_id = $1`

	var ll models.LastLogin
	err := r.db.Pool.QueryRow(ctx, query, userID).Scan(&ll.UserID, &ll.CreatedAt, &ll.IP)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &ll, nil
}

// Replace captures the record for the login immediately prior and upserts
// the current one, in a single transaction so two concurrent successes for
// the same user cannot both read the same previous record.
func (r *LastLoginRepository) Replace(ctx context.Context, userID int64, at time.Time, ip string) (*models.LastLogin, error) {
	var previous *models.LastLogin

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx,
			`SELECT user_id, created_at, ip FROM last_login WHERE user_id = $1 FOR UPDATE`,
			userID,
		)

		var ll models.LastLogin
		switch err := row.Scan(&ll.UserID, &ll.CreatedAt, &ll.IP); {
		case err == nil:
			previous = &ll
		case errors.Is(err, pgx.ErrNoRows):
			// first ever success; nothing to capture
		default:
			return err
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO last_login (user_id, created_at, ip) VALUES ($1, $2, $3)
			ON CONFLICT (user_id) DO UPDATE SET created_at = $2, ip = $3
		`, userID, at, ip)
		return err
	})
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return previous, nil
}
