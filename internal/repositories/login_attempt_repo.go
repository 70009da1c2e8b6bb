package repositories

import (
	"context"
	"fmt"

	"github.com/mfukui/lockgate/internal/database"
	"github.com/mfukui/lockgate/internal/models"
)

// LoginAttemptRepository is the append-only attempt ledger. It exposes no
// update or delete operations; the ledger-derived report queries recompute
// ban and lock state from first principles for audits.
type LoginAttemptRepository struct {
	db *database.DB
}

func NewLoginAttemptRepository(db *database.DB) *LoginAttemptRepository {
	return &LoginAttemptRepository{db: db}
}

// Record appends one attempt row.
func (r *LoginAttemptRepository) Record(ctx context.Context, attempt *models.LoginAttempt) error {
	query := `
		INSERT INTO login_log (created_at, user_id, login, ip, succeeded)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		attempt.CreatedAt,
		attempt.UserID,
		attempt.Login,
		attempt.IP,
		attempt.Succeeded,
	)

	return database.MapPostgresError(err)
}

// BannedIPsFromLedger derives the banned address list from the full ledger:
// an address qualifies if it never succeeded and its attempt count reaches
// the threshold, or if the number of attempts strictly after its last
// success reaches the threshold.
func (r *LoginAttemptRepository) BannedIPsFromLedger(ctx context.Context, threshold int) ([]string, error) {
	query := `
		SELECT ip FROM (
			SELECT ip, bool_or(succeeded) AS ever_succeeded, COUNT(*) AS cnt
			FROM login_log
			GROUP BY ip
		) t
		WHERE NOT ever_succeeded AND cnt >= $1

		UNION

		SELECT s.ip FROM (
			SELECT ip, MAX(id) AS last_success_id
			FROM login_log
			WHERE succeeded
			GROUP BY ip
		) s
		JOIN login_log l ON l.ip = s.ip AND l.id > s.last_success_id
		GROUP BY s.ip
		HAVING COUNT(*) >= $1

		ORDER BY ip
	`

	rows, err := r.db.Pool.Query(ctx, query, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger banned ips: %w", err)
	}
	defer rows.Close()

	return scanStrings(rows)
}

// LockedUsersFromLedger applies the same derivation keyed by account,
// returning logins ordered by account id.
func (r *LoginAttemptRepository) LockedUsersFromLedger(ctx context.Context, threshold int) ([]string, error) {
	query := `
		SELECT login FROM (
			SELECT t.user_id, u.login FROM (
				SELECT user_id, bool_or(succeeded) AS ever_succeeded, COUNT(*) AS cnt
				FROM login_log
				WHERE user_id IS NOT NULL
				GROUP BY user_id
			) t
			JOIN users u ON u.id = t.user_id
			WHERE NOT t.ever_succeeded AND t.cnt >= $1

			UNION

			SELECT s.user_id, u.login FROM (
				SELECT user_id, MAX(id) AS last_success_id
				FROM login_log
				WHERE succeeded AND user_id IS NOT NULL
				GROUP BY user_id
			) s
			JOIN login_log l ON l.user_id = s.user_id AND l.id > s.last_success_id
			JOIN users u ON u.id = s.user_id
			GROUP BY s.user_id, u.login
			HAVING COUNT(*) >= $1
		) locked
		ORDER BY user_id
	`

	rows, err := r.db.Pool.Query(ctx, query, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger locked users: %w", err)
	}
	defer rows.Close()

	return scanStrings(rows)
}

// CountForIP returns the total number of ledger rows for an address.
func (r *LoginAttemptRepository) CountForIP(ctx context.Context, ip string) (int, error) {
	query := `SELECT COUNT(*) FROM login_log WHERE ip = $1`

	var count int
	err := r.db.Pool.QueryRow(ctx, query, ip).Scan(&count)
	return count, database.MapPostgresError(err)
}
