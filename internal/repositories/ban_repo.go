package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/mfukui/lockgate/internal/database"
	"github.com/mfukui/lockgate/internal/models"
)

// BanRepository maintains the per-account and per-IP failure counters.
// Every write is a single-statement upsert, so concurrent attempts for the
// same key serialize on the row and no increment is lost.
type BanRepository struct {
	db *database.DB
}

func NewBanRepository(db *database.DB) *BanRepository {
	return &BanRepository{db: db}
}

// ApplyUserOutcome resets the account counter to 0 on success or increments
// it by 1 on failure, creating the row if absent.
func (r *BanRepository) ApplyUserOutcome(ctx context.Context, userID int64, succeeded bool) error {
	var query string
	if succeeded {
		query = `
			INSERT INTO ban_user (user_id, failures) VALUES ($1, 0)
			ON CONFLICT (user_id) DO UPDATE SET failures = 0
		`
	} else {
		query = `
			INSERT INTO ban_user (user_id, failures) VALUES ($1, 1)
			ON CONFLICT (user_id) DO UPDATE SET failures = ban_user.failures + 1
		`
	}

	_, err := r.db.Pool.Exec(ctx, query, userID)
	return database.MapPostgresError(err)
}

// ApplyIPOutcome applies the same reset-or-increment contract to the
// per-source-address counter.
func (r *BanRepository) ApplyIPOutcome(ctx context.Context, ip string, succeeded bool) error {
	var query string
	if succeeded {
		query = `
			INSERT INTO ban_ip (ip, failures) VALUES ($1, 0)
			ON CONFLICT (ip) DO UPDATE SET failures = 0
		`
	} else {
		query = `
			INSERT INTO ban_ip (ip, failures) VALUES ($1, 1)
			ON CONFLICT (ip) DO UPDATE SET failures = ban_ip.failures + 1
		`
	}

	_, err := r.db.Pool.Exec(ctx, query, ip)
	return database.MapPostgresError(err)
}

// GetUserFailures returns the current failure count for an account. A
// missing row counts as zero failures.
func (r *BanRepository) GetUserFailures(ctx context.Context, userID int64) (int, error) {
	query := `SELECT failures FROM ban_user WHERE user_id = $1`

	var failures int
	err := r.db.Pool.QueryRow(ctx, query, userID).Scan(&failures)
	if err == pgx.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return failures, nil
}

// GetIPFailures returns the current failure count for a source address. A
// missing row counts as zero failures.
func (r *BanRepository) GetIPFailures(ctx context.Context, ip string) (int, error) {
	query := `SELECT failures FROM ban_ip WHERE ip = $1`

	var failures int
	err := r.db.Pool.QueryRow(ctx, query, ip).Scan(&failures)
	if err == pgx.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return failures, nil
}

// ListIPFailures returns all per-IP counters, used to seed the reference
// cache at startup.
func (r *BanRepository) ListIPFailures(ctx context.Context) ([]*models.IPFailureCount, error) {
	query := `SELECT ip, failures FROM ban_ip`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query ip counters: %w", err)
	}
	defer rows.Close()

	counters := make([]*models.IPFailureCount, 0)
	for rows.Next() {
		var c models.IPFailureCount
		if err := rows.Scan(&c.IP, &c.Failures); err != nil {
			return nil, fmt.Errorf("failed to scan ip counter: %w", err)
		}
		counters = append(counters, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return counters, nil
}

// BannedIPs returns addresses whose counter meets the threshold, ordered by
// address.
func (r *BanRepository) BannedIPs(ctx context.Context, threshold int) ([]string, error) {
	query := `SELECT ip FROM ban_ip WHERE failures >= $1 ORDER BY ip`

	rows, err := r.db.Pool.Query(ctx, query, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to query banned ips: %w", err)
	}
	defer rows.Close()

	return scanStrings(rows)
}

// LockedUsers returns the logins of accounts whose counter meets the
// threshold, ordered by account id.
func (r *BanRepository) LockedUsers(ctx context.Context, threshold int) ([]string, error) {
	query := `
		SELECT users.login
		FROM ban_user
		JOIN users ON ban_user.user_id = users.id
		WHERE ban_user.failures >= $1
		ORDER BY ban_user.user_id
	`

	rows, err := r.db.Pool.Query(ctx, query, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to query locked users: %w", err)
	}
	defer rows.Close()

	return scanStrings(rows)
}

func scanStrings(rows pgx.Rows) ([]string, error) {
	out := make([]string, 0)
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return out, nil
}
