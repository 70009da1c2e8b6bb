package repositories

import (
	"context"
	"fmt"

	"github.com/mfukui/lockgate/internal/database"
	"github.com/mfukui/lockgate/internal/models"
)

type UserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

// rowScanner interface for scanning user rows (single row or result set)
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUserRow(scanner rowScanner) (*models.User, error) {
	var user models.User
	err := scanner.Scan(&user.ID, &user.Login, &user.PasswordHash, &user.Salt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT id, login, password_hash, salt FROM users WHERE id = $1`
	return scanUserRow(r.db.Pool.QueryRow(ctx, query, id))
}

func (r *UserRepository) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	query := `SELECT id, login, password_hash, salt FROM users WHERE login = $1`
	return scanUserRow(r.db.Pool.QueryRow(ctx, query, login))
}

// ListAll returns every user row. Used once at startup to build the
// reference cache; accounts are pre-provisioned so the full scan is small.
func (r *UserRepository) ListAll(ctx context.Context) ([]*models.User, error) {
	query := `SELECT id, login, password_hash, salt FROM users ORDER BY id`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		user, err := scanUserRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return users, nil
}

// Create inserts a user. Exposed for provisioning and test seeding; the
// login path never writes to the users table.
func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (login, password_hash, salt)
		VALUES ($1, $2, $3)
		RETURNING id, login, password_hash, salt
	`
	return scanUserRow(r.db.Pool.QueryRow(ctx, query, user.Login, user.PasswordHash, user.Salt))
}
