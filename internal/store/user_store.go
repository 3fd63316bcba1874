package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/vlocker/backend/internal/models"
)

// UserStore persists accounts. Balance mutations go through the
// *Tx methods so the purchase path can keep the read-check-write
// sequence inside one database transaction.
type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, balance, created_at
		FROM users WHERE id = $1`, id))
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, balance, created_at
		FROM users WHERE email = $1`, strings.ToLower(email)))
}

func (s *UserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, strings.ToLower(email)).Scan(&exists)
	return exists, err
}

func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, balance, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.Name, strings.ToLower(user.Email), user.PasswordHash, user.Balance, user.CreatedAt)
	return err
}

// LockTx reads the user row FOR UPDATE, serializing concurrent
// purchase/return calls against the same account for the lifetime of
// the transaction.
func (s *UserStore) LockTx(tx *sql.Tx, id uuid.UUID) (*models.User, error) {
	return scanUser(tx.QueryRow(`
		SELECT id, name, email, password_hash, balance, created_at
		FROM users WHERE id = $1
		FOR UPDATE`, id))
}

func (s *UserStore) UpdateBalanceTx(tx *sql.Tx, id uuid.UUID, balance int64) error {
	_, err := tx.Exec(`
		UPDATE users SET balance = $1 WHERE id = $2`, balance, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Balance, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}
