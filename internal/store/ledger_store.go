package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/vlocker/backend/internal/models"
)

// LedgerStore appends balance-affecting events. Entries are never
// updated or deleted.
type LedgerStore struct {
	db *sql.DB
}

func NewLedgerStore(db *sql.DB) *LedgerStore {
	return &LedgerStore{db: db}
}

func (s *LedgerStore) CreateTx(tx *sql.Tx, e *models.LedgerEntry) error {
	_, err := tx.Exec(`
		INSERT INTO transactions (id, user_id, cosmetic_id, type, amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, e.UserID, e.CosmeticID, e.EntryType, e.Amount, e.CreatedAt)
	return err
}

func (s *LedgerStore) GetByUserID(ctx context.Context, userID uuid.UUID) ([]models.LedgerEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, cosmetic_id, type, amount, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.LedgerEntry{}
	for rows.Next() {
		var e models.LedgerEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.CosmeticID, &e.EntryType, &e.Amount, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
