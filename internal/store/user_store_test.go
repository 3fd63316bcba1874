package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/vlocker/backend/internal/models"
)

func TestUserStore_GetByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	store := NewUserStore(db)
	userID := uuid.New()

	// Lookup is case-insensitive: the address is lowered before it hits
	// the database.
	mock.ExpectQuery("FROM users WHERE email").
		WithArgs("riley@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "balance", "created_at"}).
			AddRow(userID.String(), "Riley", "riley@example.com", "hash", int64(10000), time.Now()))

	user, err := store.GetByEmail(context.Background(), "Riley@Example.COM")
	assert.NoError(t, err)
	assert.Equal(t, userID, user.ID)
	assert.Equal(t, int64(10000), user.Balance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStore_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	store := NewUserStore(db)

	user := &models.User{
		ID:           uuid.New(),
		Name:         "Riley",
		Email:        "Riley@Example.com",
		PasswordHash: "hash",
		Balance:      models.StartingBalance,
		CreatedAt:    time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO users").
		WithArgs(user.ID, user.Name, "riley@example.com", user.PasswordHash, user.Balance, user.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, store.Create(context.Background(), user))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStore_LockAndUpdateBalance(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	store := NewUserStore(db)
	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM users WHERE id = \\$1\\s+FOR UPDATE").
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "balance", "created_at"}).
			AddRow(userID.String(), "Riley", "riley@example.com", "hash", int64(10000), time.Now()))
	mock.ExpectExec("UPDATE users SET balance").
		WithArgs(int64(9000), userID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.Begin()
	assert.NoError(t, err)

	user, err := store.LockTx(tx, userID)
	assert.NoError(t, err)
	assert.Equal(t, int64(10000), user.Balance)

	assert.NoError(t, store.UpdateBalanceTx(tx, userID, 9000))
	assert.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}
