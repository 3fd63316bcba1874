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

func TestCosmeticStore_UpsertMany(t *testing.T) {
	added := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("updates existing rows in place and inserts the rest", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		store := NewCosmeticStore(db)
		existingID := uuid.New()

		batch := []models.Cosmetic{
			{ExternalID: "cid_a", Name: "Alpha", Type: "outfit", Rarity: "rare", Price: 1200, AddedDate: added},
			{ExternalID: "cid_b", Name: "Beta", Type: "emote", Rarity: "uncommon", AddedDate: added},
		}

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id, external_id FROM cosmetics WHERE external_id = ANY").
			WillReturnRows(sqlmock.NewRows([]string{"id", "external_id"}).
				AddRow(existingID.String(), "cid_a"))
		mock.ExpectExec("UPDATE cosmetics").
			WithArgs("Alpha", "outfit", "rare", int64(1200), "", false, false, nil, existingID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO cosmetics").
			WithArgs(sqlmock.AnyArg(), "cid_b", "Beta", "emote", "uncommon", int64(0),
				"", false, false, added, nil).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err = store.UpsertMany(context.Background(), batch)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate external ids collapse to the first occurrence", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		store := NewCosmeticStore(db)

		batch := []models.Cosmetic{
			{ExternalID: "cid_a", Name: "Alpha", Price: 1200, AddedDate: added},
			{ExternalID: "cid_a", Name: "Alpha Duplicate", Price: 9999, AddedDate: added},
		}

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id, external_id FROM cosmetics WHERE external_id = ANY").
			WillReturnRows(sqlmock.NewRows([]string{"id", "external_id"}))
		mock.ExpectExec("INSERT INTO cosmetics").
			WithArgs(sqlmock.AnyArg(), "cid_a", "Alpha", "", "", int64(1200),
				"", false, false, added, nil).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err = store.UpsertMany(context.Background(), batch)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		store := NewCosmeticStore(db)

		assert.NoError(t, store.UpsertMany(context.Background(), nil))
		assert.NoError(t, store.UpsertMany(context.Background(), []models.Cosmetic{{Name: "no external id"}}))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCosmeticStore_ClearFlags(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	store := NewCosmeticStore(db)

	mock.ExpectExec("UPDATE cosmetics SET is_new = FALSE WHERE is_new = TRUE").
		WillReturnResult(sqlmock.NewResult(0, 7))
	mock.ExpectExec("UPDATE cosmetics SET is_for_sale = FALSE WHERE is_for_sale = TRUE").
		WillReturnResult(sqlmock.NewResult(0, 4))

	assert.NoError(t, store.ClearNewFlags(context.Background()))
	assert.NoError(t, store.ClearForSaleFlags(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildCosmeticFilter(t *testing.T) {
	isNew := true

	where, args := buildCosmeticFilter(models.CosmeticQuery{})
	assert.Equal(t, "", where)
	assert.Empty(t, args)

	where, args = buildCosmeticFilter(models.CosmeticQuery{Name: "Raven", Rarity: "legendary", IsNew: &isNew})
	assert.Equal(t, " WHERE name ILIKE $1 AND rarity = $2 AND is_new = $3", where)
	assert.Equal(t, []any{"%Raven%", "legendary", true}, args)
}

func TestCosmeticStore_GetPaged(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	store := NewCosmeticStore(db)
	added := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM cosmetics WHERE type = \\$1 ORDER BY added_date DESC LIMIT \\$2 OFFSET \\$3").
		WithArgs("outfit", 10, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "external_id", "name", "type", "rarity", "price",
			"image_url", "is_new", "is_for_sale", "added_date", "description"}).
			AddRow(uuid.New().String(), "cid_a", "Alpha", "outfit", "rare", int64(1200),
				"", false, true, added, "A dark look."))

	items, err := store.GetPaged(context.Background(), models.CosmeticQuery{Page: 2, PageSize: 10, Type: "outfit"})
	assert.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, "Alpha", items[0].Name)
	assert.Equal(t, "A dark look.", items[0].Description)
	assert.NoError(t, mock.ExpectationsWereMet())
}
