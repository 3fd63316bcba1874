package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/vlocker/backend/internal/models"
)

func TestCosmeticService_GetCosmetics(t *testing.T) {
	cosmeticID := uuid.New()
	added := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	cosmetic := models.Cosmetic{
		ID:         cosmeticID,
		ExternalID: "cid_raven",
		Name:       "Raven",
		Type:       "Outfit",
		Rarity:     "Legendary",
		Price:      2000,
		ImageURL:   "https://img.example/raven.png",
		IsForSale:  true,
		AddedDate:  added,
	}

	dbRows := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "external_id", "name", "type", "rarity", "price",
			"image_url", "is_new", "is_for_sale", "added_date", "description"}).
			AddRow(cosmeticID.String(), cosmetic.ExternalID, cosmetic.Name, cosmetic.Type,
				cosmetic.Rarity, cosmetic.Price, cosmetic.ImageURL, false, true, added, nil)
	}

	t.Run("cache miss loads from the database and fills the cache", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		redisClient, redisMock := redismock.NewClientMock()
		service := NewCosmeticService(db, redisClient)

		expected := &models.PagedCosmetics{
			Items:      []models.Cosmetic{cosmetic},
			TotalCount: 1,
			Page:       1,
			PageSize:   20,
		}
		cached, _ := json.Marshal(expected)

		redisMock.ExpectGet(cacheKeyCatalog).RedisNil()
		mock.ExpectQuery("FROM cosmetics ORDER BY added_date DESC").
			WithArgs(20, 0).
			WillReturnRows(dbRows())
		mock.ExpectQuery("SELECT COUNT").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		redisMock.ExpectSet(cacheKeyCatalog, cached, catalogCacheTTL).SetVal("OK")

		result, err := service.GetCosmetics(context.Background(), models.CosmeticQuery{})
		assert.NoError(t, err)
		assert.Equal(t, 1, result.TotalCount)
		assert.Len(t, result.Items, 1)
		assert.Equal(t, "Raven", result.Items[0].Name)
		assert.NoError(t, mock.ExpectationsWereMet())
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("cache hit skips the database", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		redisClient, redisMock := redismock.NewClientMock()
		service := NewCosmeticService(db, redisClient)

		cached, _ := json.Marshal(&models.PagedCosmetics{
			Items:      []models.Cosmetic{cosmetic},
			TotalCount: 1,
			Page:       1,
			PageSize:   20,
		})
		redisMock.ExpectGet(cacheKeyCatalog).SetVal(string(cached))

		result, err := service.GetCosmetics(context.Background(), models.CosmeticQuery{})
		assert.NoError(t, err)
		assert.Equal(t, 1, result.TotalCount)
		assert.Equal(t, "Raven", result.Items[0].Name)
		assert.NoError(t, mock.ExpectationsWereMet())
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("filtered queries bypass the cache", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		redisClient, redisMock := redismock.NewClientMock()
		service := NewCosmeticService(db, redisClient)

		mock.ExpectQuery("FROM cosmetics WHERE name ILIKE").
			WithArgs("%Raven%", 20, 0).
			WillReturnRows(dbRows())
		mock.ExpectQuery("SELECT COUNT").
			WithArgs("%Raven%").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		result, err := service.GetCosmetics(context.Background(), models.CosmeticQuery{Name: "Raven"})
		assert.NoError(t, err)
		assert.Equal(t, 1, result.TotalCount)
		assert.NoError(t, mock.ExpectationsWereMet())
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})
}

func TestCosmeticService_GetCosmeticByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	service := NewCosmeticService(db, nil)

	id := uuid.New()
	mock.ExpectQuery("FROM cosmetics WHERE id").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "external_id", "name", "type", "rarity", "price",
			"image_url", "is_new", "is_for_sale", "added_date", "description"}))

	cosmetic, err := service.GetCosmeticByID(context.Background(), id)
	assert.NoError(t, err)
	assert.Nil(t, cosmetic)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheKeyFor(t *testing.T) {
	isTrue := true

	assert.Equal(t, cacheKeyCatalog, cacheKeyFor(models.CosmeticQuery{Page: 1}))
	assert.Equal(t, cacheKeyNew, cacheKeyFor(models.CosmeticQuery{Page: 1, IsNew: &isTrue}))
	assert.Equal(t, cacheKeyShop, cacheKeyFor(models.CosmeticQuery{Page: 1, IsForSale: &isTrue}))
	assert.Equal(t, "", cacheKeyFor(models.CosmeticQuery{Page: 2}))
	assert.Equal(t, "", cacheKeyFor(models.CosmeticQuery{Page: 1, Name: "Raven"}))
}
