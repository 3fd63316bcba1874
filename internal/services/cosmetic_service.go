package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/vlocker/backend/internal/models"
	"github.com/vlocker/backend/internal/store"
)

const (
	cacheKeyCatalog = "catalog:all:first"
	cacheKeyNew     = "catalog:new:first"
	cacheKeyShop    = "catalog:shop:first"

	catalogCacheTTL = 5 * time.Minute
)

// catalogCacheKeys are dropped by the sync engine after every round so
// browsing never serves a stale page across a catalog update.
var catalogCacheKeys = []string{cacheKeyCatalog, cacheKeyNew, cacheKeyShop}

// CosmeticService serves catalog browsing: paged/filtered listings and
// item detail. The unfiltered first page of each listing is cached in
// Redis since it is by far the hottest query.
type CosmeticService struct {
	cosmetics *store.CosmeticStore
	redis     *redis.Client
}

func NewCosmeticService(db *sql.DB, redisClient *redis.Client) *CosmeticService {
	return &CosmeticService{
		cosmetics: store.NewCosmeticStore(db),
		redis:     redisClient,
	}
}

func (s *CosmeticService) GetCosmetics(ctx context.Context, q models.CosmeticQuery) (*models.PagedCosmetics, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 || q.PageSize > 100 {
		q.PageSize = 20
	}

	cacheKey := cacheKeyFor(q)
	if cached := s.fromCache(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	items, err := s.cosmetics.GetPaged(ctx, q)
	if err != nil {
		return nil, err
	}

	total, err := s.cosmetics.Count(ctx, q)
	if err != nil {
		return nil, err
	}

	result := &models.PagedCosmetics{
		Items:      items,
		TotalCount: total,
		Page:       q.Page,
		PageSize:   q.PageSize,
	}
	s.toCache(ctx, cacheKey, result)
	return result, nil
}

// GetCosmeticByID returns nil when no such item exists.
func (s *CosmeticService) GetCosmeticByID(ctx context.Context, id uuid.UUID) (*models.Cosmetic, error) {
	cosmetic, err := s.cosmetics.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return cosmetic, nil
}

// cacheKeyFor returns "" for queries that are not worth caching.
func cacheKeyFor(q models.CosmeticQuery) string {
	if q.Page != 1 || q.Name != "" || q.Type != "" || q.Rarity != "" || q.FromDate != nil {
		return ""
	}
	switch {
	case q.IsNew == nil && q.IsForSale == nil:
		return cacheKeyCatalog
	case q.IsNew != nil && *q.IsNew && q.IsForSale == nil:
		return cacheKeyNew
	case q.IsForSale != nil && *q.IsForSale && q.IsNew == nil:
		return cacheKeyShop
	}
	return ""
}

func (s *CosmeticService) fromCache(ctx context.Context, key string) *models.PagedCosmetics {
	if s.redis == nil || key == "" {
		return nil
	}
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		return nil
	}
	var result models.PagedCosmetics
	if err := json.Unmarshal(data, &result); err != nil {
		return nil
	}
	return &result
}

func (s *CosmeticService) toCache(ctx context.Context, key string, result *models.PagedCosmetics) {
	if s.redis == nil || key == "" {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, key, data, catalogCacheTTL).Err(); err != nil {
		log.Printf("[CATALOG] Cache write failed: %v", err)
	}
}
