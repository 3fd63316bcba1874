package services

import (
	"context"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/vlocker/backend/internal/fortnite"
	"github.com/vlocker/backend/internal/models"
	"github.com/vlocker/backend/internal/store"
)

// SyncService reconciles the external catalog feeds into the cosmetic
// store on a fixed interval. It runs as a single loop, so a round can
// never overlap the previous one, and every sub-step failure is logged
// and swallowed: a broken feed means "no change this round", never a
// dead loop.
type SyncService struct {
	client    *fortnite.Client
	cosmetics *store.CosmeticStore
	redis     *redis.Client
	interval  time.Duration
}

func NewSyncService(client *fortnite.Client, cosmetics *store.CosmeticStore, redisClient *redis.Client, interval time.Duration) *SyncService {
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	return &SyncService{
		client:    client,
		cosmetics: cosmetics,
		redis:     redisClient,
		interval:  interval,
	}
}

// Run performs one sync round immediately, then one per interval until
// the context is cancelled.
func (s *SyncService) Run(ctx context.Context) {
	log.Printf("[SYNC] Catalog sync started, interval %s", s.interval)

	s.SyncOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[SYNC] Catalog sync stopped")
			return
		case <-ticker.C:
			s.SyncOnce(ctx)
		}
	}
}

// SyncOnce runs the three reconciliation steps of a round in order.
// A failed step does not abort the remaining ones.
func (s *SyncService) SyncOnce(ctx context.Context) {
	log.Println("[SYNC] Starting sync round")

	if err := s.syncAllCosmetics(ctx); err != nil {
		log.Printf("[SYNC] Full catalog sync failed: %v", err)
	}
	if err := s.syncNewCosmetics(ctx); err != nil {
		log.Printf("[SYNC] New-items sync failed: %v", err)
	}
	if err := s.syncShop(ctx); err != nil {
		log.Printf("[SYNC] Shop sync failed: %v", err)
	}

	s.invalidateCache(ctx)
	log.Println("[SYNC] Sync round finished")
}

func (s *SyncService) syncAllCosmetics(ctx context.Context) error {
	data, err := s.client.GetAllCosmetics(ctx)
	if err != nil {
		return err
	}

	cosmetics := make([]models.Cosmetic, 0, len(data))
	for _, d := range data {
		cosmetics = append(cosmetics, mapCosmetic(d))
	}

	if err := s.cosmetics.UpsertMany(ctx, cosmetics); err != nil {
		return err
	}
	log.Printf("[SYNC] Upserted %d cosmetics from full catalog", len(cosmetics))
	return nil
}

func (s *SyncService) syncNewCosmetics(ctx context.Context) error {
	data, err := s.client.GetNewCosmetics(ctx)
	if err != nil {
		return err
	}

	if err := s.cosmetics.ClearNewFlags(ctx); err != nil {
		return err
	}

	cosmetics := make([]models.Cosmetic, 0, len(data))
	for _, d := range data {
		c := mapCosmetic(d)
		c.IsNew = true
		cosmetics = append(cosmetics, c)
	}

	if err := s.cosmetics.UpsertMany(ctx, cosmetics); err != nil {
		return err
	}
	log.Printf("[SYNC] Marked %d cosmetics as new", len(cosmetics))
	return nil
}

func (s *SyncService) syncShop(ctx context.Context) error {
	entries, err := s.client.GetShop(ctx)
	if err != nil {
		return err
	}

	if err := s.cosmetics.ClearForSaleFlags(ctx); err != nil {
		return err
	}

	// An entry can bundle several items at one shared final price;
	// each bundled item is stamped with the entry's price.
	cosmetics := []models.Cosmetic{}
	for _, entry := range entries {
		for _, item := range entry.BrItems {
			c := mapCosmetic(item)
			c.IsForSale = true
			c.Price = entry.FinalPrice
			cosmetics = append(cosmetics, c)
		}
	}

	if err := s.cosmetics.UpsertMany(ctx, cosmetics); err != nil {
		return err
	}
	log.Printf("[SYNC] Marked %d shop items for sale", len(cosmetics))
	return nil
}

func (s *SyncService) invalidateCache(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, catalogCacheKeys...).Err(); err != nil {
		log.Printf("[SYNC] Cache invalidation failed: %v", err)
	}
}

func mapCosmetic(d fortnite.CosmeticData) models.Cosmetic {
	added := time.Now().UTC()
	if d.Added != nil {
		added = *d.Added
	}
	return models.Cosmetic{
		ExternalID:  d.ID,
		Name:        d.Name,
		Type:        d.Type.Display(),
		Rarity:      d.Rarity.Display(),
		ImageURL:    d.Images.URL(),
		AddedDate:   added,
		Description: d.Description,
	}
}
