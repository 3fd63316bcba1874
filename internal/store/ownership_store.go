package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/vlocker/backend/internal/models"
)

// OwnershipStore persists per-user-per-item ownership records. The
// purchase path reads and writes through the *Tx methods so ownership
// changes commit atomically with the balance debit.
type OwnershipStore struct {
	db *sql.DB
}

func NewOwnershipStore(db *sql.DB) *OwnershipStore {
	return &OwnershipStore{db: db}
}

func (s *OwnershipStore) GetTx(tx *sql.Tx, userID, cosmeticID uuid.UUID) (*models.Ownership, error) {
	return scanOwnership(tx.QueryRow(`
		SELECT user_id, cosmetic_id, purchase_date, price_at_purchase, returned_date
		FROM user_cosmetics
		WHERE user_id = $1 AND cosmetic_id = $2`, userID, cosmeticID))
}

func (s *OwnershipStore) CreateTx(tx *sql.Tx, o *models.Ownership) error {
	_, err := tx.Exec(`
		INSERT INTO user_cosmetics (user_id, cosmetic_id, purchase_date, price_at_purchase, returned_date)
		VALUES ($1, $2, $3, $4, $5)`,
		o.UserID, o.CosmeticID, o.PurchaseDate, o.PriceAtPurchase, o.ReturnedDate)
	return err
}

func (s *OwnershipStore) UpdateTx(tx *sql.Tx, o *models.Ownership) error {
	_, err := tx.Exec(`
		UPDATE user_cosmetics
		SET purchase_date = $1, price_at_purchase = $2, returned_date = $3
		WHERE user_id = $4 AND cosmetic_id = $5`,
		o.PurchaseDate, o.PriceAtPurchase, o.ReturnedDate, o.UserID, o.CosmeticID)
	return err
}

// GetOwnedByUser returns the user's currently-held cosmetics, joined
// with their catalog rows. Returned items are excluded.
func (s *OwnershipStore) GetOwnedByUser(ctx context.Context, userID uuid.UUID) ([]models.OwnedCosmetic, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.external_id, c.name, c.type, c.rarity, c.price, c.image_url,
		       c.is_new, c.is_for_sale, c.added_date, c.description,
		       uc.purchase_date, uc.price_at_purchase
		FROM user_cosmetics uc
		INNER JOIN cosmetics c ON c.id = uc.cosmetic_id
		WHERE uc.user_id = $1 AND uc.returned_date IS NULL
		ORDER BY uc.purchase_date DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	owned := []models.OwnedCosmetic{}
	for rows.Next() {
		var oc models.OwnedCosmetic
		var description sql.NullString
		err := rows.Scan(&oc.Cosmetic.ID, &oc.Cosmetic.ExternalID, &oc.Cosmetic.Name,
			&oc.Cosmetic.Type, &oc.Cosmetic.Rarity, &oc.Cosmetic.Price, &oc.Cosmetic.ImageURL,
			&oc.Cosmetic.IsNew, &oc.Cosmetic.IsForSale, &oc.Cosmetic.AddedDate, &description,
			&oc.PurchaseDate, &oc.PriceAtPurchase)
		if err != nil {
			return nil, err
		}
		oc.Cosmetic.Description = description.String
		owned = append(owned, oc)
	}
	return owned, rows.Err()
}

func scanOwnership(row rowScanner) (*models.Ownership, error) {
	var o models.Ownership
	var returned sql.NullTime
	err := row.Scan(&o.UserID, &o.CosmeticID, &o.PurchaseDate, &o.PriceAtPurchase, &returned)
	if err != nil {
		return nil, err
	}
	if returned.Valid {
		o.ReturnedDate = &returned.Time
	}
	return &o, nil
}
