package models

import (
	"time"

	"github.com/google/uuid"
)

// Ownership records that a user holds, or previously held, a cosmetic.
// There is at most one row per (user, cosmetic) pair; a re-purchase
// after a return overwrites the existing row instead of adding one.
type Ownership struct {
	UserID          uuid.UUID  `json:"userId"`
	CosmeticID      uuid.UUID  `json:"cosmeticId"`
	PurchaseDate    time.Time  `json:"purchaseDate"`
	PriceAtPurchase int64      `json:"priceAtPurchase"`
	ReturnedDate    *time.Time `json:"returnedDate,omitempty"`
}

func (o *Ownership) IsReturned() bool {
	return o.ReturnedDate != nil
}

// OwnedCosmetic is the join of an active Ownership with its cosmetic,
// used by the profile endpoints.
type OwnedCosmetic struct {
	Cosmetic        Cosmetic  `json:"cosmetic"`
	PurchaseDate    time.Time `json:"purchaseDate"`
	PriceAtPurchase int64     `json:"priceAtPurchase"`
}
