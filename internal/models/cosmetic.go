package models

import (
	"time"

	"github.com/google/uuid"
)

// Cosmetic is a purchasable item mirrored from the external catalog.
// ExternalId is the stable key from the source feed; Price, IsNew and
// IsForSale are volatile and overwritten on every sync pass.
type Cosmetic struct {
	ID          uuid.UUID `json:"id"`
	ExternalID  string    `json:"externalId"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Rarity      string    `json:"rarity"`
	Price       int64     `json:"price"`
	ImageURL    string    `json:"imageUrl"`
	IsNew       bool      `json:"isNew"`
	IsForSale   bool      `json:"isForSale"`
	AddedDate   time.Time `json:"addedDate"`
	Description string    `json:"description,omitempty"`
}

// CosmeticQuery carries the paging and filter parameters for catalog
// listings. Nil pointer fields mean "no filter".
type CosmeticQuery struct {
	Page      int
	PageSize  int
	Name      string
	Type      string
	Rarity    string
	IsNew     *bool
	IsForSale *bool
	FromDate  *time.Time
}

type PagedCosmetics struct {
	Items      []Cosmetic `json:"items"`
	TotalCount int        `json:"totalCount"`
	Page       int        `json:"page"`
	PageSize   int        `json:"pageSize"`
}
