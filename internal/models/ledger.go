package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	EntryPurchase = "PURCHASE"
	EntryReturn   = "RETURN"
)

// LedgerEntry is one balance-affecting event. The ledger is
// append-only: entries are never updated or deleted, so an account
// balance is always reconstructable as starting balance plus returns
// minus purchases.
type LedgerEntry struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"userId"`
	CosmeticID uuid.UUID `json:"cosmeticId"`
	EntryType  string    `json:"type"`
	Amount     int64     `json:"amount"`
	CreatedAt  time.Time `json:"createdAt"`
}
