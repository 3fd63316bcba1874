package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/vlocker/backend/internal/models"
	"github.com/vlocker/backend/internal/store"
)

// Outcome tags the business-rule result of a purchase or return.
// Precondition failures are ordinary results, not errors: callers can
// render the message directly without unwrapping anything.
type Outcome string

const (
	OutcomeOK                Outcome = "OK"
	OutcomeAccountNotFound   Outcome = "ACCOUNT_NOT_FOUND"
	OutcomeItemNotFound      Outcome = "ITEM_NOT_FOUND"
	OutcomeItemNotForSale    Outcome = "ITEM_NOT_FOR_SALE"
	OutcomeAlreadyOwned      Outcome = "ALREADY_OWNED"
	OutcomeInsufficientFunds Outcome = "INSUFFICIENT_FUNDS"
	OutcomeNotOwned          Outcome = "NOT_OWNED_OR_RETURNED"
)

type PurchaseResult struct {
	Success bool                `json:"success"`
	Outcome Outcome             `json:"outcome"`
	Message string              `json:"message"`
	Balance int64               `json:"balance"`
	Entry   *models.LedgerEntry `json:"transaction,omitempty"`
}

// PurchaseService orchestrates the purchase/return state transition
// across the account, ownership, and ledger stores. Every call runs
// inside one database transaction with the account row locked, so two
// concurrent purchases against the same account cannot both observe a
// sufficient balance and overspend.
type PurchaseService struct {
	db         *sql.DB
	users      *store.UserStore
	cosmetics  *store.CosmeticStore
	ownerships *store.OwnershipStore
	ledger     *store.LedgerStore
}

func NewPurchaseService(db *sql.DB) *PurchaseService {
	return &PurchaseService{
		db:         db,
		users:      store.NewUserStore(db),
		cosmetics:  store.NewCosmeticStore(db),
		ownerships: store.NewOwnershipStore(db),
		ledger:     store.NewLedgerStore(db),
	}
}

func failure(outcome Outcome, message string) *PurchaseResult {
	return &PurchaseResult{Success: false, Outcome: outcome, Message: message}
}

// Purchase debits the account by the item's current price, creates or
// revives the ownership record, and appends a purchase ledger entry.
// All reads and writes commit atomically or not at all.
func (s *PurchaseService) Purchase(ctx context.Context, userID, cosmeticID uuid.UUID) (*PurchaseResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin purchase: %w", err)
	}
	defer tx.Rollback()

	user, err := s.users.LockTx(tx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return failure(OutcomeAccountNotFound, "Account not found"), nil
		}
		return nil, fmt.Errorf("lock account: %w", err)
	}

	cosmetic, err := s.cosmetics.GetTx(tx, cosmeticID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return failure(OutcomeItemNotFound, "Cosmetic not found"), nil
		}
		return nil, fmt.Errorf("load cosmetic: %w", err)
	}

	if !cosmetic.IsForSale {
		return failure(OutcomeItemNotForSale, "Cosmetic is not for sale"), nil
	}

	existing, err := s.ownerships.GetTx(tx, userID, cosmeticID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load ownership: %w", err)
	}
	if existing != nil && !existing.IsReturned() {
		return failure(OutcomeAlreadyOwned, "You already own this cosmetic"), nil
	}

	if user.Balance < cosmetic.Price {
		msg := fmt.Sprintf("Insufficient funds. Required: %d, Available: %d", cosmetic.Price, user.Balance)
		return failure(OutcomeInsufficientFunds, msg), nil
	}

	now := time.Now().UTC()
	newBalance := user.Balance - cosmetic.Price

	if err := s.users.UpdateBalanceTx(tx, userID, newBalance); err != nil {
		return nil, fmt.Errorf("debit account: %w", err)
	}

	if existing != nil {
		existing.PurchaseDate = now
		existing.ReturnedDate = nil
		existing.PriceAtPurchase = cosmetic.Price
		if err := s.ownerships.UpdateTx(tx, existing); err != nil {
			return nil, fmt.Errorf("revive ownership: %w", err)
		}
	} else {
		ownership := &models.Ownership{
			UserID:          userID,
			CosmeticID:      cosmeticID,
			PurchaseDate:    now,
			PriceAtPurchase: cosmetic.Price,
		}
		if err := s.ownerships.CreateTx(tx, ownership); err != nil {
			return nil, fmt.Errorf("create ownership: %w", err)
		}
	}

	entry := &models.LedgerEntry{
		ID:         uuid.New(),
		UserID:     userID,
		CosmeticID: cosmeticID,
		EntryType:  models.EntryPurchase,
		Amount:     cosmetic.Price,
		CreatedAt:  now,
	}
	if err := s.ledger.CreateTx(tx, entry); err != nil {
		return nil, fmt.Errorf("append ledger entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit purchase: %w", err)
	}

	log.Printf("[PURCHASE] User %s bought %s for %d, balance %d", userID, cosmetic.ExternalID, cosmetic.Price, newBalance)

	return &PurchaseResult{
		Success: true,
		Outcome: OutcomeOK,
		Message: "Purchase completed successfully",
		Balance: newBalance,
		Entry:   entry,
	}, nil
}

// Return credits the account by the price originally paid, not the
// current catalog price, so price changes between purchase and return
// cannot be arbitraged. The ownership record is kept with its return
// timestamp set.
func (s *PurchaseService) Return(ctx context.Context, userID, cosmeticID uuid.UUID) (*PurchaseResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin return: %w", err)
	}
	defer tx.Rollback()

	user, err := s.users.LockTx(tx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return failure(OutcomeAccountNotFound, "Account not found"), nil
		}
		return nil, fmt.Errorf("lock account: %w", err)
	}

	ownership, err := s.ownerships.GetTx(tx, userID, cosmeticID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load ownership: %w", err)
	}
	if ownership == nil || ownership.IsReturned() {
		return failure(OutcomeNotOwned, "You do not own this cosmetic or it was already returned"), nil
	}

	now := time.Now().UTC()
	newBalance := user.Balance + ownership.PriceAtPurchase

	if err := s.users.UpdateBalanceTx(tx, userID, newBalance); err != nil {
		return nil, fmt.Errorf("credit account: %w", err)
	}

	ownership.ReturnedDate = &now
	if err := s.ownerships.UpdateTx(tx, ownership); err != nil {
		return nil, fmt.Errorf("mark returned: %w", err)
	}

	entry := &models.LedgerEntry{
		ID:         uuid.New(),
		UserID:     userID,
		CosmeticID: cosmeticID,
		EntryType:  models.EntryReturn,
		Amount:     ownership.PriceAtPurchase,
		CreatedAt:  now,
	}
	if err := s.ledger.CreateTx(tx, entry); err != nil {
		return nil, fmt.Errorf("append ledger entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit return: %w", err)
	}

	log.Printf("[PURCHASE] User %s returned cosmetic %s for %d, balance %d", userID, cosmeticID, ownership.PriceAtPurchase, newBalance)

	return &PurchaseResult{
		Success: true,
		Outcome: OutcomeOK,
		Message: "Return completed successfully",
		Balance: newBalance,
		Entry:   entry,
	}, nil
}
