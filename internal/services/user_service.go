package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/vlocker/backend/internal/models"
	"github.com/vlocker/backend/internal/store"
)

// UserProfile is a user together with their currently-held cosmetics.
type UserProfile struct {
	ID        uuid.UUID              `json:"id"`
	Name      string                 `json:"name"`
	Email     string                 `json:"email"`
	Balance   int64                  `json:"balance"`
	CreatedAt time.Time              `json:"createdAt"`
	Cosmetics []models.OwnedCosmetic `json:"cosmetics"`
}

type UserService struct {
	users      *store.UserStore
	ownerships *store.OwnershipStore
	ledger     *store.LedgerStore
}

func NewUserService(db *sql.DB) *UserService {
	return &UserService{
		users:      store.NewUserStore(db),
		ownerships: store.NewOwnershipStore(db),
		ledger:     store.NewLedgerStore(db),
	}
}

// GetProfile returns nil when the user does not exist. Returned
// cosmetics are excluded from the profile.
func (s *UserService) GetProfile(ctx context.Context, id uuid.UUID) (*UserProfile, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	owned, err := s.ownerships.GetOwnedByUser(ctx, id)
	if err != nil {
		return nil, err
	}

	return &UserProfile{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Balance:   user.Balance,
		CreatedAt: user.CreatedAt,
		Cosmetics: owned,
	}, nil
}

func (s *UserService) GetTransactions(ctx context.Context, id uuid.UUID) ([]models.LedgerEntry, error) {
	return s.ledger.GetByUserID(ctx, id)
}
