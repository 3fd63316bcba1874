package models

import (
	"time"

	"github.com/google/uuid"
)

// StartingBalance is credited to every account on registration.
const StartingBalance int64 = 10000

type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Balance      int64     `json:"balance"`
	CreatedAt    time.Time `json:"createdAt"`
}
