package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/vlocker/backend/internal/services"
)

type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// GetMe returns the authenticated user's profile with their locker.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUserID(r)
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}
	h.writeProfile(w, r, userID)
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		services.SendErrorResponse(w, "Invalid user ID", http.StatusBadRequest, nil)
		return
	}
	h.writeProfile(w, r, id)
}

func (h *UserHandler) writeProfile(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	profile, err := h.users.GetProfile(r.Context(), id)
	if err != nil {
		services.SendErrorResponse(w, "Failed to load profile", http.StatusInternalServerError, nil)
		return
	}
	if profile == nil {
		services.SendErrorResponse(w, "User not found", http.StatusNotFound, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(profile)
}

// GetCosmetics lists the user's currently-held cosmetics.
func (h *UserHandler) GetCosmetics(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		services.SendErrorResponse(w, "Invalid user ID", http.StatusBadRequest, nil)
		return
	}

	profile, err := h.users.GetProfile(r.Context(), id)
	if err != nil {
		services.SendErrorResponse(w, "Failed to load cosmetics", http.StatusInternalServerError, nil)
		return
	}
	if profile == nil {
		services.SendErrorResponse(w, "User not found", http.StatusNotFound, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(profile.Cosmetics)
}

// GetTransactions lists the user's purchase and return history.
func (h *UserHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		services.SendErrorResponse(w, "Invalid user ID", http.StatusBadRequest, nil)
		return
	}

	entries, err := h.users.GetTransactions(r.Context(), id)
	if err != nil {
		services.SendErrorResponse(w, "Failed to load transactions", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}
