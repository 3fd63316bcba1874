package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/vlocker/backend/internal/models"
	"github.com/vlocker/backend/internal/services"
)

// CosmeticHandler serves catalog browsing plus the purchase and return
// endpoints.
type CosmeticHandler struct {
	cosmetics *services.CosmeticService
	purchases *services.PurchaseService
}

func NewCosmeticHandler(cosmetics *services.CosmeticService, purchases *services.PurchaseService) *CosmeticHandler {
	return &CosmeticHandler{
		cosmetics: cosmetics,
		purchases: purchases,
	}
}

// ListCosmetics returns a paged, filterable view of the full catalog.
func (h *CosmeticHandler) ListCosmetics(w http.ResponseWriter, r *http.Request) {
	query, ok := parseCosmeticQuery(w, r)
	if !ok {
		return
	}
	h.respondPaged(w, r, query)
}

// ListNewCosmetics returns only items flagged new by the last sync.
func (h *CosmeticHandler) ListNewCosmetics(w http.ResponseWriter, r *http.Request) {
	query, ok := parseCosmeticQuery(w, r)
	if !ok {
		return
	}
	isNew := true
	query.IsNew = &isNew
	h.respondPaged(w, r, query)
}

// ListShop returns only items currently purchasable.
func (h *CosmeticHandler) ListShop(w http.ResponseWriter, r *http.Request) {
	query, ok := parseCosmeticQuery(w, r)
	if !ok {
		return
	}
	forSale := true
	query.IsForSale = &forSale
	h.respondPaged(w, r, query)
}

func (h *CosmeticHandler) respondPaged(w http.ResponseWriter, r *http.Request, query models.CosmeticQuery) {
	result, err := h.cosmetics.GetCosmetics(r.Context(), query)
	if err != nil {
		services.SendErrorResponse(w, "Failed to load cosmetics", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func (h *CosmeticHandler) GetCosmetic(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		services.SendErrorResponse(w, "Invalid cosmetic ID", http.StatusBadRequest, nil)
		return
	}

	cosmetic, err := h.cosmetics.GetCosmeticByID(r.Context(), id)
	if err != nil {
		services.SendErrorResponse(w, "Failed to load cosmetic", http.StatusInternalServerError, nil)
		return
	}
	if cosmetic == nil {
		services.SendErrorResponse(w, "Cosmetic not found", http.StatusNotFound, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cosmetic)
}

// Purchase buys the cosmetic in the URL for the authenticated user.
func (h *CosmeticHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUserID(r)
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	cosmeticID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		services.SendErrorResponse(w, "Invalid cosmetic ID", http.StatusBadRequest, nil)
		return
	}

	result, err := h.purchases.Purchase(r.Context(), userID, cosmeticID)
	if err != nil {
		services.SendErrorResponse(w, "Purchase failed", http.StatusInternalServerError, nil)
		return
	}

	writePurchaseResult(w, result)
}

// Return gives the cosmetic back and refunds the price paid for it.
func (h *CosmeticHandler) Return(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUserID(r)
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	cosmeticID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		services.SendErrorResponse(w, "Invalid cosmetic ID", http.StatusBadRequest, nil)
		return
	}

	result, err := h.purchases.Return(r.Context(), userID, cosmeticID)
	if err != nil {
		services.SendErrorResponse(w, "Return failed", http.StatusInternalServerError, nil)
		return
	}

	writePurchaseResult(w, result)
}

func writePurchaseResult(w http.ResponseWriter, result *services.PurchaseResult) {
	w.Header().Set("Content-Type", "application/json")
	if !result.Success {
		w.WriteHeader(statusForOutcome(result.Outcome))
	}
	json.NewEncoder(w).Encode(result)
}

func statusForOutcome(outcome services.Outcome) int {
	switch outcome {
	case services.OutcomeAccountNotFound, services.OutcomeItemNotFound:
		return http.StatusNotFound
	case services.OutcomeAlreadyOwned:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// authenticatedUserID pulls the user ID placed in the context by the
// auth middleware.
func authenticatedUserID(r *http.Request) (uuid.UUID, bool) {
	raw, ok := r.Context().Value("userID").(string)
	if !ok || raw == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func parseCosmeticQuery(w http.ResponseWriter, r *http.Request) (models.CosmeticQuery, bool) {
	q := models.CosmeticQuery{
		Page:     1,
		PageSize: 20,
		Name:     r.URL.Query().Get("name"),
		Type:     r.URL.Query().Get("type"),
		Rarity:   r.URL.Query().Get("rarity"),
	}

	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			services.SendErrorResponse(w, "Invalid page parameter", http.StatusBadRequest, nil)
			return q, false
		}
		q.Page = page
	}

	if raw := r.URL.Query().Get("pageSize"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 {
			services.SendErrorResponse(w, "Invalid pageSize parameter", http.StatusBadRequest, nil)
			return q, false
		}
		q.PageSize = size
	}

	if raw := r.URL.Query().Get("addedSince"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			services.SendErrorResponse(w, "Invalid addedSince parameter, expected RFC3339", http.StatusBadRequest, nil)
			return q, false
		}
		q.FromDate = &from
	}

	return q, true
}
