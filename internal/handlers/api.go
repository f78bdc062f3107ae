// Package handlers implements the HTTP API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/fintrackr/backend/internal/domain"
	"github.com/fintrackr/backend/internal/firestore"
	"github.com/fintrackr/backend/internal/ledger"
	"github.com/fintrackr/backend/internal/middleware"
)

// DataStore interface for dependency injection
type DataStore interface {
	Ledger(ctx context.Context, ownerID string) (*domain.Ledger, error)
	SetBudget(ctx context.Context, ownerID string, amount float64) error
	Budget(ctx context.Context, ownerID string) (*firestore.Budget, error)
	DeleteUserData(ctx context.Context, ownerID string) error
}

// APIHandler handles API requests
type APIHandler struct {
	store DataStore
}

// NewAPIHandler creates a new API handler
func NewAPIHandler(store DataStore) *APIHandler {
	return &APIHandler{store: store}
}

// GetTransactions handles GET /api/transactions. Users with no ledger yet
// get an empty document rather than a 404.
func (h *APIHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	doc, err := h.store.Ledger(r.Context(), userID)
	if errors.Is(err, ledger.ErrNotFound) {
		doc = &domain.Ledger{OwnerID: userID, Entries: []domain.LedgerEntry{}}
	} else if err != nil {
		log.Printf("ERROR: Failed to fetch ledger for user %s: %v", userID, err)
		http.Error(w, "Failed to fetch transactions", http.StatusInternalServerError)
		return
	}
	if doc.Entries == nil {
		doc.Entries = []domain.LedgerEntry{}
	}

	writeJSON(w, http.StatusOK, doc)
}

// setBudgetRequest is the body of POST /api/set-budget.
type setBudgetRequest struct {
	Amount float64 `json:"amount"`
}

// SetBudget handles POST /api/set-budget
func (h *APIHandler) SetBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req setBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Amount < 0 {
		http.Error(w, "Budget amount must be non-negative", http.StatusBadRequest)
		return
	}

	if err := h.store.SetBudget(r.Context(), userID, req.Amount); err != nil {
		log.Printf("ERROR: Failed to set budget for user %s: %v", userID, err)
		http.Error(w, "Failed to set budget", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": domain.StatusSuccess,
		"amount": req.Amount,
	})
}

// GetBudget handles GET /api/get-budget
func (h *APIHandler) GetBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	budget, err := h.store.Budget(r.Context(), userID)
	if errors.Is(err, ledger.ErrNotFound) {
		http.Error(w, "No budget set", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("ERROR: Failed to fetch budget for user %s: %v", userID, err)
		http.Error(w, "Failed to fetch budget", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"amount": budget.Amount,
	})
}

// budgetStatusResponse is the body of GET /api/budget-status.
type budgetStatusResponse struct {
	Status     domain.GoalStatus `json:"status"`
	Difference float64           `json:"difference"`
	TotalSpent float64           `json:"totalSpent"`
	Budget     float64           `json:"budget"`
}

// BudgetStatus handles GET /api/budget-status. Unlike the per-upload goal
// evaluation, this compares the cumulative ledger total against the stored
// budget.
func (h *APIHandler) BudgetStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	budget, err := h.store.Budget(r.Context(), userID)
	if errors.Is(err, ledger.ErrNotFound) {
		http.Error(w, "No budget set", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("ERROR: Failed to fetch budget for user %s: %v", userID, err)
		http.Error(w, "Failed to fetch budget", http.StatusInternalServerError)
		return
	}

	var totalSpent float64
	doc, err := h.store.Ledger(r.Context(), userID)
	if err != nil && !errors.Is(err, ledger.ErrNotFound) {
		log.Printf("ERROR: Failed to fetch ledger for user %s: %v", userID, err)
		http.Error(w, "Failed to fetch transactions", http.StatusInternalServerError)
		return
	}
	if doc != nil {
		for _, entry := range doc.Entries {
			totalSpent += entry.Total
		}
	}

	resp := budgetStatusResponse{
		TotalSpent: totalSpent,
		Budget:     budget.Amount,
	}
	if totalSpent <= budget.Amount {
		resp.Status = domain.GoalStatusMet
		resp.Difference = budget.Amount - totalSpent
	} else {
		resp.Status = domain.GoalStatusExceeded
		resp.Difference = totalSpent - budget.Amount
	}

	writeJSON(w, http.StatusOK, resp)
}

// DeleteTransactions handles DELETE /api/transactions. It removes the
// user's ledger, budget, and stored documents.
func (h *APIHandler) DeleteTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.store.DeleteUserData(r.Context(), userID); err != nil {
		log.Printf("ERROR: Failed to delete data for user %s: %v", userID, err)
		http.Error(w, "Failed to delete user data", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  domain.StatusSuccess,
		"message": "All user data deleted.",
	})
}

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("ERROR: Failed to encode response: %v", err)
	}
}
