package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fintrackr/backend/internal/domain"
	"github.com/fintrackr/backend/internal/firestore"
	"github.com/fintrackr/backend/internal/ledger"
	"github.com/fintrackr/backend/internal/middleware"
)

// mockDataStore implements DataStore for testing
type mockDataStore struct {
	ledger      *domain.Ledger
	budget      *firestore.Budget
	deleted     []string
	setBudgets  map[string]float64
	ledgerErr   error
	budgetErr   error
	setErr      error
	deleteErr   error
}

func newMockDataStore() *mockDataStore {
	return &mockDataStore{setBudgets: make(map[string]float64)}
}

func (m *mockDataStore) Ledger(ctx context.Context, ownerID string) (*domain.Ledger, error) {
	if m.ledgerErr != nil {
		return nil, m.ledgerErr
	}
	return m.ledger, nil
}

func (m *mockDataStore) SetBudget(ctx context.Context, ownerID string, amount float64) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.setBudgets[ownerID] = amount
	return nil
}

func (m *mockDataStore) Budget(ctx context.Context, ownerID string) (*firestore.Budget, error) {
	if m.budgetErr != nil {
		return nil, m.budgetErr
	}
	return m.budget, nil
}

func (m *mockDataStore) DeleteUserData(ctx context.Context, ownerID string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, ownerID)
	return nil
}

// Helper to create request with userID in context
func requestWithAuth(method, target, userID string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, userID)
	return req.WithContext(ctx)
}

func strPtr(s string) *string { return &s }

func jsonBody(t *testing.T, v interface{}) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Failed to marshal body: %v", err)
	}
	return bytes.NewReader(data)
}

func TestGetTransactions_Success(t *testing.T) {
	store := newMockDataStore()
	store.ledger = &domain.Ledger{
		OwnerID: "user-123",
		Entries: []domain.LedgerEntry{
			{
				Name:       "Coffee House",
				Total:      249.0,
				Date:       strPtr("2025-08-23T14:21:00"),
				Time:       strPtr("14:21:00"),
				OwnerID:    "user-123",
				IngestedAt: time.Now(),
			},
		},
		LastUpdate: time.Now(),
	}

	handler := NewAPIHandler(store)
	req := requestWithAuth("GET", "/api/transactions", "user-123")
	w := httptest.NewRecorder()

	handler.GetTransactions(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if contentType := w.Header().Get("Content-Type"); contentType != "application/json" {
		t.Errorf("Expected Content-Type application/json, got %s", contentType)
	}

	var result domain.Ledger
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if result.OwnerID != "user-123" {
		t.Errorf("Expected sub user-123, got %s", result.OwnerID)
	}
	if len(result.Entries) != 1 {
		t.Fatalf("Expected 1 transaction, got %d", len(result.Entries))
	}
	if result.Entries[0].Name != "Coffee House" {
		t.Errorf("Expected Coffee House, got %s", result.Entries[0].Name)
	}
}

func TestGetTransactions_NoLedgerReturnsEmptyDocument(t *testing.T) {
	store := newMockDataStore()
	store.ledgerErr = ledger.ErrNotFound

	handler := NewAPIHandler(store)
	req := requestWithAuth("GET", "/api/transactions", "user-123")
	w := httptest.NewRecorder()

	handler.GetTransactions(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	entries, ok := result["transactions"].([]interface{})
	if !ok {
		t.Fatalf("Expected transactions array, got %T", result["transactions"])
	}
	if len(entries) != 0 {
		t.Errorf("Expected empty transactions array, got %d entries", len(entries))
	}
}

func TestGetTransactions_Unauthorized(t *testing.T) {
	handler := NewAPIHandler(newMockDataStore())
	req := httptest.NewRequest("GET", "/api/transactions", nil)
	w := httptest.NewRecorder()

	handler.GetTransactions(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
}

func TestSetBudget_Success(t *testing.T) {
	store := newMockDataStore()
	handler := NewAPIHandler(store)

	req := httptest.NewRequest("POST", "/api/set-budget", jsonBody(t, setBudgetRequest{Amount: 4500.0}))
	req = req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, "user-123"))
	w := httptest.NewRecorder()

	handler.SetBudget(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if store.setBudgets["user-123"] != 4500.0 {
		t.Errorf("Expected stored budget 4500.0, got %f", store.setBudgets["user-123"])
	}
}

func TestSetBudget_RejectsNegativeAmount(t *testing.T) {
	store := newMockDataStore()
	handler := NewAPIHandler(store)

	req := httptest.NewRequest("POST", "/api/set-budget", jsonBody(t, setBudgetRequest{Amount: -10.0}))
	req = req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, "user-123"))
	w := httptest.NewRecorder()

	handler.SetBudget(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
	if len(store.setBudgets) != 0 {
		t.Error("Negative budget should not be stored")
	}
}

func TestGetBudget_NotSet(t *testing.T) {
	store := newMockDataStore()
	store.budgetErr = ledger.ErrNotFound

	handler := NewAPIHandler(store)
	req := requestWithAuth("GET", "/api/get-budget", "user-123")
	w := httptest.NewRecorder()

	handler.GetBudget(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestBudgetStatus_CumulativeTotals(t *testing.T) {
	tests := []struct {
		name           string
		budget         float64
		entryTotals    []float64
		expectedStatus domain.GoalStatus
		expectedDiff   float64
	}{
		{
			name:           "under budget",
			budget:         5000.0,
			entryTotals:    []float64{1200.0, 800.0},
			expectedStatus: domain.GoalStatusMet,
			expectedDiff:   3000.0,
		},
		{
			name:           "exactly at budget",
			budget:         2000.0,
			entryTotals:    []float64{1200.0, 800.0},
			expectedStatus: domain.GoalStatusMet,
			expectedDiff:   0.0,
		},
		{
			name:           "over budget",
			budget:         1500.0,
			entryTotals:    []float64{1200.0, 800.0},
			expectedStatus: domain.GoalStatusExceeded,
			expectedDiff:   500.0,
		},
		{
			name:           "no transactions",
			budget:         1500.0,
			entryTotals:    nil,
			expectedStatus: domain.GoalStatusMet,
			expectedDiff:   1500.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockDataStore()
			store.budget = &firestore.Budget{OwnerID: "user-123", Amount: tt.budget}
			if tt.entryTotals != nil {
				entries := make([]domain.LedgerEntry, 0, len(tt.entryTotals))
				for _, total := range tt.entryTotals {
					entries = append(entries, domain.LedgerEntry{Name: "x", Total: total, OwnerID: "user-123"})
				}
				store.ledger = &domain.Ledger{OwnerID: "user-123", Entries: entries}
			} else {
				store.ledgerErr = ledger.ErrNotFound
			}

			handler := NewAPIHandler(store)
			req := requestWithAuth("GET", "/api/budget-status", "user-123")
			w := httptest.NewRecorder()

			handler.BudgetStatus(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}

			var resp budgetStatusResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if resp.Status != tt.expectedStatus {
				t.Errorf("Expected status %s, got %s", tt.expectedStatus, resp.Status)
			}
			if resp.Difference != tt.expectedDiff {
				t.Errorf("Expected difference %f, got %f", tt.expectedDiff, resp.Difference)
			}
		})
	}
}

func TestDeleteTransactions_Success(t *testing.T) {
	store := newMockDataStore()
	handler := NewAPIHandler(store)

	req := requestWithAuth("DELETE", "/api/delete-transactions", "user-123")
	w := httptest.NewRecorder()

	handler.DeleteTransactions(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if len(store.deleted) != 1 || store.deleted[0] != "user-123" {
		t.Errorf("Expected user-123 deleted, got %v", store.deleted)
	}
}

func TestHealthCheck(t *testing.T) {
	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	HealthCheck(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("Expected status ok, got %s", resp["status"])
	}
}
