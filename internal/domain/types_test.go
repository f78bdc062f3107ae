package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTransaction_WithTimestamp(t *testing.T) {
	ts := time.Date(2025, time.August, 23, 14, 21, 0, 0, time.UTC)

	txn, err := NewTransaction("Acme Store", 250.0, &ts)
	require.NoError(t, err)

	assert.Equal(t, "Acme Store", txn.Name)
	assert.Equal(t, 250.0, txn.Total)
	require.NotNil(t, txn.Date)
	require.NotNil(t, txn.Time)
	assert.Equal(t, "2025-08-23T14:21:00", *txn.Date)
	assert.Equal(t, "14:21:00", *txn.Time)
}

func TestNewTransaction_WithoutTimestamp(t *testing.T) {
	txn, err := NewTransaction("Acme Store", 250.0, nil)
	require.NoError(t, err)

	assert.Nil(t, txn.Date, "date projection must be nil when normalization failed")
	assert.Nil(t, txn.Time, "time projection must be nil when normalization failed")
}

func TestNewTransaction_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		payee   string
		total   float64
		wantErr string
	}{
		{
			name:    "empty name",
			payee:   "",
			total:   10.0,
			wantErr: "name cannot be empty",
		},
		{
			name:    "negative total",
			payee:   "Acme Store",
			total:   -1.0,
			wantErr: "must be non-negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTransaction(tt.payee, tt.total, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewLedgerEntry(t *testing.T) {
	ts := time.Date(2025, time.August, 23, 14, 21, 0, 0, time.UTC)
	txn, err := NewTransaction("Acme Store", 250.0, &ts)
	require.NoError(t, err)

	ingested := time.Date(2025, time.September, 1, 10, 0, 0, 0, time.UTC)
	entry, err := NewLedgerEntry(*txn, "user-123", ingested)
	require.NoError(t, err)

	assert.Equal(t, "user-123", entry.OwnerID)
	assert.Equal(t, ingested, entry.IngestedAt)
	assert.Equal(t, txn.Name, entry.Name)
	assert.Equal(t, txn.Total, entry.Total)
	assert.Equal(t, txn.Date, entry.Date)

	// The bare transaction is unaffected by entry creation.
	assert.Equal(t, "Acme Store", txn.Name)
}

func TestNewLedgerEntry_Invalid(t *testing.T) {
	txn := Transaction{Name: "Acme Store", Total: 1.0}

	_, err := NewLedgerEntry(txn, "", time.Now())
	assert.Error(t, err, "empty owner must be rejected")

	_, err = NewLedgerEntry(txn, "user-123", time.Time{})
	assert.Error(t, err, "zero ingestion time must be rejected")
}

func TestTransactionJSON_WireContract(t *testing.T) {
	ts := time.Date(2025, time.August, 23, 14, 21, 0, 0, time.UTC)
	txn, err := NewTransaction("Acme Store", 250.0, &ts)
	require.NoError(t, err)

	raw, err := json.Marshal(txn)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"name": "Acme Store",
		"total": 250,
		"date": "2025-08-23T14:21:00",
		"time": "14:21:00"
	}`, string(raw))
}

func TestTransactionJSON_NullProjections(t *testing.T) {
	txn, err := NewTransaction("Acme Store", 250.0, nil)
	require.NoError(t, err)

	raw, err := json.Marshal(txn)
	require.NoError(t, err)

	assert.JSONEq(t, `{"name":"Acme Store","total":250,"date":null,"time":null}`, string(raw))
}

func TestLedgerEntryJSON_UsesSubAndUploadDate(t *testing.T) {
	entry := LedgerEntry{
		Name:       "Acme Store",
		Total:      250.0,
		OwnerID:    "user-123",
		IngestedAt: time.Date(2025, time.September, 1, 10, 0, 0, 0, time.UTC),
	}

	raw, err := json.Marshal(entry)
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Contains(t, fields, "sub")
	assert.Contains(t, fields, "uploadDate")
	assert.NotContains(t, fields, "OwnerID")
}

func TestErrorResult(t *testing.T) {
	res := ErrorResult("document %s not found", "doc-1")

	assert.Equal(t, StatusError, res.Status)
	assert.Equal(t, "document doc-1 not found", res.Message)
	assert.Nil(t, res.Data)
}
