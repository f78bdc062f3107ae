// Package sqlite provides a single-file ledger store for local CLI
// ingestion, backed by modernc.org/sqlite. It implements the same append
// contract as the Firestore store: create-if-absent and append run inside
// one transaction, so concurrent merges for the same owner serialize instead
// of losing entries.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fintrackr/backend/internal/domain"
	"github.com/fintrackr/backend/internal/ledger"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS ledgers (
	owner_id    TEXT PRIMARY KEY,
	last_update TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS ledger_entries (
	seq         INTEGER PRIMARY KEY AUTOINCREMENT,
	owner_id    TEXT NOT NULL REFERENCES ledgers(owner_id),
	name        TEXT NOT NULL,
	total       REAL NOT NULL,
	date        TEXT,
	time        TEXT,
	ingested_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_ledger_entries_owner ON ledger_entries(owner_id);
`

// Store is a ledger.Store over a local SQLite database file.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger database %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize ledger schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// AppendEntries appends the entries onto the owner's ledger inside a single
// transaction, creating the ledger row if absent and advancing last_update.
func (s *Store) AppendEntries(ctx context.Context, ownerID string, entries []domain.LedgerEntry) (ledger.AppendResult, error) {
	var result ledger.AppendResult

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("failed to begin ledger transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339Nano)

	res, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO ledgers (owner_id, last_update) VALUES (?, ?)`,
		ownerID, now)
	if err != nil {
		return result, fmt.Errorf("failed to upsert ledger for %s: %w", ownerID, err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return result, fmt.Errorf("failed to read upsert result: %w", err)
	}
	result.Created = inserted > 0

	if !result.Created {
		if _, err := tx.ExecContext(ctx,
			`UPDATE ledgers SET last_update = ? WHERE owner_id = ?`, now, ownerID); err != nil {
			return result, fmt.Errorf("failed to touch ledger for %s: %w", ownerID, err)
		}
	}

	var appended int64
	for _, entry := range entries {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO ledger_entries (owner_id, name, total, date, time, ingested_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			entry.OwnerID, entry.Name, entry.Total,
			nullable(entry.Date), nullable(entry.Time),
			entry.IngestedAt.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return ledger.AppendResult{}, fmt.Errorf("failed to append entry for %s: %w", ownerID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return ledger.AppendResult{}, fmt.Errorf("failed to read append result: %w", err)
		}
		appended += n
	}
	result.Modified = !result.Created && appended > 0

	if err := tx.Commit(); err != nil {
		return ledger.AppendResult{}, fmt.Errorf("failed to commit ledger append for %s: %w", ownerID, err)
	}

	return result, nil
}

// Ledger reconstructs the owner's full ledger document, entries in append
// order, or returns ledger.ErrNotFound.
func (s *Store) Ledger(ctx context.Context, ownerID string) (*domain.Ledger, error) {
	doc := &domain.Ledger{OwnerID: ownerID}

	var lastUpdate string
	err := s.db.QueryRowContext(ctx,
		`SELECT last_update FROM ledgers WHERE owner_id = ?`, ownerID).Scan(&lastUpdate)
	if err == sql.ErrNoRows {
		return nil, ledger.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger for %s: %w", ownerID, err)
	}
	if doc.LastUpdate, err = time.Parse(time.RFC3339Nano, lastUpdate); err != nil {
		return nil, fmt.Errorf("corrupt last_update for %s: %w", ownerID, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT name, total, date, time, ingested_at
		 FROM ledger_entries WHERE owner_id = ? ORDER BY seq`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger entries for %s: %w", ownerID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			entry      domain.LedgerEntry
			date, tod  sql.NullString
			ingestedAt string
		)
		if err := rows.Scan(&entry.Name, &entry.Total, &date, &tod, &ingestedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entry.OwnerID = ownerID
		if date.Valid {
			entry.Date = &date.String
		}
		if tod.Valid {
			entry.Time = &tod.String
		}
		if entry.IngestedAt, err = time.Parse(time.RFC3339Nano, ingestedAt); err != nil {
			return nil, fmt.Errorf("corrupt ingested_at for %s: %w", ownerID, err)
		}
		doc.Entries = append(doc.Entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger entries for %s: %w", ownerID, err)
	}

	return doc, nil
}

func nullable(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
