// Package firestore persists ledgers, uploaded statement documents, and
// budgets in Cloud Firestore.
package firestore

import (
	"context"
	"fmt"
	"hash/crc32"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/fintrackr/backend/internal/config"
	"github.com/fintrackr/backend/internal/domain"
	"github.com/fintrackr/backend/internal/ledger"
)

// Client wraps the Firestore and Auth clients with ledger-specific
// operations. It implements ledger.Store.
type Client struct {
	Firestore   *firestore.Client
	Auth        *auth.Client
	projectID   string
	collections config.Collections
}

// NewClient creates a new Firestore client for the given project.
func NewClient(ctx context.Context, projectID string, collections config.Collections) (*Client, error) {
	conf := &firebase.Config{ProjectID: projectID}

	// Application Default Credentials; an explicit credentials file can be
	// added here when running outside GCP.
	var opts []option.ClientOption

	app, err := firebase.NewApp(ctx, conf, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	firestoreClient, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		firestoreClient.Close()
		return nil, fmt.Errorf("failed to create Auth client: %w", err)
	}

	return &Client{
		Firestore:   firestoreClient,
		Auth:        authClient,
		projectID:   projectID,
		collections: collections,
	}, nil
}

// Close closes the Firestore client.
func (c *Client) Close() error {
	return c.Firestore.Close()
}

// AppendEntries appends the entries onto the owner's ledger document,
// creating it if absent. The read-modify-write runs inside a Firestore
// transaction so concurrent merges for the same owner serialize instead of
// losing entries. Duplicate entries are kept; the array is append-only.
func (c *Client) AppendEntries(ctx context.Context, ownerID string, entries []domain.LedgerEntry) (ledger.AppendResult, error) {
	var result ledger.AppendResult

	ref := c.Firestore.Collection(c.collections.Transactions).Doc(ownerID)
	err := c.Firestore.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		result = ledger.AppendResult{}

		snap, err := tx.Get(ref)
		if status.Code(err) == codes.NotFound {
			result.Created = true
			return tx.Create(ref, domain.Ledger{
				OwnerID:    ownerID,
				Entries:    entries,
				LastUpdate: time.Now().UTC(),
			})
		}
		if err != nil {
			return fmt.Errorf("failed to read ledger for %s: %w", ownerID, err)
		}

		var doc domain.Ledger
		if err := snap.DataTo(&doc); err != nil {
			return fmt.Errorf("failed to parse ledger for %s: %w", ownerID, err)
		}

		doc.OwnerID = ownerID
		doc.Entries = append(doc.Entries, entries...)
		doc.LastUpdate = time.Now().UTC()
		if err := tx.Set(ref, doc); err != nil {
			return err
		}
		result.Modified = len(entries) > 0
		return nil
	})
	if err != nil {
		return ledger.AppendResult{}, fmt.Errorf("failed to append to ledger for %s: %w", ownerID, err)
	}

	return result, nil
}

// Ledger retrieves the owner's full ledger document.
func (c *Client) Ledger(ctx context.Context, ownerID string) (*domain.Ledger, error) {
	snap, err := c.Firestore.Collection(c.collections.Transactions).Doc(ownerID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ledger.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger for %s: %w", ownerID, err)
	}

	var doc domain.Ledger
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse ledger for %s: %w", ownerID, err)
	}
	doc.OwnerID = ownerID
	return &doc, nil
}

// StoredDocument is an uploaded statement PDF kept for reprocessing.
type StoredDocument struct {
	ID         string    `firestore:"id"`
	OwnerID    string    `firestore:"sub"`
	Filename   string    `firestore:"filename"`
	Data       []byte    `firestore:"data"`
	Checksum   uint32    `firestore:"checksum"`
	UploadDate time.Time `firestore:"uploadDate"`
}

// NewStoredDocument creates a stored document with a fresh ID and a CRC32
// checksum of the raw bytes.
func NewStoredDocument(ownerID, filename string, data []byte) (*StoredDocument, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("owner ID is required")
	}
	if filename == "" {
		return nil, fmt.Errorf("filename is required")
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("document data cannot be empty")
	}

	return &StoredDocument{
		ID:         uuid.NewString(),
		OwnerID:    ownerID,
		Filename:   filename,
		Data:       data,
		Checksum:   crc32.ChecksumIEEE(data),
		UploadDate: time.Now().UTC(),
	}, nil
}

// Verify checks the stored bytes against the recorded checksum.
func (d *StoredDocument) Verify() error {
	if got := crc32.ChecksumIEEE(d.Data); got != d.Checksum {
		return fmt.Errorf("document %s failed checksum verification", d.ID)
	}
	return nil
}

// StoreDocument saves an uploaded statement document.
func (c *Client) StoreDocument(ctx context.Context, doc *StoredDocument) error {
	_, err := c.Firestore.Collection(c.collections.Documents).Doc(doc.ID).Set(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to store document %s: %w", doc.ID, err)
	}
	return nil
}

// Document retrieves a stored document, checking that it belongs to the
// owner. Returns ledger.ErrNotFound for missing documents and for documents
// owned by someone else.
func (c *Client) Document(ctx context.Context, ownerID, documentID string) (*StoredDocument, error) {
	snap, err := c.Firestore.Collection(c.collections.Documents).Doc(documentID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ledger.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read document %s: %w", documentID, err)
	}

	var doc StoredDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse document %s: %w", documentID, err)
	}
	if doc.OwnerID != ownerID {
		return nil, ledger.ErrNotFound
	}
	if err := doc.Verify(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Budget is a user's cumulative spending budget.
type Budget struct {
	OwnerID   string    `firestore:"sub"`
	Amount    float64   `firestore:"amount"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

// SetBudget stores the owner's budget amount.
func (c *Client) SetBudget(ctx context.Context, ownerID string, amount float64) error {
	if amount < 0 {
		return fmt.Errorf("budget amount must be non-negative, got %f", amount)
	}
	_, err := c.Firestore.Collection(c.collections.Budgets).Doc(ownerID).Set(ctx, Budget{
		OwnerID:   ownerID,
		Amount:    amount,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to set budget for %s: %w", ownerID, err)
	}
	return nil
}

// Budget retrieves the owner's budget, or ledger.ErrNotFound if none is set.
func (c *Client) Budget(ctx context.Context, ownerID string) (*Budget, error) {
	snap, err := c.Firestore.Collection(c.collections.Budgets).Doc(ownerID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ledger.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read budget for %s: %w", ownerID, err)
	}

	var budget Budget
	if err := snap.DataTo(&budget); err != nil {
		return nil, fmt.Errorf("failed to parse budget for %s: %w", ownerID, err)
	}
	return &budget, nil
}

// DeleteUserData removes the owner's ledger, budget, and stored documents.
// Missing documents are not an error.
func (c *Client) DeleteUserData(ctx context.Context, ownerID string) error {
	if _, err := c.Firestore.Collection(c.collections.Transactions).Doc(ownerID).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete ledger for %s: %w", ownerID, err)
	}
	if _, err := c.Firestore.Collection(c.collections.Budgets).Doc(ownerID).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete budget for %s: %w", ownerID, err)
	}

	iter := c.Firestore.Collection(c.collections.Documents).
		Where("sub", "==", ownerID).
		Documents(ctx)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to iterate documents for %s: %w", ownerID, err)
		}
		if _, err := snap.Ref.Delete(ctx); err != nil {
			return fmt.Errorf("failed to delete document %s: %w", snap.Ref.ID, err)
		}
	}

	return nil
}
