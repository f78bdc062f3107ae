package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/fintrackr/backend/internal/domain"
	"github.com/fintrackr/backend/internal/firestore"
	"github.com/fintrackr/backend/internal/ledger"
	"github.com/fintrackr/backend/internal/middleware"
	"github.com/fintrackr/backend/internal/pipeline"
	"github.com/fintrackr/backend/internal/streaming"
)

// maxUploadSize caps statement uploads at 25MB.
const maxUploadSize = 25 << 20

// DocumentStore persists uploaded statement documents.
type DocumentStore interface {
	StoreDocument(ctx context.Context, doc *firestore.StoredDocument) error
	Document(ctx context.Context, ownerID, documentID string) (*firestore.StoredDocument, error)
}

// Runner executes an ingest run. *pipeline.Pipeline satisfies it.
type Runner interface {
	Run(ctx context.Context, ingestID, ownerID string, data []byte, password string) *domain.RunResult
}

// IngestHandlers handles statement upload and reprocessing requests.
type IngestHandlers struct {
	documents DocumentStore
	runner    Runner
	hub       *streaming.StreamHub
}

// NewIngestHandlers creates a new ingest handlers instance
func NewIngestHandlers(documents DocumentStore, runner Runner, hub *streaming.StreamHub) *IngestHandlers {
	return &IngestHandlers{
		documents: documents,
		runner:    runner,
		hub:       hub,
	}
}

// uploadResponse wraps a run result with the stored document ID so clients
// can reprocess later.
type uploadResponse struct {
	DocumentID string `json:"documentId,omitempty"`
	*domain.RunResult
}

// UploadPDF handles POST /api/upload-pdf. The document is stored first, so
// a failed run (wrong password, unparseable content) can be retried with
// ReprocessPDF without re-uploading.
func (h *IngestHandlers) UploadPDF(w http.ResponseWriter, r *http.Request) {
	authInfo, ok := middleware.GetAuth(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "No file uploaded", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize+1))
	if err != nil {
		log.Printf("ERROR: Failed to read upload from user %s: %v", authInfo.UserID, err)
		http.Error(w, "Failed to read file", http.StatusBadRequest)
		return
	}
	if len(data) > maxUploadSize {
		http.Error(w, "File too large", http.StatusRequestEntityTooLarge)
		return
	}

	doc, err := firestore.NewStoredDocument(authInfo.UserID, header.Filename, data)
	if err != nil {
		http.Error(w, "Invalid upload", http.StatusBadRequest)
		return
	}
	if err := h.documents.StoreDocument(r.Context(), doc); err != nil {
		log.Printf("ERROR: Failed to store document for user %s: %v", authInfo.UserID, err)
		http.Error(w, "Failed to store document", http.StatusInternalServerError)
		return
	}

	password := r.FormValue("password")
	result := h.runner.Run(r.Context(), doc.ID, authInfo.UserID, data, password)

	writeJSON(w, runStatusCode(result), uploadResponse{
		DocumentID: doc.ID,
		RunResult:  result,
	})
}

// reprocessRequest is the body of POST /api/reprocess-pdf.
type reprocessRequest struct {
	DocumentID string `json:"documentId"`
	Password   string `json:"password"`
}

// ReprocessPDF handles POST /api/reprocess-pdf. It reruns a previously
// uploaded document, typically with a password the first run was missing.
func (h *IngestHandlers) ReprocessPDF(w http.ResponseWriter, r *http.Request) {
	authInfo, ok := middleware.GetAuth(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req reprocessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.DocumentID == "" {
		http.Error(w, "documentId is required", http.StatusBadRequest)
		return
	}

	doc, err := h.documents.Document(r.Context(), authInfo.UserID, req.DocumentID)
	if errors.Is(err, ledger.ErrNotFound) {
		http.Error(w, "Document not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("ERROR: Failed to fetch document %s for user %s: %v", req.DocumentID, authInfo.UserID, err)
		http.Error(w, "Failed to fetch document", http.StatusInternalServerError)
		return
	}

	result := h.runner.Run(r.Context(), doc.ID, authInfo.UserID, doc.Data, req.Password)

	writeJSON(w, runStatusCode(result), uploadResponse{
		DocumentID: doc.ID,
		RunResult:  result,
	})
}

// runStatusCode maps a run result onto an HTTP status. Password failures
// are client errors; everything else that fails is a server error.
func runStatusCode(result *domain.RunResult) int {
	if result.Status == domain.StatusSuccess {
		return http.StatusOK
	}
	if result.Message == pipeline.IncorrectPasswordMessage {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Events handles GET /api/ingest/{id}/events, streaming run progress as
// Server-Sent Events.
func (h *IngestHandlers) Events(w http.ResponseWriter, r *http.Request) {
	ingestID := r.PathValue("id")

	if _, ok := middleware.GetAuth(r); !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	client := h.hub.Register(r.Context(), ingestID)
	defer h.hub.Unregister(ingestID, client)

	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			if err := writeSSE(w, streaming.NewHeartbeatEvent()); err != nil {
				return
			}
			flusher.Flush()
		case event, ok := <-client.Events:
			if !ok {
				return
			}
			if err := writeSSE(w, event); err != nil {
				return
			}
			flusher.Flush()
			// Terminal events close the stream
			if event.Type == streaming.EventTypeComplete || event.Type == streaming.EventTypeError {
				return
			}
		}
	}
}

func writeSSE(w io.Writer, event streaming.SSEEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, payload)
	return err
}
