package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tOgg1/weaver/internal/models"
)

// ErrDocumentNotFound is returned when no document has the requested id.
var ErrDocumentNotFound = errors.New("document not found")

// DocumentRepository handles library document persistence.
type DocumentRepository struct {
	db *DB
}

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(db *DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Save inserts doc, or replaces the stored copy when doc.ID already exists.
// CreatedAt is kept across replacements.
func (r *DocumentRepository) Save(ctx context.Context, doc *models.LibraryDocument) error {
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("invalid document: %w", err)
	}

	return r.db.TransactionWithRetry(ctx, DefaultRetryPolicy(), func(tx *sql.Tx) error {
		now := time.Now().UTC()

		if doc.ID != "" {
			var createdAt string
			err := tx.QueryRowContext(ctx, `SELECT created_at FROM documents WHERE id = ?`, doc.ID).Scan(&createdAt)
			switch {
			case err == nil:
				_, err = tx.ExecContext(ctx, `
					UPDATE documents SET name = ?, kind = ?, drafts = ?, data = ?, updated_at = ?
					WHERE id = ?
				`, doc.Name, string(doc.Kind), doc.Drafts, doc.Data, now.Format(time.RFC3339), doc.ID)
				if err != nil {
					return fmt.Errorf("failed to update document: %w", err)
				}
				if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
					doc.CreatedAt = t
				}
				doc.UpdatedAt = now
				return nil
			case !errors.Is(err, sql.ErrNoRows):
				return fmt.Errorf("failed to look up document: %w", err)
			}
		} else {
			doc.ID = uuid.New().String()
		}

		doc.CreatedAt = now
		doc.UpdatedAt = now
		_, err := tx.ExecContext(ctx, `
			INSERT INTO documents (id, name, kind, drafts, data, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			doc.ID,
			doc.Name,
			string(doc.Kind),
			doc.Drafts,
			doc.Data,
			doc.CreatedAt.Format(time.RFC3339),
			doc.UpdatedAt.Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("failed to insert document: %w", err)
		}
		return nil
	})
}

// Get retrieves a document, including its data, by ID.
func (r *DocumentRepository) Get(ctx context.Context, id string) (*models.LibraryDocument, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, kind, drafts, data, created_at, updated_at
		FROM documents WHERE id = ?
	`, id)

	var doc models.LibraryDocument
	var kind, createdAt, updatedAt string
	err := row.Scan(&doc.ID, &doc.Name, &kind, &doc.Drafts, &doc.Data, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to scan document: %w", err)
	}
	doc.Kind = models.DocumentKind(kind)
	parseTimes(&doc, createdAt, updatedAt)
	return &doc, nil
}

// List retrieves document metadata, most recently updated first. Data is
// not loaded.
func (r *DocumentRepository) List(ctx context.Context, limit int) ([]*models.LibraryDocument, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, kind, drafts, created_at, updated_at
		FROM documents
		ORDER BY updated_at DESC, name
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []*models.LibraryDocument
	for rows.Next() {
		var doc models.LibraryDocument
		var kind, createdAt, updatedAt string
		if err := rows.Scan(&doc.ID, &doc.Name, &kind, &doc.Drafts, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		doc.Kind = models.DocumentKind(kind)
		parseTimes(&doc, createdAt, updatedAt)
		docs = append(docs, &doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating documents: %w", err)
	}

	return docs, nil
}

// Delete removes a document by ID.
func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return requireAffected(result, ErrDocumentNotFound)
}

// Count returns the number of stored documents.
func (r *DocumentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return count, nil
}

func parseTimes(doc *models.LibraryDocument, createdAt, updatedAt string) {
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		doc.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, updatedAt); err == nil {
		doc.UpdatedAt = t
	}
}
