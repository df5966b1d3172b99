package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/freightlens/backend/internal/domain/models"
	"github.com/freightlens/backend/pkg/constants"
)

// DocumentRepository handles database operations for ingested documents
type DocumentRepository struct {
	db *sql.DB
}

// NewDocumentRepository creates a new DocumentRepository
func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

const documentColumns = "id, customer_id, filename, format, size_bytes, word_count, status, error, uploaded_by, created_date, last_modified_date"

// Insert persists a newly ingested document with its extracted text.
func (r *DocumentRepository) Insert(ctx context.Context, d *models.Document) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, customer_id, filename, format, size_bytes, word_count, extracted_text, status, uploaded_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		constants.TableDocument)

	_, err := r.db.ExecContext(ctx, query,
		d.ID, d.CustomerID, d.Filename, d.Format, d.SizeBytes, d.WordCount, d.Text, d.Status, d.UploadedBy)
	return err
}

// Get retrieves a document (metadata only, no text). Returns nil without
// error when missing.
func (r *DocumentRepository) Get(ctx context.Context, customerID, id string) (*models.Document, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE customer_id = ? AND id = ? LIMIT 1",
		documentColumns, constants.TableDocument)

	row := r.db.QueryRowContext(ctx, query, customerID, id)
	d, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return d, err
}

// GetText loads a document's extracted text for embedding dispatch.
func (r *DocumentRepository) GetText(ctx context.Context, id string) (string, error) {
	query := fmt.Sprintf("SELECT extracted_text FROM %s WHERE id = ? LIMIT 1", constants.TableDocument)
	var text sql.NullString
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&text); err != nil {
		return "", err
	}
	return text.String, nil
}

// List returns a customer's documents, newest first.
func (r *DocumentRepository) List(ctx context.Context, customerID string) ([]*models.Document, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE customer_id = ? ORDER BY created_date DESC",
		documentColumns, constants.TableDocument)

	rows, err := r.db.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// ListPending returns documents awaiting embedding, oldest first, so the
// scheduler drains the queue in upload order.
func (r *DocumentRepository) ListPending(ctx context.Context, limit int) ([]*models.Document, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE status = ? ORDER BY created_date LIMIT ?",
		documentColumns, constants.TableDocument)

	rows, err := r.db.QueryContext(ctx, query, constants.DocumentPending, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// SetStatus updates a document's ingestion status and error message.
func (r *DocumentRepository) SetStatus(ctx context.Context, id, status, errMsg string) error {
	query := fmt.Sprintf("UPDATE %s SET status = ?, error = ? WHERE id = ?", constants.TableDocument)
	_, err := r.db.ExecContext(ctx, query, status, nullable(errMsg), id)
	return err
}

// Delete removes a document.
func (r *DocumentRepository) Delete(ctx context.Context, customerID, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE customer_id = ? AND id = ?", constants.TableDocument)
	_, err := r.db.ExecContext(ctx, query, customerID, id)
	return err
}

func scanDocument(row scannable) (*models.Document, error) {
	var d models.Document
	var errMsg sql.NullString
	var createdRaw, modifiedRaw interface{}

	err := row.Scan(&d.ID, &d.CustomerID, &d.Filename, &d.Format, &d.SizeBytes,
		&d.WordCount, &d.Status, &errMsg, &d.UploadedBy, &createdRaw, &modifiedRaw)
	if err != nil {
		return nil, err
	}

	d.Error = errMsg.String
	d.CreatedAt = parseTime(createdRaw)
	d.UpdatedAt = parseTime(modifiedRaw)
	return &d, nil
}
