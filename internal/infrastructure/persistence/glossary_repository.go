package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/freightlens/backend/internal/domain/models"
	"github.com/freightlens/backend/pkg/constants"
)

// GlossaryRepository handles database operations for glossary terms
type GlossaryRepository struct {
	db *sql.DB
}

// NewGlossaryRepository creates a new GlossaryRepository
func NewGlossaryRepository(db *sql.DB) *GlossaryRepository {
	return &GlossaryRepository{db: db}
}

const glossaryColumns = "id, customer_id, term, definition, category, synonyms, created_date, last_modified_date"

// Insert persists a glossary term.
func (r *GlossaryRepository) Insert(ctx context.Context, t *models.GlossaryTerm) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, customer_id, term, definition, category, synonyms)
		VALUES (?, ?, ?, ?, ?, ?)`,
		constants.TableGlossaryTerm)

	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.CustomerID, t.Term, t.Definition, t.Category, marshalOrDefault(t.Synonyms, "[]"))
	return err
}

// Get retrieves a term by id. Returns nil without error when missing.
func (r *GlossaryRepository) Get(ctx context.Context, customerID, id string) (*models.GlossaryTerm, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE customer_id = ? AND id = ? LIMIT 1",
		glossaryColumns, constants.TableGlossaryTerm)

	row := r.db.QueryRowContext(ctx, query, customerID, id)
	t, err := scanTerm(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return t, err
}

// List returns all of a customer's glossary terms ordered by term.
func (r *GlossaryRepository) List(ctx context.Context, customerID string) ([]*models.GlossaryTerm, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE customer_id = ? ORDER BY term",
		glossaryColumns, constants.TableGlossaryTerm)

	rows, err := r.db.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var terms []*models.GlossaryTerm
	for rows.Next() {
		t, err := scanTerm(rows)
		if err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	return terms, rows.Err()
}

// Update replaces a term's definition, category, and synonyms.
func (r *GlossaryRepository) Update(ctx context.Context, t *models.GlossaryTerm) error {
	query := fmt.Sprintf(`
		UPDATE %s SET term = ?, definition = ?, category = ?, synonyms = ?
		WHERE customer_id = ? AND id = ?`,
		constants.TableGlossaryTerm)

	_, err := r.db.ExecContext(ctx, query,
		t.Term, t.Definition, t.Category, marshalOrDefault(t.Synonyms, "[]"), t.CustomerID, t.ID)
	return err
}

// Delete removes a term.
func (r *GlossaryRepository) Delete(ctx context.Context, customerID, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE customer_id = ? AND id = ?", constants.TableGlossaryTerm)
	_, err := r.db.ExecContext(ctx, query, customerID, id)
	return err
}

func scanTerm(row scannable) (*models.GlossaryTerm, error) {
	var t models.GlossaryTerm
	var synonymsJSON string
	var category sql.NullString
	var createdRaw, modifiedRaw interface{}

	err := row.Scan(&t.ID, &t.CustomerID, &t.Term, &t.Definition, &category,
		&synonymsJSON, &createdRaw, &modifiedRaw)
	if err != nil {
		return nil, err
	}

	if synonymsJSON != "" {
		if err := json.Unmarshal([]byte(synonymsJSON), &t.Synonyms); err != nil {
			return nil, fmt.Errorf("corrupt synonyms for term %s: %w", t.ID, err)
		}
	}
	t.Category = category.String
	t.CreatedAt = parseTime(createdRaw)
	t.UpdatedAt = parseTime(modifiedRaw)
	return &t, nil
}
