package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/freightlens/backend/internal/domain/models"
	"github.com/freightlens/backend/pkg/constants"
)

// WidgetRepository handles database operations for published widgets
type WidgetRepository struct {
	db *sql.DB
}

// NewWidgetRepository creates a new WidgetRepository
func NewWidgetRepository(db *sql.DB) *WidgetRepository {
	return &WidgetRepository{db: db}
}

const widgetColumns = "id, customer_id, name, description, config, visibility, dashboard_id, section, created_by_id, created_date, last_modified_date"

// Insert persists a published widget. The configuration is stored as an
// opaque JSON document.
func (r *WidgetRepository) Insert(ctx context.Context, w *models.Widget) error {
	configJSON, err := json.Marshal(w.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal widget config: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, customer_id, name, description, config, visibility, dashboard_id, section, created_by_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		constants.TableWidget)

	_, err = r.db.ExecContext(ctx, query,
		w.ID, w.CustomerID, w.Name, w.Description, string(configJSON),
		w.Visibility, nullable(w.DashboardID), nullable(w.Section), w.CreatedByID)
	return err
}

// Get retrieves a widget by id within a customer partition. Returns nil
// without error when missing.
func (r *WidgetRepository) Get(ctx context.Context, customerID, id string) (*models.Widget, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE customer_id = ? AND id = ? LIMIT 1",
		widgetColumns, constants.TableWidget)

	row := r.db.QueryRowContext(ctx, query, customerID, id)
	w, err := scanWidget(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return w, err
}

// List returns a customer's widgets. Admin-bucket widgets are included only
// when includeAdmin is set; non-privileged viewers must never see them.
func (r *WidgetRepository) List(ctx context.Context, customerID string, includeAdmin bool) ([]*models.Widget, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE customer_id = ?", widgetColumns, constants.TableWidget)
	args := []interface{}{customerID}
	if !includeAdmin {
		query += " AND visibility = ?"
		args = append(args, constants.VisibilityShared)
	}
	query += " ORDER BY last_modified_date DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var widgets []*models.Widget
	for rows.Next() {
		w, err := scanWidget(rows)
		if err != nil {
			return nil, err
		}
		widgets = append(widgets, w)
	}
	return widgets, rows.Err()
}

// Update replaces a widget's name, description, config, and visibility.
func (r *WidgetRepository) Update(ctx context.Context, w *models.Widget) error {
	configJSON, err := json.Marshal(w.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal widget config: %w", err)
	}

	query := fmt.Sprintf(`
		UPDATE %s SET name = ?, description = ?, config = ?, visibility = ?, dashboard_id = ?, section = ?
		WHERE customer_id = ? AND id = ?`,
		constants.TableWidget)

	_, err = r.db.ExecContext(ctx, query,
		w.Name, w.Description, string(configJSON), w.Visibility,
		nullable(w.DashboardID), nullable(w.Section), w.CustomerID, w.ID)
	return err
}

// Delete removes a widget.
func (r *WidgetRepository) Delete(ctx context.Context, customerID, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE customer_id = ? AND id = ?", constants.TableWidget)
	_, err := r.db.ExecContext(ctx, query, customerID, id)
	return err
}

// scannable is satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...interface{}) error
}

func scanWidget(row scannable) (*models.Widget, error) {
	var w models.Widget
	var configJSON string
	var description, dashboardID, section sql.NullString
	var createdRaw, modifiedRaw interface{}

	err := row.Scan(&w.ID, &w.CustomerID, &w.Name, &description, &configJSON,
		&w.Visibility, &dashboardID, &section, &w.CreatedByID, &createdRaw, &modifiedRaw)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(configJSON), &w.Config); err != nil {
		return nil, fmt.Errorf("corrupt widget config for %s: %w", w.ID, err)
	}
	w.Description = description.String
	w.DashboardID = dashboardID.String
	w.Section = section.String
	w.CreatedAt = parseTime(createdRaw)
	w.UpdatedAt = parseTime(modifiedRaw)
	return &w, nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
