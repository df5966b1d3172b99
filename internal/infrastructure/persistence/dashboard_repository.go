package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/freightlens/backend/internal/domain/models"
	"github.com/freightlens/backend/pkg/constants"
)

// DashboardRepository handles database operations for dashboards
type DashboardRepository struct {
	db *sql.DB
}

// NewDashboardRepository creates a new DashboardRepository
func NewDashboardRepository(db *sql.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

const dashboardColumns = "id, customer_id, name, description, layout, sections, visibility, created_by_id, created_date, last_modified_date"

// Insert persists a dashboard.
func (r *DashboardRepository) Insert(ctx context.Context, d *models.Dashboard) error {
	sectionsJSON := marshalOrDefault(d.Sections, "[]")

	query := fmt.Sprintf(`
		INSERT INTO %s (id, customer_id, name, description, layout, sections, visibility, created_by_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		constants.TableDashboard)

	_, err := r.db.ExecContext(ctx, query,
		d.ID, d.CustomerID, d.Name, d.Description, d.Layout, sectionsJSON, d.Visibility, d.CreatedByID)
	return err
}

// Get retrieves a dashboard by id. Returns nil without error when missing.
func (r *DashboardRepository) Get(ctx context.Context, customerID, id string) (*models.Dashboard, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE customer_id = ? AND id = ? LIMIT 1",
		dashboardColumns, constants.TableDashboard)

	row := r.db.QueryRowContext(ctx, query, customerID, id)
	d, err := scanDashboard(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return d, err
}

// List returns a customer's dashboards, admin-bucket ones only when asked.
func (r *DashboardRepository) List(ctx context.Context, customerID string, includeAdmin bool) ([]*models.Dashboard, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE customer_id = ?", dashboardColumns, constants.TableDashboard)
	args := []interface{}{customerID}
	if !includeAdmin {
		query += " AND visibility = ?"
		args = append(args, constants.VisibilityShared)
	}
	query += " ORDER BY name"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dashboards []*models.Dashboard
	for rows.Next() {
		d, err := scanDashboard(rows)
		if err != nil {
			return nil, err
		}
		dashboards = append(dashboards, d)
	}
	return dashboards, rows.Err()
}

// Update replaces a dashboard's mutable fields.
func (r *DashboardRepository) Update(ctx context.Context, d *models.Dashboard) error {
	sectionsJSON := marshalOrDefault(d.Sections, "[]")

	query := fmt.Sprintf(`
		UPDATE %s SET name = ?, description = ?, layout = ?, sections = ?, visibility = ?
		WHERE customer_id = ? AND id = ?`,
		constants.TableDashboard)

	_, err := r.db.ExecContext(ctx, query,
		d.Name, d.Description, d.Layout, sectionsJSON, d.Visibility, d.CustomerID, d.ID)
	return err
}

// Delete removes a dashboard.
func (r *DashboardRepository) Delete(ctx context.Context, customerID, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE customer_id = ? AND id = ?", constants.TableDashboard)
	_, err := r.db.ExecContext(ctx, query, customerID, id)
	return err
}

func scanDashboard(row scannable) (*models.Dashboard, error) {
	var d models.Dashboard
	var sectionsJSON string
	var description sql.NullString
	var createdRaw, modifiedRaw interface{}

	err := row.Scan(&d.ID, &d.CustomerID, &d.Name, &description, &d.Layout,
		&sectionsJSON, &d.Visibility, &d.CreatedByID, &createdRaw, &modifiedRaw)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(sectionsJSON), &d.Sections); err != nil {
		return nil, fmt.Errorf("corrupt dashboard sections for %s: %w", d.ID, err)
	}
	d.Description = description.String
	d.CreatedAt = parseTime(createdRaw)
	d.UpdatedAt = parseTime(modifiedRaw)
	return &d, nil
}
