package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/freightlens/backend/internal/domain/models"
	"github.com/freightlens/backend/pkg/constants"
)

// UserRepository handles database operations for backend users
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// userColumns is the canonical select list for user rows.
const userColumns = "id, name, email, profile_id, customer_id, is_active, created_date, last_login_date"

// GetByEmail retrieves a user plus password hash by email. Returns nil
// without error when no user matches.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, string, error) {
	query := fmt.Sprintf("SELECT %s, password FROM %s WHERE %s = ? LIMIT 1",
		userColumns, constants.TableUser, constants.FieldEmail)

	var u models.User
	var password sql.NullString
	var createdRaw, lastLoginRaw interface{}

	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&u.ID, &u.Name, &u.Email, &u.ProfileID, &u.CustomerID, &u.IsActive,
		&createdRaw, &lastLoginRaw, &password,
	)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", err
	}

	u.CreatedAt = parseTime(createdRaw)
	if t := parseTime(lastLoginRaw); !t.IsZero() {
		u.LastLogin = &t
	}
	return &u, password.String, nil
}

// GetByID retrieves a user by id. Returns nil without error when missing.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? LIMIT 1",
		userColumns, constants.TableUser, constants.FieldID)

	var u models.User
	var createdRaw, lastLoginRaw interface{}

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&u.ID, &u.Name, &u.Email, &u.ProfileID, &u.CustomerID, &u.IsActive,
		&createdRaw, &lastLoginRaw,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	u.CreatedAt = parseTime(createdRaw)
	if t := parseTime(lastLoginRaw); !t.IsZero() {
		u.LastLogin = &t
	}
	return &u, nil
}

// ExistsByEmail reports whether a user with the email already exists.
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE %s = ?)",
		constants.TableUser, constants.FieldEmail)

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, email).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Insert creates a new user with a pre-hashed password.
func (r *UserRepository) Insert(ctx context.Context, u *models.User, passwordHash string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, email, password, profile_id, customer_id, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		constants.TableUser)

	_, err := r.db.ExecContext(ctx, query,
		u.ID, u.Name, u.Email, passwordHash, u.ProfileID, u.CustomerID, u.IsActive)
	return err
}

// Update modifies a user's name, profile, and active flag.
func (r *UserRepository) Update(ctx context.Context, u *models.User) error {
	query := fmt.Sprintf("UPDATE %s SET name = ?, profile_id = ?, is_active = ? WHERE id = ?",
		constants.TableUser)
	_, err := r.db.ExecContext(ctx, query, u.Name, u.ProfileID, u.IsActive, u.ID)
	return err
}

// UpdatePassword replaces a user's password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	query := fmt.Sprintf("UPDATE %s SET password = ? WHERE id = ?", constants.TableUser)
	_, err := r.db.ExecContext(ctx, query, passwordHash, id)
	return err
}

// TouchLastLogin records a successful login.
func (r *UserRepository) TouchLastLogin(ctx context.Context, id string) error {
	query := fmt.Sprintf("UPDATE %s SET last_login_date = NOW() WHERE id = ?", constants.TableUser)
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// Delete removes a user.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", constants.TableUser)
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// ListByCustomer returns all users for a customer.
func (r *UserRepository) ListByCustomer(ctx context.Context, customerID string) ([]*models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? ORDER BY name",
		userColumns, constants.TableUser, constants.FieldCustomerID)

	rows, err := r.db.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var u models.User
		var createdRaw, lastLoginRaw interface{}
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.ProfileID, &u.CustomerID, &u.IsActive,
			&createdRaw, &lastLoginRaw); err != nil {
			return nil, err
		}
		u.CreatedAt = parseTime(createdRaw)
		if t := parseTime(lastLoginRaw); !t.IsZero() {
			u.LastLogin = &t
		}
		users = append(users, &u)
	}
	return users, rows.Err()
}
