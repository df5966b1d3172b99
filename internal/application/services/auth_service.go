package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/freightlens/backend/internal/domain/models"
	"github.com/freightlens/backend/internal/infrastructure/persistence"
	"github.com/freightlens/backend/pkg/auth"
	"github.com/freightlens/backend/pkg/constants"
	apperrors "github.com/freightlens/backend/pkg/errors"
	"github.com/freightlens/backend/pkg/utils"
)

// AuthService handles authentication, session management, and user
// administration.
type AuthService struct {
	users    *persistence.UserRepository
	sessions *persistence.SessionRepository
}

// NewAuthService creates a new AuthService
func NewAuthService(users *persistence.UserRepository, sessions *persistence.SessionRepository) *AuthService {
	return &AuthService{users: users, sessions: sessions}
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	Token     string             `json:"token"`
	User      models.UserSession `json:"user"`
	ExpiresAt time.Time          `json:"expires_at"`
}

// Login authenticates a user and creates a session
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, passwordHash, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if user == nil {
		log.Printf("⚠️ Login failed for %s: user not found", email)
		return nil, apperrors.NewUnauthorizedError("Invalid email or password")
	}
	if !user.IsActive {
		return nil, apperrors.NewUnauthorizedError("Account is deactivated")
	}
	if passwordHash == "" {
		return nil, apperrors.NewUnauthorizedError("Password authentication not configured for this user")
	}
	if !auth.VerifyPassword(password, passwordHash) {
		log.Printf("⚠️ Login failed for %s: invalid password", email)
		return nil, apperrors.NewUnauthorizedError("Invalid email or password")
	}

	tokenSession := auth.UserSession{
		ID:         user.ID,
		Name:       user.Name,
		Email:      user.Email,
		ProfileID:  user.ProfileID,
		CustomerID: user.CustomerID,
	}

	token, err := auth.GenerateToken(tokenSession)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	claims, err := auth.DecodeToken(token)
	if err != nil {
		return nil, fmt.Errorf("failed to decode generated token: %w", err)
	}
	expiresAt := claims.ExpiresAt.Time

	if err := s.sessions.Insert(ctx, &persistence.Session{
		ID:           claims.RegisteredClaims.ID,
		UserID:       user.ID,
		Token:        token,
		ExpiresAt:    expiresAt,
		LastActivity: time.Now(),
	}); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	if err := s.users.TouchLastLogin(ctx, user.ID); err != nil {
		log.Printf("⚠️ Failed to record last login for %s: %v", user.ID, err)
	}

	log.Printf("🔐 User %s logged in", email)
	return &LoginResult{
		Token:     token,
		User:      sessionFromUser(user),
		ExpiresAt: expiresAt,
	}, nil
}

// ValidateSession checks the JWT signature and the session row's revocation
// state. Returns the caller identity the services operate on.
func (s *AuthService) ValidateSession(ctx context.Context, tokenString string) (*models.UserSession, error) {
	claims, err := auth.ValidateToken(tokenString)
	if err != nil {
		return nil, apperrors.NewUnauthorizedError("Invalid or expired token")
	}

	stored, err := s.sessions.Get(ctx, claims.RegisteredClaims.ID)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if stored == nil {
		return nil, apperrors.NewUnauthorizedError("Session not found")
	}
	if stored.IsRevoked {
		return nil, apperrors.NewUnauthorizedError("Session has been revoked")
	}
	if time.Now().After(stored.ExpiresAt) {
		return nil, apperrors.NewUnauthorizedError("Session has expired")
	}

	session := &models.UserSession{
		ID:         claims.User.ID,
		Name:       claims.User.Name,
		Email:      claims.User.Email,
		ProfileID:  claims.User.ProfileID,
		CustomerID: claims.User.CustomerID,
		IsAdmin:    claims.User.IsAdmin(),
	}
	return session, nil
}

// TouchSession records session activity. Failures are logged, not surfaced.
func (s *AuthService) TouchSession(ctx context.Context, tokenString string) {
	claims, err := auth.DecodeToken(tokenString)
	if err != nil {
		return
	}
	if err := s.sessions.Touch(ctx, claims.RegisteredClaims.ID); err != nil {
		log.Printf("⚠️ Failed to touch session %s: %v", claims.RegisteredClaims.ID, err)
	}
}

// Logout revokes the session behind a token.
func (s *AuthService) Logout(ctx context.Context, tokenString string) error {
	claims, err := auth.DecodeToken(tokenString)
	if err != nil {
		return apperrors.NewUnauthorizedError("Invalid token")
	}
	return s.sessions.Revoke(ctx, claims.RegisteredClaims.ID)
}

// ChangePassword verifies the current password before storing a new hash.
func (s *AuthService) ChangePassword(ctx context.Context, session *models.UserSession, current, next string) error {
	_, hash, err := s.users.GetByEmail(ctx, session.Email)
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if !auth.VerifyPassword(current, hash) {
		return apperrors.NewUnauthorizedError("Current password is incorrect")
	}
	if err := auth.ValidatePasswordStrength(next); err != nil {
		return apperrors.NewValidationError("password", err.Error())
	}

	newHash, err := auth.HashPassword(next)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, session.ID, newHash)
}

// CreateUserRequest is the admin payload for provisioning a user.
type CreateUserRequest struct {
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	ProfileID string `json:"profile_id" binding:"required"`
}

// CreateUser provisions a user inside the admin's customer partition.
func (s *AuthService) CreateUser(ctx context.Context, session *models.UserSession, req CreateUserRequest) (*models.User, error) {
	if !session.IsAdmin {
		return nil, apperrors.NewPermissionError("create", "user")
	}
	if !auth.IsValidEmail(req.Email) {
		return nil, apperrors.NewValidationError("email", "invalid email address")
	}
	if err := auth.ValidatePasswordStrength(req.Password); err != nil {
		return nil, apperrors.NewValidationError("password", err.Error())
	}

	exists, err := s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if exists {
		return nil, apperrors.NewConflictError("user", req.Email)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:         utils.GenerateID(),
		Name:       req.Name,
		Email:      req.Email,
		ProfileID:  req.ProfileID,
		CustomerID: session.CustomerID,
		IsActive:   true,
	}
	if err := s.users.Insert(ctx, user, hash); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Printf("👤 User %s created by %s", req.Email, session.Email)
	return user, nil
}

// UpdateUser edits name, profile, and active flag. Admin only, same
// customer partition.
func (s *AuthService) UpdateUser(ctx context.Context, session *models.UserSession, u *models.User) error {
	if !session.IsAdmin {
		return apperrors.NewPermissionError("update", "user")
	}
	existing, err := s.users.GetByID(ctx, u.ID)
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if existing == nil || existing.CustomerID != session.CustomerID {
		return apperrors.NewNotFoundError("user", u.ID)
	}
	return s.users.Update(ctx, u)
}

// DeleteUser removes a user. Admins cannot delete themselves.
func (s *AuthService) DeleteUser(ctx context.Context, session *models.UserSession, id string) error {
	if !session.IsAdmin {
		return apperrors.NewPermissionError("delete", "user")
	}
	if id == session.ID {
		return apperrors.NewValidationError("id", "cannot delete your own account")
	}
	existing, err := s.users.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if existing == nil || existing.CustomerID != session.CustomerID {
		return apperrors.NewNotFoundError("user", id)
	}
	return s.users.Delete(ctx, id)
}

// ListUsers returns the users in the admin's customer partition.
func (s *AuthService) ListUsers(ctx context.Context, session *models.UserSession) ([]*models.User, error) {
	if !session.IsAdmin {
		return nil, apperrors.NewPermissionError("list", "users")
	}
	return s.users.ListByCustomer(ctx, session.CustomerID)
}

// PurgeExpiredSessions deletes sessions past their expiry.
func (s *AuthService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.sessions.PurgeExpired(ctx)
}

func sessionFromUser(u *models.User) models.UserSession {
	return models.UserSession{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		ProfileID:  u.ProfileID,
		CustomerID: u.CustomerID,
		IsAdmin:    constants.IsAdmin(u.ProfileID),
	}
}
