package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/freightlens/backend/internal/application/services"
	"github.com/freightlens/backend/internal/domain/models"
	"github.com/freightlens/backend/pkg/auth"
	"github.com/freightlens/backend/pkg/constants"
	apperrors "github.com/freightlens/backend/pkg/errors"
)

type AuthHandler struct {
	svcMgr *services.ServiceManager
}

func NewAuthHandler(svcMgr *services.ServiceManager) *AuthHandler {
	return &AuthHandler{svcMgr: svcMgr}
}

// LoginRequest represents login request body
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !BindJSON(c, &req) {
		return
	}
	if !auth.IsValidEmail(req.Email) {
		RespondAppError(c, apperrors.NewValidationError("email", "invalid email format"))
		return
	}

	result, err := h.svcMgr.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"token":      result.Token,
		"user":       result.User,
		"expires_at": result.ExpiresAt.Format(time.RFC3339),
	})
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	tokenString, exists := c.Get(constants.ContextKeyToken)
	if !exists {
		RespondAppError(c, apperrors.NewUnauthorizedError("No token provided"))
		return
	}
	HandleDeleteEnvelope(c, "Logged out successfully", func() error {
		return h.svcMgr.Auth.Logout(c.Request.Context(), tokenString.(string))
	})
}

// GetMe handles GET /api/auth/me
func (h *AuthHandler) GetMe(c *gin.Context) {
	session := GetUserFromContext(c)
	if session == nil {
		RespondAppError(c, apperrors.NewUnauthorizedError("User not authenticated"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": session})
}

// ChangePasswordRequest represents the change password body
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// ChangePassword handles POST /api/auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	session := GetUserFromContext(c)

	var req ChangePasswordRequest
	if !BindJSON(c, &req) {
		return
	}

	if err := h.svcMgr.Auth.ChangePassword(c.Request.Context(), session, req.CurrentPassword, req.NewPassword); err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{constants.FieldMessage: "Password changed successfully"})
}

// ListUsers handles GET /api/users
func (h *AuthHandler) ListUsers(c *gin.Context) {
	session := GetUserFromContext(c)
	HandleGetEnvelope(c, "users", func() (interface{}, error) {
		return h.svcMgr.Auth.ListUsers(c.Request.Context(), session)
	})
}

// CreateUser handles POST /api/users
func (h *AuthHandler) CreateUser(c *gin.Context) {
	session := GetUserFromContext(c)

	var req services.CreateUserRequest
	if !BindJSON(c, &req) {
		return
	}

	user, err := h.svcMgr.Auth.CreateUser(c.Request.Context(), session, req)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{constants.FieldMessage: "User created", "user": user})
}

// UpdateUser handles PUT /api/users/:id
func (h *AuthHandler) UpdateUser(c *gin.Context) {
	session := GetUserFromContext(c)

	var user models.User
	if !BindJSON(c, &user) {
		return
	}
	user.ID = c.Param("id")

	if err := h.svcMgr.Auth.UpdateUser(c.Request.Context(), session, &user); err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{constants.FieldMessage: "User updated", "user": user})
}

// DeleteUser handles DELETE /api/users/:id
func (h *AuthHandler) DeleteUser(c *gin.Context) {
	session := GetUserFromContext(c)
	HandleDeleteEnvelope(c, "User deleted", func() error {
		return h.svcMgr.Auth.DeleteUser(c.Request.Context(), session, c.Param("id"))
	})
}
