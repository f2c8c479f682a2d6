package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"meetingRoomBooking/internal/auth"
	"meetingRoomBooking/internal/config"
	"meetingRoomBooking/repository"
)

// AuthHandler serves login and password changes.
type AuthHandler struct {
	users repository.UserRepositoryI
	cfg   *config.Config
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(users repository.UserRepositoryI, cfg *config.Config) *AuthHandler {
	return &AuthHandler{users: users, cfg: cfg}
}

type loginRequest struct {
	StudentID string `json:"student_id" binding:"required"`
	Password  string `json:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken        string `json:"access_token"`
	TokenType          string `json:"token_type"`
	ExpiresIn          int64  `json:"expires_in"`
	Name               string `json:"name"`
	Role               string `json:"role"`
	MustChangePassword bool   `json:"must_change_password"`
}

// Login authenticates by student id and password and issues a session
// token. The response flags accounts that must rotate their password
// before doing anything else.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, NewAppError(http.StatusBadRequest, "VALIDATION_ERROR", "student_id and password are required", nil))
		return
	}

	u, err := h.users.GetByStudentID(c.Request.Context(), req.StudentID)
	if err != nil {
		RespondError(c, NewAppError(http.StatusInternalServerError, "INTERNAL_ERROR", "could not look up account", nil))
		return
	}
	if u == nil || !auth.VerifyPassword(u.PasswordHash, req.Password) {
		RespondError(c, NewAppError(http.StatusUnauthorized, "UNAUTHORIZED", "wrong student id or password", nil))
		return
	}

	tok, err := auth.GenerateToken(u, h.cfg.Auth.JWTSecret, h.cfg.Auth.JWTExpiry)
	if err != nil {
		RespondError(c, NewAppError(http.StatusInternalServerError, "INTERNAL_ERROR", "could not issue token", nil))
		return
	}
	c.JSON(http.StatusOK, tokenResponse{
		AccessToken:        tok,
		TokenType:          "Bearer",
		ExpiresIn:          int64(h.cfg.Auth.JWTExpiry.Seconds()),
		Name:               u.Name,
		Role:               u.Role,
		MustChangePassword: u.MustChangePassword,
	})
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ChangePassword verifies the old password, stores the new hash, clears
// the forced-change flag, and issues a fresh token reflecting it.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	p, ok := PrincipalFrom(c)
	if !ok {
		RespondError(c, NewAppError(http.StatusUnauthorized, "UNAUTHORIZED", "missing principal", nil))
		return
	}
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, NewAppError(http.StatusBadRequest, "VALIDATION_ERROR", "old_password and new_password are required", nil))
		return
	}
	if len(req.NewPassword) < auth.MinPasswordLen {
		RespondError(c, NewAppError(http.StatusBadRequest, "VALIDATION_ERROR", "new password must be at least 6 characters", nil))
		return
	}

	u, err := h.users.GetByID(c.Request.Context(), p.UserID)
	if err != nil || u == nil {
		RespondError(c, NewAppError(http.StatusUnauthorized, "UNAUTHORIZED", "account no longer exists", nil))
		return
	}
	if !auth.VerifyPassword(u.PasswordHash, req.OldPassword) {
		RespondError(c, NewAppError(http.StatusUnauthorized, "UNAUTHORIZED", "old password is incorrect", nil))
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		RespondError(c, NewAppError(http.StatusInternalServerError, "INTERNAL_ERROR", "could not secure password", nil))
		return
	}
	if err := h.users.UpdatePassword(c.Request.Context(), u.ID, hash); err != nil {
		RespondError(c, NewAppError(http.StatusInternalServerError, "INTERNAL_ERROR", "could not update password", nil))
		return
	}

	u.MustChangePassword = false
	tok, err := auth.GenerateToken(u, h.cfg.Auth.JWTSecret, h.cfg.Auth.JWTExpiry)
	if err != nil {
		RespondError(c, NewAppError(http.StatusInternalServerError, "INTERNAL_ERROR", "could not issue token", nil))
		return
	}
	c.JSON(http.StatusOK, tokenResponse{
		AccessToken: tok,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.cfg.Auth.JWTExpiry.Seconds()),
		Name:        u.Name,
		Role:        u.Role,
	})
}
