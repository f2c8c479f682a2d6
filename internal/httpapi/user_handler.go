package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"meetingRoomBooking/internal/auth"
	"meetingRoomBooking/models"
	"meetingRoomBooking/repository"
)

// UserHandler serves the admin account-management endpoints. Every
// route here sits behind RequireAdmin.
type UserHandler struct {
	users repository.UserRepositoryI
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(users repository.UserRepositoryI) *UserHandler {
	return &UserHandler{users: users}
}

// List returns all accounts ordered by display name.
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		RespondError(c, NewAppError(http.StatusInternalServerError, "INTERNAL_ERROR", "could not list users", nil))
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

type createUserRequest struct {
	StudentID string `json:"student_id" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Password  string `json:"password" binding:"required"`
	Role      string `json:"role"`
}

// Create adds an account with an initial password the holder must
// change on first login.
func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, NewAppError(http.StatusBadRequest, "VALIDATION_ERROR", "student_id, name and password are required", nil))
		return
	}
	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	if role != models.RoleUser && role != models.RoleAdmin {
		RespondError(c, NewAppError(http.StatusBadRequest, "VALIDATION_ERROR", "role must be user or admin", nil))
		return
	}

	existing, err := h.users.GetByStudentID(c.Request.Context(), req.StudentID)
	if err != nil {
		RespondError(c, NewAppError(http.StatusInternalServerError, "INTERNAL_ERROR", "could not check existing accounts", nil))
		return
	}
	if existing != nil {
		RespondError(c, NewAppError(http.StatusConflict, "CONFLICT", "student id is already registered", nil))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		RespondError(c, NewAppError(http.StatusInternalServerError, "INTERNAL_ERROR", "could not secure password", nil))
		return
	}
	u, err := h.users.Create(c.Request.Context(), req.StudentID, req.Name, hash, role)
	if err != nil {
		// The unique index can still trip under concurrent creates.
		if errors.Is(err, repository.ErrDuplicateStudentID) {
			RespondError(c, NewAppError(http.StatusConflict, "CONFLICT", "student id is already registered", nil))
			return
		}
		RespondError(c, NewAppError(http.StatusInternalServerError, "INTERNAL_ERROR", "could not create user", nil))
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (h *UserHandler) targetID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		RespondError(c, NewAppError(http.StatusBadRequest, "VALIDATION_ERROR", "invalid user id", nil))
		return 0, false
	}
	return id, true
}

// Delete removes an account and, via the FK cascade, all its bookings.
// Admins cannot delete their own account.
func (h *UserHandler) Delete(c *gin.Context) {
	p, _ := PrincipalFrom(c)
	id, ok := h.targetID(c)
	if !ok {
		return
	}
	if id == p.UserID {
		RespondError(c, NewAppError(http.StatusBadRequest, "VALIDATION_ERROR", "cannot delete the currently signed-in admin", nil))
		return
	}
	found, err := h.users.Delete(c.Request.Context(), id)
	if err != nil {
		RespondError(c, NewAppError(http.StatusInternalServerError, "INTERNAL_ERROR", "could not delete user", nil))
		return
	}
	if !found {
		RespondError(c, NewAppError(http.StatusNotFound, "NOT_FOUND", "user not found", nil))
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

type updateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// UpdateRole changes an account's role. Admins cannot demote themselves.
func (h *UserHandler) UpdateRole(c *gin.Context) {
	p, _ := PrincipalFrom(c)
	id, ok := h.targetID(c)
	if !ok {
		return
	}
	var req updateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil ||
		(req.Role != models.RoleUser && req.Role != models.RoleAdmin) {
		RespondError(c, NewAppError(http.StatusBadRequest, "VALIDATION_ERROR", "role must be user or admin", nil))
		return
	}
	if id == p.UserID && req.Role == models.RoleUser {
		RespondError(c, NewAppError(http.StatusBadRequest, "VALIDATION_ERROR", "an admin cannot demote their own account", nil))
		return
	}

	target, err := h.users.GetByID(c.Request.Context(), id)
	if err != nil {
		RespondError(c, NewAppError(http.StatusInternalServerError, "INTERNAL_ERROR", "could not load user", nil))
		return
	}
	if target == nil {
		RespondError(c, NewAppError(http.StatusNotFound, "NOT_FOUND", "user not found", nil))
		return
	}
	if err := h.users.UpdateRole(c.Request.Context(), id, req.Role); err != nil {
		RespondError(c, NewAppError(http.StatusInternalServerError, "INTERNAL_ERROR", "could not update role", nil))
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "role": req.Role})
}

// ResetPassword issues a temporary password for an account and forces a
// change on next login. The temporary password is returned exactly once
// for the admin to pass along.
func (h *UserHandler) ResetPassword(c *gin.Context) {
	id, ok := h.targetID(c)
	if !ok {
		return
	}
	target, err := h.users.GetByID(c.Request.Context(), id)
	if err != nil {
		RespondError(c, NewAppError(http.StatusInternalServerError, "INTERNAL_ERROR", "could not load user", nil))
		return
	}
	if target == nil {
		RespondError(c, NewAppError(http.StatusNotFound, "NOT_FOUND", "user not found", nil))
		return
	}

	temp, err := auth.GenerateTempPassword(10)
	if err != nil {
		RespondError(c, NewAppError(http.StatusInternalServerError, "INTERNAL_ERROR", "could not generate password", nil))
		return
	}
	hash, err := auth.HashPassword(temp)
	if err != nil {
		RespondError(c, NewAppError(http.StatusInternalServerError, "INTERNAL_ERROR", "could not secure password", nil))
		return
	}
	if err := h.users.ResetPassword(c.Request.Context(), id, hash); err != nil {
		RespondError(c, NewAppError(http.StatusInternalServerError, "INTERNAL_ERROR", "could not reset password", nil))
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "temporary_password": temp})
}
