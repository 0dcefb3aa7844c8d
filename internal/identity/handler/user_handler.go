package handler

import (
	"errors"
	"log/slog"

	"github.com/centavo-ledger/internal/domain/user"
	"github.com/centavo-ledger/internal/httpapi"
	"github.com/centavo-ledger/internal/identity/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UserHandler handles HTTP requests for user management
type UserHandler struct {
	userService service.UserService
	logger      *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(logger *slog.Logger, userService service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// Register handles user registration, returning 409 on a duplicate email
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		httpapi.RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	u, err := h.userService.Register(c.Request.Context(), req.Email, req.FirstName, req.LastName, req.Password)
	if err != nil {
		var conflict user.ErrEmailConflict
		if errors.As(err, &conflict) {
			h.logger.Warn("Attempt to register duplicate email", "email", conflict.Email)
			httpapi.RespondConflict(c, "A user with this email already exists")
			return
		}
		h.logger.Error("Failed to register user", "error", err)
		httpapi.RespondInternalError(c)
		return
	}

	httpapi.RespondCreated(c, u.View())
}

// List returns all users as safe views
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list users", "error", err)
		httpapi.RespondInternalError(c)
		return
	}

	views := make([]user.View, 0, len(users))
	for _, u := range users {
		views = append(views, u.View())
	}
	httpapi.RespondOK(c, views)
}

// GetByID returns a single user; item access is restricted to the principal
func (h *UserHandler) GetByID(c *gin.Context) {
	id, ok := h.selfScopedID(c)
	if !ok {
		return
	}

	u, err := h.userService.GetByID(c.Request.Context(), id)
	if err != nil {
		var notFound user.ErrUserNotFound
		if errors.As(err, &notFound) {
			httpapi.RespondNotFound(c, "User not found")
			return
		}
		h.logger.Error("Failed to get user", "id", id, "error", err)
		httpapi.RespondInternalError(c)
		return
	}

	httpapi.RespondOK(c, u.View())
}

// Update applies a partial update to the principal's own record
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := h.selfScopedID(c)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		httpapi.RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	u, err := h.userService.Update(c.Request.Context(), id, service.UserUpdate{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		var notFound user.ErrUserNotFound
		if errors.As(err, &notFound) {
			httpapi.RespondNotFound(c, "User not found")
			return
		}
		var conflict user.ErrEmailConflict
		if errors.As(err, &conflict) {
			httpapi.RespondConflict(c, "A user with this email already exists")
			return
		}
		h.logger.Error("Failed to update user", "id", id, "error", err)
		httpapi.RespondInternalError(c)
		return
	}

	httpapi.RespondOK(c, u.View())
}

// Delete removes the principal's own record
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := h.selfScopedID(c)
	if !ok {
		return
	}

	if err := h.userService.Delete(c.Request.Context(), id); err != nil {
		var notFound user.ErrUserNotFound
		if errors.As(err, &notFound) {
			httpapi.RespondNotFound(c, "User not found")
			return
		}
		h.logger.Error("Failed to delete user", "id", id, "error", err)
		httpapi.RespondInternalError(c)
		return
	}

	httpapi.RespondNoContent(c)
}

// selfScopedID parses the :id parameter and enforces that it matches the
// authenticated principal. Writes the error response itself on failure.
func (h *UserHandler) selfScopedID(c *gin.Context) (uuid.UUID, bool) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid user ID", "id", idParam, "error", err)
		httpapi.RespondBadRequest(c, "Invalid user ID")
		return uuid.Nil, false
	}

	principal, ok := httpapi.GetPrincipal(c)
	if !ok {
		httpapi.RespondUnauthorized(c, "")
		return uuid.Nil, false
	}
	if principal != id {
		httpapi.RespondForbidden(c, "You may only access your own user record")
		return uuid.Nil, false
	}

	return id, true
}
