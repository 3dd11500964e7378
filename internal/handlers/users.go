package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GunarsK-portfolio/user-service/internal/middleware"
	"github.com/GunarsK-portfolio/user-service/internal/models"
	"github.com/GunarsK-portfolio/user-service/internal/repository"
	"github.com/GunarsK-portfolio/user-service/internal/service"
)

// UserHandler serves user record requests.
type UserHandler struct {
	userService service.UserService
	logger      *slog.Logger
}

// NewUserHandler creates a new UserHandler instance.
func NewUserHandler(userService service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      orDefaultLogger(logger),
	}
}

// CreateUserRequest is the payload for creating a user without credentials.
type CreateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UpdateUserRequest is the payload for a partial user update.
type UpdateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context())
	if err != nil {
		logAndRespondError(c, h.logger, http.StatusInternalServerError, err, "Failed to fetch users")
		return
	}
	if users == nil {
		users = []models.User{}
	}
	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, msgMissingFields)
		return
	}

	user, err := h.userService.Create(c.Request.Context(), req.Name, req.Email)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, user)
	case errors.Is(err, service.ErrMissingFields):
		respondError(c, http.StatusBadRequest, msgMissingFields)
	case errors.Is(err, repository.ErrEmailTaken):
		respondError(c, http.StatusConflict, msgEmailExists)
	default:
		logAndRespondError(c, h.logger, http.StatusInternalServerError, err, "Failed to create user")
	}
}

func (h *UserHandler) Get(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		return
	}

	user, err := h.userService.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			respondError(c, http.StatusNotFound, "User not found")
			return
		}
		logAndRespondError(c, h.logger, http.StatusInternalServerError, err, "Failed to fetch user")
		return
	}
	c.JSON(http.StatusOK, user)
}

// Update patches a user. The caller must be the user or an admin.
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		return
	}

	callerID, ok := middleware.UserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "invalid token")
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.userService.Update(c.Request.Context(), callerID, id, models.UserPatch{
		Name:  req.Name,
		Email: req.Email,
	})
	switch {
	case err == nil:
		c.JSON(http.StatusOK, user)
	case errors.Is(err, service.ErrForbidden):
		respondError(c, http.StatusForbidden, "Forbidden")
	case errors.Is(err, repository.ErrUserNotFound):
		respondError(c, http.StatusNotFound, "User not found")
	case errors.Is(err, repository.ErrEmailTaken):
		respondError(c, http.StatusConflict, msgEmailExists)
	default:
		logAndRespondError(c, h.logger, http.StatusInternalServerError, err, "Failed to update user")
	}
}

func parseUserID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "Invalid user id")
		return 0, false
	}
	return id, true
}
