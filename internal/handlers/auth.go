// Package handlers contains HTTP request handlers for the user service.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GunarsK-portfolio/user-service/internal/metrics"
	"github.com/GunarsK-portfolio/user-service/internal/middleware"
	"github.com/GunarsK-portfolio/user-service/internal/service"
)

const (
	msgMissingFields      = "Missing required fields"
	msgEmailExists        = "Email exists already"
	msgInvalidCredentials = "Invalid email or password"
)

// AuthHandler handles registration, login and logout requests.
type AuthHandler struct {
	authService service.AuthService
	recorder    AuthEventRecorder
	logger      *slog.Logger
}

// NewAuthHandler creates a new AuthHandler instance. recorder and logger may
// be nil.
func NewAuthHandler(authService service.AuthService, recorder AuthEventRecorder, logger *slog.Logger) *AuthHandler {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &AuthHandler{
		authService: authService,
		recorder:    recorder,
		logger:      orDefaultLogger(logger),
	}
}

// RegisterRequest represents the registration payload.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account and returns a token for it.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.recorder.RecordAuthEvent("register", metrics.OutcomeRejected)
		respondError(c, http.StatusBadRequest, msgMissingFields)
		return
	}

	result, err := h.authService.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrMissingFields):
		h.recorder.RecordAuthEvent("register", metrics.OutcomeRejected)
		respondError(c, http.StatusBadRequest, msgMissingFields)
		return
	case errors.Is(err, service.ErrEmailTaken):
		h.recorder.RecordAuthEvent("register", metrics.OutcomeRejected)
		respondError(c, http.StatusUnauthorized, msgEmailExists)
		return
	case errors.Is(err, service.ErrPasswordTooLong):
		h.recorder.RecordAuthEvent("register", metrics.OutcomeRejected)
		respondError(c, http.StatusBadRequest, "Password too long")
		return
	default:
		h.recorder.RecordAuthEvent("register", metrics.OutcomeError)
		logAndRespondError(c, h.logger, http.StatusInternalServerError, err, "Failed to create user")
		return
	}

	h.recorder.RecordAuthEvent("register", metrics.OutcomeSuccess)
	c.JSON(http.StatusCreated, result)
}

// Login exchanges an email and password for a token. Unknown emails and
// wrong passwords get the same response.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.recorder.RecordAuthEvent("login", metrics.OutcomeRejected)
		respondError(c, http.StatusUnauthorized, msgInvalidCredentials)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.recorder.RecordAuthEvent("login", metrics.OutcomeRejected)
			h.logger.InfoContext(c.Request.Context(), "login rejected", "client_ip", c.ClientIP())
			respondError(c, http.StatusUnauthorized, msgInvalidCredentials)
			return
		}
		h.recorder.RecordAuthEvent("login", metrics.OutcomeError)
		logAndRespondError(c, h.logger, http.StatusInternalServerError, err, "Failed to login user")
		return
	}

	h.recorder.RecordAuthEvent("login", metrics.OutcomeSuccess)
	c.JSON(http.StatusOK, result)
}

// Logout revokes the bearer token the request was admitted with.
func (h *AuthHandler) Logout(c *gin.Context) {
	token := middleware.TokenFromContext(c)
	if token == "" {
		respondError(c, http.StatusUnauthorized, "invalid token")
		return
	}

	if err := h.authService.Logout(c.Request.Context(), token); err != nil {
		if errors.Is(err, service.ErrRevocationDisabled) {
			respondError(c, http.StatusNotImplemented, "logout is not enabled")
			return
		}
		h.recorder.RecordAuthEvent("logout", metrics.OutcomeError)
		logAndRespondError(c, h.logger, http.StatusInternalServerError, err, "logout failed")
		return
	}

	h.recorder.RecordAuthEvent("logout", metrics.OutcomeSuccess)
	c.JSON(http.StatusOK, gin.H{"message": "logged out successfully"})
}
