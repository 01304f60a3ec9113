package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/study-tracker-api/internal/constants"
	"github.com/yukikurage/study-tracker-api/internal/dto"
	apierrors "github.com/yukikurage/study-tracker-api/internal/errors"
	"github.com/yukikurage/study-tracker-api/internal/logger"
	"github.com/yukikurage/study-tracker-api/internal/middleware"
	"github.com/yukikurage/study-tracker-api/internal/models"
	"github.com/yukikurage/study-tracker-api/internal/services"
	"go.uber.org/zap"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
	workspaces  *services.Workspaces
	streaks     *services.StreakService
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler. The streak of the active user is
// evaluated at login, guest start and profile reads.
func NewAuthHandler(authService *services.AuthService, workspaces *services.Workspaces, streaks *services.StreakService, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{
		authService: authService,
		workspaces:  workspaces,
		streaks:     streaks,
		logger:      log,
	}
}

// Signup registers a new user and starts a session for them.
func (h *AuthHandler) Signup(c *gin.Context) {
	type SignupRequest struct {
		Email    string `json:"email" binding:"required,email"`
		Name     string `json:"name" binding:"required,max=100"`
		Password string `json:"password" binding:"required"`
	}

	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.authService.Signup(c.Request.Context(), services.SignupInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	if err := startUserSession(c, user.ID); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	c.JSON(http.StatusCreated, dto.ToUserDTO(*user))
}

// Login authenticates a user and initializes the session.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.authService.Login(c.Request.Context(), services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	h.endGuest(c)
	if err := startUserSession(c, user.ID); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	user = h.refreshStreak(c, services.Principal{UserID: user.ID}, user)
	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// StartGuest opens a guest workspace. Guests can track tasks and streaks
// but cannot create or join groups.
func (h *AuthHandler) StartGuest(c *gin.Context) {
	type GuestRequest struct {
		Name string `json:"name" binding:"max=100"`
	}

	var req GuestRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			apierrors.BadRequest(c, "Invalid request body")
			return
		}
	}

	h.endGuest(c)
	key, profile, err := h.authService.StartGuest(c.Request.Context(), req.Name)
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Clear()
	session.Set(constants.SessionKeyGuestKey, key)
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	profile = h.refreshStreak(c, services.Principal{GuestKey: key}, profile)
	c.JSON(http.StatusCreated, dto.ToUserDTO(*profile))
}

// Logout removes the authentication session. A guest's workspace is
// destroyed with it.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.endGuest(c)

	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to logout")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// GetCurrentUser returns the authenticated profile with the badge table.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	profile, exists := middleware.GetProfile(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	if principal, ok := middleware.GetPrincipal(c); ok {
		profile = h.refreshStreak(c, principal, profile)
	}

	c.JSON(http.StatusOK, gin.H{
		"user":   dto.ToUserDTO(*profile),
		"badges": dto.ToBadgeDTOs(*profile),
	})
}

func (h *AuthHandler) endGuest(c *gin.Context) {
	principal := middleware.PrincipalFromSession(sessions.Default(c))
	if !principal.IsGuest() {
		return
	}
	if err := h.authService.EndGuest(c.Request.Context(), principal.GuestKey); err != nil {
		logger.FromContext(c.Request.Context(), h.logger).Warn("failed to destroy guest workspace", zap.Error(err))
	}
}

// refreshStreak re-evaluates the streak of the principal that just became
// active. On failure the stored profile is returned unchanged.
func (h *AuthHandler) refreshStreak(c *gin.Context, p services.Principal, profile *models.User) *models.User {
	if h.streaks == nil || h.workspaces == nil {
		return profile
	}
	ws, err := h.workspaces.For(p)
	if err != nil {
		return profile
	}
	progress, err := h.streaks.Refresh(c.Request.Context(), ws)
	if err != nil {
		logger.FromContext(c.Request.Context(), h.logger).Warn("failed to refresh streak", zap.Error(err))
		return profile
	}
	return progress.Profile
}

func startUserSession(c *gin.Context, userID uint64) error {
	session := sessions.Default(c)
	session.Clear()
	session.Set(constants.SessionKeyUserID, userID)
	return session.Save()
}

func (h *AuthHandler) respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
	case errors.Is(err, services.ErrEmailRequired),
		errors.Is(err, services.ErrNameRequired):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrEmailTaken):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.InvalidCredentials(c, err.Error())
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrFailedToHashPassword),
		errors.Is(err, services.ErrFailedToCreateUser):
		logger.FromContext(c.Request.Context(), h.logger).Error("signup failed", zap.Error(err))
		apierrors.InternalError(c, "Failed to create user")
	default:
		logger.FromContext(c.Request.Context(), h.logger).Error("auth request failed", zap.Error(err))
		apierrors.InternalError(c, "Internal server error")
	}
}
