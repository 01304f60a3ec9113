package middleware

import (
	"errors"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/study-tracker-api/internal/constants"
	apierrors "github.com/yukikurage/study-tracker-api/internal/errors"
	"github.com/yukikurage/study-tracker-api/internal/models"
	"github.com/yukikurage/study-tracker-api/internal/services"
)

// RequireAuth resolves the session to a principal, its workspace and its
// profile. Sessions pointing at a deleted user or an expired guest
// workspace are cleared.
func RequireAuth(workspaces *services.Workspaces) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		principal := PrincipalFromSession(session)
		if !principal.Valid() {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		ws, err := workspaces.For(principal)
		if err != nil {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		profile, err := ws.Profile(c.Request.Context())
		if err != nil {
			if errors.Is(err, services.ErrUserNotFound) || errors.Is(err, services.ErrGuestSessionNotFound) {
				session.Clear()
				_ = session.Save()
				apierrors.Unauthorized(c, "Session expired")
			} else {
				apierrors.InternalError(c, "Failed to load profile")
			}
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyPrincipal, principal)
		c.Set(constants.ContextKeyWorkspace, ws)
		c.Set(constants.ContextKeyProfile, profile)
		c.Next()
	}
}

// PrincipalFromSession reads the registered user or guest key from session.
func PrincipalFromSession(session sessions.Session) services.Principal {
	var p services.Principal
	if key, ok := session.Get(constants.SessionKeyGuestKey).(string); ok {
		p.GuestKey = key
	}
	if p.GuestKey == "" {
		p.UserID = toUint64(session.Get(constants.SessionKeyUserID))
	}
	return p
}

// GetPrincipal retrieves the current principal from context
func GetPrincipal(c *gin.Context) (services.Principal, bool) {
	value, exists := c.Get(constants.ContextKeyPrincipal)
	if !exists {
		return services.Principal{}, false
	}
	p, ok := value.(services.Principal)
	return p, ok && p.Valid()
}

// GetWorkspace retrieves the current workspace from context
func GetWorkspace(c *gin.Context) (services.Workspace, bool) {
	value, exists := c.Get(constants.ContextKeyWorkspace)
	if !exists {
		return nil, false
	}
	ws, ok := value.(services.Workspace)
	return ws, ok
}

// GetProfile retrieves the profile loaded by RequireAuth
func GetProfile(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(constants.ContextKeyProfile)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok && user != nil
}

func toUint64(value any) uint64 {
	switch v := value.(type) {
	case uint64:
		return v
	case uint:
		return uint64(v)
	case int:
		if v < 0 {
			return 0
		}
		return uint64(v)
	case int64:
		if v < 0 {
			return 0
		}
		return uint64(v)
	default:
		return 0
	}
}
