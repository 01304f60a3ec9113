package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/study-tracker-api/internal/constants"
	apierrors "github.com/yukikurage/study-tracker-api/internal/errors"
	"github.com/yukikurage/study-tracker-api/internal/models"
	"github.com/yukikurage/study-tracker-api/internal/services"
)

// RequireGroupMember loads the group named by the id parameter. Only
// members may see a group; for anyone else it does not exist.
func RequireGroupMember(groupService *services.GroupService) gin.HandlerFunc {
	return func(c *gin.Context) {
		profile, ok := GetProfile(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		group, err := groupService.GetGroup(c.Request.Context(), profile, c.Param("id"))
		if err != nil {
			if errors.Is(err, services.ErrGroupNotFound) || errors.Is(err, services.ErrNotGroupMember) {
				apierrors.NotFound(c, "Group not found")
			} else {
				apierrors.InternalError(c, "Failed to load group")
			}
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyGroup, *group)
		c.Next()
	}
}

// GetGroup retrieves the group loaded by RequireGroupMember
func GetGroup(c *gin.Context) (models.Group, bool) {
	value, exists := c.Get(constants.ContextKeyGroup)
	if !exists {
		return models.Group{}, false
	}
	group, ok := value.(models.Group)
	return group, ok
}
