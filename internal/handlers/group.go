package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/study-tracker-api/internal/dto"
	apierrors "github.com/yukikurage/study-tracker-api/internal/errors"
	"github.com/yukikurage/study-tracker-api/internal/gamification"
	"github.com/yukikurage/study-tracker-api/internal/logger"
	"github.com/yukikurage/study-tracker-api/internal/middleware"
	"github.com/yukikurage/study-tracker-api/internal/services"
	"go.uber.org/zap"
)

// GroupHandler serves competitive study groups.
type GroupHandler struct {
	groupService *services.GroupService
	logger       *zap.Logger
}

// NewGroupHandler creates a new GroupHandler.
func NewGroupHandler(groupService *services.GroupService, log *zap.Logger) *GroupHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &GroupHandler{
		groupService: groupService,
		logger:       log,
	}
}

// CreateGroup creates a group with the current user as its first member
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	profile, ok := middleware.GetProfile(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateGroupRequest struct {
		Name string `json:"name" binding:"max=100"`
	}

	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	group, user, err := h.groupService.CreateGroup(c.Request.Context(), profile, req.Name)
	if err != nil {
		h.respondGroupError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.GroupMutationResponse{
		Group: dto.ToGroupDetailDTO(*group),
		User:  dto.ToUserDTO(*user),
	})
}

// JoinGroup adds the current user to the group holding an invite code
func (h *GroupHandler) JoinGroup(c *gin.Context) {
	profile, ok := middleware.GetProfile(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type JoinGroupRequest struct {
		InviteCode string `json:"invite_code"`
	}

	var req JoinGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	group, user, err := h.groupService.JoinGroup(c.Request.Context(), profile, req.InviteCode)
	if err != nil {
		h.respondGroupError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.GroupMutationResponse{
		Group: dto.ToGroupDetailDTO(*group),
		User:  dto.ToUserDTO(*user),
	})
}

// ListGroups returns the groups of the current user
func (h *GroupHandler) ListGroups(c *gin.Context) {
	profile, ok := middleware.GetProfile(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	groups, err := h.groupService.ListGroups(c.Request.Context(), profile)
	if err != nil {
		h.respondGroupError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"groups": dto.ToGroupDTOs(groups),
	})
}

// GetGroup returns a group with its roster
// Group is already loaded by RequireGroupMember middleware
func (h *GroupHandler) GetGroup(c *gin.Context) {
	group, exists := middleware.GetGroup(c)
	if !exists {
		apierrors.InternalError(c, "Group not found in context")
		return
	}

	c.JSON(http.StatusOK, dto.ToGroupDetailDTO(group))
}

// Leaderboard ranks the members of a group
// Group is already loaded by RequireGroupMember middleware
func (h *GroupHandler) Leaderboard(c *gin.Context) {
	group, exists := middleware.GetGroup(c)
	if !exists {
		apierrors.InternalError(c, "Group not found in context")
		return
	}

	c.JSON(http.StatusOK, dto.ToLeaderboardResponse(group, gamification.Leaderboard(group)))
}

func (h *GroupHandler) respondGroupError(c *gin.Context, err error) {
	if apierrors.Directory(c, err) {
		return
	}
	logger.FromContext(c.Request.Context(), h.logger).Error("group request failed", zap.Error(err))
	apierrors.InternalError(c, "Internal server error")
}
