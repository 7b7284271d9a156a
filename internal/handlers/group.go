package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/nudgr/delegation-api/internal/errors"
	"github.com/nudgr/delegation-api/internal/middleware"
	"github.com/nudgr/delegation-api/internal/models"
	"github.com/nudgr/delegation-api/internal/services"
)

// GroupHandler exposes the hierarchy engine over HTTP.
type GroupHandler struct {
	hierarchyService *services.HierarchyService
}

// NewGroupHandler creates a new GroupHandler.
func NewGroupHandler(hierarchyService *services.HierarchyService) *GroupHandler {
	return &GroupHandler{
		hierarchyService: hierarchyService,
	}
}

// CreateGroup creates a group with the caller as its level-1 member.
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateGroupRequest struct {
		Name string `json:"name" binding:"required"`
	}

	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Group name is required")
		return
	}

	group, err := h.hierarchyService.CreateGroup(req.Name, userID)
	if err != nil {
		respondHierarchyError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Group created successfully",
		"data":    group,
	})
}

// GetAllGroups returns the caller's groups with their delegation trees
// expanded and each member's tasks attached.
func (h *GroupHandler) GetAllGroups(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	groups, err := h.hierarchyService.GetAllGroupsForUser(userID)
	if err != nil {
		respondHierarchyError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Groups fetched successfully",
		"Data":    groups,
	})
}

// GetGroupLevelWise returns the caller's subtree of each group flattened to a
// level-annotated user list.
func (h *GroupHandler) GetGroupLevelWise(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	levels, err := h.hierarchyService.GetGroupLevelWise(userID)
	if err != nil {
		respondHierarchyError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Group levels fetched successfully",
		"Data":    levels,
	})
}

// DeleteGroup deletes a group; only its level-1 member may do so.
func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	groupID, err := strconv.ParseUint(c.Param("groupId"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid group ID")
		return
	}

	if err := h.hierarchyService.DeleteGroup(groupID, userID); err != nil {
		respondHierarchyError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Group deleted successfully",
	})
}

// CreateSubUser grafts an existing user one level below a parent member.
func (h *GroupHandler) CreateSubUser(c *gin.Context) {
	if _, exists := middleware.GetUserID(c); !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateSubUserRequest struct {
		ParentID uint64            `json:"parentId" binding:"required"`
		UserID   uint64            `json:"userId" binding:"required"`
		GroupID  uint64            `json:"groupId" binding:"required"`
		Role     models.MemberRole `json:"role"`
	}

	var req CreateSubUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "parentId, userId and groupId are required")
		return
	}

	edge, member, err := h.hierarchyService.CreateSubUser(req.ParentID, req.UserID, req.GroupID, req.Role)
	if err != nil {
		respondHierarchyError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Sub-user created successfully",
		"data": gin.H{
			"subUser":     edge,
			"groupMember": member,
		},
	})
}

// DeleteSubUser removes a delegation edge and its membership.
func (h *GroupHandler) DeleteSubUser(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	groupID, err := strconv.ParseUint(c.Param("groupId"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid group ID")
		return
	}

	type DeleteSubUserRequest struct {
		ParentID  uint64 `json:"parentId" binding:"required"`
		SubUserID uint64 `json:"subUserId" binding:"required"`
	}

	var req DeleteSubUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "parentId and subUserId are required")
		return
	}

	if err := h.hierarchyService.DeleteSubUser(groupID, req.ParentID, req.SubUserID, userID); err != nil {
		respondHierarchyError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Sub-user removed successfully",
	})
}

func respondHierarchyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrGroupNameRequired):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrGroupNotFound),
		errors.Is(err, services.ErrSubUserEdgeNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotGroupMember),
		errors.Is(err, services.ErrParentNotGroupMember),
		errors.Is(err, services.ErrOnlyFounderCanDelete),
		errors.Is(err, services.ErrInsufficientLevel):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrAlreadyGroupMember):
		apierrors.Conflict(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
