package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nudgr/delegation-api/internal/dto"
	apierrors "github.com/nudgr/delegation-api/internal/errors"
	"github.com/nudgr/delegation-api/internal/middleware"
	"github.com/nudgr/delegation-api/internal/services"
)

// InviteHandler exposes the invite lifecycle over HTTP.
type InviteHandler struct {
	inviteService *services.InviteService
}

// NewInviteHandler creates a new InviteHandler.
func NewInviteHandler(inviteService *services.InviteService) *InviteHandler {
	return &InviteHandler{
		inviteService: inviteService,
	}
}

// GenerateInviteLink creates a time-boxed invite token for a group the caller
// belongs to and returns the invite URL.
func (h *InviteHandler) GenerateInviteLink(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type InviteRequest struct {
		GroupID uint64 `json:"GroupId" binding:"required"`
	}

	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "GroupId is required")
		return
	}

	link, err := h.inviteService.GenerateInviteLink(req.GroupID, userID)
	if err != nil {
		respondInviteError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Invite link generated successfully",
		"inviteLink": link,
	})
}

// CheckInvite is the idempotent validity probe used before rendering the
// accept button.
func (h *InviteHandler) CheckInvite(c *gin.Context) {
	valid, err := h.inviteService.CheckInvite(c.Param("token"))
	if err != nil {
		respondInviteError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": valid,
	})
}

// AcceptInvite redeems an invite token for the caller.
func (h *InviteHandler) AcceptInvite(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	member, edge, err := h.inviteService.AcceptInvite(c.Param("token"), userID)
	if err != nil {
		respondInviteError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Invite accepted successfully",
		"data": gin.H{
			"groupMember": dto.ToMembershipDTO(*member),
			"subUser":     edge,
		},
	})
}

func respondInviteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInviteNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrInviteExpired):
		apierrors.Expired(c, err.Error())
	case errors.Is(err, services.ErrInviteAlreadyUsed),
		errors.Is(err, services.ErrAlreadyGroupMember):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrGroupNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotGroupMember):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
