package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/splitmate-api/internal/dto"
	apierrors "github.com/yukikurage/splitmate-api/internal/errors"
	"github.com/yukikurage/splitmate-api/internal/middleware"
	"github.com/yukikurage/splitmate-api/internal/services"
)

// MembershipHandler serves invitations and membership changes.
type MembershipHandler struct {
	membershipService *services.MembershipService
	eventService      *services.EventService
}

// NewMembershipHandler creates a new MembershipHandler.
func NewMembershipHandler(membershipService *services.MembershipService, eventService *services.EventService) *MembershipHandler {
	return &MembershipHandler{
		membershipService: membershipService,
		eventService:      eventService,
	}
}

// Invite invites users by email or username
func (h *MembershipHandler) Invite(c *gin.Context) {
	type InviteRequest struct {
		Targets []string `json:"targets" binding:"required,min=1,max=50,dive,max=255"`
	}

	userID, eventID, ok := requestContext(c)
	if !ok {
		return
	}

	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestResponse(c, "Invalid request body")
		return
	}

	results, err := h.membershipService.InviteAll(c.Request.Context(), userID, eventID, req.Targets)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	response := make([]dto.InviteResultDTO, 0, len(results))
	for _, r := range results {
		item := dto.InviteResultDTO{Target: r.Target, Status: string(r.Status)}
		var domainErr *apierrors.DomainError
		if errors.As(r.Err, &domainErr) {
			item.Code = domainErr.Code
			item.Message = domainErr.Message
		}
		response = append(response, item)
	}

	c.JSON(http.StatusOK, gin.H{"results": response})
}

// Join accepts an invitation
func (h *MembershipHandler) Join(c *gin.Context) {
	userID, eventID, ok := requestContext(c)
	if !ok {
		return
	}

	if _, err := h.membershipService.Join(userID, eventID); err != nil {
		apierrors.Respond(c, err)
		return
	}

	h.respondDetail(c, userID, eventID)
}

// Dismiss declines an invitation
func (h *MembershipHandler) Dismiss(c *gin.Context) {
	userID, eventID, ok := requestContext(c)
	if !ok {
		return
	}

	user, err := h.membershipService.Dismiss(userID, eventID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProfileDTO(*user))
}

// Leave removes the caller from the event
func (h *MembershipHandler) Leave(c *gin.Context) {
	userID, eventID, ok := requestContext(c)
	if !ok {
		return
	}

	user, err := h.membershipService.Leave(userID, eventID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProfileDTO(*user))
}

// RemoveMember removes another member (organizer only)
func (h *MembershipHandler) RemoveMember(c *gin.Context) {
	userID, eventID, ok := requestContext(c)
	if !ok {
		return
	}
	targetID, ok := parseUintParam(c, "user_id")
	if !ok {
		return
	}

	if _, err := h.membershipService.RemoveMember(userID, eventID, targetID); err != nil {
		apierrors.Respond(c, err)
		return
	}

	h.respondDetail(c, userID, eventID)
}

// TransferOrganizer hands the event to another user (organizer only)
func (h *MembershipHandler) TransferOrganizer(c *gin.Context) {
	userID, eventID, ok := requestContext(c)
	if !ok {
		return
	}
	targetID, ok := parseUintParam(c, "user_id")
	if !ok {
		return
	}

	if _, err := h.membershipService.TransferOrganizer(userID, eventID, targetID); err != nil {
		apierrors.Respond(c, err)
		return
	}

	h.respondDetail(c, userID, eventID)
}

// Archive adds or removes the event from the caller's archive
func (h *MembershipHandler) Archive(c *gin.Context) {
	userID, eventID, ok := requestContext(c)
	if !ok {
		return
	}

	user, err := h.membershipService.Archive(userID, eventID, services.ArchiveAction(c.Param("action")))
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProfileDTO(*user))
}

// DeleteAccount deletes the caller's account and ends the session
func (h *MembershipHandler) DeleteAccount(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Respond(c, apierrors.ErrPermission)
		return
	}

	if err := h.membershipService.DeleteAccount(userID); err != nil {
		apierrors.Respond(c, err)
		return
	}

	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to clear session")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User removed"})
}

func (h *MembershipHandler) respondDetail(c *gin.Context, userID, eventID uint64) {
	view, err := h.eventService.GetEventDetail(userID, eventID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToEventDTO(*view.Event, view.Users))
}
