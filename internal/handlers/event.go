package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/splitmate-api/internal/dto"
	apierrors "github.com/yukikurage/splitmate-api/internal/errors"
	"github.com/yukikurage/splitmate-api/internal/middleware"
	"github.com/yukikurage/splitmate-api/internal/services"
	"github.com/yukikurage/splitmate-api/internal/utils"
)

// EventHandler serves event lifecycle and read endpoints.
type EventHandler struct {
	eventService *services.EventService
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(eventService *services.EventService) *EventHandler {
	return &EventHandler{
		eventService: eventService,
	}
}

// CreateEvent creates an event organized by the caller
func (h *EventHandler) CreateEvent(c *gin.Context) {
	type CreateEventRequest struct {
		Name        string            `json:"name" binding:"required,min=2,max=100"`
		Description string            `json:"description" binding:"max=5000"`
		Type        string            `json:"type" binding:"max=50"`
		Date        *time.Time        `json:"date"`
		Location    string            `json:"location" binding:"max=500"`
		Items       []itemRequestBody `json:"items" binding:"dive"`
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestResponse(c, "Invalid request body")
		return
	}

	input := services.CreateEventInput{
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		Date:        req.Date,
		Location:    req.Location,
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, item.toInput())
	}

	event, err := h.eventService.CreateEvent(userID, input)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	h.respondDetail(c, http.StatusCreated, userID, event.ID)
}

// GetEvent returns the event with hydrated members and items
func (h *EventHandler) GetEvent(c *gin.Context) {
	userID, eventID, ok := requestContext(c)
	if !ok {
		return
	}

	h.respondDetail(c, http.StatusOK, userID, eventID)
}

// UpdateEvent applies a partial update to the event fields
func (h *EventHandler) UpdateEvent(c *gin.Context) {
	type UpdateEventRequest struct {
		Name        *string    `json:"name" binding:"omitempty,min=2,max=100"`
		Description *string    `json:"description" binding:"omitempty,max=5000"`
		Type        *string    `json:"type" binding:"omitempty,max=50"`
		Date        *time.Time `json:"date"`
		Location    *string    `json:"location" binding:"omitempty,max=500"`
	}

	userID, eventID, ok := requestContext(c)
	if !ok {
		return
	}

	var req UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestResponse(c, "Invalid request body")
		return
	}

	if _, err := h.eventService.UpdateEvent(userID, eventID, services.UpdateEventInput{
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		Date:        req.Date,
		Location:    req.Location,
	}); err != nil {
		apierrors.Respond(c, err)
		return
	}

	h.respondDetail(c, http.StatusOK, userID, eventID)
}

// DeleteEvent deletes the event (organizer only)
func (h *EventHandler) DeleteEvent(c *gin.Context) {
	userID, eventID, ok := requestContext(c)
	if !ok {
		return
	}

	if err := h.eventService.DeleteEvent(userID, eventID); err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Event deleted successfully"})
}

// ListEvents returns the caller's events in the category query parameter (current by default)
func (h *EventHandler) ListEvents(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	params := utils.GetPaginationParams(c)
	events, total, err := h.eventService.GetEventsByCategory(userID, services.EventCategory(c.DefaultQuery("category", string(services.CategoryCurrent))), params)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToEventListResponse(events, params, total))
}

// GetItem returns one item of the event
func (h *EventHandler) GetItem(c *gin.Context) {
	userID, eventID, ok := requestContext(c)
	if !ok {
		return
	}

	view, err := h.eventService.GetItem(userID, eventID, c.Param("item_id"))
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToItemDTO(*view.Item, view.Users))
}

// SendReminder emails members the items nobody picked yet
func (h *EventHandler) SendReminder(c *gin.Context) {
	userID, eventID, ok := requestContext(c)
	if !ok {
		return
	}

	sent, err := h.eventService.SendReminder(c.Request.Context(), userID, eventID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sent": sent})
}

// SuggestItems proposes item names for the event
func (h *EventHandler) SuggestItems(c *gin.Context) {
	userID, eventID, ok := requestContext(c)
	if !ok {
		return
	}

	names, err := h.eventService.SuggestItems(c.Request.Context(), userID, eventID)
	if err != nil {
		if errors.Is(err, services.ErrSuggestionsNotConfigured) {
			apierrors.ServiceUnavailable(c, "AI service is not configured")
			return
		}
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"suggestions": names})
}

// respondDetail writes the caller's view of the event
func (h *EventHandler) respondDetail(c *gin.Context, status int, userID, eventID uint64) {
	view, err := h.eventService.GetEventDetail(userID, eventID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(status, dto.ToEventDTO(*view.Event, view.Users))
}
