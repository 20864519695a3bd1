package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/splitmate-api/internal/dto"
	apierrors "github.com/yukikurage/splitmate-api/internal/errors"
	"github.com/yukikurage/splitmate-api/internal/models"
	"github.com/yukikurage/splitmate-api/internal/services"
)

type pollOptionRequestBody struct {
	ID    string `json:"id"`
	Value string `json:"value" binding:"required,max=200"`
}

type itemDetailRequestBody struct {
	Type  string `json:"type" binding:"max=50"`
	Value string `json:"value" binding:"max=500"`
}

// itemRequestBody is the payload shared by item creation and item actions.
// Absent fields are left untouched by edit.
type itemRequestBody struct {
	ID         string                  `json:"id"`
	Name       *string                 `json:"name" binding:"omitempty,min=1,max=100"`
	Type       *string                 `json:"type" binding:"omitempty,max=50"`
	Value      *string                 `json:"value" binding:"omitempty,max=200"`
	Individual *bool                   `json:"individual"`
	PollName   *string                 `json:"poll_name" binding:"omitempty,max=200"`
	Poll       []pollOptionRequestBody `json:"poll" binding:"omitempty,dive"`
	Details    []itemDetailRequestBody `json:"details" binding:"omitempty,dive"`
}

func (b itemRequestBody) toInput() services.ItemInput {
	input := services.ItemInput{
		ID:         b.ID,
		Name:       b.Name,
		Type:       b.Type,
		Value:      b.Value,
		Individual: b.Individual,
		PollName:   b.PollName,
	}
	if b.Poll != nil {
		input.Poll = make([]services.PollOptionInput, 0, len(b.Poll))
		for _, opt := range b.Poll {
			input.Poll = append(input.Poll, services.PollOptionInput{ID: opt.ID, Value: opt.Value})
		}
	}
	if b.Details != nil {
		input.Details = make([]models.ItemDetail, 0, len(b.Details))
		for _, d := range b.Details {
			input.Details = append(input.Details, models.ItemDetail{Type: d.Type, Value: d.Value})
		}
	}
	return input
}

// ItemHandler serves item mutations and poll votes.
type ItemHandler struct {
	itemService  *services.ItemService
	eventService *services.EventService
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(itemService *services.ItemService, eventService *services.EventService) *ItemHandler {
	return &ItemHandler{
		itemService:  itemService,
		eventService: eventService,
	}
}

// ApplyAction runs one item action (add, edit, pick, unpick, delete) against the event
func (h *ItemHandler) ApplyAction(c *gin.Context) {
	type ItemActionRequest struct {
		Action string `json:"action" binding:"required"`
		itemRequestBody
	}

	userID, eventID, ok := requestContext(c)
	if !ok {
		return
	}

	var req ItemActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestResponse(c, "Invalid request body")
		return
	}

	if _, err := h.itemService.ApplyItemAction(userID, eventID, services.ItemAction(req.Action), req.toInput()); err != nil {
		apierrors.Respond(c, err)
		return
	}

	view, err := h.eventService.GetEventDetail(userID, eventID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToEventDTO(*view.Event, view.Users))
}

// VotePoll moves the caller's vote on an item to the :option_id of the route
func (h *ItemHandler) VotePoll(c *gin.Context) {
	userID, eventID, ok := requestContext(c)
	if !ok {
		return
	}

	itemID := c.Param("item_id")
	if _, err := h.itemService.VotePoll(userID, eventID, itemID, c.Param("option_id")); err != nil {
		apierrors.Respond(c, err)
		return
	}

	view, err := h.eventService.GetItem(userID, eventID, itemID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToItemDTO(*view.Item, view.Users))
}
