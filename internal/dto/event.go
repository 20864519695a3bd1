package dto

import (
	"time"

	"github.com/yukikurage/splitmate-api/internal/models"
	"github.com/yukikurage/splitmate-api/internal/utils"
)

// PollOptionDTO represents a poll option with its voters
type PollOptionDTO struct {
	ID    string    `json:"id"`
	Value string    `json:"value"`
	Votes []UserDTO `json:"votes"`
}

// ItemDetailDTO represents a free-form item detail
type ItemDetailDTO struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// ItemDTO represents an item in API responses
type ItemDTO struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Type       string          `json:"type"`
	Value      string          `json:"value"`
	Individual bool            `json:"individual"`
	PollName   string          `json:"poll_name"`
	Poll       []PollOptionDTO `json:"poll"`
	Details    []ItemDetailDTO `json:"details"`
	CreatedBy  UserDTO         `json:"created_by"`
	AssignedTo *UserDTO        `json:"assigned_to"`
}

// EventDTO represents an event with hydrated members, organizer and items
type EventDTO struct {
	ID          uint64     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Type        string     `json:"type"`
	Date        *time.Time `json:"date"`
	Location    string     `json:"location"`
	Organizer   UserDTO    `json:"organizer"`
	Members     []UserDTO  `json:"members"`
	Items       []ItemDTO  `json:"items"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// EventListItemDTO represents an event in list responses (minimal data)
type EventListItemDTO struct {
	ID          uint64     `json:"id"`
	Name        string     `json:"name"`
	Type        string     `json:"type"`
	Date        *time.Time `json:"date"`
	Location    string     `json:"location"`
	OrganizerID uint64     `json:"organizer_id"`
	MemberCount int        `json:"member_count"`
	ItemCount   int        `json:"item_count"`
	CreatedAt   time.Time  `json:"created_at"`
}

// EventListResponse represents a paginated list of events
type EventListResponse struct {
	Events     []EventListItemDTO       `json:"events"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// InviteResultDTO is the outcome of one invitation target
type InviteResultDTO struct {
	Target  string `json:"target"`
	Status  string `json:"status"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// ToEventDTO converts an Event model to EventDTO, resolving user ids with users
func ToEventDTO(event models.Event, users map[uint64]models.User) EventDTO {
	dto := EventDTO{
		ID:          event.ID,
		Name:        event.Name,
		Description: event.Description,
		Type:        event.Type,
		Date:        event.Date,
		Location:    event.Location,
		Organizer:   userRef(users, event.OrganizerID),
		Members:     make([]UserDTO, 0, len(event.Members)),
		Items:       make([]ItemDTO, 0, len(event.Items)),
		CreatedAt:   event.CreatedAt,
		UpdatedAt:   event.UpdatedAt,
	}

	for _, id := range event.MemberIDs() {
		dto.Members = append(dto.Members, userRef(users, id))
	}
	for _, item := range event.Items {
		dto.Items = append(dto.Items, ToItemDTO(item, users))
	}

	return dto
}

// ToItemDTO converts an Item model to ItemDTO
func ToItemDTO(item models.Item, users map[uint64]models.User) ItemDTO {
	dto := ItemDTO{
		ID:         item.ID,
		Name:       item.Name,
		Type:       item.Type,
		Value:      item.Value,
		Individual: item.Individual,
		PollName:   item.PollName,
		Poll:       make([]PollOptionDTO, 0, len(item.Poll)),
		Details:    make([]ItemDetailDTO, 0, len(item.Details)),
		CreatedBy:  userRef(users, item.CreatedBy),
	}

	if item.AssignedTo != nil {
		assignee := userRef(users, *item.AssignedTo)
		dto.AssignedTo = &assignee
	}
	for _, opt := range item.Poll {
		option := PollOptionDTO{
			ID:    opt.ID,
			Value: opt.Value,
			Votes: make([]UserDTO, 0, len(opt.Votes)),
		}
		for _, voter := range opt.Votes {
			option.Votes = append(option.Votes, userRef(users, voter))
		}
		dto.Poll = append(dto.Poll, option)
	}
	for _, d := range item.Details {
		dto.Details = append(dto.Details, ItemDetailDTO{Type: d.Type, Value: d.Value})
	}

	return dto
}

// ToEventListItemDTO converts an Event model to EventListItemDTO
func ToEventListItemDTO(event models.Event) EventListItemDTO {
	return EventListItemDTO{
		ID:          event.ID,
		Name:        event.Name,
		Type:        event.Type,
		Date:        event.Date,
		Location:    event.Location,
		OrganizerID: event.OrganizerID,
		MemberCount: len(event.Members),
		ItemCount:   len(event.Items),
		CreatedAt:   event.CreatedAt,
	}
}

// ToEventListResponse builds a paginated event list
func ToEventListResponse(events []models.Event, params utils.PaginationParams, total int64) EventListResponse {
	items := make([]EventListItemDTO, 0, len(events))
	for _, e := range events {
		items = append(items, ToEventListItemDTO(e))
	}
	return EventListResponse{
		Events:     items,
		Pagination: params.Response(total),
	}
}
