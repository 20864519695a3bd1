package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yukikurage/splitmate-api/internal/constants"
	apierrors "github.com/yukikurage/splitmate-api/internal/errors"
	"github.com/yukikurage/splitmate-api/internal/models"
	"github.com/yukikurage/splitmate-api/internal/quota"
	"github.com/yukikurage/splitmate-api/internal/repository"
	"github.com/yukikurage/splitmate-api/internal/utils"
)

// EventCategory selects which of a user's events GetEventsByCategory returns.
type EventCategory string

const (
	CategoryCurrent  EventCategory = "current"
	CategoryArchived EventCategory = "archived"
	CategoryInvited  EventCategory = "invited"
)

// EventService handles the event lifecycle and its read projections.
type EventService struct {
	store     repository.Store
	notifier  Notifier
	gate      FeatureGate
	suggester ItemSuggester
}

// NewEventService creates a new EventService. suggester may be nil.
func NewEventService(store repository.Store, notifier Notifier, gate FeatureGate, suggester ItemSuggester) *EventService {
	return &EventService{
		store:     store,
		notifier:  notifier,
		gate:      gate,
		suggester: suggester,
	}
}

// CreateEventInput represents the data needed to create an event.
type CreateEventInput struct {
	Name        string
	Description string
	Type        string
	Date        *time.Time
	Location    string
	Items       []ItemInput
}

// UpdateEventInput represents a partial event update.
type UpdateEventInput struct {
	Name        *string
	Description *string
	Type        *string
	Date        *time.Time
	Location    *string
}

// EventView is an event with every user it references.
type EventView struct {
	Event *models.Event
	Users map[uint64]models.User
}

// ItemView is one item with every user it references.
type ItemView struct {
	EventID uint64
	Item    *models.Item
	Users   map[uint64]models.User
}

// CreateEvent creates an event organized by the creator, who becomes its first member.
func (s *EventService) CreateEvent(creatorID uint64, input CreateEventInput) (*models.Event, error) {
	creator, err := findUser(s.store, creatorID)
	if err != nil {
		return nil, err
	}

	count, err := countEvents(s.store, creator.ID)
	if err != nil {
		return nil, err
	}
	if err := quota.CheckMaxEvents(creator.Plan, count); err != nil {
		return nil, err
	}

	event := &models.Event{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Type:        input.Type,
		Date:        input.Date,
		Location:    input.Location,
		OrganizerID: creator.ID,
		Items:       models.Items{},
	}
	event.AddMember(creator.ID)

	for _, in := range input.Items {
		if err := addItem(creator, event, in); err != nil {
			return nil, err
		}
	}

	if err := saveEvent(s.store, event); err != nil {
		return nil, err
	}

	slog.Info("Event created", "event_id", event.ID, "organizer_id", creator.ID)
	return event, nil
}

// UpdateEvent overwrites the supplied fields. Any member may update.
func (s *EventService) UpdateEvent(userID, eventID uint64, input UpdateEventInput) (*models.Event, error) {
	var event *models.Event
	err := retryOnConflict(func() error {
		current, err := findEventForMember(s.store, eventID, userID)
		if err != nil {
			return err
		}

		if input.Name != nil {
			current.Name = strings.TrimSpace(*input.Name)
		}
		if input.Description != nil {
			current.Description = *input.Description
		}
		if input.Type != nil {
			current.Type = *input.Type
		}
		if input.Date != nil {
			current.Date = input.Date
		}
		if input.Location != nil {
			current.Location = *input.Location
		}

		if err := saveEvent(s.store, current); err != nil {
			return err
		}
		event = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	return event, nil
}

// DeleteEvent deletes an event. Only the organizer may delete it.
func (s *EventService) DeleteEvent(organizerID, eventID uint64) error {
	event, err := findEventForOrganizer(s.store, eventID, organizerID)
	if err != nil {
		return err
	}

	if err := s.store.Events().Delete(event.ID); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	slog.Info("Event deleted", "event_id", event.ID, "organizer_id", organizerID)
	return nil
}

// GetEventDetail returns a member's view of the event.
func (s *EventService) GetEventDetail(userID, eventID uint64) (*EventView, error) {
	event, err := findEventForMember(s.store, eventID, userID)
	if err != nil {
		return nil, err
	}

	ids := event.MemberIDs()
	ids.Add(event.OrganizerID)
	for i := range event.Items {
		ids = append(ids, itemUserIDs(&event.Items[i])...)
	}

	users, err := s.hydrateUsers(ids)
	if err != nil {
		return nil, err
	}

	return &EventView{Event: event, Users: users}, nil
}

// GetItem returns a member's view of one item.
func (s *EventService) GetItem(userID, eventID uint64, itemID string) (*ItemView, error) {
	event, err := findEventForMember(s.store, eventID, userID)
	if err != nil {
		return nil, err
	}

	item := event.FindItem(itemID)
	if item == nil {
		return nil, apierrors.NotFound(apierrors.DocItem)
	}

	users, err := s.hydrateUsers(itemUserIDs(item))
	if err != nil {
		return nil, err
	}

	return &ItemView{EventID: event.ID, Item: item, Users: users}, nil
}

func itemUserIDs(item *models.Item) []uint64 {
	ids := []uint64{item.CreatedBy}
	if item.AssignedTo != nil {
		ids = append(ids, *item.AssignedTo)
	}
	for _, opt := range item.Poll {
		ids = append(ids, opt.Votes...)
	}
	return ids
}

// hydrateUsers resolves user ids to users. Ids of deleted users are skipped.
func (s *EventService) hydrateUsers(ids []uint64) (map[uint64]models.User, error) {
	var unique models.IDList
	for _, id := range ids {
		if id != 0 {
			unique.Add(id)
		}
	}

	users := make(map[uint64]models.User, len(unique))
	if len(unique) == 0 {
		return users, nil
	}

	found, err := s.store.Users().FindByIDs(unique)
	if err != nil {
		return nil, fmt.Errorf("failed to find users: %w", err)
	}
	for _, u := range found {
		users[u.ID] = u
	}
	return users, nil
}

// SendReminder emails every member the names of the items nobody has picked.
// It returns how many reminders were handed to the notifier.
func (s *EventService) SendReminder(ctx context.Context, userID, eventID uint64) (int, error) {
	if !s.gate.SendMailEnabled(ctx, constants.MailActionReminder) {
		return 0, apierrors.BadRequest(apierrors.ErrCodeFeatureUnavailable, "Send email is not available")
	}

	event, err := findEventForMember(s.store, eventID, userID)
	if err != nil {
		return 0, err
	}

	pending := event.PendingItemNames()
	if len(pending) == 0 {
		return 0, apierrors.ErrNoPendingItems
	}

	members, err := s.store.Users().FindByIDs(event.MemberIDs())
	if err != nil {
		return 0, fmt.Errorf("failed to find members: %w", err)
	}

	for _, member := range members {
		email := member.Email
		dispatch(constants.MailActionReminder, email, func() error {
			return s.notifier.SendReminder(ctx, email, event.Name, pending)
		})
	}

	slog.Info("Reminders sent", "event_id", event.ID, "count", len(members))
	return len(members), nil
}

// GetEventsByCategory lists the user's events in category, newest first.
func (s *EventService) GetEventsByCategory(userID uint64, category EventCategory, page utils.PaginationParams) ([]models.Event, int64, error) {
	user, err := findUser(s.store, userID)
	if err != nil {
		return nil, 0, err
	}

	filter := repository.EventFilter{Pagination: page}

	switch category {
	case CategoryCurrent:
		filter.MemberID = &user.ID
		filter.ExcludeIDs = user.EventsArchived
	case CategoryArchived:
		if len(user.EventsArchived) == 0 {
			return []models.Event{}, 0, nil
		}
		filter.MemberID = &user.ID
		filter.IDs = user.EventsArchived
	case CategoryInvited:
		ids, err := s.invitedEventIDs(user)
		if err != nil {
			return nil, 0, err
		}
		if len(ids) == 0 {
			return []models.Event{}, 0, nil
		}
		filter.IDs = ids
	default:
		return nil, 0, apierrors.ErrInvalidCategory
	}

	events, total, err := s.store.Events().List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list events: %w", err)
	}

	return events, total, nil
}

// invitedEventIDs merges in-app invitations with email invitations sent
// before the user signed up.
func (s *EventService) invitedEventIDs(user *models.User) (models.IDList, error) {
	ids := append(models.IDList{}, user.EventsPending...)

	invites, err := s.store.Invites().ListByEmail(user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	for _, inv := range invites {
		ids.Add(inv.EventID)
	}
	return ids, nil
}

// SuggestItems proposes item names for the event that it does not have yet.
func (s *EventService) SuggestItems(ctx context.Context, userID, eventID uint64) ([]string, error) {
	if s.suggester == nil {
		return nil, ErrSuggestionsNotConfigured
	}

	event, err := findEventForMember(s.store, eventID, userID)
	if err != nil {
		return nil, err
	}

	names, err := s.suggester.SuggestItems(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("failed to suggest items: %w", err)
	}

	existing := make(map[string]struct{}, len(event.Items))
	for _, item := range event.Items {
		existing[strings.ToLower(strings.TrimSpace(item.Name))] = struct{}{}
	}

	suggestions := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		key := strings.ToLower(name)
		if name == "" {
			continue
		}
		if _, ok := existing[key]; ok {
			continue
		}
		existing[key] = struct{}{}
		suggestions = append(suggestions, name)
		if len(suggestions) == constants.MaxSuggestedItems {
			break
		}
	}

	return suggestions, nil
}
