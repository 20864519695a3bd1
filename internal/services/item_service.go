package services

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	apierrors "github.com/yukikurage/splitmate-api/internal/errors"
	"github.com/yukikurage/splitmate-api/internal/metrics"
	"github.com/yukikurage/splitmate-api/internal/models"
	"github.com/yukikurage/splitmate-api/internal/quota"
	"github.com/yukikurage/splitmate-api/internal/repository"
)

// ItemAction is a mutation applied to one item of an event.
type ItemAction string

const (
	ItemAdd    ItemAction = "add"
	ItemEdit   ItemAction = "edit"
	ItemPick   ItemAction = "pick"
	ItemUnpick ItemAction = "unpick"
	ItemDelete ItemAction = "delete"
)

// PollOptionInput describes one poll option. An empty ID creates a new option.
type PollOptionInput struct {
	ID    string
	Value string
}

// ItemInput carries the payload of an item action. For edit, nil fields
// leave the stored value untouched; a non-nil Poll or Details replaces the list.
type ItemInput struct {
	ID         string
	Name       *string
	Type       *string
	Value      *string
	Individual *bool
	PollName   *string
	Poll       []PollOptionInput
	Details    []models.ItemDetail
}

// ItemService applies item and poll mutations to events.
type ItemService struct {
	store repository.Store
}

// NewItemService creates a new ItemService.
func NewItemService(store repository.Store) *ItemService {
	return &ItemService{store: store}
}

// ApplyItemAction runs action against the event and saves the whole event.
// A write that loses to a concurrent one is replayed against the fresh event,
// so a second pick of the same item fails with AlreadyPicked.
func (s *ItemService) ApplyItemAction(actorID, eventID uint64, action ItemAction, input ItemInput) (*models.Event, error) {
	mutate, err := itemMutation(action, input)
	if err != nil {
		return nil, err
	}

	actor, err := findUser(s.store, actorID)
	if err != nil {
		return nil, err
	}

	var event *models.Event
	err = retryOnConflict(func() error {
		current, err := findEventForMember(s.store, eventID, actorID)
		if err != nil {
			return err
		}
		if err := mutate(actor, current); err != nil {
			return err
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

	metrics.ItemActions.WithLabelValues(string(action)).Inc()
	slog.Debug("Item action applied", "event_id", eventID, "user_id", actorID, "action", action)
	return event, nil
}

func itemMutation(action ItemAction, input ItemInput) (func(actor *models.User, event *models.Event) error, error) {
	switch action {
	case ItemAdd:
		return func(actor *models.User, event *models.Event) error {
			return addItem(actor, event, input)
		}, nil
	case ItemEdit:
		return func(actor *models.User, event *models.Event) error {
			return editItem(actor, event, input)
		}, nil
	case ItemPick:
		return func(actor *models.User, event *models.Event) error {
			return pickItem(actor, event, input.ID)
		}, nil
	case ItemUnpick:
		return func(_ *models.User, event *models.Event) error {
			return unpickItem(event, input.ID)
		}, nil
	case ItemDelete:
		return func(_ *models.User, event *models.Event) error {
			if !event.RemoveItem(input.ID) {
				return apierrors.NotFound(apierrors.DocItem)
			}
			return nil
		}, nil
	default:
		return nil, apierrors.BadRequest(apierrors.ErrCodeInvalidCommand,
			fmt.Sprintf("Invalid operation '%s' - try [add, edit, pick, unpick, delete]", action))
	}
}

func addItem(actor *models.User, event *models.Event, input ItemInput) error {
	if err := quota.CheckMaxItems(actor.Plan, event); err != nil {
		return err
	}
	if input.Name == nil || strings.TrimSpace(*input.Name) == "" {
		return apierrors.BadRequest(apierrors.ErrCodeInvalidInput, "Item name is required")
	}
	if len(input.Poll) > 0 {
		if err := quota.CheckMaxPollItems(actor.Plan, len(input.Poll)-1); err != nil {
			return err
		}
	}

	item := models.Item{
		ID:        uuid.NewString(),
		CreatedBy: actor.ID,
		Poll:      []models.PollOption{},
		Details:   []models.ItemDetail{},
	}
	if err := applyItemFields(&item, input); err != nil {
		return err
	}
	event.Items = append(event.Items, item)
	return nil
}

func editItem(actor *models.User, event *models.Event, input ItemInput) error {
	item := event.FindItem(input.ID)
	if item == nil {
		return apierrors.NotFound(apierrors.DocItem)
	}

	if input.Poll != nil && len(input.Poll) > len(item.Poll) {
		if err := quota.CheckMaxPollItems(actor.Plan, len(input.Poll)-1); err != nil {
			return err
		}
	}

	return applyItemFields(item, input)
}

// applyItemFields overwrites the supplied fields of item.
func applyItemFields(item *models.Item, input ItemInput) error {
	var poll []models.PollOption
	if input.Poll != nil {
		var err error
		if poll, err = mergePoll(item.Poll, input.Poll); err != nil {
			return err
		}
	}

	if input.Name != nil {
		item.Name = strings.TrimSpace(*input.Name)
	}
	if input.Type != nil {
		item.Type = *input.Type
	}
	if input.Value != nil {
		item.Value = *input.Value
	}
	if input.Individual != nil {
		item.Individual = *input.Individual
	}
	if input.PollName != nil {
		item.PollName = *input.PollName
	}
	if input.Details != nil {
		item.Details = input.Details
	}
	if input.Poll != nil {
		item.Poll = poll
	}
	return nil
}

// mergePoll builds the new option list. Options that keep their id keep a
// copy of their votes; an id may appear only once.
func mergePoll(current []models.PollOption, next []PollOptionInput) ([]models.PollOption, error) {
	votes := make(map[string]models.IDList, len(current))
	for _, opt := range current {
		votes[opt.ID] = opt.Votes
	}

	seen := make(map[string]struct{}, len(next))
	poll := make([]models.PollOption, 0, len(next))
	for _, in := range next {
		opt := models.PollOption{ID: in.ID, Value: in.Value, Votes: models.IDList{}}
		if in.ID != "" {
			if _, dup := seen[in.ID]; dup {
				return nil, apierrors.BadRequest(apierrors.ErrCodeInvalidInput,
					fmt.Sprintf("Poll option '%s' is listed more than once", in.ID))
			}
			seen[in.ID] = struct{}{}
		}
		if existing, ok := votes[in.ID]; ok && in.ID != "" {
			opt.Votes = append(models.IDList{}, existing...)
		} else {
			opt.ID = uuid.NewString()
		}
		poll = append(poll, opt)
	}
	return poll, nil
}

func pickItem(actor *models.User, event *models.Event, itemID string) error {
	item := event.FindItem(itemID)
	if item == nil {
		return apierrors.NotFound(apierrors.DocItem)
	}
	if item.IsPicked() {
		return apierrors.ErrAlreadyPicked
	}
	id := actor.ID
	item.AssignedTo = &id
	return nil
}

// unpickItem clears the assignment whoever holds it.
func unpickItem(event *models.Event, itemID string) error {
	item := event.FindItem(itemID)
	if item == nil {
		return apierrors.NotFound(apierrors.DocItem)
	}
	item.AssignedTo = nil
	return nil
}

// VotePoll moves the voter's vote on the item to optionID.
func (s *ItemService) VotePoll(voterID, eventID uint64, itemID, optionID string) (*models.Item, error) {
	var voted *models.Item
	err := retryOnConflict(func() error {
		event, err := findEventForMember(s.store, eventID, voterID)
		if err != nil {
			return err
		}

		item := event.FindItem(itemID)
		if item == nil || len(item.Poll) == 0 {
			return apierrors.NotFound(apierrors.DocPoll)
		}
		if !item.Vote(optionID, voterID) {
			return apierrors.NotFound(apierrors.DocPollOption)
		}

		if err := saveEvent(s.store, event); err != nil {
			return err
		}
		voted = item
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.ItemActions.WithLabelValues("vote").Inc()
	return voted, nil
}
