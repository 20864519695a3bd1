package services

import (
	"errors"
	"fmt"

	apierrors "github.com/yukikurage/splitmate-api/internal/errors"
	"github.com/yukikurage/splitmate-api/internal/models"
	"github.com/yukikurage/splitmate-api/internal/repository"
	"gorm.io/gorm"
)

// findUser loads a user and its plan
func findUser(store repository.Store, userID uint64) (*models.User, error) {
	user, err := store.Users().FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.NotFound(apierrors.DocUser)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

func findEvent(store repository.Store, eventID uint64) (*models.Event, error) {
	event, err := store.Events().FindByID(eventID)
	return event, eventLookupError(err)
}

func findEventForMember(store repository.Store, eventID, userID uint64) (*models.Event, error) {
	event, err := store.Events().FindForMember(eventID, userID)
	return event, eventLookupError(err)
}

func findEventForOrganizer(store repository.Store, eventID, organizerID uint64) (*models.Event, error) {
	event, err := store.Events().FindForOrganizer(eventID, organizerID)
	return event, eventLookupError(err)
}

func eventLookupError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apierrors.NotFound(apierrors.DocEvent)
	}
	return fmt.Errorf("failed to find event: %w", err)
}

// saveEvent persists an event. Validation failures come back unwrapped so
// the caller sees the domain error.
func saveEvent(store repository.Store, event *models.Event) error {
	if err := store.Events().Save(event); err != nil {
		var domainErr *apierrors.DomainError
		if errors.As(err, &domainErr) {
			return domainErr
		}
		return fmt.Errorf("failed to save event: %w", err)
	}
	return nil
}

// maxEventWriteAttempts bounds how often a read-modify-write of an event is
// replayed after losing a race to another writer.
const maxEventWriteAttempts = 3

// retryOnConflict runs fn again while its event write keeps losing to a
// concurrent one. fn must re-read everything it writes.
func retryOnConflict(fn func() error) error {
	var err error
	for attempt := 0; attempt < maxEventWriteAttempts; attempt++ {
		err = fn()
		if !errors.Is(err, repository.ErrStaleEvent) {
			return err
		}
	}
	return err
}

// inTransaction runs fn in one transaction and replays the whole transaction
// when an event write inside it loses a race.
func inTransaction(store repository.Store, fn func(tx repository.Store) error) error {
	return retryOnConflict(func() error {
		return store.Transaction(fn)
	})
}

func saveUser(store repository.Store, user *models.User) error {
	if err := store.Users().Save(user); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// countEvents counts the events a user currently belongs to
func countEvents(store repository.Store, userID uint64) (int64, error) {
	count, err := store.Events().CountByMember(userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}
