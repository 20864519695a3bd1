package repository

import (
	"github.com/yukikurage/splitmate-api/internal/models"
	"github.com/yukikurage/splitmate-api/internal/utils"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID with the plan preloaded
	FindByID(id uint64) (*models.User, error)

	// FindByIDs finds every user whose ID is in ids
	FindByIDs(ids []uint64) ([]models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)

	// FindByEmail finds a user by email with the plan preloaded
	FindByEmail(email string) (*models.User, error)

	// Save replaces the stored user with user
	Save(user *models.User) error

	// Delete removes the user for good so the username and email can be reused
	Delete(id uint64) error
}

// EventRepository defines the interface for event data access.
// Returned events always carry their members.
type EventRepository interface {
	// FindByID finds an event by ID
	FindByID(id uint64) (*models.Event, error)

	// FindForMember finds an event only if userID is one of its members
	FindForMember(eventID, userID uint64) (*models.Event, error)

	// FindForOrganizer finds an event only if organizerID organizes it
	FindForOrganizer(eventID, organizerID uint64) (*models.Event, error)

	// Save validates the event, writes it and reconciles its member rows.
	// It fails with ErrStaleEvent when the event changed since it was read.
	Save(event *models.Event) error

	// Delete deletes an event with its members and email invitations
	Delete(id uint64) error

	// FindByMember lists every event userID is a member of
	FindByMember(userID uint64) ([]models.Event, error)

	// CountByMember counts the events userID is a member of
	CountByMember(userID uint64) (int64, error)

	// List retrieves events with filtering and pagination
	List(filter EventFilter) ([]models.Event, int64, error)
}

// EventFilter holds filtering options for listing events
type EventFilter struct {
	MemberID   *uint64
	IDs        []uint64
	ExcludeIDs []uint64
	Pagination utils.PaginationParams
}

// UserInviteRepository defines the interface for email invitation data access
type UserInviteRepository interface {
	// Create creates a new invitation
	Create(invite *models.UserInvite) error

	// Find finds the invitation for email and eventID
	Find(email string, eventID uint64) (*models.UserInvite, error)

	// ListByEmail lists every invitation sent to email
	ListByEmail(email string) ([]models.UserInvite, error)

	// Delete deletes the invitation for email and eventID and returns how many rows went away
	Delete(email string, eventID uint64) (int64, error)
}

// PlanRepository defines the interface for plan data access
type PlanRepository interface {
	// Create creates a new plan
	Create(plan *models.Plan) error

	// FindByID finds a plan by ID
	FindByID(id uint64) (*models.Plan, error)

	// FindByName finds a plan by name
	FindByName(name models.PlanName) (*models.Plan, error)
}

// Store groups the repositories that share one database handle.
type Store interface {
	Users() UserRepository
	Events() EventRepository
	Invites() UserInviteRepository
	Plans() PlanRepository

	// Transaction runs fn with a Store bound to a single transaction.
	// Returning an error from fn rolls every write back.
	Transaction(fn func(tx Store) error) error
}
