package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/yukikurage/splitmate-api/internal/constants"
	apierrors "github.com/yukikurage/splitmate-api/internal/errors"
	"github.com/yukikurage/splitmate-api/internal/metrics"
	"github.com/yukikurage/splitmate-api/internal/models"
	"github.com/yukikurage/splitmate-api/internal/quota"
	"github.com/yukikurage/splitmate-api/internal/repository"
	"gorm.io/gorm"
)

// InviteStatus describes what an invitation did.
type InviteStatus string

const (
	// InvitePending means a registered user got an in-app invitation.
	InvitePending InviteStatus = "pending"
	// InviteEmailSent means an email invitation was recorded and sent.
	InviteEmailSent InviteStatus = "email_sent"
	// InviteEmailExists means the email had already been invited to the event.
	InviteEmailExists InviteStatus = "email_exists"
	// InviteFailed is reported by InviteAll for targets that were rejected.
	InviteFailed InviteStatus = "failed"
)

// ArchiveAction is the archive command applied to a user's archived list.
type ArchiveAction string

const (
	ArchiveAdd    ArchiveAction = "add"
	ArchiveRemove ArchiveAction = "remove"
)

// InviteResult is the per-target outcome of InviteAll.
type InviteResult struct {
	Target string
	Status InviteStatus
	Err    error
}

// MembershipService owns who belongs to an event and how invitations become memberships.
type MembershipService struct {
	store    repository.Store
	notifier Notifier
	gate     FeatureGate
}

// NewMembershipService creates a new MembershipService.
func NewMembershipService(store repository.Store, notifier Notifier, gate FeatureGate) *MembershipService {
	return &MembershipService{
		store:    store,
		notifier: notifier,
		gate:     gate,
	}
}

// Invite invites one registered user (by email or username) or one email address.
func (s *MembershipService) Invite(ctx context.Context, inviterID, eventID uint64, target string) (InviteStatus, error) {
	inviter, err := findUser(s.store, inviterID)
	if err != nil {
		return "", err
	}

	event, err := findEventForMember(s.store, eventID, inviterID)
	if err != nil {
		return "", err
	}

	return s.invite(ctx, inviter, event, target)
}

// InviteAll checks the member ceiling for the whole batch, then invites each
// target. A rejected target is reported in its result and does not stop the batch.
func (s *MembershipService) InviteAll(ctx context.Context, inviterID, eventID uint64, targets []string) ([]InviteResult, error) {
	targets = uniqueTargets(targets)
	if len(targets) == 0 {
		return nil, apierrors.BadRequest(apierrors.ErrCodeInvalidInput, "At least one email or username is required")
	}

	inviter, err := findUser(s.store, inviterID)
	if err != nil {
		return nil, err
	}

	event, err := findEventForMember(s.store, eventID, inviterID)
	if err != nil {
		return nil, err
	}

	if err := quota.CheckMaxMembers(inviter.Plan, event, len(targets)); err != nil {
		return nil, err
	}

	results := make([]InviteResult, 0, len(targets))
	for _, target := range targets {
		status, err := s.invite(ctx, inviter, event, target)
		if err != nil {
			var domainErr *apierrors.DomainError
			if !errors.As(err, &domainErr) {
				return nil, err
			}
			results = append(results, InviteResult{Target: target, Status: InviteFailed, Err: domainErr})
			continue
		}
		results = append(results, InviteResult{Target: target, Status: status})
	}

	return results, nil
}

func (s *MembershipService) invite(ctx context.Context, inviter *models.User, event *models.Event, target string) (InviteStatus, error) {
	target = strings.TrimSpace(target)

	member, err := s.resolveInvitee(target)
	if err != nil {
		return "", err
	}

	if member == nil {
		if !isEmail(target) {
			return "", apierrors.NotFound(apierrors.DocUser)
		}
		return s.inviteByEmail(ctx, inviter, event, strings.ToLower(target))
	}

	if event.HasMember(member.ID) {
		return "", apierrors.ErrAlreadyJoined
	}
	if !member.EventsPending.Add(event.ID) {
		return "", apierrors.ErrAlreadyInvited
	}
	if err := saveUser(s.store, member); err != nil {
		return "", err
	}

	metrics.MembershipTransitions.WithLabelValues("invite").Inc()
	slog.Info("User invited", "event_id", event.ID, "user_id", member.ID, "inviter_id", inviter.ID)
	return InvitePending, nil
}

func (s *MembershipService) inviteByEmail(ctx context.Context, inviter *models.User, event *models.Event, email string) (InviteStatus, error) {
	if inviter.Plan == nil || !inviter.Plan.EnableInviteEmail {
		return "", apierrors.BadRequest(apierrors.ErrCodeFeatureUnavailable, "Invite by email is not available on your plan")
	}
	if !s.gate.SendMailEnabled(ctx, constants.MailActionInvite) {
		return "", apierrors.BadRequest(apierrors.ErrCodeFeatureUnavailable, "Send email is not available")
	}

	if _, err := s.store.Invites().Find(email, event.ID); err == nil {
		return InviteEmailExists, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("failed to find invitation: %w", err)
	}

	invite := &models.UserInvite{Email: email, EventID: event.ID}
	if err := s.store.Invites().Create(invite); err != nil {
		return "", fmt.Errorf("failed to create invitation: %w", err)
	}

	dispatch(constants.MailActionInvite, email, func() error {
		return s.notifier.SendInvite(ctx, email, event.Name)
	})

	metrics.MembershipTransitions.WithLabelValues("email_invite").Inc()
	slog.Info("Email invitation created", "event_id", event.ID, "inviter_id", inviter.ID)
	return InviteEmailSent, nil
}

// resolveInvitee finds a registered user by email, then by username. It
// returns nil without error when nobody matches.
func (s *MembershipService) resolveInvitee(target string) (*models.User, error) {
	user, err := s.store.Users().FindByEmail(strings.ToLower(target))
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	user, err = s.store.Users().FindByUsername(target)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return nil, nil
}

// Join accepts an invitation (in-app or by email) and makes the user a member.
func (s *MembershipService) Join(userID, eventID uint64) (*models.User, error) {
	var joined *models.User
	err := inTransaction(s.store, func(tx repository.Store) error {
		user, err := findUser(tx, userID)
		if err != nil {
			return err
		}

		count, err := countEvents(tx, user.ID)
		if err != nil {
			return err
		}
		if err := quota.CheckMaxEvents(user.Plan, count); err != nil {
			return err
		}

		event, err := findEvent(tx, eventID)
		if err != nil {
			return err
		}
		if event.HasMember(user.ID) {
			return apierrors.ErrAlreadyJoined
		}

		event.AddMember(user.ID)
		if err := saveEvent(tx, event); err != nil {
			return err
		}

		if err := clearInvitation(tx, user, event.ID); err != nil {
			return err
		}

		joined = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.MembershipTransitions.WithLabelValues("join").Inc()
	slog.Info("User joined event", "event_id", eventID, "user_id", userID)
	return joined, nil
}

// clearInvitation removes the invitation that let user in: the pending entry
// when there is one, otherwise any email invitation for the user's address.
func clearInvitation(store repository.Store, user *models.User, eventID uint64) error {
	if user.EventsPending.Remove(eventID) {
		return saveUser(store, user)
	}
	if _, err := store.Invites().Delete(user.Email, eventID); err != nil {
		return fmt.Errorf("failed to delete invitation: %w", err)
	}
	return nil
}

// Dismiss declines an invitation. Dismissing an event the user was never
// invited to is not an error.
func (s *MembershipService) Dismiss(userID, eventID uint64) (*models.User, error) {
	user, err := findUser(s.store, userID)
	if err != nil {
		return nil, err
	}

	if user.EventsPending.Remove(eventID) {
		if err := saveUser(s.store, user); err != nil {
			return nil, err
		}
	}
	if _, err := s.store.Invites().Delete(user.Email, eventID); err != nil {
		return nil, fmt.Errorf("failed to delete invitation: %w", err)
	}

	metrics.MembershipTransitions.WithLabelValues("dismiss").Inc()
	return user, nil
}

// Leave removes the user from the event, releases the items they picked and
// drops the event from their archive.
func (s *MembershipService) Leave(userID, eventID uint64) (*models.User, error) {
	var left *models.User
	err := inTransaction(s.store, func(tx repository.Store) error {
		user, err := findUser(tx, userID)
		if err != nil {
			return err
		}

		event, err := findEvent(tx, eventID)
		if err != nil {
			return err
		}

		if err := removeFromEvent(tx, event, user); err != nil {
			return err
		}

		left = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.MembershipTransitions.WithLabelValues("leave").Inc()
	slog.Info("User left event", "event_id", eventID, "user_id", userID)
	return left, nil
}

// RemoveMember lets the organizer remove another user from the event.
func (s *MembershipService) RemoveMember(organizerID, eventID, targetID uint64) (*models.Event, error) {
	var updated *models.Event
	err := inTransaction(s.store, func(tx repository.Store) error {
		event, err := findEventForOrganizer(tx, eventID, organizerID)
		if err != nil {
			return err
		}

		target, err := findUser(tx, targetID)
		if err != nil {
			return err
		}

		if err := removeFromEvent(tx, event, target); err != nil {
			return err
		}

		updated = event
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.MembershipTransitions.WithLabelValues("remove").Inc()
	slog.Info("Member removed from event", "event_id", eventID, "user_id", targetID, "organizer_id", organizerID)
	return updated, nil
}

// removeFromEvent applies member removal, item release and archive cleanup.
// Callers run it inside a transaction so the three writes land together.
func removeFromEvent(store repository.Store, event *models.Event, user *models.User) error {
	event.RemoveMember(user.ID)
	event.UnassignUser(user.ID)
	if err := saveEvent(store, event); err != nil {
		return err
	}

	if user.EventsArchived.Remove(event.ID) {
		return saveUser(store, user)
	}
	return nil
}

// TransferOrganizer hands the event over to another user, who becomes a
// member if they are not one yet.
func (s *MembershipService) TransferOrganizer(organizerID, eventID, newOrganizerID uint64) (*models.Event, error) {
	var updated *models.Event
	err := inTransaction(s.store, func(tx repository.Store) error {
		event, err := findEventForOrganizer(tx, eventID, organizerID)
		if err != nil {
			return err
		}

		newOrganizer, err := findUser(tx, newOrganizerID)
		if err != nil {
			return err
		}

		count, err := countEvents(tx, newOrganizer.ID)
		if err != nil {
			return err
		}
		if err := quota.CheckMaxEvents(newOrganizer.Plan, count); err != nil {
			return err
		}

		joining := event.AddMember(newOrganizer.ID)
		event.OrganizerID = newOrganizer.ID
		if err := saveEvent(tx, event); err != nil {
			return err
		}

		if joining {
			if err := clearInvitation(tx, newOrganizer, event.ID); err != nil {
				return err
			}
		}

		updated = event
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.MembershipTransitions.WithLabelValues("transfer").Inc()
	slog.Info("Event organizer transferred", "event_id", eventID, "from", organizerID, "to", newOrganizerID)
	return updated, nil
}

// Archive adds the event to, or removes it from, the user's archived list.
// The event must be organized by the user.
func (s *MembershipService) Archive(userID, eventID uint64, action ArchiveAction) (*models.User, error) {
	user, err := findUser(s.store, userID)
	if err != nil {
		return nil, err
	}

	event, err := findEventForOrganizer(s.store, eventID, userID)
	if err != nil {
		return nil, err
	}

	var changed bool
	switch action {
	case ArchiveAdd:
		changed = user.EventsArchived.Add(event.ID)
	case ArchiveRemove:
		changed = user.EventsArchived.Remove(event.ID)
	default:
		return nil, apierrors.BadRequest(apierrors.ErrCodeInvalidCommand,
			fmt.Sprintf("Command '%s' does not exist - try [add, remove]", action))
	}

	if changed {
		if err := saveUser(s.store, user); err != nil {
			return nil, err
		}
	}

	metrics.MembershipTransitions.WithLabelValues("archive").Inc()
	return user, nil
}

// DeleteAccount takes the user out of every event, then deletes the account.
// An event the user organizes alone is deleted with it; organizing an event
// that still has other members fails with ErrOrganizerOfShared.
func (s *MembershipService) DeleteAccount(userID uint64) error {
	var deletedEvents int
	err := inTransaction(s.store, func(tx repository.Store) error {
		deletedEvents = 0

		user, err := findUser(tx, userID)
		if err != nil {
			return err
		}

		events, err := tx.Events().FindByMember(user.ID)
		if err != nil {
			return fmt.Errorf("failed to list events: %w", err)
		}

		for i := range events {
			event := &events[i]
			if event.OrganizerID == user.ID {
				if len(event.Members) > 1 {
					return apierrors.ErrOrganizerOfShared
				}
				if err := tx.Events().Delete(event.ID); err != nil {
					return fmt.Errorf("failed to delete event: %w", err)
				}
				deletedEvents++
				continue
			}

			event.RemoveMember(user.ID)
			event.UnassignUser(user.ID)
			event.RemoveVotes(user.ID)
			if err := saveEvent(tx, event); err != nil {
				return err
			}
		}

		if err := tx.Users().Delete(user.ID); err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	metrics.MembershipTransitions.WithLabelValues("delete_account").Inc()
	slog.Info("Account deleted", "user_id", userID, "deleted_events", deletedEvents)
	return nil
}

var validate = validator.New()

// isEmail applies the same rule as the handlers' email binding.
func isEmail(target string) bool {
	return validate.Var(target, "required,email") == nil
}

// uniqueTargets trims targets and removes blanks and case-insensitive duplicates
func uniqueTargets(targets []string) []string {
	seen := make(map[string]struct{}, len(targets))
	result := make([]string, 0, len(targets))

	for _, t := range targets {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, t)
	}

	return result
}
