package dto

import "github.com/yukikurage/splitmate-api/internal/models"

// UserDTO represents another user in API responses
type UserDTO struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name,omitempty"`
	Username string `json:"username,omitempty"`
}

// PlanDTO represents the caller's plan
type PlanDTO struct {
	Name              models.PlanName `json:"name"`
	EnableAds         bool            `json:"enable_ads"`
	EnableInviteEmail bool            `json:"enable_invite_email"`
	MaxEvents         int             `json:"max_events"`
	MaxItems          int             `json:"max_items"`
	MaxPollItems      int             `json:"max_poll_items"`
	MaxMembers        int             `json:"max_members"`
}

// ProfileDTO is the authenticated user's own view of their account
type ProfileDTO struct {
	ID             uint64   `json:"id"`
	Name           string   `json:"name"`
	Username       string   `json:"username"`
	Email          string   `json:"email"`
	Plan           *PlanDTO `json:"plan,omitempty"`
	EventsPending  []uint64 `json:"events_pending"`
	EventsArchived []uint64 `json:"events_archived"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		Name:     user.Name,
		Username: user.Username,
	}
}

// ToProfileDTO converts a User model to ProfileDTO
func ToProfileDTO(user models.User) ProfileDTO {
	profile := ProfileDTO{
		ID:             user.ID,
		Name:           user.Name,
		Username:       user.Username,
		Email:          user.Email,
		EventsPending:  nonNil(user.EventsPending),
		EventsArchived: nonNil(user.EventsArchived),
	}
	if user.Plan != nil {
		profile.Plan = &PlanDTO{
			Name:              user.Plan.Name,
			EnableAds:         user.Plan.EnableAds,
			EnableInviteEmail: user.Plan.EnableInviteEmail,
			MaxEvents:         user.Plan.MaxEvents,
			MaxItems:          user.Plan.MaxItems,
			MaxPollItems:      user.Plan.MaxPollItems,
			MaxMembers:        user.Plan.MaxMembers,
		}
	}
	return profile
}

func nonNil(ids models.IDList) []uint64 {
	if ids == nil {
		return []uint64{}
	}
	return ids
}

// userRef resolves id against users. Unknown ids keep only the id.
func userRef(users map[uint64]models.User, id uint64) UserDTO {
	if u, ok := users[id]; ok {
		return ToUserDTO(u)
	}
	return UserDTO{ID: id}
}
