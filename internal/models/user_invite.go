package models

import "time"

// UserInvite tracks an invitation sent to an email that has no account yet.
type UserInvite struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	Email     string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_user_invites_email_event" json:"email"`
	EventID   uint64    `gorm:"not null;uniqueIndex:idx_user_invites_email_event" json:"event_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
