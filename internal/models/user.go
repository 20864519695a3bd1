package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID             uint64         `gorm:"primarykey" json:"id"`
	Name           string         `gorm:"type:varchar(255);not null" json:"name"`
	Username       string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	Email          string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash   string         `gorm:"type:varchar(255);not null" json:"-"`
	PlanID         uint64         `json:"plan_id"`
	EventsPending  IDList         `gorm:"type:text" json:"events_pending"`
	EventsArchived IDList         `gorm:"type:text" json:"events_archived"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Plan *Plan `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
}
