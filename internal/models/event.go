package models

import (
	"database/sql/driver"
	"encoding/json"
	"strings"
	"time"

	apierrors "github.com/yukikurage/splitmate-api/internal/errors"
	"gorm.io/gorm"
)

type Event struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	Name        string         `gorm:"type:varchar(100);not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Type        string         `gorm:"type:varchar(50)" json:"type"`
	Date        *time.Time     `json:"date"`
	Location    string         `gorm:"type:varchar(500)" json:"location"`
	OrganizerID uint64         `gorm:"not null;index" json:"organizer_id"`
	Items       Items          `gorm:"type:text" json:"items"`
	Version     uint64         `gorm:"not null;default:1" json:"-"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Members []EventMember `gorm:"foreignKey:EventID" json:"members,omitempty"`
}

type EventMember struct {
	EventID  uint64    `gorm:"primarykey" json:"event_id"`
	UserID   uint64    `gorm:"primarykey" json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`
}

// MemberIDs returns the member user ids in join order.
func (e *Event) MemberIDs() IDList {
	ids := make(IDList, 0, len(e.Members))
	for _, m := range e.Members {
		ids = append(ids, m.UserID)
	}
	return ids
}

// HasMember reports whether userID belongs to the event.
func (e *Event) HasMember(userID uint64) bool {
	for _, m := range e.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// AddMember adds userID unless already a member. It reports whether the set changed.
func (e *Event) AddMember(userID uint64) bool {
	if e.HasMember(userID) {
		return false
	}
	e.Members = append(e.Members, EventMember{
		EventID:  e.ID,
		UserID:   userID,
		JoinedAt: time.Now(),
	})
	return true
}

// RemoveMember drops userID from the member set. It reports whether the set changed.
func (e *Event) RemoveMember(userID uint64) bool {
	out := e.Members[:0]
	removed := false
	for _, m := range e.Members {
		if m.UserID == userID {
			removed = true
			continue
		}
		out = append(out, m)
	}
	e.Members = out
	return removed
}

// UnassignUser clears every item picked by userID and returns how many were cleared.
func (e *Event) UnassignUser(userID uint64) int {
	cleared := 0
	for i := range e.Items {
		if e.Items[i].AssignedTo != nil && *e.Items[i].AssignedTo == userID {
			e.Items[i].AssignedTo = nil
			cleared++
		}
	}
	return cleared
}

// RemoveVotes withdraws userID's votes from every poll and returns how many were withdrawn.
func (e *Event) RemoveVotes(userID uint64) int {
	removed := 0
	for i := range e.Items {
		for j := range e.Items[i].Poll {
			if e.Items[i].Poll[j].Votes.Remove(userID) {
				removed++
			}
		}
	}
	return removed
}

// FindItem returns a pointer into Items, or nil.
func (e *Event) FindItem(itemID string) *Item {
	for i := range e.Items {
		if e.Items[i].ID == itemID {
			return &e.Items[i]
		}
	}
	return nil
}

// RemoveItem deletes the item with itemID. It reports whether an item was removed.
func (e *Event) RemoveItem(itemID string) bool {
	for i := range e.Items {
		if e.Items[i].ID == itemID {
			e.Items = append(e.Items[:i], e.Items[i+1:]...)
			return true
		}
	}
	return false
}

// PendingItemNames lists the names of items nobody has picked yet.
func (e *Event) PendingItemNames() []string {
	var names []string
	for _, item := range e.Items {
		if item.AssignedTo == nil {
			names = append(names, item.Name)
		}
	}
	return names
}

// Validate runs the checks every save must pass.
func (e *Event) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return apierrors.BadRequest(apierrors.ErrCodeInvalidInput, "Event name is required")
	}
	if !e.HasMember(e.OrganizerID) {
		return apierrors.ErrOrganizerNotMember
	}

	seen := make(map[string]struct{}, len(e.Items))
	for _, item := range e.Items {
		key := strings.ToLower(strings.TrimSpace(item.Name))
		if key == "" {
			return apierrors.BadRequest(apierrors.ErrCodeInvalidInput, "Item name is required")
		}
		if _, dup := seen[key]; dup {
			return apierrors.BadRequest(apierrors.ErrCodeDuplicateItem,
				"Item '"+item.Name+"' already exists in this event")
		}
		seen[key] = struct{}{}
	}
	return nil
}

// Items is the ordered item list embedded in an event row.
type Items []Item

// Value implements driver.Valuer.
func (items Items) Value() (driver.Value, error) {
	if items == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]Item(items))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (items *Items) Scan(src any) error {
	return scanJSON(src, items)
}
