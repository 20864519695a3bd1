package repository

import (
	"errors"
	"time"

	"github.com/yukikurage/splitmate-api/internal/database"
	"github.com/yukikurage/splitmate-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrStaleEvent is returned by Save when the stored event changed after it was read.
var ErrStaleEvent = errors.New("event was modified concurrently")

// GormEventRepository is a GORM implementation of EventRepository
type GormEventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a new EventRepository
func NewEventRepository(db *gorm.DB) EventRepository {
	return &GormEventRepository{db: db}
}

// FindByID finds an event by ID
func (r *GormEventRepository) FindByID(id uint64) (*models.Event, error) {
	var event models.Event
	if err := r.db.Preload("Members").First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// FindForMember finds an event by ID if userID is a member
func (r *GormEventRepository) FindForMember(eventID, userID uint64) (*models.Event, error) {
	var event models.Event
	memberOf := r.db.Model(&models.EventMember{}).
		Select("event_id").
		Where("user_id = ?", userID)

	if err := r.db.Preload("Members").
		Where("id IN (?)", memberOf).
		First(&event, eventID).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// FindForOrganizer finds an event by ID if organizerID organizes it
func (r *GormEventRepository) FindForOrganizer(eventID, organizerID uint64) (*models.Event, error) {
	var event models.Event
	if err := r.db.Preload("Members").
		Where("organizer_id = ?", organizerID).
		First(&event, eventID).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// Save validates and writes the event, then reconciles the member rows.
// New events get their ID assigned. Existing events are written only if their
// version still matches the stored one, otherwise ErrStaleEvent is returned.
func (r *GormEventRepository) Save(event *models.Event) error {
	if err := event.Validate(); err != nil {
		return err
	}

	version := event.Version
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := writeEventRow(tx, event); err != nil {
			return err
		}

		if err := tx.Where("event_id = ? AND user_id NOT IN ?", event.ID, []uint64(event.MemberIDs())).
			Delete(&models.EventMember{}).Error; err != nil {
			return err
		}

		for i := range event.Members {
			event.Members[i].EventID = event.ID
		}
		if len(event.Members) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&event.Members).Error
	})
	if err != nil {
		event.Version = version
	}
	return err
}

func writeEventRow(tx *gorm.DB, event *models.Event) error {
	if event.ID == 0 {
		event.Version = 1
		return tx.Omit(clause.Associations).Create(event).Error
	}

	expected := event.Version
	event.Version = expected + 1
	event.UpdatedAt = time.Now()
	result := tx.Model(&models.Event{}).
		Where("id = ? AND version = ?", event.ID, expected).
		Updates(map[string]interface{}{
			"name":         event.Name,
			"description":  event.Description,
			"type":         event.Type,
			"date":         event.Date,
			"location":     event.Location,
			"organizer_id": event.OrganizerID,
			"items":        event.Items,
			"version":      event.Version,
			"updated_at":   event.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleEvent
	}
	return nil
}

// Delete deletes an event and all related data in a transaction
func (r *GormEventRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", id).Delete(&models.EventMember{}).Error; err != nil {
			return err
		}

		if err := tx.Where("event_id = ?", id).Delete(&models.UserInvite{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Event{}, id).Error
	})
}

// FindByMember finds every event a user belongs to
func (r *GormEventRepository) FindByMember(userID uint64) ([]models.Event, error) {
	var events []models.Event
	memberOf := r.db.Model(&models.EventMember{}).
		Select("event_id").
		Where("user_id = ?", userID)

	if err := r.db.Preload("Members").
		Where("id IN (?)", memberOf).
		Order("id").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// CountByMember counts the events a user belongs to
func (r *GormEventRepository) CountByMember(userID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.EventMember{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// List retrieves events with filtering and pagination
func (r *GormEventRepository) List(filter EventFilter) ([]models.Event, int64, error) {
	query := r.db.Model(&models.Event{})

	if filter.MemberID != nil {
		memberOf := r.db.Model(&models.EventMember{}).
			Select("event_id").
			Where("user_id = ?", *filter.MemberID)
		query = query.Where("id IN (?)", memberOf)
	}
	if len(filter.IDs) > 0 {
		query = query.Where("id IN ?", filter.IDs)
	}
	if len(filter.ExcludeIDs) > 0 {
		query = query.Where("id NOT IN ?", filter.ExcludeIDs)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var events []models.Event
	if err := query.
		Preload("Members").
		Order("created_at DESC").
		Order("id DESC").
		Scopes(database.Paginate(filter.Pagination)).
		Find(&events).Error; err != nil {
		return nil, 0, err
	}

	return events, total, nil
}
