package repository

import (
	"github.com/yukikurage/splitmate-api/internal/models"
	"gorm.io/gorm"
)

// GormUserInviteRepository is a GORM implementation of UserInviteRepository
type GormUserInviteRepository struct {
	db *gorm.DB
}

// NewUserInviteRepository creates a new UserInviteRepository
func NewUserInviteRepository(db *gorm.DB) UserInviteRepository {
	return &GormUserInviteRepository{db: db}
}

// Create creates a new invitation
func (r *GormUserInviteRepository) Create(invite *models.UserInvite) error {
	return r.db.Create(invite).Error
}

// Find finds an invitation by email and event
func (r *GormUserInviteRepository) Find(email string, eventID uint64) (*models.UserInvite, error) {
	var invite models.UserInvite
	if err := r.db.Where("email = ? AND event_id = ?", email, eventID).First(&invite).Error; err != nil {
		return nil, err
	}
	return &invite, nil
}

// ListByEmail lists invitations sent to an email
func (r *GormUserInviteRepository) ListByEmail(email string) ([]models.UserInvite, error) {
	var invites []models.UserInvite
	if err := r.db.Where("email = ?", email).Order("created_at ASC").Find(&invites).Error; err != nil {
		return nil, err
	}
	return invites, nil
}

// Delete deletes an invitation by email and event
func (r *GormUserInviteRepository) Delete(email string, eventID uint64) (int64, error) {
	result := r.db.Where("email = ? AND event_id = ?", email, eventID).Delete(&models.UserInvite{})
	return result.RowsAffected, result.Error
}
