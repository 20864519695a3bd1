package repository

import (
	"github.com/yukikurage/splitmate-api/internal/models"
	"gorm.io/gorm"
)

// GormPlanRepository is a GORM implementation of PlanRepository
type GormPlanRepository struct {
	db *gorm.DB
}

// NewPlanRepository creates a new PlanRepository
func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &GormPlanRepository{db: db}
}

// Create creates a new plan
func (r *GormPlanRepository) Create(plan *models.Plan) error {
	return r.db.Create(plan).Error
}

// FindByID finds a plan by ID
func (r *GormPlanRepository) FindByID(id uint64) (*models.Plan, error) {
	var plan models.Plan
	if err := r.db.First(&plan, id).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

// FindByName finds a plan by name
func (r *GormPlanRepository) FindByName(name models.PlanName) (*models.Plan, error) {
	var plan models.Plan
	if err := r.db.Where("name = ?", name).First(&plan).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}
