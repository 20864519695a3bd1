package repository

import "gorm.io/gorm"

// GormStore is a GORM implementation of Store
type GormStore struct {
	db *gorm.DB
}

// NewStore creates a new Store
func NewStore(db *gorm.DB) Store {
	return &GormStore{db: db}
}

func (s *GormStore) Users() UserRepository {
	return NewUserRepository(s.db)
}

func (s *GormStore) Events() EventRepository {
	return NewEventRepository(s.db)
}

func (s *GormStore) Invites() UserInviteRepository {
	return NewUserInviteRepository(s.db)
}

func (s *GormStore) Plans() PlanRepository {
	return NewPlanRepository(s.db)
}

// Transaction runs fn inside a database transaction
func (s *GormStore) Transaction(fn func(tx Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}
