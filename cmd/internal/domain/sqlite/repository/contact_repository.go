package repository

import (
	"visuall/cmd/internal/domain/entity"

	"gorm.io/gorm"
)

type DefaultContactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) *DefaultContactRepository {
	return &DefaultContactRepository{db: db}
}

func (c *DefaultContactRepository) Save(msg *entity.ContactMessage) error {
	return c.db.Create(msg).Error
}
