package repository

import (
	"Aurora_Blog/internal/model"

	"gorm.io/gorm"
)

type ModerationLogRepository interface {
	Create(entry *model.ModerationLog) error
}

type moderationLogRepository struct {
	db *gorm.DB
}

func NewModerationLogRepository(db *gorm.DB) ModerationLogRepository {
	return &moderationLogRepository{db: db}
}

func (r *moderationLogRepository) Create(entry *model.ModerationLog) error {
	return r.db.Create(entry).Error
}
