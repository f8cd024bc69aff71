package repository

import (
	"gorm.io/gorm"
	"opsched/cmd/internal/domain/entity"
)

type DefaultLinkRepository struct {
	db *gorm.DB
}

func NewLinkRepository(db *gorm.DB) *DefaultLinkRepository {
	return &DefaultLinkRepository{db: db}
}

func (r *DefaultLinkRepository) FindAll() ([]*entity.SchedulingLink, error) {
	var links []*entity.SchedulingLink
	err := r.db.Order("created_at asc").Find(&links).Error
	return links, err
}

func (r *DefaultLinkRepository) Save(link *entity.SchedulingLink) error {
	return r.db.Save(link).Error
}

func (r *DefaultLinkRepository) Delete(id string) error {
	return r.db.Delete(&entity.SchedulingLink{}, "id = ?", id).Error
}
