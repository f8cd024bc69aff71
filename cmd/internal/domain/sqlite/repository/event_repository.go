package repository

import (
	"gorm.io/gorm"
	"opsched/cmd/internal/domain/entity"
)

type DefaultEventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *DefaultEventRepository {
	return &DefaultEventRepository{db: db}
}

// FindAll loads every event ordered the same way the store lists them.
func (r *DefaultEventRepository) FindAll() ([]*entity.ScheduleEvent, error) {
	var events []*entity.ScheduleEvent
	err := r.db.Order("start_time asc").Order("id asc").Find(&events).Error
	return events, err
}

func (r *DefaultEventRepository) Save(event *entity.ScheduleEvent) error {
	return r.db.Save(event).Error
}

func (r *DefaultEventRepository) Delete(id string) error {
	return r.db.Delete(&entity.ScheduleEvent{}, "id = ?", id).Error
}
