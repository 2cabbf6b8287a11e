package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/domain"
)

var ErrScheduleNotFound = errors.New("maintenance schedule not found")

type ScheduleListQuery struct {
	PageRequest
	MachineID uint
	Priority  string
	Active    *bool
}

type ScheduleRepository interface {
	ListPaged(q ScheduleListQuery) (PageResult[domain.MaintenanceSchedule], error)
	ListDueWithin(now time.Time, days int) ([]domain.MaintenanceSchedule, error)
	FindByID(id uint) (*domain.MaintenanceSchedule, error)
	Create(s *domain.MaintenanceSchedule) error
	Update(s *domain.MaintenanceSchedule) error
	Delete(id uint) error
	AdvanceNextDue(id uint, nextDueAt time.Time) error
}

type GormScheduleRepository struct{ db *gorm.DB }

func NewScheduleRepository(db *gorm.DB) ScheduleRepository {
	return &GormScheduleRepository{db: db}
}

func (r *GormScheduleRepository) ListPaged(q ScheduleListQuery) (PageResult[domain.MaintenanceSchedule], error) {
	page := normalizePageRequest(q.PageRequest)
	tx := r.db.Model(&domain.MaintenanceSchedule{})
	if q.MachineID != 0 {
		tx = tx.Where("machine_id = ?", q.MachineID)
	}
	if q.Priority != "" {
		tx = tx.Where("priority = ?", q.Priority)
	}
	if q.Active != nil {
		tx = tx.Where("active = ?", *q.Active)
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return PageResult[domain.MaintenanceSchedule]{}, err
	}
	var items []domain.MaintenanceSchedule
	err := tx.Preload("Machine").Order("next_due_at asc").Order("id asc").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&items).Error
	if err != nil {
		return PageResult[domain.MaintenanceSchedule]{}, err
	}
	return PageResult[domain.MaintenanceSchedule]{
		Items:      items,
		Page:       page.Page,
		PageSize:   page.PageSize,
		Total:      total,
		TotalPages: calcTotalPages(total, page.PageSize),
	}, nil
}

func (r *GormScheduleRepository) ListDueWithin(now time.Time, days int) ([]domain.MaintenanceSchedule, error) {
	cutoff := now.AddDate(0, 0, days)
	var items []domain.MaintenanceSchedule
	err := r.db.Preload("Machine").
		Where("active = ? AND next_due_at <= ?", true, cutoff).
		Order("next_due_at asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormScheduleRepository) FindByID(id uint) (*domain.MaintenanceSchedule, error) {
	var s domain.MaintenanceSchedule
	if err := r.db.Preload("Machine").First(&s, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *GormScheduleRepository) Create(s *domain.MaintenanceSchedule) error {
	return r.db.Create(s).Error
}

func (r *GormScheduleRepository) Update(s *domain.MaintenanceSchedule) error {
	res := r.db.Model(&domain.MaintenanceSchedule{}).Where("id = ?", s.ID).Updates(map[string]any{
		"machine_id":    s.MachineID,
		"title":         s.Title,
		"description":   s.Description,
		"interval_days": s.IntervalDays,
		"priority":      s.Priority,
		"next_due_at":   s.NextDueAt,
		"active":        s.Active,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrScheduleNotFound
	}
	return nil
}

func (r *GormScheduleRepository) Delete(id uint) error {
	res := r.db.Delete(&domain.MaintenanceSchedule{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrScheduleNotFound
	}
	return nil
}

func (r *GormScheduleRepository) AdvanceNextDue(id uint, nextDueAt time.Time) error {
	res := r.db.Model(&domain.MaintenanceSchedule{}).Where("id = ?", id).Update("next_due_at", nextDueAt)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrScheduleNotFound
	}
	return nil
}
