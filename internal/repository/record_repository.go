package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/domain"
)

var ErrRecordNotFound = errors.New("maintenance record not found")

type RecordListQuery struct {
	PageRequest
	MachineID  uint
	ScheduleID uint
	Status     string
	MaxCost    float64
}

// MonthlyReport aggregates maintenance activity for one calendar month.
type MonthlyReport struct {
	Year        int                        `json:"year"`
	Month       int                        `json:"month"`
	RecordCount int64                      `json:"record_count"`
	TotalCost   float64                    `json:"total_cost"`
	Records     []domain.MaintenanceRecord `json:"records"`
}

type RecordRepository interface {
	ListPaged(q RecordListQuery) (PageResult[domain.MaintenanceRecord], error)
	FindByID(id uint) (*domain.MaintenanceRecord, error)
	Create(rec *domain.MaintenanceRecord) error
	Update(rec *domain.MaintenanceRecord) error
	Delete(id uint) error
	SetAttachmentKey(id uint, key string) error
	MonthlyReport(year, month int) (*MonthlyReport, error)
}

type GormRecordRepository struct{ db *gorm.DB }

func NewRecordRepository(db *gorm.DB) RecordRepository {
	return &GormRecordRepository{db: db}
}

func (r *GormRecordRepository) ListPaged(q RecordListQuery) (PageResult[domain.MaintenanceRecord], error) {
	page := normalizePageRequest(q.PageRequest)
	tx := r.db.Model(&domain.MaintenanceRecord{})
	if q.MachineID != 0 {
		tx = tx.Where("machine_id = ?", q.MachineID)
	}
	if q.ScheduleID != 0 {
		tx = tx.Where("schedule_id = ?", q.ScheduleID)
	}
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}
	if q.MaxCost > 0 {
		tx = tx.Where("cost <= ?", q.MaxCost)
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return PageResult[domain.MaintenanceRecord]{}, err
	}
	var items []domain.MaintenanceRecord
	err := tx.Preload("Machine").Preload("PerformedBy").
		Order("performed_at desc").Order("id desc").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&items).Error
	if err != nil {
		return PageResult[domain.MaintenanceRecord]{}, err
	}
	return PageResult[domain.MaintenanceRecord]{
		Items:      items,
		Page:       page.Page,
		PageSize:   page.PageSize,
		Total:      total,
		TotalPages: calcTotalPages(total, page.PageSize),
	}, nil
}

func (r *GormRecordRepository) FindByID(id uint) (*domain.MaintenanceRecord, error) {
	var rec domain.MaintenanceRecord
	err := r.db.Preload("Machine").Preload("Schedule").Preload("PerformedBy").First(&rec, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (r *GormRecordRepository) Create(rec *domain.MaintenanceRecord) error {
	return r.db.Create(rec).Error
}

func (r *GormRecordRepository) Update(rec *domain.MaintenanceRecord) error {
	res := r.db.Model(&domain.MaintenanceRecord{}).Where("id = ?", rec.ID).Updates(map[string]any{
		"machine_id":   rec.MachineID,
		"schedule_id":  rec.ScheduleID,
		"performed_at": rec.PerformedAt,
		"description":  rec.Description,
		"cost":         rec.Cost,
		"status":       rec.Status,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (r *GormRecordRepository) Delete(id uint) error {
	res := r.db.Delete(&domain.MaintenanceRecord{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (r *GormRecordRepository) SetAttachmentKey(id uint, key string) error {
	res := r.db.Model(&domain.MaintenanceRecord{}).Where("id = ?", id).Update("attachment_key", key)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (r *GormRecordRepository) MonthlyReport(year, month int) (*MonthlyReport, error) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	report := &MonthlyReport{Year: year, Month: month}
	base := r.db.Model(&domain.MaintenanceRecord{}).
		Where("performed_at >= ? AND performed_at < ?", start, end)

	if err := base.Session(&gorm.Session{}).Count(&report.RecordCount).Error; err != nil {
		return nil, err
	}
	var totalCost *float64
	if err := base.Session(&gorm.Session{}).Select("SUM(cost)").Scan(&totalCost).Error; err != nil {
		return nil, err
	}
	if totalCost != nil {
		report.TotalCost = *totalCost
	}
	err := r.db.Preload("Machine").Preload("PerformedBy").
		Where("performed_at >= ? AND performed_at < ?", start, end).
		Order("performed_at asc").
		Find(&report.Records).Error
	if err != nil {
		return nil, err
	}
	return report, nil
}
