package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/domain"
)

var ErrMachineNotFound = errors.New("machine not found")

type MachineListQuery struct {
	PageRequest
	Status   string
	Location string
	Search   string
}

type MachineRepository interface {
	ListPaged(q MachineListQuery) (PageResult[domain.Machine], error)
	FindByID(id uint) (*domain.Machine, error)
	FindByAssetTag(tag string) (*domain.Machine, error)
	Create(m *domain.Machine) error
	Update(m *domain.Machine) error
	Delete(id uint) error
	AppendHistory(entries []domain.MachineHistory) error
	ListHistory(machineID uint) ([]domain.MachineHistory, error)
}

type GormMachineRepository struct{ db *gorm.DB }

func NewMachineRepository(db *gorm.DB) MachineRepository {
	return &GormMachineRepository{db: db}
}

func (r *GormMachineRepository) ListPaged(q MachineListQuery) (PageResult[domain.Machine], error) {
	page := normalizePageRequest(q.PageRequest)
	tx := r.db.Model(&domain.Machine{})
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}
	if q.Location != "" {
		tx = tx.Where("location = ?", q.Location)
	}
	if q.Search != "" {
		like := "%" + strings.TrimSpace(q.Search) + "%"
		tx = tx.Where("name LIKE ? OR asset_tag LIKE ?", like, like)
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return PageResult[domain.Machine]{}, err
	}
	var items []domain.Machine
	err := tx.Order("asset_tag asc").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&items).Error
	if err != nil {
		return PageResult[domain.Machine]{}, err
	}
	return PageResult[domain.Machine]{
		Items:      items,
		Page:       page.Page,
		PageSize:   page.PageSize,
		Total:      total,
		TotalPages: calcTotalPages(total, page.PageSize),
	}, nil
}

func (r *GormMachineRepository) FindByID(id uint) (*domain.Machine, error) {
	var m domain.Machine
	if err := r.db.First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMachineNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *GormMachineRepository) FindByAssetTag(tag string) (*domain.Machine, error) {
	var m domain.Machine
	err := r.db.Where("asset_tag = ?", strings.TrimSpace(tag)).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMachineNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *GormMachineRepository) Create(m *domain.Machine) error {
	return r.db.Create(m).Error
}

func (r *GormMachineRepository) Update(m *domain.Machine) error {
	res := r.db.Model(&domain.Machine{}).Where("id = ?", m.ID).Updates(map[string]any{
		"asset_tag":     strings.TrimSpace(m.AssetTag),
		"name":          strings.TrimSpace(m.Name),
		"location":      strings.TrimSpace(m.Location),
		"serial_number": strings.TrimSpace(m.SerialNumber),
		"status":        m.Status,
		"installed_at":  m.InstalledAt,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrMachineNotFound
	}
	return nil
}

func (r *GormMachineRepository) Delete(id uint) error {
	res := r.db.Delete(&domain.Machine{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrMachineNotFound
	}
	return nil
}

func (r *GormMachineRepository) AppendHistory(entries []domain.MachineHistory) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.Create(&entries).Error
}

func (r *GormMachineRepository) ListHistory(machineID uint) ([]domain.MachineHistory, error) {
	var entries []domain.MachineHistory
	err := r.db.Where("machine_id = ?", machineID).Order("created_at desc").Order("id desc").Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
