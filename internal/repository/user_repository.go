package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/domain"
)

var ErrUserNotFound = errors.New("user not found")

type UserListQuery struct {
	PageRequest
	Role   string
	Status string
	Email  string
}

type UserRepository interface {
	ListPaged(q UserListQuery) (PageResult[domain.User], error)
	FindByID(id uint) (*domain.User, error)
	FindByEmail(email string) (*domain.User, error)
	Create(u *domain.User) error
	Update(u *domain.User) error
	Delete(id uint) error
}

type GormUserRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) ListPaged(q UserListQuery) (PageResult[domain.User], error) {
	page := normalizePageRequest(q.PageRequest)
	tx := r.db.Model(&domain.User{})
	if q.Role != "" {
		tx = tx.Where("role = ?", q.Role)
	}
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}
	if q.Email != "" {
		tx = tx.Where("email LIKE ?", "%"+strings.TrimSpace(strings.ToLower(q.Email))+"%")
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return PageResult[domain.User]{}, err
	}
	var items []domain.User
	err := tx.Order("email asc").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&items).Error
	if err != nil {
		return PageResult[domain.User]{}, err
	}
	return PageResult[domain.User]{
		Items:      items,
		Page:       page.Page,
		PageSize:   page.PageSize,
		Total:      total,
		TotalPages: calcTotalPages(total, page.PageSize),
	}, nil
}

func (r *GormUserRepository) FindByID(id uint) (*domain.User, error) {
	var u domain.User
	if err := r.db.First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *GormUserRepository) FindByEmail(email string) (*domain.User, error) {
	var u domain.User
	err := r.db.Where("email = ?", strings.TrimSpace(strings.ToLower(email))).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *GormUserRepository) Create(u *domain.User) error {
	u.Email = strings.TrimSpace(strings.ToLower(u.Email))
	return r.db.Create(u).Error
}

func (r *GormUserRepository) Update(u *domain.User) error {
	res := r.db.Model(&domain.User{}).Where("id = ?", u.ID).Updates(map[string]any{
		"email":  strings.TrimSpace(strings.ToLower(u.Email)),
		"name":   strings.TrimSpace(u.Name),
		"role":   u.Role,
		"status": u.Status,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *GormUserRepository) Delete(id uint) error {
	res := r.db.Delete(&domain.User{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
