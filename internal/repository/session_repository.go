package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/domain"
)

var ErrSessionNotFound = errors.New("session not found")

type SessionRepository interface {
	Create(s *domain.Session) error
	FindByHash(hash string) (*domain.Session, error)
	ListActiveByUserID(userID uint) ([]domain.Session, error)
	TouchLastUsed(id uint, at time.Time) error
	RevokeByIDForUser(userID, sessionID uint) (bool, error)
	RevokeByHash(hash string) error
	DeleteExpiredBefore(cutoff time.Time) (int64, error)
}

type GormSessionRepository struct{ db *gorm.DB }

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &GormSessionRepository{db: db}
}

func (r *GormSessionRepository) Create(s *domain.Session) error {
	return r.db.Create(s).Error
}

func (r *GormSessionRepository) FindByHash(hash string) (*domain.Session, error) {
	var s domain.Session
	err := r.db.Where("refresh_token_hash = ?", hash).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *GormSessionRepository) ListActiveByUserID(userID uint) ([]domain.Session, error) {
	var sessions []domain.Session
	err := r.db.
		Where("user_id = ? AND revoked_at IS NULL AND expires_at > ?", userID, time.Now().UTC()).
		Order("created_at desc").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *GormSessionRepository) TouchLastUsed(id uint, at time.Time) error {
	return r.db.Model(&domain.Session{}).Where("id = ?", id).Update("last_used_at", at).Error
}

func (r *GormSessionRepository) RevokeByIDForUser(userID, sessionID uint) (bool, error) {
	res := r.db.Model(&domain.Session{}).
		Where("id = ? AND user_id = ? AND revoked_at IS NULL", sessionID, userID).
		Update("revoked_at", time.Now().UTC())
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.Model(&domain.Session{}).Where("id = ? AND user_id = ?", sessionID, userID).Count(&count).Error; err != nil {
			return false, err
		}
		if count == 0 {
			return false, ErrSessionNotFound
		}
		return false, nil
	}
	return true, nil
}

func (r *GormSessionRepository) RevokeByHash(hash string) error {
	res := r.db.Model(&domain.Session{}).
		Where("refresh_token_hash = ? AND revoked_at IS NULL", hash).
		Update("revoked_at", time.Now().UTC())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *GormSessionRepository) DeleteExpiredBefore(cutoff time.Time) (int64, error) {
	res := r.db.Where("expires_at < ?", cutoff).Delete(&domain.Session{})
	return res.RowsAffected, res.Error
}
