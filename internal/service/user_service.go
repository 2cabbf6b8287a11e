package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/database"
	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/domain"
	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/repository"
	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/security"
)

var (
	ErrInvalidRole       = errors.New("invalid role")
	ErrInvalidUserStatus = errors.New("invalid user status")
	ErrPasswordTooShort  = errors.New("password must be at least 8 characters")
)

type CreateUserInput struct {
	Email    string
	Name     string
	Password string
	Role     string
}

type UpdateUserInput struct {
	Name     *string
	Password *string
	Role     *string
	Status   *string
}

type UserServiceInterface interface {
	List(ctx context.Context, q repository.UserListQuery) (repository.PageResult[domain.User], error)
	GetByID(ctx context.Context, id uint) (*domain.User, error)
	Create(ctx context.Context, in CreateUserInput) (*domain.User, error)
	Update(ctx context.Context, id uint, in UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, id uint) error
}

type UserService struct {
	users    repository.UserRepository
	reporter *database.ErrorReporter
}

func NewUserService(users repository.UserRepository, reporter *database.ErrorReporter) *UserService {
	return &UserService{users: users, reporter: reporter}
}

func validRole(role string) bool {
	switch role {
	case domain.RoleAdmin, domain.RoleTechnician, domain.RoleViewer:
		return true
	}
	return false
}

func validUserStatus(status string) bool {
	return status == domain.UserStatusActive || status == domain.UserStatusDisabled
}

func (s *UserService) List(ctx context.Context, q repository.UserListQuery) (repository.PageResult[domain.User], error) {
	var result repository.PageResult[domain.User]
	err := s.reporter.Wrap(ctx, "users.list", func() error {
		var err error
		result, err = s.users.ListPaged(q)
		return err
	})
	return result, err
}

func (s *UserService) GetByID(ctx context.Context, id uint) (*domain.User, error) {
	return s.users.FindByID(id)
}

func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*domain.User, error) {
	role := in.Role
	if role == "" {
		role = domain.RoleTechnician
	}
	if !validRole(role) {
		return nil, ErrInvalidRole
	}
	if len(in.Password) < 8 {
		return nil, ErrPasswordTooShort
	}
	hash, err := security.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: hash,
		Role:         role,
		Status:       domain.UserStatusActive,
	}
	if err := s.reporter.Wrap(ctx, "users.create", func() error {
		return s.users.Create(user)
	}); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Update(ctx context.Context, id uint, in UpdateUserInput) (*domain.User, error) {
	user, err := s.users.FindByID(id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.Role != nil {
		if !validRole(*in.Role) {
			return nil, ErrInvalidRole
		}
		user.Role = *in.Role
	}
	if in.Status != nil {
		if !validUserStatus(*in.Status) {
			return nil, ErrInvalidUserStatus
		}
		user.Status = *in.Status
	}
	if in.Password != nil {
		if len(*in.Password) < 8 {
			return nil, ErrPasswordTooShort
		}
		hash, err := security.HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if err := s.reporter.Wrap(ctx, "users.update", func() error {
		return s.users.Update(user)
	}); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id uint) error {
	return s.reporter.Wrap(ctx, "users.delete", func() error {
		return s.users.Delete(id)
	})
}
