package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/database"
	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/domain"
	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/repository"
)

var (
	ErrInvalidPriority = errors.New("invalid priority")
	ErrInvalidInterval = errors.New("interval must be a positive number of days")
)

type CreateScheduleInput struct {
	MachineID    uint
	Title        string
	Description  string
	IntervalDays int
	Priority     string
	NextDueAt    *time.Time
}

type UpdateScheduleInput struct {
	Title        *string
	Description  *string
	IntervalDays *int
	Priority     *string
	NextDueAt    *time.Time
	Active       *bool
}

type ScheduleServiceInterface interface {
	List(ctx context.Context, q repository.ScheduleListQuery) (repository.PageResult[domain.MaintenanceSchedule], error)
	ListDue(ctx context.Context, days int) ([]domain.MaintenanceSchedule, error)
	GetByID(ctx context.Context, id uint) (*domain.MaintenanceSchedule, error)
	Create(ctx context.Context, in CreateScheduleInput) (*domain.MaintenanceSchedule, error)
	Update(ctx context.Context, id uint, in UpdateScheduleInput) (*domain.MaintenanceSchedule, error)
	Delete(ctx context.Context, id uint) error
	AdvanceAfterCompletion(ctx context.Context, scheduleID uint, performedAt time.Time) error
}

type ScheduleService struct {
	schedules repository.ScheduleRepository
	machines  repository.MachineRepository
	reporter  *database.ErrorReporter
	now       func() time.Time
}

func NewScheduleService(
	schedules repository.ScheduleRepository,
	machines repository.MachineRepository,
	reporter *database.ErrorReporter,
) *ScheduleService {
	return &ScheduleService{
		schedules: schedules,
		machines:  machines,
		reporter:  reporter,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func validPriority(p string) bool {
	switch p {
	case domain.PriorityLow, domain.PriorityMedium, domain.PriorityHigh, domain.PriorityCritical:
		return true
	}
	return false
}

func (s *ScheduleService) List(ctx context.Context, q repository.ScheduleListQuery) (repository.PageResult[domain.MaintenanceSchedule], error) {
	var result repository.PageResult[domain.MaintenanceSchedule]
	err := s.reporter.Wrap(ctx, "schedules.list", func() error {
		var err error
		result, err = s.schedules.ListPaged(q)
		return err
	})
	return result, err
}

// ListDue returns active schedules whose next due date falls within the
// next `days` days, overdue ones included.
func (s *ScheduleService) ListDue(ctx context.Context, days int) ([]domain.MaintenanceSchedule, error) {
	if days < 0 {
		days = 0
	}
	return s.schedules.ListDueWithin(s.now(), days)
}

func (s *ScheduleService) GetByID(ctx context.Context, id uint) (*domain.MaintenanceSchedule, error) {
	return s.schedules.FindByID(id)
}

func (s *ScheduleService) Create(ctx context.Context, in CreateScheduleInput) (*domain.MaintenanceSchedule, error) {
	if in.IntervalDays <= 0 {
		return nil, ErrInvalidInterval
	}
	priority := in.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !validPriority(priority) {
		return nil, ErrInvalidPriority
	}
	if _, err := s.machines.FindByID(in.MachineID); err != nil {
		return nil, err
	}

	nextDue := s.now().AddDate(0, 0, in.IntervalDays)
	if in.NextDueAt != nil {
		nextDue = *in.NextDueAt
	}
	schedule := &domain.MaintenanceSchedule{
		MachineID:    in.MachineID,
		Title:        strings.TrimSpace(in.Title),
		Description:  strings.TrimSpace(in.Description),
		IntervalDays: in.IntervalDays,
		Priority:     priority,
		NextDueAt:    nextDue,
		Active:       true,
	}
	if err := s.reporter.Wrap(ctx, "schedules.create", func() error {
		return s.schedules.Create(schedule)
	}); err != nil {
		return nil, err
	}
	return schedule, nil
}

func (s *ScheduleService) Update(ctx context.Context, id uint, in UpdateScheduleInput) (*domain.MaintenanceSchedule, error) {
	schedule, err := s.schedules.FindByID(id)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		schedule.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		schedule.Description = strings.TrimSpace(*in.Description)
	}
	if in.IntervalDays != nil {
		if *in.IntervalDays <= 0 {
			return nil, ErrInvalidInterval
		}
		schedule.IntervalDays = *in.IntervalDays
	}
	if in.Priority != nil {
		if !validPriority(*in.Priority) {
			return nil, ErrInvalidPriority
		}
		schedule.Priority = *in.Priority
	}
	if in.NextDueAt != nil {
		schedule.NextDueAt = *in.NextDueAt
	}
	if in.Active != nil {
		schedule.Active = *in.Active
	}
	if err := s.reporter.Wrap(ctx, "schedules.update", func() error {
		return s.schedules.Update(schedule)
	}); err != nil {
		return nil, err
	}
	return schedule, nil
}

func (s *ScheduleService) Delete(ctx context.Context, id uint) error {
	return s.reporter.Wrap(ctx, "schedules.delete", func() error {
		return s.schedules.Delete(id)
	})
}

// AdvanceAfterCompletion moves the schedule's next due date one interval
// past the time the work was performed. Called when a completed record is
// filed against the schedule.
func (s *ScheduleService) AdvanceAfterCompletion(ctx context.Context, scheduleID uint, performedAt time.Time) error {
	schedule, err := s.schedules.FindByID(scheduleID)
	if err != nil {
		return err
	}
	if !schedule.Active {
		return nil
	}
	nextDue := performedAt.AddDate(0, 0, schedule.IntervalDays)
	return s.reporter.Wrap(ctx, "schedules.advance", func() error {
		return s.schedules.AdvanceNextDue(schedule.ID, nextDue)
	})
}
