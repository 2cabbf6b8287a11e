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

var ErrInvalidMachineStatus = errors.New("invalid machine status")

type CreateMachineInput struct {
	AssetTag     string
	Name         string
	Location     string
	SerialNumber string
	Status       string
	InstalledAt  *time.Time
}

type UpdateMachineInput struct {
	Name         *string
	Location     *string
	SerialNumber *string
	Status       *string
	InstalledAt  *time.Time
}

type MachineServiceInterface interface {
	List(ctx context.Context, q repository.MachineListQuery) (repository.PageResult[domain.Machine], error)
	GetByID(ctx context.Context, id uint) (*domain.Machine, error)
	Create(ctx context.Context, in CreateMachineInput) (*domain.Machine, error)
	Update(ctx context.Context, id uint, in UpdateMachineInput, changedByID uint) (*domain.Machine, error)
	Delete(ctx context.Context, id uint) error
	History(ctx context.Context, machineID uint) ([]domain.MachineHistory, error)
}

type MachineService struct {
	machines repository.MachineRepository
	reporter *database.ErrorReporter
}

func NewMachineService(machines repository.MachineRepository, reporter *database.ErrorReporter) *MachineService {
	return &MachineService{machines: machines, reporter: reporter}
}

func validMachineStatus(status string) bool {
	switch status {
	case domain.MachineStatusOperational, domain.MachineStatusMaintenance, domain.MachineStatusRetired:
		return true
	}
	return false
}

func (s *MachineService) List(ctx context.Context, q repository.MachineListQuery) (repository.PageResult[domain.Machine], error) {
	var result repository.PageResult[domain.Machine]
	err := s.reporter.Wrap(ctx, "machines.list", func() error {
		var err error
		result, err = s.machines.ListPaged(q)
		return err
	})
	return result, err
}

func (s *MachineService) GetByID(ctx context.Context, id uint) (*domain.Machine, error) {
	return s.machines.FindByID(id)
}

func (s *MachineService) Create(ctx context.Context, in CreateMachineInput) (*domain.Machine, error) {
	status := in.Status
	if status == "" {
		status = domain.MachineStatusOperational
	}
	if !validMachineStatus(status) {
		return nil, ErrInvalidMachineStatus
	}
	machine := &domain.Machine{
		AssetTag:     strings.TrimSpace(in.AssetTag),
		Name:         strings.TrimSpace(in.Name),
		Location:     strings.TrimSpace(in.Location),
		SerialNumber: strings.TrimSpace(in.SerialNumber),
		Status:       status,
		InstalledAt:  in.InstalledAt,
	}
	if err := s.reporter.Wrap(ctx, "machines.create", func() error {
		return s.machines.Create(machine)
	}); err != nil {
		return nil, err
	}
	return machine, nil
}

// Update applies partial changes and appends one history entry per field
// that actually changed.
func (s *MachineService) Update(ctx context.Context, id uint, in UpdateMachineInput, changedByID uint) (*domain.Machine, error) {
	machine, err := s.machines.FindByID(id)
	if err != nil {
		return nil, err
	}

	var history []domain.MachineHistory
	change := func(field, oldVal, newVal string) {
		if oldVal == newVal {
			return
		}
		history = append(history, domain.MachineHistory{
			MachineID:   machine.ID,
			Field:       field,
			OldValue:    oldVal,
			NewValue:    newVal,
			ChangedByID: changedByID,
		})
	}

	if in.Name != nil {
		change("name", machine.Name, *in.Name)
		machine.Name = *in.Name
	}
	if in.Location != nil {
		change("location", machine.Location, *in.Location)
		machine.Location = *in.Location
	}
	if in.SerialNumber != nil {
		change("serial_number", machine.SerialNumber, *in.SerialNumber)
		machine.SerialNumber = *in.SerialNumber
	}
	if in.Status != nil {
		if !validMachineStatus(*in.Status) {
			return nil, ErrInvalidMachineStatus
		}
		change("status", machine.Status, *in.Status)
		machine.Status = *in.Status
	}
	if in.InstalledAt != nil {
		change("installed_at", formatInstalledAt(machine.InstalledAt), in.InstalledAt.Format(time.RFC3339))
		machine.InstalledAt = in.InstalledAt
	}

	if err := s.reporter.Wrap(ctx, "machines.update", func() error {
		if err := s.machines.Update(machine); err != nil {
			return err
		}
		return s.machines.AppendHistory(history)
	}); err != nil {
		return nil, err
	}
	return machine, nil
}

func (s *MachineService) Delete(ctx context.Context, id uint) error {
	return s.reporter.Wrap(ctx, "machines.delete", func() error {
		return s.machines.Delete(id)
	})
}

func (s *MachineService) History(ctx context.Context, machineID uint) ([]domain.MachineHistory, error) {
	if _, err := s.machines.FindByID(machineID); err != nil {
		return nil, err
	}
	return s.machines.ListHistory(machineID)
}

func formatInstalledAt(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
