package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/database"
	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/domain"
	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/repository"
)

var (
	ErrInvalidRecordStatus = errors.New("invalid record status")
	ErrNegativeCost        = errors.New("cost must not be negative")
	ErrNoAttachment        = errors.New("record has no attachment")
	ErrScheduleMismatch    = errors.New("schedule does not belong to the record's machine")
)

type CreateRecordInput struct {
	MachineID   uint
	ScheduleID  *uint
	PerformedAt time.Time
	Description string
	Cost        float64
	Status      string
}

type UpdateRecordInput struct {
	PerformedAt *time.Time
	Description *string
	Cost        *float64
	Status      *string
}

type RecordServiceInterface interface {
	List(ctx context.Context, q repository.RecordListQuery) (repository.PageResult[domain.MaintenanceRecord], error)
	GetByID(ctx context.Context, id uint) (*domain.MaintenanceRecord, error)
	Create(ctx context.Context, in CreateRecordInput, performedByID uint) (*domain.MaintenanceRecord, error)
	Update(ctx context.Context, id uint, in UpdateRecordInput) (*domain.MaintenanceRecord, error)
	Delete(ctx context.Context, id uint) error
	AttachFile(ctx context.Context, id uint, file io.Reader, fileSize int64, contentType string) (*domain.MaintenanceRecord, error)
	AttachmentURL(ctx context.Context, id uint) (string, error)
	MonthlyReport(ctx context.Context, year, month int) (*repository.MonthlyReport, error)
}

type RecordService struct {
	records   repository.RecordRepository
	machines  repository.MachineRepository
	schedules *ScheduleService
	storage   AttachmentStorage
	reporter  *database.ErrorReporter
	logger    *slog.Logger
}

func NewRecordService(
	records repository.RecordRepository,
	machines repository.MachineRepository,
	schedules *ScheduleService,
	storage AttachmentStorage,
	reporter *database.ErrorReporter,
	logger *slog.Logger,
) *RecordService {
	return &RecordService{
		records:   records,
		machines:  machines,
		schedules: schedules,
		storage:   storage,
		reporter:  reporter,
		logger:    logger,
	}
}

func validRecordStatus(status string) bool {
	return status == domain.RecordStatusPending || status == domain.RecordStatusCompleted
}

func (s *RecordService) List(ctx context.Context, q repository.RecordListQuery) (repository.PageResult[domain.MaintenanceRecord], error) {
	var result repository.PageResult[domain.MaintenanceRecord]
	err := s.reporter.Wrap(ctx, "records.list", func() error {
		var err error
		result, err = s.records.ListPaged(q)
		return err
	})
	return result, err
}

func (s *RecordService) GetByID(ctx context.Context, id uint) (*domain.MaintenanceRecord, error) {
	return s.records.FindByID(id)
}

// Create files a maintenance record. A completed record linked to a
// schedule also pushes that schedule's next due date forward.
func (s *RecordService) Create(ctx context.Context, in CreateRecordInput, performedByID uint) (*domain.MaintenanceRecord, error) {
	if in.Cost < 0 {
		return nil, ErrNegativeCost
	}
	status := in.Status
	if status == "" {
		status = domain.RecordStatusCompleted
	}
	if !validRecordStatus(status) {
		return nil, ErrInvalidRecordStatus
	}
	if _, err := s.machines.FindByID(in.MachineID); err != nil {
		return nil, err
	}
	if in.ScheduleID != nil {
		schedule, err := s.schedules.GetByID(ctx, *in.ScheduleID)
		if err != nil {
			return nil, err
		}
		if schedule.MachineID != in.MachineID {
			return nil, ErrScheduleMismatch
		}
	}

	performedAt := in.PerformedAt
	if performedAt.IsZero() {
		performedAt = time.Now().UTC()
	}
	record := &domain.MaintenanceRecord{
		MachineID:     in.MachineID,
		ScheduleID:    in.ScheduleID,
		PerformedByID: performedByID,
		PerformedAt:   performedAt,
		Description:   strings.TrimSpace(in.Description),
		Cost:          in.Cost,
		Status:        status,
	}
	if err := s.reporter.Wrap(ctx, "records.create", func() error {
		return s.records.Create(record)
	}); err != nil {
		return nil, err
	}

	if record.ScheduleID != nil && record.Status == domain.RecordStatusCompleted {
		if err := s.schedules.AdvanceAfterCompletion(ctx, *record.ScheduleID, record.PerformedAt); err != nil {
			// The record is already filed; a stale due date is recoverable.
			s.logger.ErrorContext(ctx, "failed to advance schedule after completion",
				"schedule_id", *record.ScheduleID,
				"record_id", record.ID,
				"error", err,
			)
		}
	}
	return record, nil
}

func (s *RecordService) Update(ctx context.Context, id uint, in UpdateRecordInput) (*domain.MaintenanceRecord, error) {
	record, err := s.records.FindByID(id)
	if err != nil {
		return nil, err
	}
	wasCompleted := record.Status == domain.RecordStatusCompleted
	if in.PerformedAt != nil {
		record.PerformedAt = *in.PerformedAt
	}
	if in.Description != nil {
		record.Description = strings.TrimSpace(*in.Description)
	}
	if in.Cost != nil {
		if *in.Cost < 0 {
			return nil, ErrNegativeCost
		}
		record.Cost = *in.Cost
	}
	if in.Status != nil {
		if !validRecordStatus(*in.Status) {
			return nil, ErrInvalidRecordStatus
		}
		record.Status = *in.Status
	}
	if err := s.reporter.Wrap(ctx, "records.update", func() error {
		return s.records.Update(record)
	}); err != nil {
		return nil, err
	}

	if record.ScheduleID != nil && !wasCompleted && record.Status == domain.RecordStatusCompleted {
		if err := s.schedules.AdvanceAfterCompletion(ctx, *record.ScheduleID, record.PerformedAt); err != nil {
			s.logger.ErrorContext(ctx, "failed to advance schedule after completion",
				"schedule_id", *record.ScheduleID,
				"record_id", record.ID,
				"error", err,
			)
		}
	}
	return record, nil
}

func (s *RecordService) Delete(ctx context.Context, id uint) error {
	record, err := s.records.FindByID(id)
	if err != nil {
		return err
	}
	if err := s.reporter.Wrap(ctx, "records.delete", func() error {
		return s.records.Delete(id)
	}); err != nil {
		return err
	}
	if record.AttachmentKey != "" {
		if err := s.storage.Delete(ctx, record.AttachmentKey); err != nil {
			s.logger.ErrorContext(ctx, "failed to delete orphaned attachment",
				"record_id", id,
				"object_key", record.AttachmentKey,
				"error", err,
			)
		}
	}
	return nil
}

// AttachFile uploads a document for the record, replacing any previous one.
func (s *RecordService) AttachFile(ctx context.Context, id uint, file io.Reader, fileSize int64, contentType string) (*domain.MaintenanceRecord, error) {
	record, err := s.records.FindByID(id)
	if err != nil {
		return nil, err
	}
	key, err := s.storage.Upload(ctx, record.ID, file, fileSize, contentType)
	if err != nil {
		return nil, err
	}
	previous := record.AttachmentKey
	if err := s.reporter.Wrap(ctx, "records.set_attachment", func() error {
		return s.records.SetAttachmentKey(record.ID, key)
	}); err != nil {
		// The DB row still points at the old object; drop the new one.
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			s.logger.ErrorContext(ctx, "failed to clean up attachment after db error",
				"object_key", key, "error", delErr)
		}
		return nil, err
	}
	if previous != "" && previous != key {
		if err := s.storage.Delete(ctx, previous); err != nil {
			s.logger.ErrorContext(ctx, "failed to delete replaced attachment",
				"object_key", previous, "error", err)
		}
	}
	record.AttachmentKey = key
	return record, nil
}

func (s *RecordService) AttachmentURL(ctx context.Context, id uint) (string, error) {
	record, err := s.records.FindByID(id)
	if err != nil {
		return "", err
	}
	if record.AttachmentKey == "" {
		return "", ErrNoAttachment
	}
	return s.storage.PresignedURL(ctx, record.AttachmentKey)
}

func (s *RecordService) MonthlyReport(ctx context.Context, year, month int) (*repository.MonthlyReport, error) {
	var report *repository.MonthlyReport
	err := s.reporter.Wrap(ctx, "records.monthly_report", func() error {
		var err error
		report, err = s.records.MonthlyReport(year, month)
		return err
	})
	return report, err
}
