// Package attendance provides HTTP handlers and business logic for
// daily attendance records.
package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yechale/rollcall/internal/domain"
	"github.com/yechale/rollcall/internal/notifications"
	"github.com/yechale/rollcall/internal/pkg/ctxlog"
	"github.com/yechale/rollcall/internal/school"
)

// Service errors.
var (
	ErrRecordNotFound = errors.New("attendance record not found")
	ErrInvalidStatus  = errors.New("invalid attendance status")
	ErrInvalidDate    = errors.New("invalid date, expected YYYY-MM-DD")
)

// Notifier sends parent notifications for a marked status.
type Notifier interface {
	SendOne(ctx context.Context, student domain.Student, status domain.AttendanceStatus, note string, methods notifications.Methods) notifications.ChannelResults
}

// Service contains business logic for attendance records.
type Service struct {
	repo     Repository
	students *school.Service
	notifier Notifier
}

// NewService creates a new attendance service. notifier may be nil when
// notifications are disabled.
func NewService(repo Repository, students *school.Service, notifier Notifier) *Service {
	return &Service{
		repo:     repo,
		students: students,
		notifier: notifier,
	}
}

// MarkResult is the outcome of marking attendance, including any
// notification delivery results when automatic sending fired.
type MarkResult struct {
	Record       *domain.AttendanceRecord      `json:"record"`
	Notification *notifications.ChannelResults `json:"notification,omitempty"`
}

// Mark records a student's status for a date. Marking the same student
// and date again replaces the earlier record. When automatic sending is
// enabled and the status warrants a message, parents are notified on the
// channels the school has switched on.
func (s *Service) Mark(ctx context.Context, studentID, date string, status domain.AttendanceStatus, note string) (*MarkResult, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, ErrInvalidDate
	}

	student, err := s.students.GetStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	record := &domain.AttendanceRecord{
		StudentID: student.ID,
		Date:      date,
		Status:    status,
		Note:      note,
	}
	if err := s.repo.UpsertRecord(ctx, record); err != nil {
		return nil, fmt.Errorf("upsert record: %w", err)
	}

	result := &MarkResult{Record: record}

	if s.notifier != nil && status.Notifiable() {
		settings, err := s.students.Settings(ctx)
		if err != nil {
			ctxlog.FromContext(ctx).Error("load settings for auto-send", "error", err)
			return result, nil
		}
		if settings.AutoSend && (settings.SendEmail || settings.SendSMS) {
			methods := notifications.Methods{
				Email: settings.SendEmail,
				SMS:   settings.SendSMS,
			}
			results := s.notifier.SendOne(ctx, *student, status, note, methods)
			result.Notification = &results
		}
	}

	return result, nil
}

// Get retrieves one student's record for a date.
func (s *Service) Get(ctx context.Context, studentID, date string) (*domain.AttendanceRecord, error) {
	record, err := s.repo.GetRecord(ctx, studentID, date)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// ListByDate retrieves all records for a school day.
func (s *Service) ListByDate(ctx context.Context, date string) ([]domain.AttendanceRecord, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, ErrInvalidDate
	}
	records, err := s.repo.ListByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("list by date: %w", err)
	}
	return records, nil
}

// ListByStudent retrieves a student's records, optionally bounded by
// inclusive from/to dates.
func (s *Service) ListByStudent(ctx context.Context, studentID, from, to string) ([]domain.AttendanceRecord, error) {
	if _, err := s.students.GetStudent(ctx, studentID); err != nil {
		return nil, err
	}
	records, err := s.repo.ListByStudent(ctx, studentID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list by student: %w", err)
	}
	return records, nil
}

// Unmark removes a student's record for a date.
func (s *Service) Unmark(ctx context.Context, studentID, date string) error {
	return s.repo.DeleteRecord(ctx, studentID, date)
}
