// Package school provides HTTP handlers and business logic for school
// settings and the student roster.
package school

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yechale/rollcall/internal/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Service errors.
var (
	ErrSettingsNotFound   = errors.New("school settings not found")
	ErrStudentNotFound    = errors.New("student not found")
	ErrDuplicateStudentID = errors.New("student id already in use")
)

// Service contains business logic for school settings and students.
type Service struct {
	repo  Repository
	title cases.Caser
}

// NewService creates a new school service.
func NewService(repo Repository) *Service {
	return &Service{
		repo:  repo,
		title: cases.Title(language.English),
	}
}

// Settings returns the stored school settings, or defaults when nothing
// has been saved yet.
func (s *Service) Settings(ctx context.Context) (*domain.SchoolSettings, error) {
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		if errors.Is(err, ErrSettingsNotFound) {
			defaults := domain.DefaultSettings()
			return &defaults, nil
		}
		return nil, fmt.Errorf("get settings: %w", err)
	}
	if settings.SchoolName == "" {
		settings.SchoolName = domain.DefaultSchoolName
	}
	return settings, nil
}

// UpdateSettings replaces the stored school settings.
func (s *Service) UpdateSettings(ctx context.Context, settings *domain.SchoolSettings) error {
	settings.UpdatedAt = time.Now().UTC()
	if err := s.repo.SaveSettings(ctx, settings); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// SchoolInfo returns the identity fields senders embed in outgoing messages.
func (s *Service) SchoolInfo(ctx context.Context) (domain.SchoolInfo, error) {
	settings, err := s.Settings(ctx)
	if err != nil {
		return domain.SchoolInfo{}, err
	}
	return settings.Info(), nil
}

// CreateStudent adds a student to the roster. Names are normalized to
// title case so the roster stays consistent regardless of how entries
// were typed in.
func (s *Service) CreateStudent(ctx context.Context, student *domain.Student) error {
	s.normalizeNames(student)

	existing, err := s.repo.GetStudentByStudentID(ctx, student.StudentID)
	if err != nil && !errors.Is(err, ErrStudentNotFound) {
		return fmt.Errorf("check student id: %w", err)
	}
	if existing != nil {
		return ErrDuplicateStudentID
	}

	if err := s.repo.CreateStudent(ctx, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// GetStudent retrieves a student by internal ID.
func (s *Service) GetStudent(ctx context.Context, id string) (*domain.Student, error) {
	student, err := s.repo.GetStudent(ctx, id)
	if err != nil {
		return nil, err
	}
	return student, nil
}

// ListStudents retrieves students matching the filter.
func (s *Service) ListStudents(ctx context.Context, filter StudentFilter) ([]domain.Student, error) {
	students, err := s.repo.ListStudents(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// UpdateStudent replaces a student record.
func (s *Service) UpdateStudent(ctx context.Context, student *domain.Student) error {
	s.normalizeNames(student)

	existing, err := s.repo.GetStudentByStudentID(ctx, student.StudentID)
	if err != nil && !errors.Is(err, ErrStudentNotFound) {
		return fmt.Errorf("check student id: %w", err)
	}
	if existing != nil && existing.ID != student.ID {
		return ErrDuplicateStudentID
	}

	if err := s.repo.UpdateStudent(ctx, student); err != nil {
		return err
	}
	return nil
}

// DeleteStudent removes a student from the roster.
func (s *Service) DeleteStudent(ctx context.Context, id string) error {
	return s.repo.DeleteStudent(ctx, id)
}

func (s *Service) normalizeNames(student *domain.Student) {
	student.Name = s.title.String(strings.TrimSpace(student.Name))
	student.ParentName = s.title.String(strings.TrimSpace(student.ParentName))
}
