package school

import (
	"context"

	"github.com/yechale/rollcall/internal/domain"
)

// Repository defines the interface for school data operations.
type Repository interface {
	GetSettings(ctx context.Context) (*domain.SchoolSettings, error)
	SaveSettings(ctx context.Context, settings *domain.SchoolSettings) error

	CreateStudent(ctx context.Context, student *domain.Student) error
	GetStudent(ctx context.Context, id string) (*domain.Student, error)
	GetStudentByStudentID(ctx context.Context, studentID string) (*domain.Student, error)
	ListStudents(ctx context.Context, filter StudentFilter) ([]domain.Student, error)
	UpdateStudent(ctx context.Context, student *domain.Student) error
	DeleteStudent(ctx context.Context, id string) error
}

// StudentFilter represents filter criteria for listing students.
type StudentFilter struct {
	Grade   *string
	Section *string
}
