package attendance

import (
	"context"

	"github.com/yechale/rollcall/internal/domain"
)

// Repository defines the interface for attendance data operations.
type Repository interface {
	// UpsertRecord inserts the record or replaces the status and note of
	// an existing record for the same student and date.
	UpsertRecord(ctx context.Context, record *domain.AttendanceRecord) error
	GetRecord(ctx context.Context, studentID, date string) (*domain.AttendanceRecord, error)
	ListByDate(ctx context.Context, date string) ([]domain.AttendanceRecord, error)
	ListByStudent(ctx context.Context, studentID string, from, to string) ([]domain.AttendanceRecord, error)
	DeleteRecord(ctx context.Context, studentID, date string) error
}
