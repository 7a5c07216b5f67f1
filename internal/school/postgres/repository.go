// Package postgres provides the PostgreSQL implementation of the school repository.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yechale/rollcall/internal/domain"
	"github.com/yechale/rollcall/internal/school"
)

// Settings live in a single row; the fixed key keeps writes idempotent.
const settingsSlot = "school"

// Repository implements the school.Repository interface using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// GetSettings retrieves the school settings row.
func (r *Repository) GetSettings(ctx context.Context) (*domain.SchoolSettings, error) {
	query := `
		SELECT school_name, school_phone, notification_email, academic_year,
		       send_email, send_sms, auto_send, updated_at
		FROM school_settings
		WHERE slot = $1
	`
	var settings domain.SchoolSettings
	err := r.db.QueryRow(ctx, query, settingsSlot).Scan(
		&settings.SchoolName,
		&settings.SchoolPhone,
		&settings.NotificationEmail,
		&settings.AcademicYear,
		&settings.SendEmail,
		&settings.SendSMS,
		&settings.AutoSend,
		&settings.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, school.ErrSettingsNotFound
		}
		return nil, fmt.Errorf("get school settings: %w", err)
	}
	return &settings, nil
}

// SaveSettings overwrites the school settings row.
func (r *Repository) SaveSettings(ctx context.Context, settings *domain.SchoolSettings) error {
	query := `
		INSERT INTO school_settings (slot, school_name, school_phone, notification_email,
		                             academic_year, send_email, send_sms, auto_send, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (slot) DO UPDATE SET
			school_name = EXCLUDED.school_name,
			school_phone = EXCLUDED.school_phone,
			notification_email = EXCLUDED.notification_email,
			academic_year = EXCLUDED.academic_year,
			send_email = EXCLUDED.send_email,
			send_sms = EXCLUDED.send_sms,
			auto_send = EXCLUDED.auto_send,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.Exec(ctx, query,
		settingsSlot,
		settings.SchoolName,
		settings.SchoolPhone,
		settings.NotificationEmail,
		settings.AcademicYear,
		settings.SendEmail,
		settings.SendSMS,
		settings.AutoSend,
		settings.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save school settings: %w", err)
	}
	return nil
}

// CreateStudent inserts a student row.
func (r *Repository) CreateStudent(ctx context.Context, student *domain.Student) error {
	query := `
		INSERT INTO students (name, student_id, grade, section, parent_name,
		                      parent_email, parent_phone)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		student.Name,
		student.StudentID,
		student.Grade,
		student.Section,
		student.ParentName,
		student.ParentEmail,
		student.ParentPhone,
	).Scan(&student.ID, &student.CreatedAt, &student.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// GetStudent retrieves a student by internal ID.
func (r *Repository) GetStudent(ctx context.Context, id string) (*domain.Student, error) {
	return r.getStudent(ctx, "id", id)
}

// GetStudentByStudentID retrieves a student by the school-assigned ID.
func (r *Repository) GetStudentByStudentID(ctx context.Context, studentID string) (*domain.Student, error) {
	return r.getStudent(ctx, "student_id", studentID)
}

func (r *Repository) getStudent(ctx context.Context, column, value string) (*domain.Student, error) {
	query := fmt.Sprintf(`
		SELECT id, name, student_id, grade, section, parent_name,
		       parent_email, parent_phone, created_at, updated_at
		FROM students
		WHERE %s = $1
	`, column)

	var student domain.Student
	err := r.db.QueryRow(ctx, query, value).Scan(
		&student.ID,
		&student.Name,
		&student.StudentID,
		&student.Grade,
		&student.Section,
		&student.ParentName,
		&student.ParentEmail,
		&student.ParentPhone,
		&student.CreatedAt,
		&student.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, school.ErrStudentNotFound
		}
		return nil, fmt.Errorf("get student by %s: %w", column, err)
	}
	return &student, nil
}

// ListStudents retrieves students ordered by grade, section and name.
func (r *Repository) ListStudents(ctx context.Context, filter school.StudentFilter) ([]domain.Student, error) {
	query := `
		SELECT id, name, student_id, grade, section, parent_name,
		       parent_email, parent_phone, created_at, updated_at
		FROM students
	`
	args := make([]interface{}, 0, 2)
	conditions := make([]string, 0, 2)

	if filter.Grade != nil {
		args = append(args, *filter.Grade)
		conditions = append(conditions, fmt.Sprintf("grade = $%d", len(args)))
	}
	if filter.Section != nil {
		args = append(args, *filter.Section)
		conditions = append(conditions, fmt.Sprintf("section = $%d", len(args)))
	}

	for i, cond := range conditions {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY grade, section, name"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	defer rows.Close()

	students := make([]domain.Student, 0)
	for rows.Next() {
		var student domain.Student
		err := rows.Scan(
			&student.ID,
			&student.Name,
			&student.StudentID,
			&student.Grade,
			&student.Section,
			&student.ParentName,
			&student.ParentEmail,
			&student.ParentPhone,
			&student.CreatedAt,
			&student.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		students = append(students, student)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate students: %w", err)
	}
	return students, nil
}

// UpdateStudent replaces a student row.
func (r *Repository) UpdateStudent(ctx context.Context, student *domain.Student) error {
	query := `
		UPDATE students
		SET name = $2, student_id = $3, grade = $4, section = $5,
		    parent_name = $6, parent_email = $7, parent_phone = $8,
		    updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		student.ID,
		student.Name,
		student.StudentID,
		student.Grade,
		student.Section,
		student.ParentName,
		student.ParentEmail,
		student.ParentPhone,
	).Scan(&student.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return school.ErrStudentNotFound
		}
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// DeleteStudent removes a student row.
func (r *Repository) DeleteStudent(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return school.ErrStudentNotFound
	}
	return nil
}
