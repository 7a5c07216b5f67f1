// Package postgres provides the PostgreSQL implementation of the attendance repository.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yechale/rollcall/internal/attendance"
	"github.com/yechale/rollcall/internal/domain"
)

// Repository implements the attendance.Repository interface using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// UpsertRecord inserts or replaces the record for (student_id, date).
func (r *Repository) UpsertRecord(ctx context.Context, record *domain.AttendanceRecord) error {
	query := `
		INSERT INTO attendance_records (student_id, date, status, note)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (student_id, date) DO UPDATE SET
			status = EXCLUDED.status,
			note = EXCLUDED.note
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		record.StudentID,
		record.Date,
		record.Status,
		record.Note,
	).Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert attendance record: %w", err)
	}
	return nil
}

// GetRecord retrieves one student's record for a date.
func (r *Repository) GetRecord(ctx context.Context, studentID, date string) (*domain.AttendanceRecord, error) {
	query := `
		SELECT id, student_id, to_char(date, 'YYYY-MM-DD'), status, note, created_at
		FROM attendance_records
		WHERE student_id = $1 AND date = $2
	`
	var record domain.AttendanceRecord
	err := r.db.QueryRow(ctx, query, studentID, date).Scan(
		&record.ID,
		&record.StudentID,
		&record.Date,
		&record.Status,
		&record.Note,
		&record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, attendance.ErrRecordNotFound
		}
		return nil, fmt.Errorf("get attendance record: %w", err)
	}
	return &record, nil
}

// ListByDate retrieves all records for a school day.
func (r *Repository) ListByDate(ctx context.Context, date string) ([]domain.AttendanceRecord, error) {
	query := `
		SELECT id, student_id, to_char(date, 'YYYY-MM-DD'), status, note, created_at
		FROM attendance_records
		WHERE date = $1
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("list attendance by date: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// ListByStudent retrieves a student's records, newest first. from and to
// bound the range when non-empty.
func (r *Repository) ListByStudent(ctx context.Context, studentID, from, to string) ([]domain.AttendanceRecord, error) {
	query := `
		SELECT id, student_id, to_char(date, 'YYYY-MM-DD'), status, note, created_at
		FROM attendance_records
		WHERE student_id = $1
	`
	args := []interface{}{studentID}

	if from != "" {
		args = append(args, from)
		query += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if to != "" {
		args = append(args, to)
		query += fmt.Sprintf(" AND date <= $%d", len(args))
	}
	query += " ORDER BY date DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list attendance by student: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// DeleteRecord removes one student's record for a date.
func (r *Repository) DeleteRecord(ctx context.Context, studentID, date string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM attendance_records WHERE student_id = $1 AND date = $2`,
		studentID, date,
	)
	if err != nil {
		return fmt.Errorf("delete attendance record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrRecordNotFound
	}
	return nil
}

func scanRecords(rows pgx.Rows) ([]domain.AttendanceRecord, error) {
	records := make([]domain.AttendanceRecord, 0)
	for rows.Next() {
		var record domain.AttendanceRecord
		err := rows.Scan(
			&record.ID,
			&record.StudentID,
			&record.Date,
			&record.Status,
			&record.Note,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan attendance record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendance records: %w", err)
	}
	return records, nil
}
