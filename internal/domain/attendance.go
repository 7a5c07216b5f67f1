package domain

import "time"

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceLate    AttendanceStatus = "late"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceExcused AttendanceStatus = "excused"
)

// Notifiable reports whether parents are notified about this status.
// Being present is the expected state and produces no message.
func (s AttendanceStatus) Notifiable() bool {
	return s == AttendanceAbsent || s == AttendanceLate || s == AttendanceExcused
}

// Valid reports whether s is one of the known statuses.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceLate, AttendanceAbsent, AttendanceExcused:
		return true
	}
	return false
}

// AttendanceRecord is one student's status for one school day.
type AttendanceRecord struct {
	ID        string           `json:"id"`
	StudentID string           `json:"student_id"`
	Date      string           `json:"date"` // YYYY-MM-DD, school-local
	Status    AttendanceStatus `json:"status"`
	Note      string           `json:"note"`
	CreatedAt time.Time        `json:"created_at"`
}
