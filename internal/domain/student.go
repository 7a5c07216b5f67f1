package domain

import "time"

// Student is a roster entry together with the parent contact details
// notifications are delivered to.
type Student struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	StudentID   string    `json:"student_id"`
	Grade       string    `json:"grade"`
	Section     string    `json:"section"`
	ParentName  string    `json:"parent_name"`
	ParentEmail string    `json:"parent_email"`
	ParentPhone string    `json:"parent_phone"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
