package domain

import "time"

// DefaultSchoolName is used until the school configures its own name.
const DefaultSchoolName = "Smart Attendance Tracker"

// SchoolSettings is the school profile and notification preferences.
// Stored as a single document and re-read before every composed message so
// edits take effect without a restart.
type SchoolSettings struct {
	SchoolName        string    `json:"school_name"`
	SchoolPhone       string    `json:"school_phone"`
	NotificationEmail string    `json:"notification_email"`
	AcademicYear      string    `json:"academic_year"`
	SendEmail         bool      `json:"send_email"`
	SendSMS           bool      `json:"send_sms"`
	AutoSend          bool      `json:"auto_send"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// DefaultSettings returns the settings used before the school has saved
// its own profile. Both channels start enabled; automatic sending on
// attendance marking is opt-in.
func DefaultSettings() SchoolSettings {
	return SchoolSettings{
		SchoolName: DefaultSchoolName,
		SendEmail:  true,
		SendSMS:    true,
	}
}

// SchoolInfo is the snapshot of settings a composed message interpolates.
type SchoolInfo struct {
	Name  string
	Phone string
	Email string
}

// Info returns the message-facing snapshot, applying defaults.
func (s SchoolSettings) Info() SchoolInfo {
	name := s.SchoolName
	if name == "" {
		name = DefaultSchoolName
	}
	return SchoolInfo{
		Name:  name,
		Phone: s.SchoolPhone,
		Email: s.NotificationEmail,
	}
}
