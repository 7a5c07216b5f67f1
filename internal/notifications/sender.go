package notifications

import (
	"context"

	"github.com/yechale/rollcall/internal/domain"
)

// SettingsSource supplies the school profile a composed message
// interpolates. Implementations must read fresh on every call so settings
// edits take effect without a restart.
type SettingsSource interface {
	SchoolInfo(ctx context.Context) (domain.SchoolInfo, error)
}

// Sender delivers one attendance notification over one channel.
//
// Send never returns an error: every failure is absorbed, classified, and
// surfaced through the Sink, and the boolean reports whether the message
// reached the delivery API. An offline send is handed to the retry queue
// and reported false.
type Sender interface {
	Channel() domain.Channel
	Send(ctx context.Context, student domain.Student, status domain.AttendanceStatus, note string) bool
}

// Deps bundles the collaborators every channel sender needs.
type Deps struct {
	Settings SettingsSource
	Composer *Composer
	Queue    *Queue
	Monitor  *Monitor
	Sink     Sink
}
