package notifications

import (
	"log/slog"
	"sync"
	"time"
)

// Severity of a user-facing notification.
type Severity string

// Severities.
const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Sink receives user-facing notifications (toasts in the UI). Every
// terminal failure produces a distinct, specific message and every queued
// deferral produces an immediate acknowledgment, so the sink is part of the
// sender contract, not an optional observer.
type Sink interface {
	Success(title, message string)
	Error(title, message string)
	Warning(title, message string)
	Info(title, message string)
}

// Toast is one user-facing notification held by the feed.
type Toast struct {
	Severity  Severity  `json:"severity"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Feed is a Sink that keeps a bounded ring of recent toasts for the UI to
// poll, and mirrors every toast to the log.
type Feed struct {
	logger *slog.Logger

	mu     sync.Mutex
	toasts []Toast
	cap    int
}

// NewFeed creates a Feed holding at most capacity recent toasts.
func NewFeed(capacity int, logger *slog.Logger) *Feed {
	if capacity <= 0 {
		capacity = 50
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Feed{
		logger: logger,
		toasts: make([]Toast, 0, capacity),
		cap:    capacity,
	}
}

func (f *Feed) Success(title, message string) { f.push(SeveritySuccess, title, message) }
func (f *Feed) Error(title, message string)   { f.push(SeverityError, title, message) }
func (f *Feed) Warning(title, message string) { f.push(SeverityWarning, title, message) }
func (f *Feed) Info(title, message string)    { f.push(SeverityInfo, title, message) }

// Recent returns the held toasts, newest last.
func (f *Feed) Recent() []Toast {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Toast, len(f.toasts))
	copy(out, f.toasts)
	return out
}

func (f *Feed) push(severity Severity, title, message string) {
	switch severity {
	case SeverityError:
		f.logger.Error(message, "toast", title)
	case SeverityWarning:
		f.logger.Warn(message, "toast", title)
	default:
		f.logger.Info(message, "toast", title)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.toasts = append(f.toasts, Toast{
		Severity:  severity,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now(),
	})
	if len(f.toasts) > f.cap {
		f.toasts = f.toasts[len(f.toasts)-f.cap:]
	}
}
