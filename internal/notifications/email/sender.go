// Package email sends attendance notifications to parents through the
// email delivery API.
package email

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/yechale/rollcall/internal/domain"
	"github.com/yechale/rollcall/internal/notifications"
)

const defaultTimeout = 10 * time.Second

// Config holds email sender configuration.
type Config struct {
	EndpointURL string
	Timeout     time.Duration
}

// Sender implements the email channel.
type Sender struct {
	config     Config
	deps       notifications.Deps
	httpClient *http.Client

	setupGuide func()
	setupOnce  sync.Once
}

// NewSender creates the email sender. Returns an error if the delivery
// endpoint is not configured.
func NewSender(config Config, deps notifications.Deps) (*Sender, error) {
	if config.EndpointURL == "" {
		return nil, errors.New("email sender: delivery endpoint URL is required")
	}
	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}

	slog.Info("email sender configured",
		"endpoint", config.EndpointURL,
		"timeout", config.Timeout,
	)

	return &Sender{
		config:     config,
		deps:       deps,
		httpClient: &http.Client{Timeout: config.Timeout},
	}, nil
}

// Channel returns the channel this sender serves.
func (s *Sender) Channel() domain.Channel {
	return domain.ChannelEmail
}

// SetSetupGuide registers the callback fired the first time the delivery
// API reports missing provider configuration.
func (s *Sender) SetSetupGuide(fn func()) {
	s.setupGuide = fn
}

// Send delivers one attendance email. See notifications.Sender for the
// contract; failures are absorbed and surfaced through the sink.
func (s *Sender) Send(ctx context.Context, student domain.Student, status domain.AttendanceStatus, note string) bool {
	if student.ParentEmail == "" || !strings.Contains(student.ParentEmail, "@") {
		s.deps.Sink.Error("Invalid Email",
			fmt.Sprintf("Cannot send notification to %s: Invalid email address (%s)", student.ParentName, student.ParentEmail))
		notifications.RecordSendOutcome(domain.ChannelEmail, string(notifications.FailureInvalidRecipient))
		return false
	}

	school := s.schoolInfo(ctx)

	msg, err := s.deps.Composer.Email(notifications.ComposeInput{
		Student: student,
		Status:  status,
		Note:    note,
		School:  school,
	})
	if err != nil {
		s.deps.Sink.Error("Email Failed",
			fmt.Sprintf("Failed to send notification to %s: %v", student.ParentName, err))
		notifications.RecordSendOutcome(domain.ChannelEmail, string(notifications.FailureGeneric))
		return false
	}

	payload := notifications.EmailPayload{
		To:          student.ParentEmail,
		Subject:     msg.Subject,
		Text:        msg.Text,
		HTML:        msg.HTML,
		StudentName: student.Name,
		ParentName:  student.ParentName,
	}

	// Offline is checked up front, not inferred from a failed call; the
	// payload is composed before enqueueing so a later drain reproduces the
	// exact message.
	if !s.deps.Monitor.Online() {
		if _, err := s.deps.Queue.Enqueue(ctx, domain.ChannelEmail, payload); err != nil {
			slog.Error("failed to queue email", "parent", student.ParentName, "error", err)
			s.deps.Sink.Error("Email Failed",
				fmt.Sprintf("Failed to queue notification for %s: %v", student.ParentName, err))
			notifications.RecordSendOutcome(domain.ChannelEmail, string(notifications.FailureGeneric))
			return false
		}
		s.deps.Sink.Info("Email Queued",
			fmt.Sprintf("Email for %s will be sent when you're back online", student.ParentName))
		notifications.RecordSendOutcome(domain.ChannelEmail, string(notifications.FailureOffline))
		return false
	}

	start := time.Now()
	result, statusCode, err := notifications.PostJSON(ctx, s.httpClient, s.config.EndpointURL, map[string]string{
		"to":      payload.To,
		"subject": payload.Subject,
		"text":    payload.Text,
		"html":    payload.HTML,
	})
	notifications.RecordSendDuration(domain.ChannelEmail, time.Since(start))

	if err != nil {
		return s.reportFailure(student, err)
	}

	if statusCode < 200 || statusCode > 299 || !result.Success {
		return s.classifyRejection(student, result)
	}

	if result.Testing {
		s.deps.Sink.Success("Email Sent (Testing)",
			fmt.Sprintf("Testing mode: Email for %s redirected to %s (originally %s)",
				student.ParentName, result.ActualRecipient, result.OriginalRecipient))
	} else {
		s.deps.Sink.Success("Email Sent",
			fmt.Sprintf("Notification sent to %s at %s for %s's %s status",
				student.ParentName, student.ParentEmail, student.Name, status))
	}
	notifications.RecordSendOutcome(domain.ChannelEmail, "success")
	return true
}

func (s *Sender) classifyRejection(student domain.Student, result *notifications.DeliveryResponse) bool {
	if result.Error == notifications.ErrSetupRequired {
		s.deps.Sink.Warning("Email Setup Required",
			"Real email notifications require delivery API configuration. Open the setup guide to finish it.")
		if s.setupGuide != nil {
			s.setupOnce.Do(s.setupGuide)
		}
		notifications.RecordSendOutcome(domain.ChannelEmail, string(notifications.FailureSetupRequired))
		return false
	}

	if result.Instructions != nil {
		reason := result.Reason("email provider rejected the request")
		solution := result.Instructions.Solution
		if solution == "" {
			solution = "Please check your email provider configuration."
		}
		s.deps.Sink.Error("Email Configuration Error", fmt.Sprintf("%s. %s", reason, solution))
		notifications.RecordSendOutcome(domain.ChannelEmail, string(notifications.FailureProvider))
		return false
	}

	return s.reportFailure(student, &notifications.SendError{
		Kind:   notifications.FailureGeneric,
		Reason: result.Reason("Failed to send email"),
	})
}

// reportFailure surfaces a terminal failure. Online failures are never
// queued: offline was already ruled out above, and retrying a provider
// rejection without user action would re-fail.
func (s *Sender) reportFailure(student domain.Student, err error) bool {
	kind := notifications.FailureGeneric
	var sendErr *notifications.SendError
	if errors.As(err, &sendErr) {
		kind = sendErr.Kind
	}

	s.deps.Sink.Error("Email Failed",
		fmt.Sprintf("Failed to send notification to %s: %v", student.ParentName, err))
	notifications.RecordSendOutcome(domain.ChannelEmail, string(kind))
	return false
}

func (s *Sender) schoolInfo(ctx context.Context) domain.SchoolInfo {
	school, err := s.deps.Settings.SchoolInfo(ctx)
	if err != nil {
		slog.Error("failed to read school settings, using defaults", "error", err)
		return domain.SchoolSettings{}.Info()
	}
	return school
}
