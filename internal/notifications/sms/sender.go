// Package sms sends attendance notifications to parents through the SMS
// delivery API.
package sms

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/yechale/rollcall/internal/domain"
	"github.com/yechale/rollcall/internal/notifications"
	"github.com/yechale/rollcall/internal/phone"
)

const defaultTimeout = 10 * time.Second

// Config holds SMS sender configuration.
type Config struct {
	EndpointURL string
	Timeout     time.Duration
	RateLimit   float64 // messages per second, 0 disables limiting
}

// Sender implements the SMS channel.
type Sender struct {
	config     Config
	deps       notifications.Deps
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewSender creates the SMS sender. Returns an error if the delivery
// endpoint is not configured.
func NewSender(config Config, deps notifications.Deps) (*Sender, error) {
	if config.EndpointURL == "" {
		return nil, errors.New("sms sender: delivery endpoint URL is required")
	}
	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}

	var limiter *rate.Limiter
	if config.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RateLimit), 1)
	}

	slog.Info("sms sender configured",
		"endpoint", config.EndpointURL,
		"timeout", config.Timeout,
		"rate_limit", config.RateLimit,
	)

	return &Sender{
		config:     config,
		deps:       deps,
		httpClient: &http.Client{Timeout: config.Timeout},
		limiter:    limiter,
	}, nil
}

// Channel returns the channel this sender serves.
func (s *Sender) Channel() domain.Channel {
	return domain.ChannelSMS
}

// Send delivers one attendance SMS. See notifications.Sender for the
// contract; failures are absorbed and surfaced through the sink.
func (s *Sender) Send(ctx context.Context, student domain.Student, status domain.AttendanceStatus, note string) bool {
	if student.ParentPhone == "" {
		s.deps.Sink.Error("Missing Phone",
			fmt.Sprintf("Cannot send SMS to %s: No phone number provided", student.ParentName))
		notifications.RecordSendOutcome(domain.ChannelSMS, string(notifications.FailureInvalidRecipient))
		return false
	}

	to, err := phone.Normalize(student.ParentPhone)
	if err != nil {
		s.deps.Sink.Error("Invalid Phone",
			fmt.Sprintf("Cannot send SMS to %s: %v", student.ParentName, err))
		notifications.RecordSendOutcome(domain.ChannelSMS, string(notifications.FailureInvalidRecipient))
		return false
	}

	school := s.schoolInfo(ctx)

	text, err := s.deps.Composer.SMS(notifications.ComposeInput{
		Student: student,
		Status:  status,
		Note:    note,
		School:  school,
	})
	if err != nil {
		s.deps.Sink.Error("SMS Failed",
			fmt.Sprintf("Failed to send SMS to %s: %v", student.ParentName, err))
		notifications.RecordSendOutcome(domain.ChannelSMS, string(notifications.FailureGeneric))
		return false
	}

	payload := notifications.SMSPayload{
		To:          to,
		Message:     text,
		StudentName: student.Name,
		ParentName:  student.ParentName,
	}

	if !s.deps.Monitor.Online() {
		if _, err := s.deps.Queue.Enqueue(ctx, domain.ChannelSMS, payload); err != nil {
			slog.Error("failed to queue sms", "parent", student.ParentName, "error", err)
			s.deps.Sink.Error("SMS Failed",
				fmt.Sprintf("Failed to queue SMS for %s: %v", student.ParentName, err))
			notifications.RecordSendOutcome(domain.ChannelSMS, string(notifications.FailureGeneric))
			return false
		}
		s.deps.Sink.Info("SMS Queued",
			fmt.Sprintf("SMS for %s will be sent when you're back online", student.ParentName))
		notifications.RecordSendOutcome(domain.ChannelSMS, string(notifications.FailureOffline))
		return false
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return s.reportFailure(student, err)
		}
	}

	start := time.Now()
	result, statusCode, err := notifications.PostJSON(ctx, s.httpClient, s.config.EndpointURL, map[string]string{
		"to":      payload.To,
		"message": payload.Message,
	})
	notifications.RecordSendDuration(domain.ChannelSMS, time.Since(start))

	if err != nil {
		return s.reportFailure(student, err)
	}

	if statusCode < 200 || statusCode > 299 || !result.Success {
		return s.reportFailure(student, &notifications.SendError{
			Kind:   notifications.FailureProvider,
			Reason: result.Reason("Failed to send SMS"),
		})
	}

	if result.Demo {
		s.deps.Sink.Success("SMS Sent (Demo)",
			fmt.Sprintf("Demo SMS sent to %s at %s for %s's %s status (%s)",
				student.ParentName, to, student.Name, status, result.Message))
	} else {
		s.deps.Sink.Success("SMS Sent",
			fmt.Sprintf("SMS sent to %s at %s for %s's %s status",
				student.ParentName, to, student.Name, status))
	}
	notifications.RecordSendOutcome(domain.ChannelSMS, "success")
	return true
}

func (s *Sender) reportFailure(student domain.Student, err error) bool {
	kind := notifications.FailureGeneric
	var sendErr *notifications.SendError
	if errors.As(err, &sendErr) {
		kind = sendErr.Kind
	}

	s.deps.Sink.Error("SMS Failed",
		fmt.Sprintf("Failed to send SMS to %s: %v", student.ParentName, err))
	notifications.RecordSendOutcome(domain.ChannelSMS, string(kind))
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
