package notifications

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/yechale/rollcall/internal/domain"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// ComposeInput carries everything a message interpolates. School settings
// are read fresh by the caller before composing, so a settings change takes
// effect on the next message without a restart.
type ComposeInput struct {
	Student domain.Student
	Status  domain.AttendanceStatus
	Note    string
	School  domain.SchoolInfo
}

// EmailMessage is a composed email in all three renditions.
type EmailMessage struct {
	Subject string
	Text    string
	HTML    string
}

// Composer renders channel-specific message text from embedded templates.
// Composition is deterministic: identical inputs always produce identical
// bytes, so a retried send reproduces the original message exactly.
type Composer struct {
	templates map[string]*template.Template
}

// NewComposer loads and parses all message templates.
func NewComposer() (*Composer, error) {
	c := &Composer{templates: make(map[string]*template.Template)}

	channels := []domain.Channel{domain.ChannelEmail, domain.ChannelSMS}
	statuses := []domain.AttendanceStatus{domain.AttendanceAbsent, domain.AttendanceLate, domain.AttendanceExcused}

	for _, channel := range channels {
		for _, status := range statuses {
			name := fmt.Sprintf("%s_%s", channel, status)
			filename := fmt.Sprintf("templates/%s.tmpl", name)

			content, err := templatesFS.ReadFile(filename)
			if err != nil {
				return nil, fmt.Errorf("read template %s: %w", filename, err)
			}

			tmpl, err := template.New(name).Parse(string(content))
			if err != nil {
				return nil, fmt.Errorf("parse template %s: %w", name, err)
			}

			c.templates[name] = tmpl
		}
	}

	return c, nil
}

// Email composes the subject, plain-text body, and HTML body for an email
// notification.
func (c *Composer) Email(in ComposeInput) (EmailMessage, error) {
	text, err := c.render(domain.ChannelEmail, in)
	if err != nil {
		return EmailMessage{}, err
	}

	return EmailMessage{
		Subject: c.subject(in),
		Text:    text,
		HTML:    strings.ReplaceAll(text, "\n", "<br>"),
	}, nil
}

// SMS composes the single-paragraph SMS text.
func (c *Composer) SMS(in ComposeInput) (string, error) {
	return c.render(domain.ChannelSMS, in)
}

func (c *Composer) render(channel domain.Channel, in ComposeInput) (string, error) {
	name := fmt.Sprintf("%s_%s", channel, in.Status)
	tmpl, ok := c.templates[name]
	if !ok {
		return "", fmt.Errorf("no template for %s notification with status %q", channel, in.Status)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, in); err != nil {
		return "", fmt.Errorf("execute template %s: %w", name, err)
	}

	return strings.TrimSpace(buf.String()), nil
}

func (c *Composer) subject(in ComposeInput) string {
	switch in.Status {
	case domain.AttendanceLate:
		return fmt.Sprintf("%s - Student Late Arrival: %s", in.School.Name, in.Student.Name)
	case domain.AttendanceExcused:
		return fmt.Sprintf("%s - Excused Absence Confirmation: %s", in.School.Name, in.Student.Name)
	default:
		return fmt.Sprintf("%s - Student Absence Notification: %s", in.School.Name, in.Student.Name)
	}
}
