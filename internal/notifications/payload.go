package notifications

import (
	"encoding/json"
	"time"

	"github.com/yechale/rollcall/internal/domain"
)

// EmailPayload is the fully composed email handed to the delivery API.
// Student and parent display names ride along so a deferred send can be
// reported to the user without re-reading the roster.
type EmailPayload struct {
	To          string `json:"to"`
	Subject     string `json:"subject"`
	Text        string `json:"text"`
	HTML        string `json:"html"`
	StudentName string `json:"studentName"`
	ParentName  string `json:"parentName"`
}

// SMSPayload is the fully composed SMS handed to the delivery API.
type SMSPayload struct {
	To          string `json:"to"`
	Message     string `json:"message"`
	StudentName string `json:"studentName"`
	ParentName  string `json:"parentName"`
}

// QueuedOperation is one deferred delivery in the retry queue. The payload
// is composed before enqueueing, so a retried send reproduces the exact
// message even if school settings changed in the meantime. Only RetryCount
// mutates after creation, and only on a failed attempt.
type QueuedOperation struct {
	ID         string          `json:"id"`
	Channel    domain.Channel  `json:"channel"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
	RetryCount int             `json:"retry_count"`
}

// DeliveryResponse is the JSON body the delivery endpoints return.
type DeliveryResponse struct {
	Success           bool          `json:"success"`
	Demo              bool          `json:"demo"`
	Testing           bool          `json:"testing"`
	Error             string        `json:"error"`
	Message           string        `json:"message"`
	ActualRecipient   string        `json:"actualRecipient"`
	OriginalRecipient string        `json:"originalRecipient"`
	Instructions      *Instructions `json:"instructions"`
}

// Instructions is the remediation hint a provider error may carry.
type Instructions struct {
	Solution string `json:"solution"`
}

// Reason picks the most specific human-readable failure text from the
// response.
func (r *DeliveryResponse) Reason(fallback string) string {
	if r.Message != "" {
		return r.Message
	}
	if r.Error != "" {
		return r.Error
	}
	return fallback
}
