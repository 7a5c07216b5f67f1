package notifications

import (
	"context"
	"log/slog"

	"github.com/yechale/rollcall/internal/domain"
)

// Methods selects which channels a dispatch uses.
type Methods struct {
	Email bool `json:"email"`
	SMS   bool `json:"sms"`
}

// AllMethods enables both channels.
func AllMethods() Methods {
	return Methods{Email: true, SMS: true}
}

// ChannelResults reports per-channel outcome of a single notification.
type ChannelResults struct {
	Email bool `json:"email"`
	SMS   bool `json:"sms"`
}

// Counts aggregates bulk outcomes for one channel.
type Counts struct {
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

// BulkResult aggregates bulk outcomes per channel.
type BulkResult struct {
	Email Counts `json:"email"`
	SMS   Counts `json:"sms"`
}

// BulkItem is one student notification in a batch.
type BulkItem struct {
	Student domain.Student
	Status  domain.AttendanceStatus
	Note    string
}

// Dispatcher fans a notification out to the requested channels. Channels
// are invoked independently and unconditionally: one channel failing never
// skips or cancels the other.
type Dispatcher struct {
	senders map[domain.Channel]Sender
}

// NewDispatcher creates a dispatcher over the given channel senders.
func NewDispatcher(senders ...Sender) *Dispatcher {
	m := make(map[domain.Channel]Sender, len(senders))
	for _, s := range senders {
		m[s.Channel()] = s
	}
	return &Dispatcher{senders: m}
}

// SendOne dispatches a single notification to each requested channel and
// reports the per-channel outcome.
func (d *Dispatcher) SendOne(ctx context.Context, student domain.Student, status domain.AttendanceStatus, note string, methods Methods) ChannelResults {
	var results ChannelResults

	if methods.Email {
		results.Email = d.send(ctx, domain.ChannelEmail, student, status, note)
	}
	if methods.SMS {
		results.SMS = d.send(ctx, domain.ChannelSMS, student, status, note)
	}

	return results
}

// SendBulk dispatches a batch. Each channel processes the full list
// sequentially in list order, so user-facing notifications fire in list
// order within a channel.
func (d *Dispatcher) SendBulk(ctx context.Context, items []BulkItem, methods Methods) BulkResult {
	var result BulkResult

	if methods.Email {
		result.Email = d.sendAll(ctx, domain.ChannelEmail, items)
	}
	if methods.SMS {
		result.SMS = d.sendAll(ctx, domain.ChannelSMS, items)
	}

	return result
}

func (d *Dispatcher) send(ctx context.Context, channel domain.Channel, student domain.Student, status domain.AttendanceStatus, note string) bool {
	sender, ok := d.senders[channel]
	if !ok {
		slog.Warn("no sender for channel", "channel", channel)
		return false
	}
	return sender.Send(ctx, student, status, note)
}

func (d *Dispatcher) sendAll(ctx context.Context, channel domain.Channel, items []BulkItem) Counts {
	var counts Counts
	for _, item := range items {
		if d.send(ctx, channel, item.Student, item.Status, item.Note) {
			counts.Success++
		} else {
			counts.Failed++
		}
	}
	return counts
}
