package notifications

import "fmt"

// FailureKind classifies why a send attempt did not reach the recipient.
type FailureKind string

// Failure kinds.
const (
	FailureInvalidRecipient  FailureKind = "invalid_recipient"  // bad email/phone shape, never sent, never queued
	FailureOffline           FailureKind = "offline"            // deferred to the retry queue
	FailureSetupRequired     FailureKind = "setup_required"     // provider credentials missing, needs user action
	FailureProvider          FailureKind = "provider_error"     // provider rejected the request with a reason
	FailureMalformedResponse FailureKind = "malformed_response" // transport succeeded, body uninterpretable
	FailureGeneric           FailureKind = "generic"            // catch-all
)

// SendError describes a failed delivery attempt.
type SendError struct {
	Kind   FailureKind
	Reason string
	Err    error
}

func (e *SendError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

func (e *SendError) Unwrap() error {
	return e.Err
}
