package session

import "fmt"

// Unsupported-meeting reasons surfaced to the external handler.
const (
	ReasonSignInRequired  = "sign-in-required"
	ReasonUnsupportedPage = "unsupported-page"
)

// UnsupportedMeetingError marks a meeting the agent cannot join at all.
// Session-fatal and non-retryable.
type UnsupportedMeetingError struct {
	Reason string
}

func (e *UnsupportedMeetingError) Error() string {
	return "unsupported meeting: " + e.Reason
}

// AdmissionFailureError marks a denied or timed-out admission request. A
// timed-out request may be retried by a higher orchestration layer; a denial
// may not.
type AdmissionFailureError struct {
	BodyText  string
	Retryable bool
	Attempt   int
}

func (e *AdmissionFailureError) Error() string {
	if e.Retryable {
		return fmt.Sprintf("admission timed out after %d polls", e.Attempt)
	}
	return fmt.Sprintf("admission denied after %d polls", e.Attempt)
}
