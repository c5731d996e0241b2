// Package status reports session milestones and failures to an external
// tracking service.
package status

import (
	"context"

	"github.com/rbright/usher/internal/lifecycle"
)

// Identity keys every report to one bot run against one calendar event.
type Identity struct {
	Token   string
	BotID   string
	EventID string
}

// AdmissionFailureDetail carries the diagnostic context for a denied or
// timed-out admission request.
type AdmissionFailureDetail struct {
	BodyText  string
	Retryable bool
	Attempt   int
}

// Reporter is the external status-tracking collaborator. Milestones are
// append-only; failures carry structured diagnostic context.
type Reporter interface {
	ReportMilestone(ctx context.Context, id Identity, milestone lifecycle.Milestone) error
	ReportUnsupportedMeeting(ctx context.Context, id Identity, reason string) error
	ReportAdmissionFailure(ctx context.Context, id Identity, detail AdmissionFailureDetail) error
}

// NopReporter discards all reports. Used when no reporting endpoint is
// configured.
type NopReporter struct{}

func (NopReporter) ReportMilestone(context.Context, Identity, lifecycle.Milestone) error {
	return nil
}

func (NopReporter) ReportUnsupportedMeeting(context.Context, Identity, string) error {
	return nil
}

func (NopReporter) ReportAdmissionFailure(context.Context, Identity, AdmissionFailureDetail) error {
	return nil
}
