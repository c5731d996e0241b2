package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rbright/usher/internal/page"
	"github.com/rbright/usher/internal/retry"
)

const (
	stepTimeout     = 5 * time.Second
	classifyTimeout = 15 * time.Second
)

// PageClass is the result of pre-join page classification.
type PageClass int

const (
	PageMeeting PageClass = iota
	PageSignIn
	PageUnsupported
	PageIndeterminate
)

// classify decides what kind of page the URL landed on. Classification errors
// are conservative: an unreadable page is treated as unsupported.
func (c *Controller) classify(ctx context.Context, handle page.Handle, logger *slog.Logger) PageClass {
	meeting, err := handle.WaitVisible(ctx, c.selectors.MeetingMarker, classifyTimeout)
	if err != nil {
		logger.Warn("page classification error", "error", err)
		return PageIndeterminate
	}
	if meeting {
		return PageMeeting
	}

	signIn, err := handle.Visible(ctx, c.selectors.SignInMarker)
	if err != nil {
		logger.Warn("page classification error", "error", err)
		return PageIndeterminate
	}
	if signIn {
		return PageSignIn
	}
	return PageUnsupported
}

// stepPolicy is the retry budget for one UI-automation step, with diagnostic
// snapshots captured between attempts.
func (c *Controller) stepPolicy(handle page.Handle, logger *slog.Logger, step string) retry.Policy {
	return retry.Policy{
		MaxAttempts: c.cfg.Admission.StepAttempts,
		Wait:        c.cfg.Admission.StepWait,
		OnFailure:   c.snapshotHook(handle, logger, step),
	}
}

// clickStep clicks css under the step retry policy. Optional steps absorb
// exhaustion as "element probably absent".
func (c *Controller) clickStep(ctx context.Context, handle page.Handle, logger *slog.Logger, step, css string, mandatory bool) error {
	err := retry.Run(ctx, c.stepPolicy(handle, logger, step), func(ctx context.Context) error {
		ok, err := handle.Click(ctx, css, stepTimeout)
		if err != nil {
			return fmt.Errorf("%s: %w", step, err)
		}
		if !ok {
			return fmt.Errorf("%s: element not found", step)
		}
		return nil
	})
	if err == nil {
		return nil
	}
	if !mandatory {
		logger.Debug("optional step skipped", "step", step, "error", err)
		return nil
	}
	return err
}

// fillStep fills css with value under the step retry policy.
func (c *Controller) fillStep(ctx context.Context, handle page.Handle, logger *slog.Logger, step, css, value string) error {
	return retry.Run(ctx, c.stepPolicy(handle, logger, step), func(ctx context.Context) error {
		ok, err := handle.Fill(ctx, css, value, stepTimeout)
		if err != nil {
			return fmt.Errorf("%s: %w", step, err)
		}
		if !ok {
			return fmt.Errorf("%s: element not found", step)
		}
		return nil
	})
}

// dismissAll best-effort clicks each selector once, without retries.
func (c *Controller) dismissAll(ctx context.Context, handle page.Handle, logger *slog.Logger, selectors []string) {
	for _, css := range selectors {
		ok, err := handle.Click(ctx, css, stepTimeout)
		if err != nil {
			logger.Debug("dismiss failed", "selector", css, "error", err)
			continue
		}
		if ok {
			logger.Debug("dialog dismissed", "selector", css)
		}
	}
}
