// Package session orchestrates one meeting attendance from page launch to
// final upload. The controller owns the milestone history and the single
// idempotent stop routine; monitors and pipelines only request termination.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rbright/usher/internal/admission"
	"github.com/rbright/usher/internal/config"
	"github.com/rbright/usher/internal/convo"
	"github.com/rbright/usher/internal/lifecycle"
	"github.com/rbright/usher/internal/logging"
	"github.com/rbright/usher/internal/monitor"
	"github.com/rbright/usher/internal/page"
	"github.com/rbright/usher/internal/pipeline"
	"github.com/rbright/usher/internal/recorder"
	"github.com/rbright/usher/internal/respond"
	"github.com/rbright/usher/internal/status"
	"github.com/rbright/usher/internal/task"
	"github.com/rbright/usher/internal/transcript"
	"github.com/rbright/usher/internal/voice/stt"
	"github.com/rbright/usher/internal/voice/tts"
)

// Uploader accumulates recording chunks and finalizes persistent storage.
// Finalize's boolean result is the upload verdict; false downgrades the
// session's terminal milestone.
type Uploader interface {
	SaveChunk(data []byte) error
	Finalize(ctx context.Context) (bool, error)
}

// Params identify and parameterize one join.
type Params struct {
	URL         string
	DisplayName string
	Token       string
	TeamID      string
	Timezone    string
	UserID      string
	EventID     string
	BotID       string
	Uploader    Uploader
}

// Deps are the collaborators a controller composes.
type Deps struct {
	Factory   page.Factory
	TTS       tts.Provider
	STT       stt.Provider
	Responder respond.Provider
	Reporter  status.Reporter
	Config    config.Config
	Selectors Selectors
	Logger    *slog.Logger
	AppTag    string
}

// Controller drives one session. Construct one per join.
type Controller struct {
	factory   page.Factory
	tts       tts.Provider
	stt       stt.Provider
	responder respond.Provider
	reporter  status.Reporter
	cfg       config.Config
	selectors Selectors
	logger    *slog.Logger
	appTag    string

	history lifecycle.History
	tasks   *task.Registry

	stopOnce sync.Once
	stopCh   chan struct{}

	mu      sync.Mutex
	capture *pipeline.Capture
}

// New builds a controller. A nil reporter discards reports; a nil logger
// discards logs.
func New(deps Deps) *Controller {
	reporter := deps.Reporter
	if reporter == nil {
		reporter = status.NopReporter{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Controller{
		factory:   deps.Factory,
		tts:       deps.TTS,
		stt:       deps.STT,
		responder: deps.Responder,
		reporter:  reporter,
		cfg:       deps.Config,
		selectors: deps.Selectors,
		logger:    logger,
		appTag:    deps.AppTag,
		tasks:     task.NewRegistry(),
		stopCh:    make(chan struct{}),
	}
}

// RequestStop asks the session to end. Idempotent; safe from any goroutine.
// The first caller wins, later calls are no-ops.
func (c *Controller) RequestStop(reason string) {
	c.stopOnce.Do(func() {
		c.logger.Info("session stop requested", "reason", reason)
		close(c.stopCh)
	})
}

// History returns a copy of the milestone sequence so far.
func (c *Controller) History() []lifecycle.Milestone {
	return c.history.Snapshot()
}

// Latest returns the most recent milestone.
func (c *Controller) Latest() lifecycle.Milestone {
	return c.history.Latest()
}

// Join runs the full session lifecycle. It reports status externally as it
// goes and returns an error only for unrecoverable failures, after invoking
// the matching external handler.
func (c *Controller) Join(ctx context.Context, params Params) error {
	sessionID := uuid.NewString()
	logger := logging.ForSession(c.logger, sessionID, params.BotID, params.EventID)
	identity := status.Identity{
		Token:   params.Token,
		BotID:   params.BotID,
		EventID: params.EventID,
	}

	c.appendAndReport(ctx, identity, logger, lifecycle.MilestoneProcessing)
	logger.Info("joining meeting",
		"url", params.URL,
		"team_id", params.TeamID,
		"user_id", params.UserID,
		"timezone", params.Timezone)

	handle, err := c.factory.Open(ctx, params.URL, sessionID, c.appTag)
	if err != nil {
		return c.fail(ctx, identity, logger, fmt.Errorf("open page: %w", err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := handle.Close(closeCtx); err != nil {
			logger.Warn("page close failed", "error", err)
		}
	}()

	c.dismissAll(ctx, handle, logger, c.selectors.PermissionDismiss)

	switch class := c.classify(ctx, handle, logger); class {
	case PageMeeting:
	case PageSignIn:
		return c.fail(ctx, identity, logger, &UnsupportedMeetingError{Reason: ReasonSignInRequired})
	default:
		if class == PageIndeterminate {
			logger.Warn("page class indeterminate, treating as unsupported")
		}
		return c.fail(ctx, identity, logger, &UnsupportedMeetingError{Reason: ReasonUnsupportedPage})
	}

	displayName := params.DisplayName
	if displayName == "" {
		displayName = c.cfg.Session.DisplayName
	}
	if err := c.fillStep(ctx, handle, logger, "enter-name", c.selectors.NameInput, displayName); err != nil {
		return c.fail(ctx, identity, logger, err)
	}

	c.muteLocalDevices(ctx, handle, logger)

	if err := c.clickStep(ctx, handle, logger, "request-admission", c.selectors.JoinButton, true); err != nil {
		return c.fail(ctx, identity, logger, err)
	}

	gate := admission.New(
		admission.NewPageReader(handle, c.selectors.Cues),
		c.cfg.Admission,
		c.snapshotHook(handle, logger, "admission-read"),
	)
	res, err := gate.Await(ctx)
	if err != nil {
		return c.fail(ctx, identity, logger, fmt.Errorf("admission gate: %w", err))
	}
	switch res.Outcome {
	case admission.OutcomeDenied:
		return c.fail(ctx, identity, logger, &AdmissionFailureError{
			BodyText: res.BodyText,
			Attempt:  res.Polls,
		})
	case admission.OutcomeTimedOut:
		return c.fail(ctx, identity, logger, &AdmissionFailureError{
			BodyText:  res.BodyText,
			Retryable: true,
			Attempt:   res.Polls,
		})
	}

	c.appendAndReport(ctx, identity, logger, lifecycle.MilestoneJoined)
	logger.Info("admitted to meeting", "polls", res.Polls)

	if err := c.attend(ctx, params, handle, sessionID, logger); err != nil {
		return c.fail(ctx, identity, logger, err)
	}

	c.appendAndReport(ctx, identity, logger, lifecycle.MilestoneFinished)

	ok, err := params.Uploader.Finalize(ctx)
	if err != nil {
		logger.Warn("final upload failed", "error", err)
		ok = false
	}
	if !ok && c.history.DowngradeFinished() {
		logger.Warn("terminal milestone downgraded after failed upload")
		c.reportMilestone(ctx, identity, logger, lifecycle.MilestoneFailed)
	}

	logger.Info("session complete", "final", string(c.history.Latest()))
	return nil
}

// attend runs the in-meeting phase: greeting, monitors, capture, recording.
// It returns when recording ends, with all owned tasks torn down.
func (c *Controller) attend(ctx context.Context, params Params, handle page.Handle, sessionID string, logger *slog.Logger) error {
	sessionCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer c.tasks.StopAll()

	media := handle.Media()

	c.dismissAll(ctx, handle, logger, c.selectors.WelcomeDismiss)

	speaker := pipeline.NewSpeaker(media, c.tts, logger)
	if greeting := c.cfg.Session.Greeting; greeting != "" {
		speaker.Speak(sessionCtx, greeting)
	}

	builder := transcript.NewBuilder()
	var engine *convo.Engine
	if c.responder != nil {
		engine = convo.New(c.responder, speaker, c.cfg.Responder, logger)
	}
	onFinal := func(text string) {
		builder.Add(text, true)
		if engine != nil {
			engine.OnTranscript(sessionCtx, text)
		}
	}

	capture := pipeline.NewCapture(media, c.stt, c.cfg.Capture, sessionID, onFinal, logger)
	c.mu.Lock()
	c.capture = capture
	c.mu.Unlock()

	rec := recorder.New(media, params.Uploader, c.cfg.Recorder, logger)

	presence := monitor.NewPresence(
		c.participantCountReader(handle),
		c.cfg.Presence,
		c.cfg.Session.GraceDelay,
		c.RequestStop,
		logger,
	)
	if err := c.tasks.Go(sessionCtx, "presence", presence.Run); err != nil {
		return err
	}

	if err := c.startSilenceMonitor(sessionCtx, media, logger); err != nil {
		logger.Warn("silence monitor not started", "error", err)
	}

	if err := c.tasks.Go(sessionCtx, "capture", capture.Run); err != nil {
		return err
	}

	// Translate stop requests into the recorder's idempotent stop.
	if err := c.tasks.Go(sessionCtx, "stop-signal", func(tctx context.Context) {
		select {
		case <-tctx.Done():
		case <-c.stopCh:
			rec.Stop()
		}
	}); err != nil {
		return err
	}

	if err := rec.Record(sessionCtx, c.cfg.Session.MaxDuration); err != nil {
		return fmt.Errorf("recording: %w", err)
	}

	cancel()
	c.tasks.StopAll()

	if text := builder.Text(); text != "" {
		logger.Info("meeting transcript", "text", text)
	}
	return nil
}

// startSilenceMonitor runs the silence monitor only when an outbound audio
// source exists; otherwise the monitor is permanently disabled.
func (c *Controller) startSilenceMonitor(ctx context.Context, media page.Media, logger *slog.Logger) error {
	has, err := media.HasOutboundAudio(ctx)
	if err != nil {
		return fmt.Errorf("probe outbound audio: %w", err)
	}
	if !has {
		logger.Info("no outbound audio source, silence monitor disabled")
		return nil
	}

	silence := monitor.NewSilence(
		media.AmbientEnergy,
		c.cfg.Silence,
		c.cfg.Session.GraceDelay,
		c.RequestStop,
		logger,
	)
	return c.tasks.Go(ctx, "silence", silence.Run)
}

// participantCountReader extracts the visible participant count through the
// ordered selector chain.
func (c *Controller) participantCountReader(handle page.Handle) monitor.CountReader {
	return func(ctx context.Context) (int, bool) {
		text, ok := page.ExtractFirst(ctx, handle, c.selectors.ParticipantCount)
		if !ok {
			return 0, false
		}
		return page.ParseParticipantCount(text)
	}
}

// muteLocalDevices turns off the local microphone and camera, best-effort.
func (c *Controller) muteLocalDevices(ctx context.Context, handle page.Handle, logger *slog.Logger) {
	if err := c.clickStep(ctx, handle, logger, "mute-microphone", c.selectors.MuteMic, false); err != nil {
		logger.Debug("microphone mute skipped", "error", err)
	}
	if err := c.clickStep(ctx, handle, logger, "mute-camera", c.selectors.MuteCam, false); err != nil {
		logger.Debug("camera mute skipped", "error", err)
	}
}

// appendAndReport records a milestone locally and reports it externally.
// Reporting failures are logged, never fatal.
func (c *Controller) appendAndReport(ctx context.Context, id status.Identity, logger *slog.Logger, m lifecycle.Milestone) {
	if err := c.history.Append(m); err != nil {
		logger.Warn("milestone append rejected", "milestone", string(m), "error", err)
		return
	}
	c.reportMilestone(ctx, id, logger, m)
}

func (c *Controller) reportMilestone(ctx context.Context, id status.Identity, logger *slog.Logger, m lifecycle.Milestone) {
	if err := c.reporter.ReportMilestone(ctx, id, m); err != nil {
		logger.Warn("milestone report failed", "milestone", string(m), "error", err)
	}
}

// fail is the single error exit: it force-closes any open transcription
// stream, finalizes the history, dispatches the matching external handler,
// and rethrows err.
func (c *Controller) fail(ctx context.Context, id status.Identity, logger *slog.Logger, err error) error {
	c.mu.Lock()
	capture := c.capture
	c.mu.Unlock()
	if capture != nil {
		capture.CloseStream()
	}

	if !c.history.Contains(lifecycle.MilestoneFinished) {
		if appendErr := c.history.Append(lifecycle.MilestoneFailed); appendErr != nil {
			logger.Warn("failed milestone append rejected", "error", appendErr)
		}
	}

	var unsupported *UnsupportedMeetingError
	var admissionFailure *AdmissionFailureError
	switch {
	case errors.As(err, &unsupported):
		if reportErr := c.reporter.ReportUnsupportedMeeting(ctx, id, unsupported.Reason); reportErr != nil {
			logger.Warn("unsupported-meeting report failed", "error", reportErr)
		}
	case errors.As(err, &admissionFailure):
		detail := status.AdmissionFailureDetail{
			BodyText:  admissionFailure.BodyText,
			Retryable: admissionFailure.Retryable,
			Attempt:   admissionFailure.Attempt,
		}
		if reportErr := c.reporter.ReportAdmissionFailure(ctx, id, detail); reportErr != nil {
			logger.Warn("admission-failure report failed", "error", reportErr)
		}
	}

	c.reportMilestone(ctx, id, logger, lifecycle.MilestoneFailed)
	logger.Error("session failed", "error", err)
	return err
}
