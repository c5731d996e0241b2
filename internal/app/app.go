// Package app is the composition root: it wires config, logging, providers,
// the control socket, and the session controller behind the CLI commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rbright/usher/internal/config"
	"github.com/rbright/usher/internal/ipc"
	"github.com/rbright/usher/internal/lifecycle"
	"github.com/rbright/usher/internal/logging"
	"github.com/rbright/usher/internal/page"
	"github.com/rbright/usher/internal/respond"
	"github.com/rbright/usher/internal/session"
	"github.com/rbright/usher/internal/status"
	"github.com/rbright/usher/internal/voice/stt"
	"github.com/rbright/usher/internal/voice/tts"
)

const forwardTimeout = 500 * time.Millisecond

// JoinParams carry everything one join command needs beyond config.
type JoinParams struct {
	URL         string
	DisplayName string
	Token       string
	TeamID      string
	Timezone    string
	UserID      string
	EventID     string
	BotID       string
	OutputDir   string
}

// Join runs one full meeting session: it acquires the control socket, serves
// status/stop commands while the session runs, and tears everything down when
// the session ends.
func Join(ctx context.Context, factory page.Factory, configPath string, params JoinParams, stderr io.Writer) error {
	if factory == nil {
		return errors.New("no page driver wired into this build")
	}

	logRuntime, err := logging.New()
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	defer func() { _ = logRuntime.Close() }()
	logger := logRuntime.Logger

	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	for _, w := range loaded.Warnings {
		fmt.Fprintf(stderr, "warning: %s\n", w.Message)
		logger.Warn("config warning", "message", w.Message)
	}

	responder, err := respond.FromConfig(loaded.Config.Responder)
	if err != nil {
		return err
	}

	uploader, err := newDiskUploader(recordingDir(params))
	if err != nil {
		return fmt.Errorf("prepare recording dir: %w", err)
	}

	controller := session.New(session.Deps{
		Factory:   factory,
		TTS:       tts.NewCartesia(loaded.Config.TTS),
		STT:       stt.NewCartesia(loaded.Config.STT),
		Responder: responder,
		Reporter:  status.NewHTTP(loaded.Config.Report),
		Config:    loaded.Config,
		Selectors: session.DefaultSelectors(),
		Logger:    logger,
		AppTag:    "usher",
	})

	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		return err
	}
	listener, err := ipc.Acquire(ctx, socketPath, 200*time.Millisecond, 3)
	if err != nil {
		if errors.Is(err, ipc.ErrAlreadyRunning) {
			return fmt.Errorf("another usher session owns %s", socketPath)
		}
		return err
	}
	defer func() {
		_ = listener.Close()
		_ = os.Remove(socketPath)
	}()

	serverCtx, serverCancel := context.WithCancel(ctx)
	defer serverCancel()

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- ipc.Serve(serverCtx, listener, controlHandler(controller))
	}()

	joinErr := controller.Join(ctx, session.Params{
		URL:         params.URL,
		DisplayName: params.DisplayName,
		Token:       params.Token,
		TeamID:      params.TeamID,
		Timezone:    params.Timezone,
		UserID:      params.UserID,
		EventID:     params.EventID,
		BotID:       params.BotID,
		Uploader:    uploader,
	})

	serverCancel()
	if serverErr := <-serverErrCh; serverErr != nil {
		logger.Error("control server failed", "error", serverErr)
	}

	return joinErr
}

// sessionControl is the slice of the controller the control socket needs.
type sessionControl interface {
	Latest() lifecycle.Milestone
	History() []lifecycle.Milestone
	RequestStop(reason string)
}

// controlHandler answers control-socket commands for a running session.
func controlHandler(ctrl sessionControl) ipc.HandlerFunc {
	return func(_ context.Context, req ipc.Request) ipc.Response {
		switch req.Command {
		case "status":
			history := ctrl.History()
			names := make([]string, len(history))
			for i, m := range history {
				names[i] = string(m)
			}
			return ipc.Response{OK: true, Milestone: string(ctrl.Latest()), History: names}
		case "stop", "leave":
			ctrl.RequestStop(req.Command + "-command")
			return ipc.Response{OK: true, Message: "stop requested"}
		default:
			return ipc.Response{OK: false, Error: fmt.Sprintf("unknown command %q", req.Command)}
		}
	}
}

// Forward sends one command to a running session. The second result reports
// whether any session was there to handle it.
func Forward(ctx context.Context, command string) (ipc.Response, bool, error) {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		return ipc.Response{}, false, err
	}

	resp, err := ipc.Send(ctx, socketPath, ipc.Request{Command: command}, forwardTimeout)
	if err == nil {
		if resp.OK {
			return resp, true, nil
		}
		return resp, true, errors.New(resp.Error)
	}

	if errors.Is(err, os.ErrNotExist) || errors.Is(err, syscall.ECONNREFUSED) {
		return ipc.Response{}, false, nil
	}
	return ipc.Response{}, true, fmt.Errorf("forward command %q: %w", command, err)
}

// recordingDir picks where recording chunks land for one session.
func recordingDir(params JoinParams) string {
	if params.OutputDir != "" {
		return params.OutputDir
	}

	name := params.EventID
	if name == "" {
		name = time.Now().Format("20060102-150405")
	}
	if dir, err := logging.StateDir(); err == nil {
		return filepath.Join(dir, "recordings", name)
	}
	return filepath.Join(os.TempDir(), "usher-recordings", name)
}
