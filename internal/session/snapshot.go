package session

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/rbright/usher/internal/logging"
	"github.com/rbright/usher/internal/page"
)

// snapshotHook returns a retry diagnostic hook capturing a page screenshot
// into the state directory on each failed attempt.
func (c *Controller) snapshotHook(handle page.Handle, logger *slog.Logger, label string) func(ctx context.Context, attempt int, err error) {
	return func(ctx context.Context, attempt int, err error) {
		logger.Warn("automation step failed",
			"step", label,
			"attempt", attempt,
			"error", err)

		dir, dirErr := logging.StateDir()
		if dirErr != nil {
			logger.Debug("snapshot skipped", "error", dirErr)
			return
		}

		img, shotErr := handle.Screenshot(ctx)
		if shotErr != nil {
			logger.Debug("snapshot capture failed", "error", shotErr)
			return
		}

		name := fmt.Sprintf("%s-attempt%d-%s.png", label, attempt, time.Now().Format("20060102-150405"))
		if writeErr := os.WriteFile(filepath.Join(dir, name), img, 0o600); writeErr != nil {
			logger.Debug("snapshot write failed", "error", writeErr)
		}
	}
}
