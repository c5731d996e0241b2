package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// diskUploader appends base64 recording chunks to one file per session. It is
// the built-in uploader; remote storage backends satisfy session.Uploader
// outside this module.
type diskUploader struct {
	path string

	mu     sync.Mutex
	file   *os.File
	chunks int
	failed bool
}

func newDiskUploader(dir string) (*diskUploader, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return &diskUploader{path: filepath.Join(dir, "recording.b64")}, nil
}

// SaveChunk appends one base64 chunk line. The first write creates the file.
func (u *diskUploader) SaveChunk(data []byte) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.file == nil {
		f, err := os.OpenFile(u.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if err != nil {
			u.failed = true
			return fmt.Errorf("open recording file: %w", err)
		}
		u.file = f
	}

	if _, err := u.file.Write(append(data, '\n')); err != nil {
		u.failed = true
		return fmt.Errorf("write recording chunk: %w", err)
	}
	u.chunks++
	return nil
}

// Finalize closes the recording file and reports whether every chunk landed.
func (u *diskUploader) Finalize(context.Context) (bool, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.file != nil {
		if err := u.file.Close(); err != nil {
			u.file = nil
			return false, fmt.Errorf("close recording file: %w", err)
		}
		u.file = nil
	}
	return !u.failed, nil
}
