// Package txwriter writes the output document so that it either appears
// complete under its final name or not at all.
//
// Content goes to a temporary file beside the target. Commit flushes it and
// renames it into place; Rollback removes it. A file already present at the
// final path is only ever replaced by a successful commit.
package txwriter

import (
	"bufio"
	"context"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"

	"github.com/agentstation/ordsync/pkg/constants"
	"github.com/agentstation/ordsync/pkg/errors"
	"github.com/agentstation/ordsync/pkg/logging"
)

// Writer opens transactional handles on a filesystem.
type Writer struct {
	fs afero.Fs
}

// New returns a writer on fs. A nil fs selects the OS filesystem.
func New(fs afero.Fs) *Writer {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Writer{fs: fs}
}

type state int

const (
	stateOpen state = iota
	stateCommitted
	stateRolledBack
)

// Handle is one pending output file.
type Handle struct {
	mu      sync.Mutex
	ctx     context.Context
	fs      afero.Fs
	path    string
	tmp     string
	file    afero.File
	buf     *bufio.Writer
	written int64
	state   state
}

// Open starts a transaction for path, creating its directory if needed.
func (w *Writer) Open(ctx context.Context, path string) (*Handle, error) {
	dir := filepath.Dir(path)
	if err := w.fs.MkdirAll(dir, constants.DirPermissions); err != nil {
		return nil, errors.WrapIO("create", dir, err)
	}

	f, err := afero.TempFile(w.fs, dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, errors.WrapIO("create", path, err)
	}

	logging.FromContext(ctx).Debug().
		Str("path", path).
		Str("temp", f.Name()).
		Msg("Output opened")

	return &Handle{
		ctx:  ctx,
		fs:   w.fs,
		path: path,
		tmp:  f.Name(),
		file: f,
		buf:  bufio.NewWriterSize(f, constants.WriteBufferSize),
	}, nil
}

// Commit finalizes h. See Handle.Commit.
func (w *Writer) Commit(h *Handle) error {
	return h.Commit()
}

// Rollback discards h. See Handle.Rollback.
func (w *Writer) Rollback(h *Handle, reason string) error {
	return h.Rollback(reason)
}

// Path returns the final path of the document.
func (h *Handle) Path() string {
	return h.path
}

// TempPath returns the path content is written to before commit.
func (h *Handle) TempPath() string {
	return h.tmp
}

// Written returns the number of bytes accepted so far.
func (h *Handle) Written() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.written
}

// Write implements io.Writer.
func (h *Handle) Write(p []byte) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.usable(); err != nil {
		return 0, err
	}
	n, err := h.buf.Write(p)
	h.written += int64(n)
	if err != nil {
		return n, errors.WrapIO("write", h.tmp, err)
	}
	return n, nil
}

// Commit flushes and closes the file and moves it to its final path.
// On failure the temporary file is removed and the handle is rolled back.
func (h *Handle) Commit() error {
	if h == nil {
		return errors.WrapIO("commit", "", errors.ErrNotFound)
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.usable(); err != nil {
		return err
	}

	if err := h.finish(); err != nil {
		h.discard()
		return err
	}
	if err := h.fs.Rename(h.tmp, h.path); err != nil {
		h.discard()
		return errors.WrapIO("rename", h.path, err)
	}
	h.state = stateCommitted

	logging.FromContext(h.ctx).Info().
		Str("path", h.path).
		Int64("bytes", h.written).
		Msg("Output committed")
	return nil
}

// Rollback closes and deletes the uncommitted file. It is a no-op on a nil
// handle and on a handle that is already committed or rolled back.
func (h *Handle) Rollback(reason string) error {
	if h == nil {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state != stateOpen {
		return nil
	}

	err := h.discard()
	logging.FromContext(h.ctx).Warn().
		Str("path", h.path).
		Str("reason", reason).
		Msg("Output rolled back")
	return err
}

func (h *Handle) usable() error {
	switch h.state {
	case stateCommitted:
		return errors.ErrCommitted
	case stateRolledBack:
		return errors.ErrRolledBack
	}
	return nil
}

func (h *Handle) finish() error {
	if err := h.buf.Flush(); err != nil {
		_ = h.file.Close()
		return errors.WrapIO("write", h.tmp, err)
	}
	if err := h.file.Sync(); err != nil {
		_ = h.file.Close()
		return errors.WrapIO("sync", h.tmp, err)
	}
	if err := h.file.Close(); err != nil {
		return errors.WrapIO("close", h.tmp, err)
	}
	return nil
}

// discard closes and removes the temporary file. Closing an already closed
// file is harmless here.
func (h *Handle) discard() error {
	h.state = stateRolledBack
	_ = h.file.Close()
	if err := h.fs.Remove(h.tmp); err != nil {
		if exists, _ := afero.Exists(h.fs, h.tmp); exists {
			return errors.WrapIO("delete", h.tmp, err)
		}
	}
	return nil
}
