// Package checkpoint persists run progress so an interrupted run can resume
// from the last completed location batch instead of starting over.
package checkpoint

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"

	"github.com/recovery-atlas/facility-cli/internal/model"
)

// File reads and writes a single JSON run-state file. Writes go through a
// temp file and rename so a crash mid-write never leaves a truncated
// checkpoint behind.
type File struct {
	path string
}

func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Path() string { return f.path }

// Save atomically replaces the checkpoint with the given state.
func (f *File) Save(state *model.RunState) error {
	state.UpdatedAt = time.Now().UTC()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return eris.Wrap(err, "checkpoint: marshal state")
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "checkpoint: create dir %s", dir)
	}

	tmp, err := os.CreateTemp(dir, ".checkpoint-*.tmp")
	if err != nil {
		return eris.Wrap(err, "checkpoint: create temp file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return eris.Wrap(err, "checkpoint: write temp file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return eris.Wrap(err, "checkpoint: close temp file")
	}

	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return eris.Wrapf(err, "checkpoint: rename to %s", f.path)
	}
	return nil
}

// Load returns the saved state, or nil when no checkpoint exists.
func (f *File) Load() (*model.RunState, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "checkpoint: read %s", f.path)
	}

	var state model.RunState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, eris.Wrapf(err, "checkpoint: parse %s", f.path)
	}
	return &state, nil
}

// Clear removes the checkpoint. Removing a checkpoint that does not exist is
// not an error.
func (f *File) Clear() error {
	err := os.Remove(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return eris.Wrapf(err, "checkpoint: remove %s", f.path)
}
