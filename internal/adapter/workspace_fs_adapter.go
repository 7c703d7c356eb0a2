// Package adapter contains infrastructure adapters for the autoconf CLI.
package adapter

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	m "autoconf.dev/pkg/autoconf/internal/model"
)

// Permissions used for files and directories created in the workspace.
const (
	filePerm = 0o644
	dirPerm  = 0o755
)

// WorkspaceFS abstracts the filesystem operations that rule evaluation and
// file materialization rely on. It hides direct `os` access so the domain
// logic can be tested without touching the disk.
type WorkspaceFS interface {
	// Stat returns metadata for path, following symlinks.
	Stat(path m.Path) (os.FileInfo, error)

	// Lstat returns metadata for path without following a trailing symlink.
	Lstat(path m.Path) (os.FileInfo, error)

	// Exists reports whether something is present at path. Errors other than
	// "not exist" are returned so callers can tell a missing file from an
	// unreadable one.
	Exists(path m.Path) (bool, error)

	// ReadFile loads a file from disk and returns its contents.
	ReadFile(path m.Path) ([]byte, error)

	// WriteFile creates or truncates path and writes content to it.
	WriteFile(path m.Path, content []byte) error

	// AppendFile appends content to the end of an existing file.
	AppendFile(path m.Path, content []byte) error

	// MkdirAll creates path and any missing parents.
	MkdirAll(path m.Path) error

	// JoinPath joins path elements into a single path.
	JoinPath(elem ...string) m.Path
}

// LocalWorkspaceFS is the os-backed WorkspaceFS.
type LocalWorkspaceFS struct{}

// NewLocalWorkspaceFS constructs a LocalWorkspaceFS instance ready to be
// wired into the evaluator and materializer.
func NewLocalWorkspaceFS() *LocalWorkspaceFS {
	return &LocalWorkspaceFS{}
}

// Stat returns os.FileInfo metadata for the given path.
func (a *LocalWorkspaceFS) Stat(path m.Path) (os.FileInfo, error) {
	return os.Stat(string(path))
}

// Lstat returns os.FileInfo metadata for the given path, not following symlinks.
func (a *LocalWorkspaceFS) Lstat(path m.Path) (os.FileInfo, error) {
	return os.Lstat(string(path))
}

// Exists reports whether path is present on disk.
func (a *LocalWorkspaceFS) Exists(path m.Path) (bool, error) {
	_, err := os.Stat(string(path))
	if err == nil {
		return true, nil
	}

	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}

	return false, err
}

// ReadFile loads file contents from disk.
func (a *LocalWorkspaceFS) ReadFile(path m.Path) ([]byte, error) {
	// #nosec G304 - path comes from the user's own provisioning config
	return os.ReadFile(string(path))
}

// WriteFile writes content to a file, creating it if needed.
func (a *LocalWorkspaceFS) WriteFile(path m.Path, content []byte) error {
	return os.WriteFile(string(path), content, filePerm)
}

// AppendFile appends content to the file at path.
func (a *LocalWorkspaceFS) AppendFile(path m.Path, content []byte) error {
	// #nosec G304 - path comes from the user's own provisioning config
	f, err := os.OpenFile(string(path), os.O_APPEND|os.O_WRONLY, filePerm)
	if err != nil {
		return err
	}

	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}

// MkdirAll creates a directory and all missing parents.
func (a *LocalWorkspaceFS) MkdirAll(path m.Path) error {
	return os.MkdirAll(string(path), dirPerm)
}

// JoinPath joins path elements into a single path.
func (a *LocalWorkspaceFS) JoinPath(elem ...string) m.Path {
	return m.Path(filepath.Join(elem...))
}
