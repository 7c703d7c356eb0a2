package adapter

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	m "autoconf.dev/pkg/autoconf/internal/model"
)

// errFindLimit stops a glob walk once enough matches were collected.
var errFindLimit = errors.New("find limit reached")

// FileFinder searches a workspace for files matching a glob.
type FileFinder interface {
	// FindFiles returns up to limit workspace-relative paths matching include
	// and not matching exclude. A limit <= 0 means no limit; an empty exclude
	// disables exclusion.
	FindFiles(ctx context.Context, root m.Path, include, exclude string, limit int) ([]string, error)
}

// LocalFileFinder walks the local disk with doublestar patterns.
type LocalFileFinder struct{}

// NewLocalFileFinder constructs a LocalFileFinder.
func NewLocalFileFinder() *LocalFileFinder {
	return &LocalFileFinder{}
}

// FindFiles implements FileFinder.
func (f *LocalFileFinder) FindFiles(ctx context.Context, root m.Path, include, exclude string, limit int) ([]string, error) {
	if root == "" {
		return nil, nil
	}

	if !doublestar.ValidatePattern(include) {
		return nil, doublestar.ErrBadPattern
	}

	if exclude != "" && !doublestar.ValidatePattern(exclude) {
		return nil, doublestar.ErrBadPattern
	}

	var matches []string

	err := doublestar.GlobWalk(os.DirFS(string(root)), filepath.ToSlash(include), func(path string, _ fs.DirEntry) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if exclude != "" {
			if excluded, _ := doublestar.Match(exclude, path); excluded {
				return nil
			}
		}

		matches = append(matches, filepath.FromSlash(path))
		if limit > 0 && len(matches) >= limit {
			return errFindLimit
		}

		return nil
	}, doublestar.WithFilesOnly())
	if err != nil && !errors.Is(err, errFindLimit) {
		return matches, err
	}

	return matches, nil
}
