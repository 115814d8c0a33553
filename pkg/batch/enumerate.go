package batch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/textkernel/tx-go/pkg/faults"
)

// Enumerate lists the regular files under root in lexical order, descending
// into subdirectories when recurse is set. A symlinked root is followed, and
// symlinks to regular files are listed under their link path. The whole list
// is materialized so the batch size can be checked before any submission.
func Enumerate(root string, recurse bool) ([]string, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("%w: root directory is blank", faults.ErrInvalidArgument)
	}

	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", faults.ErrNotFound, root)
		}
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", faults.ErrInvalidArgument, root)
	}

	if !recurse {
		return listDir(root)
	}

	// WalkDir does not follow a symlinked root, so walk its target and
	// report paths under root as given.
	target, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", root, err)
	}

	var files []string
	err = filepath.WalkDir(target, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !isRegular(path, d) {
			return nil
		}
		rel, err := filepath.Rel(target, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.Join(root, rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	return files, nil
}

func listDir(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", root, err)
	}

	var files []string
	for _, e := range entries {
		path := filepath.Join(root, e.Name())
		if isRegular(path, e) {
			files = append(files, path)
		}
	}

	return files, nil
}

// isRegular reports whether d is a regular file or a symlink to one.
// Symlinked directories are not descended into.
func isRegular(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
