package paths

import (
	"errors"
	"fmt"
	"os"
)

// ErrNotDirectory indicates the state directory path exists on disk as
// something other than a directory.
var ErrNotDirectory = errors.New("state path exists and is not a directory")

// EnsureStateDir creates the state directory and any missing ancestors,
// returning its path. Calling it when the directory already exists is a
// no-op. Every load or save of on-disk state goes through here first.
func EnsureStateDir() (string, error) {
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create state directory %q: %w", dir, err)
	}
	return dir, nil
}
