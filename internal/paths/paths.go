package paths

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	stateDirName     = ".capa"
	settingsFileName = "settings.json"
	pidFileName      = "server.pid"
	databaseFileName = "capa.db"
)

// ErrNoHomeDir indicates the current user's home directory could not be
// resolved from the environment. Nothing in the state layer can proceed
// without it.
var ErrNoHomeDir = errors.New("home directory unavailable")

// StateDir returns the per-user state directory, <home>/.capa.
func StateDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoHomeDir, err)
	}
	return filepath.Join(home, stateDirName), nil
}

// SettingsPath returns the location of the settings document.
func SettingsPath() (string, error) {
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, settingsFileName), nil
}

// PIDFilePath returns the location of the server process-id file. The file
// itself is owned by process supervision; this package only names it.
func PIDFilePath() (string, error) {
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, pidFileName), nil
}

// DefaultDatabasePath returns the database location used when settings do
// not override it: <state dir>/capa.db.
func DefaultDatabasePath() (string, error) {
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, databaseFileName), nil
}

// ResolveDatabasePath resolves a configured database path value. An empty
// value selects the default location. A leading tilde expands to the home
// directory; absolute and relative values pass through verbatim (relative
// paths resolve against the caller's working directory, not here).
func ResolveDatabasePath(configured string) (string, error) {
	if configured == "" {
		return DefaultDatabasePath()
	}
	return ExpandTilde(configured)
}

// ExpandTilde replaces a leading "~" (bare, or followed by a path
// separator) with the resolved home directory. A tilde anywhere else in
// the string is not a home reference and is left untouched.
func ExpandTilde(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	if len(path) > 1 && path[1] != '/' && path[1] != '\\' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoHomeDir, err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}
