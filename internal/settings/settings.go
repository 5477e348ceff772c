package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"capa/internal/fileutil"
	"capa/internal/paths"
)

// Server contains the bind address configuration for the local API.
type Server struct {
	Port int    `json:"port"`
	Host string `json:"host"`
}

// Database locates the SQLite database file. An empty or tilde-prefixed
// path resolves through the paths package.
type Database struct {
	Path string `json:"path"`
}

// Session controls session lifetime for the API.
type Session struct {
	TimeoutMinutes int `json:"timeout_minutes"`
}

// ServerSettings is the persisted settings document. A value obtained
// from Load always has every field populated; absent fields are filled
// from the compiled-in defaults.
type ServerSettings struct {
	Version  string   `json:"version"`
	Server   Server   `json:"server"`
	Database Database `json:"database"`
	Session  Session  `json:"session"`
}

// ErrMalformedSettings indicates the settings file exists but is not
// valid JSON. Load surfaces this instead of reverting to defaults so
// callers can decide between repair and abort; only file absence falls
// back to defaults.
var ErrMalformedSettings = errors.New("settings file is not valid JSON")

// ErrWriteSettings indicates Save could not persist the document.
var ErrWriteSettings = errors.New("write settings")

// Load returns the current settings document, ensuring the state
// directory exists first. When no settings file is present it returns
// the default document without writing anything. It never mutates the
// on-disk file.
func Load() (*ServerSettings, error) {
	if _, err := paths.EnsureStateDir(); err != nil {
		return nil, err
	}
	path, err := paths.SettingsPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := Default()
			return &cfg, nil
		}
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var parsed settingsFile
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedSettings, err)
	}

	merged := parsed.mergeOverDefaults(Default())
	return &merged, nil
}

// Save persists the document atomically: the serialized form is written
// to a sibling temporary file and renamed over the settings file, so a
// reader sees either the previous complete document or the new one,
// never a partial write. Failures are surfaced unretried.
func Save(doc *ServerSettings) error {
	if doc == nil {
		return fmt.Errorf("%w: nil document", ErrWriteSettings)
	}
	if _, err := paths.EnsureStateDir(); err != nil {
		return err
	}
	path, err := paths.SettingsPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteSettings, err)
	}
	data = append(data, '\n')

	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteSettings, err)
	}
	return nil
}

// DatabasePath resolves the database location for the given document.
// A nil document selects the default location under the state directory.
func DatabasePath(doc *ServerSettings) (string, error) {
	if doc == nil {
		return paths.ResolveDatabasePath("")
	}
	return paths.ResolveDatabasePath(doc.Database.Path)
}
