// Package testsupport provides helpers shared across package tests.
package testsupport

import (
	"testing"

	"capa/internal/settings"
	"capa/internal/store"
)

// TempHome points HOME at a fresh temp directory so each test gets its
// own state directory, and returns it.
func TempHome(t testing.TB) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

// NewSettings returns a settings document seeded for tests, with any
// provided mutations applied.
func NewSettings(t testing.TB, mutate ...func(*settings.ServerSettings)) *settings.ServerSettings {
	t.Helper()
	doc := settings.Default()
	for _, fn := range mutate {
		fn(&doc)
	}
	return &doc
}

// MustOpenStore opens the session store for the given settings and
// registers cleanup.
func MustOpenStore(t testing.TB, doc *settings.ServerSettings) *store.Store {
	t.Helper()
	s, err := store.Open(doc)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}
