package store_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"capa/internal/settings"
	"capa/internal/store"
	"capa/internal/testsupport"
)

func TestOpenCreatesDatabaseAtResolvedPath(t *testing.T) {
	home := testsupport.TempHome(t)
	doc := testsupport.NewSettings(t)

	s := testsupport.MustOpenStore(t, doc)

	want := filepath.Join(home, ".capa", "capa.db")
	if s.Path() != want {
		t.Fatalf("unexpected database path: got %q want %q", s.Path(), want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("expected database file to exist: %v", err)
	}
}

func TestOpenHonorsCustomDatabasePath(t *testing.T) {
	home := testsupport.TempHome(t)
	custom := filepath.Join(home, "elsewhere", "capa.db")
	doc := testsupport.NewSettings(t, func(d *settings.ServerSettings) {
		d.Database.Path = custom
	})

	s := testsupport.MustOpenStore(t, doc)
	if s.Path() != custom {
		t.Fatalf("unexpected database path: %q", s.Path())
	}
	if _, err := os.Stat(custom); err != nil {
		t.Fatalf("expected database file at custom path: %v", err)
	}
}

func TestSessionLifecycle(t *testing.T) {
	testsupport.TempHome(t)
	s := testsupport.MustOpenStore(t, testsupport.NewSettings(t))
	ctx := context.Background()

	created, err := s.CreateSession(ctx)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if created.Token == "" || created.ID == "" {
		t.Fatalf("expected session identifiers, got %#v", created)
	}
	if !created.ExpiresAt.After(created.CreatedAt) {
		t.Fatalf("expiry should follow creation: %#v", created)
	}

	fetched, err := s.GetSession(ctx, created.Token)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if fetched.ID != created.ID {
		t.Fatalf("fetched wrong session: %#v", fetched)
	}

	if err := s.TouchSession(ctx, created.Token); err != nil {
		t.Fatalf("TouchSession failed: %v", err)
	}
	touched, err := s.GetSession(ctx, created.Token)
	if err != nil {
		t.Fatalf("GetSession after touch failed: %v", err)
	}
	if touched.ExpiresAt.Before(fetched.ExpiresAt) {
		t.Fatal("touch should not move expiry backwards")
	}

	if err := s.DeleteSession(ctx, created.Token); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if _, err := s.GetSession(ctx, created.Token); !errors.Is(err, store.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestGetSessionUnknownToken(t *testing.T) {
	testsupport.TempHome(t)
	s := testsupport.MustOpenStore(t, testsupport.NewSettings(t))

	if _, err := s.GetSession(context.Background(), "no-such-token"); !errors.Is(err, store.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestExpiredSessionsSurfaceAndPrune(t *testing.T) {
	testsupport.TempHome(t)
	// Zero-minute timeout expires sessions immediately.
	doc := testsupport.NewSettings(t, func(d *settings.ServerSettings) {
		d.Session.TimeoutMinutes = 0
	})
	s := testsupport.MustOpenStore(t, doc)
	ctx := context.Background()

	created, err := s.CreateSession(ctx)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	if _, err := s.GetSession(ctx, created.Token); !errors.Is(err, store.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}

	pruned, err := s.PruneExpired(ctx)
	if err != nil {
		t.Fatalf("PruneExpired failed: %v", err)
	}
	if pruned != 1 {
		t.Fatalf("expected 1 pruned session, got %d", pruned)
	}

	sessions, err := s.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 0 {
		t.Fatalf("expected empty session list, got %d", len(sessions))
	}
}

func TestStatsCountsActiveAndExpired(t *testing.T) {
	testsupport.TempHome(t)
	ctx := context.Background()

	s := testsupport.MustOpenStore(t, testsupport.NewSettings(t))
	for i := 0; i < 2; i++ {
		if _, err := s.CreateSession(ctx); err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}
	}

	// A second handle with a zero-minute timeout writes an already
	// expired session into the same database.
	expiring := testsupport.MustOpenStore(t, testsupport.NewSettings(t, func(d *settings.ServerSettings) {
		d.Session.TimeoutMinutes = 0
	}))
	if _, err := expiring.CreateSession(ctx); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Total != 3 || stats.Active != 2 || stats.Expired != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	if _, err := s.PruneExpired(ctx); err != nil {
		t.Fatalf("PruneExpired failed: %v", err)
	}
	stats, err = s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats after prune failed: %v", err)
	}
	if stats.Total != 2 || stats.Expired != 0 {
		t.Fatalf("unexpected stats after prune: %+v", stats)
	}
}

func TestListSessionsNewestFirst(t *testing.T) {
	testsupport.TempHome(t)
	s := testsupport.MustOpenStore(t, testsupport.NewSettings(t))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := s.CreateSession(ctx); err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}
	}

	sessions, err := s.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(sessions))
	}
	for i := 1; i < len(sessions); i++ {
		if sessions[i].CreatedAt.After(sessions[i-1].CreatedAt) {
			t.Fatal("sessions not ordered newest first")
		}
	}
}
