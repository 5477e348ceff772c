package auth_test

import (
	"errors"
	"os"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"capa/internal/auth"
	"capa/internal/testsupport"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	testsupport.TempHome(t)

	creds := auth.Credentials{
		Token: oauth2.Token{
			AccessToken:  "access-1",
			RefreshToken: "refresh-1",
			TokenType:    "Bearer",
			Expiry:       time.Now().Add(time.Hour).UTC(),
		},
		Metadata: auth.Metadata{
			Provider:  "github",
			AccountID: "octocat",
			Scopes:    []string{"repo", "read:user"},
		},
	}
	if err := auth.Save(creds); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := auth.Load("github")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Token.AccessToken != "access-1" || loaded.Token.RefreshToken != "refresh-1" {
		t.Fatalf("token mismatch: %#v", loaded.Token)
	}
	if loaded.Metadata.AccountID != "octocat" {
		t.Fatalf("metadata mismatch: %#v", loaded.Metadata)
	}
	if loaded.Metadata.UpdatedAt.IsZero() {
		t.Fatal("expected UpdatedAt to be stamped on save")
	}
}

func TestSaveKeepsOtherProviders(t *testing.T) {
	testsupport.TempHome(t)

	for _, provider := range []string{"github", "google"} {
		err := auth.Save(auth.Credentials{
			Token:    oauth2.Token{AccessToken: "token-" + provider},
			Metadata: auth.Metadata{Provider: provider},
		})
		if err != nil {
			t.Fatalf("Save %s failed: %v", provider, err)
		}
	}

	if _, err := auth.Load("github"); err != nil {
		t.Fatalf("Load github failed: %v", err)
	}
	if _, err := auth.Load("google"); err != nil {
		t.Fatalf("Load google failed: %v", err)
	}
}

func TestLoadMissingProvider(t *testing.T) {
	testsupport.TempHome(t)

	_, err := auth.Load("missing")
	if !errors.Is(err, auth.ErrNoCredentials) {
		t.Fatalf("expected ErrNoCredentials, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	testsupport.TempHome(t)

	err := auth.Save(auth.Credentials{
		Token:    oauth2.Token{AccessToken: "x"},
		Metadata: auth.Metadata{Provider: "github"},
	})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := auth.Delete("github"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := auth.Load("github"); !errors.Is(err, auth.ErrNoCredentials) {
		t.Fatalf("expected ErrNoCredentials after delete, got %v", err)
	}

	// Deleting again is a no-op.
	if err := auth.Delete("github"); err != nil {
		t.Fatalf("second Delete failed: %v", err)
	}
}

func TestCredentialsFileIsOwnerOnly(t *testing.T) {
	testsupport.TempHome(t)

	err := auth.Save(auth.Credentials{
		Token:    oauth2.Token{AccessToken: "secret"},
		Metadata: auth.Metadata{Provider: "github"},
	})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	path, err := auth.CredentialsPath()
	if err != nil {
		t.Fatalf("CredentialsPath failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat credentials: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected mode 0600, got %o", info.Mode().Perm())
	}
}
