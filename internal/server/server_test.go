package server_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"capa/internal/server"
	"capa/internal/settings"
	"capa/internal/testsupport"
)

func startServer(t *testing.T, doc *settings.ServerSettings) string {
	t.Helper()
	st := testsupport.MustOpenStore(t, doc)

	srv, err := server.New(doc, st, nil)
	if err != nil {
		t.Fatalf("server.New failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	t.Cleanup(srv.Stop)
	if err := srv.Start(ctx); err != nil {
		t.Fatalf("server.Start failed: %v", err)
	}
	return "http://" + srv.Addr()
}

func testSettings(t *testing.T) *settings.ServerSettings {
	t.Helper()
	return testsupport.NewSettings(t, func(d *settings.ServerSettings) {
		d.Server.Port = 0 // let the kernel pick a free port
	})
}

func TestHealthEndpoint(t *testing.T) {
	testsupport.TempHome(t)
	base := startServer(t, testSettings(t))

	resp, err := http.Get(base + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("unexpected health payload: %v", body)
	}
	if body["version"] != settings.Default().Version {
		t.Fatalf("unexpected version: %v", body)
	}
}

func TestSettingsEndpoint(t *testing.T) {
	testsupport.TempHome(t)
	doc := testSettings(t)
	doc.Session.TimeoutMinutes = 45
	base := startServer(t, doc)

	resp, err := http.Get(base + "/api/settings")
	if err != nil {
		t.Fatalf("GET /api/settings failed: %v", err)
	}
	defer resp.Body.Close()

	var got settings.ServerSettings
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Session.TimeoutMinutes != 45 {
		t.Fatalf("unexpected settings payload: %+v", got)
	}
}

func TestSessionCreateValidateDelete(t *testing.T) {
	testsupport.TempHome(t)
	base := startServer(t, testSettings(t))

	resp, err := http.Post(base+"/api/sessions", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /api/sessions failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}

	var created struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.Token == "" || !created.ExpiresAt.After(time.Now()) {
		t.Fatalf("unexpected session payload: %+v", created)
	}

	getResp, err := http.Get(fmt.Sprintf("%s/api/sessions/%s", base, created.Token))
	if err != nil {
		t.Fatalf("GET session failed: %v", err)
	}
	getResp.Body.Close()
	if getResp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected validate status: %d", getResp.StatusCode)
	}

	req, err := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/api/sessions/%s", base, created.Token), nil)
	if err != nil {
		t.Fatal(err)
	}
	delResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE session failed: %v", err)
	}
	delResp.Body.Close()
	if delResp.StatusCode != http.StatusNoContent {
		t.Fatalf("unexpected delete status: %d", delResp.StatusCode)
	}

	afterResp, err := http.Get(fmt.Sprintf("%s/api/sessions/%s", base, created.Token))
	if err != nil {
		t.Fatalf("GET deleted session failed: %v", err)
	}
	afterResp.Body.Close()
	if afterResp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", afterResp.StatusCode)
	}
}

func TestUnknownSessionRejected(t *testing.T) {
	testsupport.TempHome(t)
	base := startServer(t, testSettings(t))

	resp, err := http.Get(base + "/api/sessions/bogus-token")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestMethodGuards(t *testing.T) {
	testsupport.TempHome(t)
	base := startServer(t, testSettings(t))

	resp, err := http.Post(base+"/api/settings", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /api/settings failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
}
