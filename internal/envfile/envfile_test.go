package envfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	input := `
# server environment
PORT=5912
export HOST=127.0.0.1
NAME="capa server"
TOKEN='abc=123'
EMPTY=
`
	values, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	want := map[string]string{
		"PORT":  "5912",
		"HOST":  "127.0.0.1",
		"NAME":  "capa server",
		"TOKEN": "abc=123",
		"EMPTY": "",
	}
	if len(values) != len(want) {
		t.Fatalf("expected %d values, got %d: %v", len(want), len(values), values)
	}
	for key, expected := range want {
		if values[key] != expected {
			t.Fatalf("key %q: got %q want %q", key, values[key], expected)
		}
	}
}

func TestParseLaterKeysWin(t *testing.T) {
	values, err := Parse(strings.NewReader("A=1\nA=2\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if values["A"] != "2" {
		t.Fatalf("expected last value to win, got %q", values["A"])
	}
}

func TestParseRejectsMalformedLine(t *testing.T) {
	if _, err := Parse(strings.NewReader("NOT A PAIR\n")); err == nil {
		t.Fatal("expected error for line without separator")
	}
	if _, err := Parse(strings.NewReader("=value\n")); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestLoadMissingFile(t *testing.T) {
	values, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(values) != 0 {
		t.Fatalf("expected empty map, got %v", values)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.env")
	if err := os.WriteFile(path, []byte("PORT=9000\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	values, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if values["PORT"] != "9000" {
		t.Fatalf("unexpected value: %v", values)
	}
}
