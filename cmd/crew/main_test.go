package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/crewdeck/crew/pkg/config"
)

const mainFixture = `{
  "me_user_id": 1,
  "users": [{"id": 1, "name": "Ada", "email": "ada@example.com", "role": "member", "active": true}]
}`

func TestOpenStoreExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "org.json")
	if err := os.WriteFile(path, []byte(mainFixture), 0o644); err != nil {
		t.Fatal(err)
	}

	got, store, err := openStore(path, "", config.DefaultConfig())
	if err != nil {
		t.Fatalf("openStore: %v", err)
	}
	defer store.Close()

	if got != path {
		t.Errorf("path = %q, want %q", got, path)
	}
}

func TestOpenStoreConfigPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "org.json")
	if err := os.WriteFile(path, []byte(mainFixture), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	cfg.DataPath = path

	got, store, err := openStore("", "", cfg)
	if err != nil {
		t.Fatalf("openStore: %v", err)
	}
	defer store.Close()

	if got != path {
		t.Errorf("path = %q, want %q", got, path)
	}
}

func TestOpenStoreDiscovery(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "org.json")
	if err := os.WriteFile(path, []byte(mainFixture), 0o644); err != nil {
		t.Fatal(err)
	}

	got, store, err := openStore("", dir, config.DefaultConfig())
	if err != nil {
		t.Fatalf("openStore: %v", err)
	}
	defer store.Close()

	if got != path {
		t.Errorf("path = %q, want %q", got, path)
	}
}

func TestOpenStoreNoSources(t *testing.T) {
	if _, _, err := openStore("", t.TempDir(), config.DefaultConfig()); err == nil {
		t.Error("want error with no data files")
	}
}

func TestDataDirPrecedence(t *testing.T) {
	t.Setenv("CREW_DATA_DIR", "/from/env")

	if got := dataDir("/from/flag", config.DefaultConfig()); got != "/from/flag" {
		t.Errorf("flag should win: %q", got)
	}
	if got := dataDir("", config.DefaultConfig()); got != "/from/env" {
		t.Errorf("env should win over default: %q", got)
	}
}
