package main

import (
	"path/filepath"
	"testing"

	"marquee/internal/logging"
	"marquee/internal/testsupport"
)

func TestBuildStoreSQLite(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	reader, counter, closeStore, err := buildStore(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("buildStore: %v", err)
	}
	defer closeStore()
	if reader == nil || counter == nil {
		t.Fatal("sqlite backend must provide both reader and counter")
	}
}

func TestBuildStoreUnknownBackend(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Store.Backend = "postgres"
	if _, _, _, err := buildStore(cfg, logging.NewNop()); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestBuildSocketPath(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	want := filepath.Join(cfg.Paths.DataDir, "marqueed.sock")
	if got := buildSocketPath(cfg); got != want {
		t.Fatalf("buildSocketPath = %q, want %q", got, want)
	}
	if got := buildSocketPath(nil); got != "marqueed.sock" {
		t.Fatalf("buildSocketPath(nil) = %q", got)
	}
}
