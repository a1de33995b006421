package app

import (
	"context"
	"testing"
	"time"

	"studyboard/internal/config"
	"studyboard/internal/logging"
)

func TestBootstrapResumesSession(t *testing.T) {
	ctx := context.Background()
	ws := t.TempDir()
	now := func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	first, err := Bootstrap(ctx, Options{Workspace: ws, Config: config.Default(), Now: now, Logger: logging.Nop()})
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if _, err := first.Engine.Me(); err == nil {
		t.Fatalf("fresh workspace must start logged out")
	}
	if _, ok, err := first.Engine.Login(ctx, "Carol", "123"); err != nil || !ok {
		t.Fatalf("login: %v %v", ok, err)
	}
	projects, err := first.Engine.Projects(ctx)
	if err != nil || len(projects) != 1 || projects[0].ID != "proj1" {
		t.Fatalf("unexpected projects %v %v", projects, err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second, err := Bootstrap(ctx, Options{Workspace: ws, Config: config.Default(), Now: now, Logger: logging.Nop()})
	if err != nil {
		t.Fatalf("bootstrap again: %v", err)
	}
	defer second.Close()
	me, err := second.Engine.Me()
	if err != nil || me.Name != "Carol" {
		t.Fatalf("session not resumed: %+v %v", me, err)
	}
	answer, err := second.Engine.Ask(ctx, "oi")
	if err != nil || answer == "" {
		t.Fatalf("ask: %q %v", answer, err)
	}
}

func TestBootstrapReadsWorkspaceConfig(t *testing.T) {
	ws := t.TempDir()
	if _, err := Bootstrap(context.Background(), Options{Workspace: ws, Logger: logging.Nop()}); err != nil {
		t.Fatalf("bootstrap with default config: %v", err)
	}
}
