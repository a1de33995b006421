package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"studyboard/internal/domain"
)

func TestDefaultSeed(t *testing.T) {
	cfg := Default()
	if cfg.App.SessionKey != DefaultSessionKey {
		t.Fatalf("expected session key %q, got %q", DefaultSessionKey, cfg.App.SessionKey)
	}
	today := domain.Date{Year: 2024, Month: time.March, Day: 10}
	actors, projects, activities := cfg.Seed.Build(today)
	if len(actors) != 6 || len(projects) != 2 || len(activities) != 3 {
		t.Fatalf("unexpected seed sizes: %d %d %d", len(actors), len(projects), len(activities))
	}
	if actors[5].Name != "Italo" || actors[5].Role != domain.RoleViewer {
		t.Fatalf("expected Italo viewer, got %+v", actors[5])
	}
	p1 := projects[0]
	if p1.ID != "proj1" || p1.DueDate != today.AddDays(30) {
		t.Fatalf("unexpected proj1: %+v", p1)
	}
	if p1.Tasks[0].Deadline == nil || *p1.Tasks[0].Deadline != today.AddDays(2) {
		t.Fatalf("unexpected t1 deadline: %+v", p1.Tasks[0].Deadline)
	}
	if projects[1].Tasks[0].Deadline != nil {
		t.Fatalf("t4 should have no deadline")
	}
	if projects[1].Documents == nil || len(projects[1].Documents) != 0 {
		t.Fatalf("proj2 documents should be empty, got %v", projects[1].Documents)
	}
	if !activities[0].Pinned || len(activities[0].Comments) != 1 || activities[0].Comments[0].User != "Lucas" {
		t.Fatalf("unexpected act1: %+v", activities[0])
	}
}

func TestLoadFallsBackToDefault(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Seed.Users) != 6 {
		t.Fatalf("expected default seed users")
	}
}

func TestLoadFromWorkspace(t *testing.T) {
	dir := t.TempDir()
	data := "app:\n  timezone: UTC\nseed:\n  users:\n    - { id: \"1\", name: Ana, role: admin }\n"
	if err := os.WriteFile(filepath.Join(dir, "studyboard.yml"), []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Attachments.Driver != "memory" || cfg.App.SessionKey != DefaultSessionKey {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if len(cfg.Seed.Users) != 1 || cfg.Seed.Users[0].Name != "Ana" {
		t.Fatalf("unexpected users: %+v", cfg.Seed.Users)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]string{
		"timezone": "app:\n  timezone: Mars/Olympus\n",
		"driver":   "attachments:\n  driver: ftp\n",
		"bucket":   "attachments:\n  driver: s3\n",
		"role":     "seed:\n  users:\n    - { id: \"1\", name: Ana, role: owner }\n",
		"dup name": "seed:\n  users:\n    - { id: \"1\", name: Ana, role: admin }\n    - { id: \"2\", name: ana, role: member }\n",
		"access":   "seed:\n  projects:\n    - { id: p, access: [\"9\"] }\n",
		"activity": "seed:\n  activities:\n    - { id: a, project_id: nope }\n",
		"bad yaml": "app: [",
		"prompt":   "assistant:\n  prompt: no placeholder\n",
	}
	for name, data := range cases {
		if _, err := FromYAML([]byte(data)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestGenerateDefaultParses(t *testing.T) {
	if !strings.Contains(GenerateDefault(), "session_key") {
		t.Fatalf("template missing session_key")
	}
	if _, err := FromYAML([]byte(GenerateDefault())); err != nil {
		t.Fatalf("default template invalid: %v", err)
	}
}
