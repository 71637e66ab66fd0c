package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault_IsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoad_OverridesOnlyGivenKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zone.yaml")
	body := `
nav:
  cell_size: 16
crowd:
  population_cap: 90
  match_waiting: true
  separation_passes:
    - {max_agents: 0, passes: 2}
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Nav.CellSize != 16 || cfg.Crowd.PopulationCap != 90 || !cfg.Crowd.MatchWaiting {
		t.Fatalf("overrides not applied: %+v", cfg.Crowd)
	}
	if len(cfg.Crowd.SeparationPasses) != 1 || cfg.Crowd.SeparationPasses[0].Passes != 2 {
		t.Fatalf("separation table should be replaced: %+v", cfg.Crowd.SeparationPasses)
	}
	if cfg.Crowd.RepathBudget != Default().Crowd.RepathBudget {
		t.Fatal("unspecified keys should keep their defaults")
	}
}

func TestLoad_RejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	body := "crowd:\n  repath_budget: 0\n  soft_strength: 1.5\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "crowd.repath_budget") || !strings.Contains(msg, "crowd.soft_strength") {
		t.Fatalf("error should name every bad field, got: %s", msg)
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("crowd: [1, 2"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), path) {
		t.Fatalf("expected a parse error mentioning the path, got %v", err)
	}
}

func TestMarshal_IncludesTunables(t *testing.T) {
	raw, err := Marshal(Default())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), "repath_budget: 8") {
		t.Fatalf("marshalled config missing repath_budget:\n%s", raw)
	}
}
