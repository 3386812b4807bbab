package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.WorkDir != "." {
		t.Errorf("WorkDir = %q, want \".\"", cfg.WorkDir)
	}
	if cfg.Threads != 1 || cfg.Processes != 1 || cfg.HLevel != 1 {
		t.Errorf("defaults = %+v, want threads/processes/h_level of 1", cfg)
	}
	if cfg.WriteVTK {
		t.Error("WriteVTK defaults to true, want false")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config fails validation: %v", err)
	}
}

func TestParse(t *testing.T) {
	data := []byte(`
open_radioss_path: /opt/openradioss/run.py
work_dir: /tmp/decks
threads: 4
processes: 2
write_vtk: true
h_level: 3
`)

	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	if cfg.WrapperPath != "/opt/openradioss/run.py" {
		t.Errorf("WrapperPath = %q", cfg.WrapperPath)
	}
	if cfg.WorkDir != "/tmp/decks" {
		t.Errorf("WorkDir = %q", cfg.WorkDir)
	}
	if cfg.Threads != 4 || cfg.Processes != 2 {
		t.Errorf("Threads/Processes = %d/%d, want 4/2", cfg.Threads, cfg.Processes)
	}
	if !cfg.WriteVTK {
		t.Error("WriteVTK = false, want true")
	}
	if cfg.HLevel != 3 {
		t.Errorf("HLevel = %d, want 3", cfg.HLevel)
	}
}

func TestParseKeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte("threads: 8\n"))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	if cfg.Threads != 8 {
		t.Errorf("Threads = %d, want 8", cfg.Threads)
	}
	if cfg.Processes != 1 {
		t.Errorf("Processes = %d, want default 1", cfg.Processes)
	}
	if cfg.WorkDir != "." {
		t.Errorf("WorkDir = %q, want default \".\"", cfg.WorkDir)
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []string{
		"threads: 0\n",
		"processes: -1\n",
		"h_level: 0\n",
		"gmsh_verbosity: -2\n",
		"threads: [not, a, number]\n",
	}

	for _, data := range tests {
		if _, err := Parse([]byte(data)); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", data)
		}
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "solver.yaml")
	if err := os.WriteFile(path, []byte("threads: 2\nwork_dir: /scratch\n"), 0644); err != nil {
		t.Fatalf("failed to write config fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Threads != 2 || cfg.WorkDir != "/scratch" {
		t.Errorf("loaded config = %+v", cfg)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("Load succeeded on missing file")
	}
}
