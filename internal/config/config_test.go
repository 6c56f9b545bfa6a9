package config

import (
	"os"
	"path/filepath"
	"testing"

	"meshmap/internal/inference"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != 1 {
		t.Errorf("expected version 1, got %d", cfg.Version)
	}
	if cfg.Server.Addr != ":3000" {
		t.Errorf("expected addr :3000, got %s", cfg.Server.Addr)
	}
	if cfg.Captures.Pattern != "network_topology_*.json" {
		t.Errorf("unexpected capture pattern %s", cfg.Captures.Pattern)
	}
	if cfg.Inference.GPSPrecision != inference.DefaultGPSPrecision {
		t.Errorf("expected gps precision %d, got %d", inference.DefaultGPSPrecision, cfg.Inference.GPSPrecision)
	}
	if cfg.Inference.ColocatedSNR != inference.DefaultColocatedSNR {
		t.Errorf("expected colocated snr %v, got %v", inference.DefaultColocatedSNR, cfg.Inference.ColocatedSNR)
	}
}

func TestLoadFromPath(t *testing.T) {
	t.Run("loads a full config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "meshmap.yaml")
		content := `version: 1
server:
  addr: ":8080"
database:
  path: "/var/lib/meshmap/meshmap.db"
captures:
  directory: "/var/lib/meshmap/captures"
  pattern: "capture_*.json"
inference:
  gps_precision: 3
  colocated_snr: 5.0
  max_parents: 1
`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("write config: %v", err)
		}

		cfg, loadedPath, err := LoadFromPath(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if loadedPath != path {
			t.Errorf("expected path %s, got %s", path, loadedPath)
		}
		if cfg.Server.Addr != ":8080" {
			t.Errorf("expected addr :8080, got %s", cfg.Server.Addr)
		}
		if cfg.Inference.GPSPrecision != 3 || cfg.Inference.MaxParents != 1 {
			t.Errorf("inference overrides not applied: %+v", cfg.Inference)
		}
	})

	t.Run("fills missing fields with defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "meshmap.yaml")
		if err := os.WriteFile(path, []byte("server:\n  addr: \":9000\"\n"), 0644); err != nil {
			t.Fatalf("write config: %v", err)
		}

		cfg, _, err := LoadFromPath(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Server.Addr != ":9000" {
			t.Errorf("expected addr :9000, got %s", cfg.Server.Addr)
		}
		if cfg.Database.Path != "./meshmap.db" {
			t.Errorf("expected default db path, got %s", cfg.Database.Path)
		}
		if cfg.Inference.MaxParents != inference.DefaultMaxParents {
			t.Errorf("expected default max parents, got %d", cfg.Inference.MaxParents)
		}
	})

	t.Run("rejects malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "meshmap.yaml")
		if err := os.WriteFile(path, []byte("server: [not a mapping"), 0644); err != nil {
			t.Fatalf("write config: %v", err)
		}
		if _, _, err := LoadFromPath(path); err == nil {
			t.Error("expected a parse error")
		}
	})
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "meshmap.yaml")

	cfg := DefaultConfig()
	cfg.Server.Addr = ":7000"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, _, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Server.Addr != ":7000" {
		t.Errorf("expected addr :7000, got %s", loaded.Server.Addr)
	}
	if loaded.Captures.Pattern != cfg.Captures.Pattern {
		t.Errorf("capture pattern changed across round trip: %s", loaded.Captures.Pattern)
	}
}

func TestFindConfigPath(t *testing.T) {
	t.Run("env var takes priority", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "meshmap.yaml")
		if err := os.WriteFile(path, []byte("version: 1\n"), 0644); err != nil {
			t.Fatalf("write config: %v", err)
		}
		t.Setenv(EnvConfigPath, path)

		if got := FindConfigPath(); got != path {
			t.Errorf("expected %s, got %s", path, got)
		}
	})

	t.Run("env var pointing nowhere is ignored", func(t *testing.T) {
		t.Setenv(EnvConfigPath, filepath.Join(t.TempDir(), "missing.yaml"))
		if got := FindConfigPath(); got != "" && filepath.Base(got) == "missing.yaml" {
			t.Errorf("expected the missing env path to be skipped, got %s", got)
		}
	})
}

func TestInferenceOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Inference.GPSPrecision = 2

	opts := cfg.InferenceOptions()
	if opts.GPSPrecision != 2 {
		t.Errorf("expected gps precision 2, got %d", opts.GPSPrecision)
	}
	if opts.ColocatedSNR != inference.DefaultColocatedSNR {
		t.Errorf("unexpected colocated snr %v", opts.ColocatedSNR)
	}
}
