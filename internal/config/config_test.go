package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if cfg.Terrain.HeightSoftCapCM != 6400 {
		t.Errorf("expected height soft cap 6400, got %d", cfg.Terrain.HeightSoftCapCM)
	}
	if !cfg.Terrain.WarnNonSquare {
		t.Error("expected warn_non_square to be true by default")
	}
	if len(cfg.Terrain.DefaultAuthors) != 0 {
		t.Errorf("expected no default authors, got %v", cfg.Terrain.DefaultAuthors)
	}

	if cfg.Generate.Width != 128 || cfg.Generate.Height != 128 {
		t.Errorf("expected 128x128 generation, got %dx%d", cfg.Generate.Width, cfg.Generate.Height)
	}
	if cfg.Generate.WaterLevel >= cfg.Generate.MountainLevel {
		t.Errorf("water level %d should be below mountain level %d", cfg.Generate.WaterLevel, cfg.Generate.MountainLevel)
	}

	if cfg.Preview.Scale != 4 {
		t.Errorf("expected preview scale 4, got %d", cfg.Preview.Scale)
	}
	if cfg.Preview.Mode != "height" {
		t.Errorf("expected preview mode 'height', got %s", cfg.Preview.Mode)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "flterrain.yaml")

	yamlContent := `
logging:
  level: "debug"
  log_file: "flterrain.log"

terrain:
  default_authors:
    - "Arthur M <arthur@example.com>"
  height_soft_cap_cm: 3200
  warn_non_square: false

generate:
  width: 64
  seed: 42
  octaves: 5

preview:
  scale: 2
  mode: "type"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "flterrain.log" {
		t.Errorf("expected log file 'flterrain.log', got %s", cfg.Logging.LogFile)
	}

	if len(cfg.Terrain.DefaultAuthors) != 1 || cfg.Terrain.DefaultAuthors[0] != "Arthur M <arthur@example.com>" {
		t.Errorf("unexpected default authors %v", cfg.Terrain.DefaultAuthors)
	}
	if cfg.Terrain.HeightSoftCapCM != 3200 {
		t.Errorf("expected soft cap 3200, got %d", cfg.Terrain.HeightSoftCapCM)
	}
	if cfg.Terrain.WarnNonSquare {
		t.Error("expected warn_non_square to be false")
	}

	if cfg.Generate.Width != 64 {
		t.Errorf("expected width 64, got %d", cfg.Generate.Width)
	}
	// Unset keys keep their defaults.
	if cfg.Generate.Height != 128 {
		t.Errorf("expected height 128 from defaults, got %d", cfg.Generate.Height)
	}
	if cfg.Generate.Seed != 42 {
		t.Errorf("expected seed 42, got %d", cfg.Generate.Seed)
	}

	if cfg.Preview.Scale != 2 || cfg.Preview.Mode != "type" {
		t.Errorf("unexpected preview config %+v", cfg.Preview)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
generate:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileUnknownKey(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "typo.yaml")
	if err := os.WriteFile(configPath, []byte("preview:\n  scael: 3\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if err := loadFromFile(Default(), configPath); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestLoadFromFileEmpty(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(configPath, nil, 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("empty config should load: %v", err)
	}
	if cfg.Preview.Scale != 4 {
		t.Errorf("expected defaults to survive, got scale %d", cfg.Preview.Scale)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/flterrain.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "flterrain.yaml")
	if err := os.WriteFile(configPath, []byte("preview:\n  scale: 8\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find flterrain.yaml in current directory")
	}
}

func TestFlags(t *testing.T) {
	var f Flags
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	f.Register(fs)

	if err := fs.Parse([]string{"-debug", "-log-file", "run.log", "-config", "x.yaml", "-save-config", "out.yaml", "in.png"}); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}

	if !f.Debug || f.LogFile != "run.log" || f.Config != "x.yaml" || f.SaveConfig != "out.yaml" {
		t.Errorf("unexpected flags %+v", f)
	}
	if fs.Arg(0) != "in.png" {
		t.Errorf("expected positional argument in.png, got %q", fs.Arg(0))
	}

	cfg := Default()
	applyFlags(cfg, &f)
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "run.log" {
		t.Errorf("expected log file run.log, got %s", cfg.Logging.LogFile)
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "flterrain.yaml")

	yamlContent := `
logging:
  level: "warn"
  log_file: "from-file.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(&Flags{Config: configPath, LogFile: "from-flag.log"})
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Log file from flag, level from file since -debug was not given.
	if cfg.Logging.LogFile != "from-flag.log" {
		t.Errorf("expected log file from flag, got %s", cfg.Logging.LogFile)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected level 'warn' from file, got %s", cfg.Logging.Level)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(&Flags{Config: "/nonexistent/flterrain.yaml"}); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "flterrain.yaml")

	cfg := Default()
	cfg.Generate.Seed = 7
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to reload config: %v", err)
	}
	if loaded.Generate.Seed != 7 {
		t.Errorf("expected seed 7 after reload, got %d", loaded.Generate.Seed)
	}
}
