package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Faultbox/tubegen/pkg/tube"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test tube defaults
	if cfg.Tube.Mode != "sides" {
		t.Errorf("expected mode 'sides', got %s", cfg.Tube.Mode)
	}
	if cfg.Tube.Sides != 3 {
		t.Errorf("expected 3 sides, got %d", cfg.Tube.Sides)
	}
	if cfg.Tube.Radius != 1 {
		t.Errorf("expected radius 1, got %f", cfg.Tube.Radius)
	}
	if cfg.Tube.Thickness.Enabled {
		t.Error("expected thickness to be disabled by default")
	}
	if cfg.Tube.VertexLimit != tube.DefaultVertexLimit {
		t.Errorf("expected vertex limit %d, got %d", tube.DefaultVertexLimit, cfg.Tube.VertexLimit)
	}

	// Test export and watch defaults
	if cfg.Export.Format != "obj" {
		t.Errorf("expected export format 'obj', got %s", cfg.Export.Format)
	}
	if cfg.Export.UpAxis != "y" || cfg.Export.Scale != 1 {
		t.Errorf("expected y-up export at scale 1, got %s at %f", cfg.Export.UpAxis, cfg.Export.Scale)
	}
	if cfg.Watch.Debounce != 200*time.Millisecond {
		t.Errorf("expected debounce 200ms, got %v", cfg.Watch.Debounce)
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
}

func TestDefaultParams(t *testing.T) {
	p, err := Default().Params()
	if err != nil {
		t.Fatalf("Params() error: %v", err)
	}
	if p != tube.DefaultParams() {
		t.Errorf("Params() = %+v, want %+v", p, tube.DefaultParams())
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
tube:
  mode: triangles
  sides: 12
  radius: 0.5
  subdivision: 4
  triangles: 2000
  spline: spline
  thickness:
    enabled: true
    value: 0.05
    shell: inward

lod:
  count: 3
  step: 1.5

export:
  format: stl
  output_dir: "build"
  up_axis: z
  scale: 1000

watch:
  debounce: 1s

logging:
  level: "debug"
  log_file: "tubegen.log"
  format: json
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Load config
	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Verify values were loaded
	if cfg.Tube.Sides != 12 {
		t.Errorf("expected 12 sides, got %d", cfg.Tube.Sides)
	}
	if cfg.Tube.Radius != 0.5 {
		t.Errorf("expected radius 0.5, got %f", cfg.Tube.Radius)
	}
	if !cfg.Tube.Thickness.Enabled {
		t.Error("expected thickness to be enabled")
	}
	if cfg.LOD.Count != 3 {
		t.Errorf("expected lod count 3, got %d", cfg.LOD.Count)
	}
	if cfg.Export.OutputDir != "build" {
		t.Errorf("expected output dir 'build', got %s", cfg.Export.OutputDir)
	}
	if cfg.Export.UpAxis != "z" || cfg.Export.Scale != 1000 {
		t.Errorf("expected z-up export at scale 1000, got %s at %f", cfg.Export.UpAxis, cfg.Export.Scale)
	}
	if cfg.Watch.Debounce != time.Second {
		t.Errorf("expected debounce 1s, got %v", cfg.Watch.Debounce)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("expected log format 'json', got %s", cfg.Logging.Format)
	}

	// Vertex limit was not in the file, so the default survives.
	if cfg.Tube.VertexLimit != tube.DefaultVertexLimit {
		t.Errorf("expected default vertex limit to survive, got %d", cfg.Tube.VertexLimit)
	}

	p, err := cfg.Params()
	if err != nil {
		t.Fatalf("Params() error: %v", err)
	}
	if p.Mode != tube.ByTriangles || p.SplineMode != tube.Spline || p.ShellType != tube.Inward {
		t.Errorf("enum fields not converted: %+v", p)
	}
	if p.LODStep != 1.5 {
		t.Errorf("expected lod step 1.5, got %f", p.LODStep)
	}
}

func TestParamsUnknownEnum(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"mode", func(c *Config) { c.Tube.Mode = "vertices" }},
		{"spline", func(c *Config) { c.Tube.Spline = "bezier" }},
		{"shell", func(c *Config) { c.Tube.Thickness.Shell = "sideways" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			if _, err := cfg.Params(); err == nil {
				t.Error("expected error for unknown value, got nil")
			}
		})
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	// Create temporary config file with invalid YAML
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
tube:
  sides: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Try to load - should error
	cfg := Default()
	err := loadFromFile(cfg, configPath)
	if err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	// Just verify it returns a non-empty path
	// Actual path depends on OS
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}

	// Verify path is absolute
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	// Keep the user's real config out of the lookup
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	chdir(t, t.TempDir())

	// No config file exists - should return empty
	path := FindConfigFile()
	if path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	// Create tubegen.yaml in current directory
	if err := os.WriteFile("tubegen.yaml", []byte("tube:\n  sides: 8\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	// Should find it now
	path = FindConfigFile()
	if path == "" {
		t.Error("expected to find tubegen.yaml in current directory")
	}
}

func TestFindConfigFileBesideDocument(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	chdir(t, t.TempDir())

	project := filepath.Join(t.TempDir(), "project")
	if err := os.MkdirAll(project, 0755); err != nil {
		t.Fatalf("creating project dir: %v", err)
	}
	doc := filepath.Join(project, "pipe.yaml")

	if err := os.WriteFile(FileName, []byte("tube:\n  sides: 8\n"), 0644); err != nil {
		t.Fatalf("failed to create working directory config: %v", err)
	}
	if path := FindConfigFile(doc); path != FileName {
		t.Errorf("expected working directory config without a project config, got %s", path)
	}

	projectConfig := filepath.Join(project, FileName)
	if err := os.WriteFile(projectConfig, []byte("tube:\n  sides: 16\n"), 0644); err != nil {
		t.Fatalf("failed to create project config: %v", err)
	}
	if path := FindConfigFile(doc); path != projectConfig {
		t.Errorf("expected %s, got %s", projectConfig, path)
	}

	cfg, err := Load(nil, doc)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Tube.Sides != 16 {
		t.Errorf("expected 16 sides from the project config, got %d", cfg.Tube.Sides)
	}
	if cfg.Source() != projectConfig {
		t.Errorf("expected source %s, got %s", projectConfig, cfg.Source())
	}

	// A directory named like the config file is skipped.
	if err := os.Remove(projectConfig); err != nil {
		t.Fatalf("removing project config: %v", err)
	}
	if err := os.Mkdir(projectConfig, 0755); err != nil {
		t.Fatalf("creating directory: %v", err)
	}
	if path := FindConfigFile(doc); path != FileName {
		t.Errorf("expected working directory config, got %s", path)
	}
}

func TestLoadFromFileUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("tube:\n  sidez: 8\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if err := loadFromFile(Default(), path); err == nil {
		t.Error("expected error for unknown key, got nil")
	}
}

func TestLoadFromFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, path); err != nil {
		t.Fatalf("empty config should load, got %v", err)
	}
	if cfg.Tube != Default().Tube {
		t.Errorf("expected defaults, got %+v", cfg.Tube)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		verify func(*testing.T, *Config)
	}{
		{
			name: "debug flag",
			args: []string{"-debug"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
		},
		{
			name: "sides flag switches to sides mode",
			args: []string{"-sides", "16"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Tube.Sides != 16 {
					t.Errorf("expected 16 sides, got %d", cfg.Tube.Sides)
				}
				if cfg.Tube.Mode != "sides" {
					t.Errorf("expected mode 'sides', got %s", cfg.Tube.Mode)
				}
			},
		},
		{
			name: "radius flag",
			args: []string{"-radius", "2.5"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Tube.Radius != 2.5 {
					t.Errorf("expected radius 2.5, got %f", cfg.Tube.Radius)
				}
			},
		},
		{
			name: "format and out flags",
			args: []string{"-format", "stl", "-out", "meshes"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Export.Format != "stl" {
					t.Errorf("expected format 'stl', got %s", cfg.Export.Format)
				}
				if cfg.Export.OutputDir != "meshes" {
					t.Errorf("expected output dir 'meshes', got %s", cfg.Export.OutputDir)
				}
			},
		},
		{
			name: "no flags",
			args: nil,
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Tube != Default().Tube {
					t.Errorf("expected default tube section, got %+v", cfg.Tube)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := flag.NewFlagSet("test", flag.ContinueOnError)
			flags := RegisterFlags(fs)
			if err := fs.Parse(tt.args); err != nil {
				t.Fatalf("parsing flags: %v", err)
			}

			// Apply flags to default config
			cfg := Default()
			flags.apply(cfg)

			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
tube:
  sides: 10
  radius: 3
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Set flag to override config file
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	flags := RegisterFlags(fs)
	if err := fs.Parse([]string{"-config", configPath, "-sides", "24"}); err != nil {
		t.Fatalf("parsing flags: %v", err)
	}

	// Load config
	cfg, err := Load(flags)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Sides should be from flag (24), not file (10)
	if cfg.Tube.Sides != 24 {
		t.Errorf("expected 24 sides from flag, got %d", cfg.Tube.Sides)
	}

	// Radius should be from file (3) since no flag override
	if cfg.Tube.Radius != 3 {
		t.Errorf("expected radius 3 from file, got %f", cfg.Tube.Radius)
	}
}

func TestOverrideParams(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	flags := RegisterFlags(fs)
	if err := fs.Parse([]string{"-sides", "5", "-radius", "0.5"}); err != nil {
		t.Fatalf("parsing flags: %v", err)
	}

	p := tube.DefaultParams()
	p.Mode = tube.ByTriangles
	p.Sides = 12

	got := flags.OverrideParams(p)
	if got.Sides != 5 || got.Mode != tube.BySides {
		t.Errorf("expected 5 sides in sides mode, got %d in %v", got.Sides, got.Mode)
	}
	if got.Radius != 0.5 {
		t.Errorf("expected radius 0.5, got %f", got.Radius)
	}

	var none *Flags
	if none.OverrideParams(p) != p {
		t.Error("nil flags should not change params")
	}
}

func TestLoadNilFlags(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	chdir(t, t.TempDir())

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load(nil) error: %v", err)
	}
	if cfg.Tube != Default().Tube {
		t.Errorf("expected defaults, got %+v", cfg.Tube)
	}
	if cfg.Source() != "" {
		t.Errorf("expected no source, got %s", cfg.Source())
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "config.yaml")

	cfg := Default()
	cfg.Tube.Sides = 9
	cfg.Watch.Debounce = 750 * time.Millisecond
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to reload config: %v", err)
	}
	if loaded.Tube.Sides != 9 {
		t.Errorf("expected 9 sides after reload, got %d", loaded.Tube.Sides)
	}
	if loaded.Watch.Debounce != 750*time.Millisecond {
		t.Errorf("expected debounce 750ms after reload, got %v", loaded.Watch.Debounce)
	}
}

func TestSave(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("APPDATA", t.TempDir())

	path, err := Default().Save()
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if filepath.Dir(path) != ConfigDir() {
		t.Errorf("expected config in %s, got %s", ConfigDir(), path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("saved config missing: %v", err)
	}
}

// chdir changes the working directory for the duration of the test, like
// testing.T.Chdir in newer Go releases.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
