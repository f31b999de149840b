package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func env(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.VenvDir != ".venv" || cfg.Mode != ModeEnhanced || cfg.Backend != "posix" || cfg.Python != "python3" {
		t.Errorf("Default() = %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
}

func TestDecode(t *testing.T) {
	cfg, err := Decode(Default(), strings.NewReader(`
venv: env
mode: baseline
journal: true
`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.VenvDir != "env" || cfg.Mode != ModeBaseline || !cfg.Journal {
		t.Errorf("cfg = %+v", cfg)
	}
	// Untouched keys keep their defaults.
	if cfg.Python != "python3" || cfg.Backend != "posix" {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestDecode_Empty(t *testing.T) {
	cfg, err := Decode(Default(), strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	if cfg != Default() {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestDecode_UnknownKey(t *testing.T) {
	if _, err := Decode(Default(), strings.NewReader("venvdir: x\n")); err == nil {
		t.Fatal("unknown key accepted")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)

	cfg, err := LoadFile(Default(), path, true)
	if err != nil {
		t.Fatalf("optional missing file: %v", err)
	}
	if cfg != Default() {
		t.Errorf("cfg changed: %+v", cfg)
	}

	if _, err := LoadFile(Default(), path, false); err == nil {
		t.Error("required missing file accepted")
	}

	if err := os.WriteFile(path, []byte("backend: systemd\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = LoadFile(Default(), path, true)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Backend != "systemd" {
		t.Errorf("Backend = %q", cfg.Backend)
	}
}

func TestApplyEnv(t *testing.T) {
	cfg, err := Default().ApplyEnv(env(map[string]string{
		"STARTSVC_VENV":    "/opt/venv",
		"STARTSVC_MODE":    "baseline",
		"STARTSVC_PYTHON":  "python3.12",
		"STARTSVC_BACKEND": "auto",
		"STARTSVC_LANG":    "zh",
		"STARTSVC_JOURNAL": "1",
		"STARTSVC_DEBUG":   "true",
	}))
	if err != nil {
		t.Fatal(err)
	}
	want := Config{
		VenvDir: "/opt/venv",
		Mode:    ModeBaseline,
		Python:  "python3.12",
		Backend: "auto",
		Lang:    "zh",
		Journal: true,
		Debug:   true,
	}
	if cfg != want {
		t.Errorf("cfg = %+v\nwant  %+v", cfg, want)
	}
}

func TestApplyEnv_EmptyValuesIgnored(t *testing.T) {
	cfg, err := Default().ApplyEnv(env(map[string]string{"STARTSVC_VENV": "", "STARTSVC_DEBUG": ""}))
	if err != nil {
		t.Fatal(err)
	}
	if cfg != Default() {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestApplyEnv_BadBool(t *testing.T) {
	if _, err := Default().ApplyEnv(env(map[string]string{"STARTSVC_JOURNAL": "maybe"})); err == nil {
		t.Fatal("bad bool accepted")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		mut  func(*Config)
	}{
		{"mode", func(c *Config) { c.Mode = "fancy" }},
		{"backend", func(c *Config) { c.Backend = "docker" }},
		{"venv", func(c *Config) { c.VenvDir = "" }},
		{"python", func(c *Config) { c.Mode = ModeBaseline; c.Python = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mut(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate accepted invalid config")
			}
		})
	}
}
