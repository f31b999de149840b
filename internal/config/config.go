// Package config holds startsvc settings.
//
// Settings come from, in increasing precedence: built-in defaults, an
// optional YAML file (startsvc.yaml in the project root), STARTSVC_*
// environment variables and command-line flags. Flags are applied by the
// caller.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the project root.
const FileName = "startsvc.yaml"

// Mode selects the entry-point resolution variant.
type Mode string

const (
	// ModeEnhanced resolves main.py / __main__.py / inline import inside a venv.
	ModeEnhanced Mode = "enhanced"
	// ModeBaseline always runs src.<name>.main with a system interpreter.
	ModeBaseline Mode = "baseline"
)

// Config is the effective configuration of one invocation.
type Config struct {
	// Root is the project root. Not read from the file.
	Root string `yaml:"-"`

	// VenvDir is the virtual environment directory, relative to Root unless absolute.
	VenvDir string `yaml:"venv"`

	Mode Mode `yaml:"mode"`

	// Python is the system interpreter used in baseline mode.
	Python string `yaml:"python"`

	// Backend is the spawn backend kind: posix, systemd or auto.
	Backend string `yaml:"backend"`

	// Lang is the diagnostics language tag. Empty means detect from the environment.
	Lang string `yaml:"lang"`

	// Journal mirrors launch events to journald when available.
	Journal bool `yaml:"journal"`

	Debug bool `yaml:"debug"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		VenvDir: ".venv",
		Mode:    ModeEnhanced,
		Python:  "python3",
		Backend: "posix",
	}
}

// LoadFile overlays the YAML file at path onto cfg. A missing file is not an
// error when optional is true.
func LoadFile(cfg Config, path string, optional bool) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	return Decode(cfg, bytes.NewReader(raw))
}

// Decode overlays YAML from r onto cfg. Unknown keys are rejected.
func Decode(cfg Config, r io.Reader) (Config, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overlays STARTSVC_* variables found through lookup.
func (c Config) ApplyEnv(lookup func(string) (string, bool)) (Config, error) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = b
		return nil
	}

	str("STARTSVC_VENV", &c.VenvDir)
	str("STARTSVC_PYTHON", &c.Python)
	str("STARTSVC_BACKEND", &c.Backend)
	str("STARTSVC_LANG", &c.Lang)
	var mode string
	str("STARTSVC_MODE", &mode)
	if mode != "" {
		c.Mode = Mode(mode)
	}

	if err := boolean("STARTSVC_JOURNAL", &c.Journal); err != nil {
		return c, err
	}
	if err := boolean("STARTSVC_DEBUG", &c.Debug); err != nil {
		return c, err
	}
	return c, nil
}

// Validate reports settings that cannot be used.
func (c Config) Validate() error {
	var errs []error
	switch c.Mode {
	case ModeEnhanced, ModeBaseline:
	default:
		errs = append(errs, fmt.Errorf("unknown mode %q (want enhanced or baseline)", c.Mode))
	}
	switch c.Backend {
	case "posix", "systemd", "auto":
	default:
		errs = append(errs, fmt.Errorf("unknown backend %q (want posix, systemd or auto)", c.Backend))
	}
	if c.Mode == ModeEnhanced && c.VenvDir == "" {
		errs = append(errs, errors.New("venv directory is empty"))
	}
	if c.Mode == ModeBaseline && c.Python == "" {
		errs = append(errs, errors.New("python interpreter is empty"))
	}
	return errors.Join(errs...)
}
