package backend

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/godbus/dbus/v5"
)

// Kind identifies a backend implementation.
type Kind string

const (
	KindPosix   Kind = "posix"
	KindSystemd Kind = "systemd"

	// KindAuto picks systemd when a user manager is reachable, posix otherwise.
	KindAuto Kind = "auto"
)

// Config configures a backend implementation.
type Config struct {
	Kind Kind
}

// Backend starts detached service processes.
//
// Spawn returns as soon as the process exists. Implementations must not
// keep any handle that would let them wait on or signal the child later.
type Backend interface {
	Spawn(ctx context.Context, spec Spec) (Process, error)
	Close() error
}

type opener func(ctx context.Context, cfg Config) (Backend, error)

var openers = map[Kind]opener{}

// Register makes a backend implementation available to Open.
// Implementations should call this from init().
func Register(kind Kind, o opener) {
	if kind == "" {
		panic("backend: register with empty kind")
	}
	if o == nil {
		panic("backend: register with nil opener")
	}
	if _, exists := openers[kind]; exists {
		panic("backend: duplicate register for kind " + string(kind))
	}
	openers[kind] = o
}

// Open constructs a backend from cfg. The requested Kind must be registered.
func Open(ctx context.Context, cfg Config) (Backend, error) {
	cfg = withDefaults(cfg)
	o, ok := openers[cfg.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown backend %q", cfg.Kind)
	}
	slog.Debug("opening backend", "kind", cfg.Kind)
	return o(ctx, cfg)
}

// DetectKind returns systemd if the systemd user service is available on
// D-Bus, otherwise posix.
func DetectKind() Kind {
	if hasSystemdUserService() {
		return KindSystemd
	}
	return KindPosix
}

// hasSystemdUserService checks whether org.freedesktop.systemd1 owns a name
// on the session bus. Systems with D-Bus but another init report false.
func hasSystemdUserService() bool {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return false
	}
	defer conn.Close()

	var owner string
	err = conn.Object("org.freedesktop.DBus", "/org/freedesktop/DBus").
		Call("org.freedesktop.DBus.GetNameOwner", 0, "org.freedesktop.systemd1").
		Store(&owner)

	return err == nil && owner != ""
}

func withDefaults(cfg Config) Config {
	switch cfg.Kind {
	case "":
		cfg.Kind = KindPosix
	case KindAuto:
		cfg.Kind = DetectKind()
	}
	return cfg
}

// CreateLog creates (or truncates) the log file at path, creating its
// parent directory first.
func CreateLog(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("creating log file: %w", err)
	}
	return f, nil
}
