// Package systemd starts services as transient units of the user's systemd
// instance. The unit is the detached process: the launcher exits right after
// the start job completes and keeps no connection to it.
package systemd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"

	"github.com/coreos/go-systemd/v22/dbus"

	"github.com/mbrock/startsvc/internal/backend"
)

func init() {
	backend.Register(backend.KindSystemd, Open)
}

// SystemdBackend spawns through org.freedesktop.systemd1 on the user bus.
type SystemdBackend struct {
	conn units

	// lookPath resolves bare executable names; systemd wants absolute paths.
	lookPath func(string) (string, error)
}

var _ backend.Backend = (*SystemdBackend)(nil)

// Open connects to the user's systemd instance.
func Open(ctx context.Context, _ backend.Config) (backend.Backend, error) {
	conn, err := dbus.NewUserConnectionContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("connecting to user systemd: %w", err)
	}
	return newBackend(conn), nil
}

func newBackend(conn units) *SystemdBackend {
	return &SystemdBackend{conn: conn, lookPath: exec.LookPath}
}

// Close releases the D-Bus connection.
func (b *SystemdBackend) Close() error {
	b.conn.Close()
	return nil
}

// Spawn starts spec as a transient service and returns its MainPID.
func (b *SystemdBackend) Spawn(ctx context.Context, spec backend.Spec) (backend.Process, error) {
	if len(spec.Command) == 0 {
		return backend.Process{}, errors.New("empty command")
	}

	command := append([]string{}, spec.Command...)
	if !filepath.IsAbs(command[0]) {
		path, err := b.lookPath(command[0])
		if err != nil {
			return backend.Process{}, err
		}
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		command[0] = path
	}

	ts := TransientSpec{
		Unit:        UnitNameFor(spec.Name),
		Description: description(spec.Command),
		Command:     command,
		WorkingDir:  spec.Dir,
		Output:      -1,
	}
	if spec.Output != nil {
		ts.Output = int(spec.Output.Fd())
	}

	if err := startTransient(ctx, b.conn, ts); err != nil {
		return backend.Process{}, err
	}

	pid, err := mainPID(ctx, b.conn, ts.Unit)
	if err != nil {
		return backend.Process{}, err
	}

	slog.Debug("systemd spawned", "unit", ts.Unit, "pid", pid)
	return backend.Process{PID: pid, Handle: ts.Unit.String()}, nil
}
