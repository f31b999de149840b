// Package posix starts services as plain detached OS processes.
package posix

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	osexec "os/exec"

	"github.com/mbrock/startsvc/internal/backend"
)

func init() {
	backend.Register(backend.KindPosix, Open)
}

type PosixBackend struct{}

var _ backend.Backend = (*PosixBackend)(nil)

// Open constructs the posix backend.
func Open(_ context.Context, _ backend.Config) (backend.Backend, error) {
	return &PosixBackend{}, nil
}

func (b *PosixBackend) Close() error { return nil }

// Spawn starts spec.Command in its own session with stdin on the null device
// and stdout/stderr on spec.Output, then releases the process handle.
//
// The context only guards the call itself; the child is never tied to it.
func (b *PosixBackend) Spawn(ctx context.Context, spec backend.Spec) (backend.Process, error) {
	if err := ctx.Err(); err != nil {
		return backend.Process{}, err
	}
	if len(spec.Command) == 0 {
		return backend.Process{}, errors.New("empty command")
	}

	cmd := osexec.Command(spec.Command[0], spec.Command[1:]...)
	cmd.Dir = spec.Dir
	cmd.SysProcAttr = detachAttr()

	devNull, err := os.Open(os.DevNull)
	if err != nil {
		return backend.Process{}, fmt.Errorf("opening %s: %w", os.DevNull, err)
	}
	defer devNull.Close()

	cmd.Stdin = devNull
	if spec.Output != nil {
		cmd.Stdout = spec.Output
		cmd.Stderr = spec.Output
	}

	if err := cmd.Start(); err != nil {
		return backend.Process{}, err
	}

	pid := cmd.Process.Pid
	slog.Debug("posix spawned", "name", spec.Name, "pid", pid)

	// Nobody will Wait on this child; once the launcher exits it is reparented.
	if err := cmd.Process.Release(); err != nil {
		slog.Debug("posix release failed", "pid", pid, "error", err)
	}

	return backend.Process{PID: pid}, nil
}
