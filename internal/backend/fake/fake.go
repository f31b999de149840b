// Package fake provides an in-memory Backend for tests.
package fake

import (
	"context"
	"fmt"
	"sync"

	"github.com/mbrock/startsvc/internal/backend"
)

// FakeBackend records spawn requests and hands out increasing PIDs.
type FakeBackend struct {
	mu      sync.Mutex
	specs   []backend.Spec
	nextPID int
	err     error
	closed  bool

	// Output, if set, is written to spec.Output on each spawn.
	Output string
}

var _ backend.Backend = (*FakeBackend)(nil)

// New creates a FakeBackend whose first spawned process gets firstPID.
func New(firstPID int) *FakeBackend {
	return &FakeBackend{nextPID: firstPID}
}

// FailWith makes subsequent Spawn calls return err.
func (b *FakeBackend) FailWith(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.err = err
}

// Spawn records spec and returns the next PID.
func (b *FakeBackend) Spawn(ctx context.Context, spec backend.Spec) (backend.Process, error) {
	if err := ctx.Err(); err != nil {
		return backend.Process{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return backend.Process{}, fmt.Errorf("backend closed")
	}
	b.specs = append(b.specs, copySpec(spec))
	if b.err != nil {
		return backend.Process{}, b.err
	}

	if b.Output != "" && spec.Output != nil {
		if _, err := spec.Output.WriteString(b.Output); err != nil {
			return backend.Process{}, err
		}
	}

	pid := b.nextPID
	b.nextPID++
	return backend.Process{PID: pid, Handle: "fake-" + spec.Name}, nil
}

// Specs returns a copy of all recorded spawn requests.
func (b *FakeBackend) Specs() []backend.Spec {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]backend.Spec, len(b.specs))
	copy(out, b.specs)
	return out
}

// Close marks the backend closed.
func (b *FakeBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

func copySpec(s backend.Spec) backend.Spec {
	s.Command = append([]string(nil), s.Command...)
	return s
}
