// Package venv locates the interpreter inside a Python virtual environment.
package venv

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

var (
	// ErrNotFound means the virtual environment directory does not exist.
	ErrNotFound = errors.New("virtual environment directory does not exist")

	// ErrNoInterpreter means none of the interpreter candidates exist.
	ErrNoInterpreter = errors.New("cannot locate interpreter in virtual environment")
)

// Candidates are the interpreter locations checked inside an environment,
// in priority order: the POSIX layout first, then the Windows layout.
var Candidates = []string{
	filepath.Join("bin", "python"),
	filepath.Join("Scripts", "python.exe"),
}

// Env is a resolved virtual environment.
type Env struct {
	Dir         string
	Interpreter string
}

// Resolve checks that dir exists and returns the first interpreter candidate
// found inside it.
func Resolve(dir string) (Env, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return Env{}, fmt.Errorf("%w: %s", ErrNotFound, dir)
	}

	for _, c := range Candidates {
		p := filepath.Join(dir, c)
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			slog.Debug("venv candidate missing", "path", p)
			continue
		}
		slog.Debug("venv interpreter found", "path", p)
		return Env{Dir: dir, Interpreter: p}, nil
	}

	return Env{}, fmt.Errorf("%w: %s", ErrNoInterpreter, dir)
}
