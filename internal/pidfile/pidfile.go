// Package pidfile writes and reads single-integer PID files.
package pidfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Write stores pid as decimal text followed by a newline, replacing any
// previous content. The parent directory is created if needed.
func Write(path string, pid int) error {
	if pid <= 0 {
		return fmt.Errorf("invalid pid %d", pid)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(pid)+"\n"), 0o644)
}

// Read parses a PID file written by Write. Surrounding whitespace is ignored.
// startsvc itself never reads PID files back; Read is for tests and for
// operator tooling that inspects logs/.
func Read(path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return 0, fmt.Errorf("parsing pid file %s: %w", path, err)
	}
	if pid <= 0 {
		return 0, fmt.Errorf("pid file %s holds non-positive pid %d", path, pid)
	}
	return pid, nil
}
