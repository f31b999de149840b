//go:build unix

package posix

import "syscall"

// detachAttr puts the child in a new session so it has no controlling
// terminal and does not receive the launching shell's hangup.
func detachAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setsid: true}
}
