//go:build !unix && !windows

package posix

import "syscall"

func detachAttr() *syscall.SysProcAttr { return nil }
