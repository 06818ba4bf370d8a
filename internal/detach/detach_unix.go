//go:build unix

package detach

import "syscall"

// sysProcAttr puts the worker in its own session so a terminal hang-up does
// not reach it.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setsid: true}
}
