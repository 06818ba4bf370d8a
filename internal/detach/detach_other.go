//go:build !unix

package detach

import "syscall"

func sysProcAttr() *syscall.SysProcAttr {
	return nil
}
