// Package detach re-executes the running binary as a background worker that
// outlives the invoking terminal.
package detach

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/notexe/remind/internal/reminder"
)

// Hidden flags understood by the worker side of the CLI.
const (
	WorkerFlag = "worker"
	JobFlag    = "job"
)

// Launcher spawns detached workers.
type Launcher struct {
	executable string
	extraArgs  []string
}

// New returns a Launcher for the current executable. extraArgs are passed
// before the worker flags, e.g. a --config override.
func New(extraArgs ...string) (*Launcher, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to locate executable: %w", err)
	}
	return NewWithExecutable(exe, extraArgs...), nil
}

// NewWithExecutable returns a Launcher that runs exe.
func NewWithExecutable(exe string, extraArgs ...string) *Launcher {
	return &Launcher{executable: exe, extraArgs: extraArgs}
}

// Command builds the worker command for job without starting it. Standard
// streams are left nil so they are bound to the null device.
func (l *Launcher) Command(job reminder.Job) (*exec.Cmd, error) {
	token, err := job.Encode()
	if err != nil {
		return nil, err
	}

	args := make([]string, 0, len(l.extraArgs)+3)
	args = append(args, l.extraArgs...)
	args = append(args, "--"+WorkerFlag, "--"+JobFlag, token)

	cmd := exec.Command(l.executable, args...)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.SysProcAttr = sysProcAttr()
	return cmd, nil
}

// Launch starts the worker and returns without waiting for it.
func (l *Launcher) Launch(job reminder.Job) (int, error) {
	cmd, err := l.Command(job)
	if err != nil {
		return 0, err
	}
	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to spawn worker: %w", err)
	}
	pid := cmd.Process.Pid
	if err := cmd.Process.Release(); err != nil {
		return pid, fmt.Errorf("failed to release worker: %w", err)
	}
	return pid, nil
}
