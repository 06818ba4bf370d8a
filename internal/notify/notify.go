// Package notify fires desktop notifications and alert sounds by shelling
// out to the usual freedesktop tools.
package notify

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// ErrUnavailable means the notification or sound mechanism is missing.
var ErrUnavailable = errors.New("not available")

// runFunc executes a command and waits for it.
type runFunc func(ctx context.Context, name string, args ...string) error

func runCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if len(out) > 0 {
			return fmt.Errorf("%s: %w: %s", name, err, out)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// DesktopNotifier sends notifications through notify-send.
type DesktopNotifier struct {
	command string
	appName string
	run     runFunc
}

// NewDesktopNotifier returns a notifier that runs command (normally
// "notify-send") with appName as the application name.
func NewDesktopNotifier(command, appName string) *DesktopNotifier {
	return &DesktopNotifier{
		command: command,
		appName: appName,
		run:     runCommand,
	}
}

// Args builds the notify-send argument list. Permanent notifications use
// critical urgency, which notification daemons keep until dismissed.
func (n *DesktopNotifier) Args(title, body string, permanent bool) []string {
	urgency := "normal"
	if permanent {
		urgency = "critical"
	}
	args := []string{"-u", urgency}
	if permanent {
		args = append(args, "-t", "0")
	}
	if n.appName != "" {
		args = append(args, "-a", n.appName)
	}
	return append(args, "--", title, body)
}

// Notify shows one notification.
func (n *DesktopNotifier) Notify(ctx context.Context, title, body string, permanent bool) error {
	path, err := exec.LookPath(n.command)
	if err != nil {
		return fmt.Errorf("notifier %q %w", n.command, ErrUnavailable)
	}
	return n.run(ctx, path, n.Args(title, body, permanent)...)
}

// SoundPlayer plays a sound file through an external player such as paplay.
type SoundPlayer struct {
	player string
	file   string
	run    runFunc
}

// NewSoundPlayer returns a player for file using the player binary.
func NewSoundPlayer(player, file string) *SoundPlayer {
	return &SoundPlayer{
		player: player,
		file:   file,
		run:    runCommand,
	}
}

// Play blocks until the sound finishes.
func (p *SoundPlayer) Play(ctx context.Context) error {
	if _, err := os.Stat(p.file); err != nil {
		return fmt.Errorf("sound file %q %w", p.file, ErrUnavailable)
	}
	path, err := exec.LookPath(p.player)
	if err != nil {
		return fmt.Errorf("sound player %q %w", p.player, ErrUnavailable)
	}
	return p.run(ctx, path, p.file)
}
