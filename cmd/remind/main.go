// Command remind schedules desktop notifications from the terminal.
//
// Usage:
//
//	remind "Drink water" 10m            # in ten minutes
//	remind "Standup" 15:30 --permanent  # at 15:30 today, stays until dismissed
//	remind "Stretch" 20m --repeat 3     # three times, twenty minutes apart
//	remind --list                       # show pending, done and missed reminders
//
// The command returns immediately; a detached copy of itself waits and fires
// the notification, so closing the terminal does not cancel it.
//
// Environment:
//
//	REMIND_STORE_PATH  Where reminders are kept (default: ~/.remind/reminders.json)
package main

import (
	"os"

	"github.com/notexe/remind/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:], os.Stdout, os.Stderr))
}
