// Package cli implements the remind command line: scheduling, listing and
// the hidden worker mode the scheduler re-executes itself into.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"

	"github.com/notexe/remind/internal/config"
	"github.com/notexe/remind/internal/detach"
	"github.com/notexe/remind/internal/notify"
	"github.com/notexe/remind/internal/reminder"
	"github.com/notexe/remind/internal/ui"
)

// Exit codes.
const (
	ExitOK    = 0
	ExitError = 1
)

// hiddenFlags never appear in usage output.
var hiddenFlags = map[string]bool{
	detach.WorkerFlag: true,
	detach.JobFlag:    true,
}

// newLauncher is replaced in tests.
var newLauncher = func(extraArgs ...string) (reminder.Launcher, error) {
	return detach.New(extraArgs...)
}

type options struct {
	configPath string
	mute       bool
	repeat     int
	permanent  bool
	list       bool
	noColor    bool

	worker bool
	job    string
}

func newFlagSet(opts *options, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("remind", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.configPath, "config", config.GetDefaultConfigPath(), "Path to configuration file")
	fs.BoolVar(&opts.mute, "mute", false, "Disable sound alert")
	fs.BoolVar(&opts.mute, "m", false, "Shorthand for --mute")
	fs.IntVar(&opts.repeat, "repeat", 1, "Number of times to fire the reminder")
	fs.IntVar(&opts.repeat, "r", 1, "Shorthand for --repeat")
	fs.BoolVar(&opts.permanent, "permanent", false, "Keep the notification until dismissed")
	fs.BoolVar(&opts.permanent, "p", false, "Shorthand for --permanent")
	fs.BoolVar(&opts.list, "list", false, "List reminders and exit")
	fs.BoolVar(&opts.list, "l", false, "Shorthand for --list")
	fs.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	fs.BoolVar(&opts.worker, detach.WorkerFlag, false, "")
	fs.StringVar(&opts.job, detach.JobFlag, "", "")

	fs.Usage = func() { printUsage(fs, stderr) }
	return fs
}

func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprint(w, `Usage: remind "Message" <time> [flags]
       remind --list

Time is a delay (30s, 10m, 1h) or a time later today (15:30).

Examples:
  remind "Drink water" 10m
  remind "Team meeting" 15:30 --permanent
  remind "Stretch" 20m --repeat 3 --mute

Flags:
`)
	fs.VisitAll(func(f *flag.Flag) {
		if hiddenFlags[f.Name] || len(f.Name) == 1 {
			return
		}
		name, usage := flag.UnquoteUsage(f)
		line := "  --" + f.Name
		if name != "" {
			line += " " + name
		}
		fmt.Fprintf(w, "%-22s %s\n", line, usage)
	})
}

// parseInterspersed lets flags follow positional arguments, so
// `remind "msg" 10m --mute` works.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

// Run executes the CLI with args (without the program name) and returns the
// process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	var opts options
	fs := newFlagSet(&opts, stderr)

	positional, err := parseInterspersed(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitOK
		}
		return ExitError
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading configuration: %v\n", err)
		return ExitError
	}

	if opts.worker {
		return runWorker(cfg, opts.job)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Invalid configuration: %v\n", err)
		return ExitError
	}

	f := ui.NewFormatter(cfg.UI.ColoredOutput && !opts.noColor && isTerminal(stdout))

	if !opts.list && len(positional) < 2 {
		printUsage(fs, stderr)
		return ExitError
	}

	// Opening is lazy; a store that cannot be opened at all lists as empty
	// and fails only when a reminder has to be saved.
	store, err := reminder.OpenStore(cfg.StoreLocation())
	if err != nil {
		fmt.Fprintf(stderr, "Warning: %v\n", err)
		store = reminder.NewUnavailableStore(err)
	}
	defer store.Close()

	if opts.list {
		engine := reminder.NewEngine(reminder.EngineConfig{Store: store, Location: cfg.StoreLocation()})
		entries, err := engine.List()
		if err != nil {
			fmt.Fprintln(stderr, f.FormatError(err))
			return ExitError
		}
		fmt.Fprintln(stdout, f.FormatList(entries))
		return ExitOK
	}

	launcher, err := newLauncher("--config", opts.configPath)
	if err != nil {
		fmt.Fprintln(stderr, f.FormatError(err))
		return ExitError
	}

	engine := reminder.NewEngine(reminder.EngineConfig{
		Store:    store,
		Location: cfg.StoreLocation(),
		Launcher: launcher,
	})

	scheduled, err := engine.Schedule(context.Background(), reminder.Request{
		Message:   positional[0],
		TimeExpr:  positional[1],
		Repeat:    opts.repeat,
		Mute:      opts.mute,
		Permanent: opts.permanent,
	})
	if err != nil {
		fmt.Fprintln(stderr, f.FormatError(err))
		if errors.Is(err, reminder.ErrInvalidFormat) {
			fmt.Fprintln(stderr, f.FormatInfo("Use a delay like '10m', '1h', '30s' or a time like '15:30'."))
		}
		return ExitError
	}

	fmt.Fprintln(stdout, f.FormatScheduled(scheduled))
	return ExitOK
}

// runWorker is the detached half. Its standard streams are discarded, so
// everything goes to the worker log.
func runWorker(cfg *config.Config, token string) int {
	closeLog := setupWorkerLog(cfg.Log.File)
	defer closeLog()

	job, err := reminder.DecodeJob(token)
	if err != nil {
		log.Printf("[worker] %v", err)
		return ExitError
	}

	// The reminder still fires when its record cannot be updated.
	store, err := reminder.OpenStore(job.Store)
	if err != nil {
		log.Printf("[worker] Reminder %s: failed to open store: %v", job.ID, err)
		store = reminder.NewUnavailableStore(err)
	}
	defer store.Close()

	engine := reminder.NewEngine(reminder.EngineConfig{
		Store:    store,
		Location: job.Store,
		Notifier: notify.NewDesktopNotifier(cfg.Notify.Command, cfg.Notify.AppName),
		Sound:    notify.NewSoundPlayer(cfg.Sound.Player, cfg.Sound.File),
		Title:    cfg.Notify.Title,
	})

	if err := engine.RunWorker(context.Background(), job); err != nil {
		return ExitError
	}
	return ExitOK
}

func setupWorkerLog(path string) func() {
	if path == "" {
		log.SetOutput(io.Discard)
		return func() {}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.SetOutput(io.Discard)
		return func() {}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		log.SetOutput(io.Discard)
		return func() {}
	}
	log.SetOutput(f)
	log.SetPrefix(fmt.Sprintf("remind[%d] ", os.Getpid()))
	return func() {
		log.SetOutput(os.Stderr)
		log.SetPrefix("")
		f.Close()
	}
}

// IsWorkerInvocation reports whether args request worker mode.
func IsWorkerInvocation(args []string) bool {
	for _, a := range args {
		if strings.TrimLeft(a, "-") == detach.WorkerFlag && strings.HasPrefix(a, "-") {
			return true
		}
	}
	return false
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
