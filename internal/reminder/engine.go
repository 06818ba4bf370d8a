package reminder

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"
)

// DefaultTitle is the notification title used when none is configured.
const DefaultTitle = "Reminder"

var (
	ErrMissingMessage = errors.New("message is required")
	ErrMissingTime    = errors.New("time is required")
	ErrInvalidRepeat  = errors.New("repeat must be at least 1")
)

// Launcher starts a detached worker for job and returns its pid.
type Launcher interface {
	Launch(job Job) (int, error)
}

// Notifier shows a desktop notification.
type Notifier interface {
	Notify(ctx context.Context, title, body string, permanent bool) error
}

// SoundPlayer plays the alert sound.
type SoundPlayer interface {
	Play(ctx context.Context) error
}

// EngineConfig wires an Engine. Store and Location are required; Launcher
// is only needed for Schedule, Notifier and Sound only for RunWorker.
type EngineConfig struct {
	Store    Store
	Location StoreLocation
	Launcher Launcher
	Notifier Notifier
	Sound    SoundPlayer
	Title    string

	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
}

// Engine runs both halves of the reminder lifecycle: scheduling in the
// foreground process and firing in the detached worker.
type Engine struct {
	store    Store
	location StoreLocation
	launcher Launcher
	notifier Notifier
	sound    SoundPlayer
	title    string
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewEngine creates an Engine from cfg, filling in the real clock.
func NewEngine(cfg EngineConfig) *Engine {
	e := &Engine{
		store:    cfg.Store,
		location: cfg.Location,
		launcher: cfg.Launcher,
		notifier: cfg.Notifier,
		sound:    cfg.Sound,
		title:    cfg.Title,
		now:      cfg.Now,
		sleep:    cfg.Sleep,
	}
	if e.title == "" {
		e.title = DefaultTitle
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.sleep == nil {
		e.sleep = sleepContext
	}
	return e
}

// Request is a user's ask to be reminded.
type Request struct {
	Message   string
	TimeExpr  string
	Repeat    int
	Mute      bool
	Permanent bool
}

// Scheduled describes a reminder that was persisted and handed to a worker.
type Scheduled struct {
	Record Record
	Delay  time.Duration
	PID    int
}

// FireAt returns the instant of the first firing.
func (s *Scheduled) FireAt() time.Time {
	return s.Record.TargetTime
}

// Schedule validates req, stores a pending record and launches its worker.
// Validation failures leave the store untouched and spawn nothing.
func (e *Engine) Schedule(ctx context.Context, req Request) (*Scheduled, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, ErrMissingMessage
	}
	if req.TimeExpr == "" {
		return nil, ErrMissingTime
	}
	if req.Repeat < 1 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidRepeat, req.Repeat)
	}

	if e.launcher == nil {
		return nil, errors.New("no worker launcher configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := e.now()
	delay, err := ParseExpression(req.TimeExpr, now)
	if err != nil {
		return nil, err
	}

	rec := Record{
		ID:         NewID(),
		Message:    req.Message,
		CreatedAt:  now.UTC(),
		TargetTime: now.Add(delay).UTC(),
		Status:     StatusPending,
		Permanent:  req.Permanent,
		Mute:       req.Mute,
		Repeat:     req.Repeat,
	}

	if err := e.store.Add(rec); err != nil {
		return nil, fmt.Errorf("failed to save reminder: %w", err)
	}

	job := Job{
		ID:           rec.ID,
		Message:      rec.Message,
		DelaySeconds: int64(delay / time.Second),
		Repeat:       rec.Repeat,
		Mute:         rec.Mute,
		Permanent:    rec.Permanent,
		Store:        e.location,
	}

	pid, err := e.launcher.Launch(job)
	if err != nil {
		return nil, fmt.Errorf("failed to start worker: %w", err)
	}

	return &Scheduled{Record: rec, Delay: delay, PID: pid}, nil
}

// RunWorker fires job.Repeat times, waiting job.Delay before each firing.
//
// The wait is not recomputed from an absolute clock, so each iteration drifts
// by the time spent firing. Sink and store failures are logged and do not
// stop the loop; only ctx cancellation does.
func (e *Engine) RunWorker(ctx context.Context, job Job) error {
	delay := job.Delay()
	log.Printf("[worker] Reminder %s: %d firing(s), %s apart", job.ID, job.Repeat, delay)

	for i := 1; i <= job.Repeat; i++ {
		if err := e.sleep(ctx, delay); err != nil {
			log.Printf("[worker] Reminder %s: stopped before firing %d: %v", job.ID, i, err)
			return err
		}

		e.fire(ctx, job)

		status := StatusPending
		if i == job.Repeat {
			status = StatusDone
		}
		if err := e.store.UpdateStatus(job.ID, status, e.now()); err != nil {
			log.Printf("[worker] Reminder %s: failed to record firing %d: %v", job.ID, i, err)
			continue
		}
		log.Printf("[worker] Reminder %s: fired %d/%d, status %s", job.ID, i, job.Repeat, status)
	}
	return nil
}

func (e *Engine) fire(ctx context.Context, job Job) {
	if e.notifier != nil {
		if err := e.notifier.Notify(ctx, e.title, job.Message, job.Permanent); err != nil {
			log.Printf("[worker] Reminder %s: notification failed: %v", job.ID, err)
		}
	}
	if job.Mute || e.sound == nil {
		return
	}
	if err := e.sound.Play(ctx); err != nil {
		log.Printf("[worker] Reminder %s: sound failed: %v", job.ID, err)
	}
}

// Entry is a record paired with the status shown for it.
type Entry struct {
	Record
	Display DisplayStatus
}

// List returns every stored reminder in display order. It never writes.
func (e *Engine) List() ([]Entry, error) {
	records, err := e.store.Load()
	if err != nil {
		return nil, err
	}
	return BuildListing(records, e.now()), nil
}

// BuildListing derives display statuses and orders entries pending first,
// then by target time.
func BuildListing(records []Record, now time.Time) []Entry {
	entries := make([]Entry, 0, len(records))
	for _, r := range records {
		entries = append(entries, Entry{Record: r, Display: DeriveStatus(r, now)})
	}
	slices.SortStableFunc(entries, func(a, b Entry) int {
		ap, bp := a.Status != StatusPending, b.Status != StatusPending
		if ap != bp {
			if ap {
				return 1
			}
			return -1
		}
		return a.TargetTime.Compare(b.TargetTime)
	})
	return entries
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
