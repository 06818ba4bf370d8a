package reminder

import (
	"time"

	"github.com/google/uuid"
)

// Status is the persisted lifecycle state of a reminder.
type Status string

// Status values for reminders.
const (
	StatusPending Status = "pending"
	StatusDone    Status = "done"
)

// DisplayStatus is what the lister shows. It is derived at read time and
// never written back.
type DisplayStatus string

const (
	DisplayPending DisplayStatus = "pending"
	DisplayDone    DisplayStatus = "done"
	DisplayMissed  DisplayStatus = "missed"
)

// Record represents a scheduled reminder.
type Record struct {
	ID         string     `json:"id"`
	Message    string     `json:"message"`
	CreatedAt  time.Time  `json:"created_at"`
	TargetTime time.Time  `json:"target_time"`
	Status     Status     `json:"status"`
	Permanent  bool       `json:"permanent"`
	Mute       bool       `json:"mute"`
	Repeat     int        `json:"repeat"`
	ExecutedAt *time.Time `json:"executed_at,omitempty"`
}

// NewID returns a fresh reminder identifier.
func NewID() string {
	return uuid.NewString()
}

// DeriveStatus computes the display status of r at instant now. A pending
// record whose target time has already passed is shown as missed.
func DeriveStatus(r Record, now time.Time) DisplayStatus {
	if r.Status == StatusDone {
		return DisplayDone
	}
	if r.TargetTime.Before(now) {
		return DisplayMissed
	}
	return DisplayPending
}
