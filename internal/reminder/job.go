package reminder

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

// Job is everything a detached worker needs to fire one reminder. It is
// built once by the foreground process and handed to the worker on its
// command line.
type Job struct {
	ID           string        `json:"id"`
	Message      string        `json:"message"`
	DelaySeconds int64         `json:"delay_seconds"`
	Repeat       int           `json:"repeat"`
	Mute         bool          `json:"mute"`
	Permanent    bool          `json:"permanent"`
	Store        StoreLocation `json:"store"`
}

// Delay returns the wait before each firing.
func (j Job) Delay() time.Duration {
	return time.Duration(j.DelaySeconds) * time.Second
}

// Encode serializes the job into a single argv-safe token.
func (j Job) Encode() (string, error) {
	data, err := json.Marshal(j)
	if err != nil {
		return "", fmt.Errorf("failed to encode job: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// DecodeJob is the inverse of Job.Encode.
func DecodeJob(s string) (Job, error) {
	var j Job
	data, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return j, fmt.Errorf("failed to decode job: %w", err)
	}
	if err := json.Unmarshal(data, &j); err != nil {
		return j, fmt.Errorf("failed to parse job: %w", err)
	}
	if j.ID == "" {
		return j, fmt.Errorf("job has no reminder id")
	}
	return j, nil
}
