package model

import "time"

// Notification is a user-facing notice produced by a job-level side effect
// (the toast of a finished upload or kit).
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	JobID     string    `json:"jobId,omitempty"`
	Flow      string    `json:"flow"`
	Level     string    `json:"level"` // success or error
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}
