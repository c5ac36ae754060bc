package model

import "time"

// JobAccepted is returned by every submit-like operation. The backend may
// answer 200, 201 or 202; all carry this shape.
type JobAccepted struct {
	JobID         string    `json:"jobId"`
	Status        JobStatus `json:"status"`
	Message       string    `json:"message,omitempty"`
	RequestID     string    `json:"requestId,omitempty"`
	Timestamp     time.Time `json:"timestamp,omitempty"`
	EstimatedTime int       `json:"estimatedTime,omitempty"` // seconds
}

// Progress is attached to a job while it is not terminal.
type Progress struct {
	CurrentStep            string   `json:"currentStep,omitempty"`
	CompletedSteps         []string `json:"completedSteps,omitempty"`
	TotalSteps             int      `json:"totalSteps,omitempty"`
	Percentage             int      `json:"percentage"`
	EstimatedTimeRemaining *int     `json:"estimatedTimeRemaining,omitempty"` // seconds
}
