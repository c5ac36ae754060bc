package model

import "time"

type StartTranscriptionRequest struct {
	FileID   string `json:"fileId" validate:"required"`
	Language string `json:"language,omitempty" validate:"omitempty,bcp47_language_tag"`
}

type TranscriptionStatus struct {
	JobID        string               `json:"jobId"`
	Status       JobStatus            `json:"status"`
	Transcript   string               `json:"transcript,omitempty"`
	Confidence   float64              `json:"confidence,omitempty"`
	Timestamps   []TranscriptTimestamp `json:"timestamps,omitempty"`
	ErrorMessage string               `json:"errorMessage,omitempty"`
	CreatedAt    *time.Time           `json:"createdAt,omitempty"`
	CompletedAt  *time.Time           `json:"completedAt,omitempty"`
}

type TranscriptTimestamp struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}
