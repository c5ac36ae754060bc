package model

import "time"

type StartPDFRequest struct {
	FileID string `json:"fileId" validate:"required"`
}

type PDFStatus struct {
	JobID         string     `json:"jobId"`
	Status        JobStatus  `json:"status"`
	ExtractedText string     `json:"extractedText,omitempty"`
	WordCount     int        `json:"wordCount,omitempty"`
	CharCount     int        `json:"charCount,omitempty"`
	PageCount     int        `json:"pageCount,omitempty"`
	ErrorMessage  string     `json:"errorMessage,omitempty"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
}
