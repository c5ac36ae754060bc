package model

import "time"

// UploadURLRequest asks the backend for a presigned upload target.
type UploadURLRequest struct {
	FileName    string       `json:"fileName" validate:"required,max=255"`
	ContentType string       `json:"contentType" validate:"required"`
	FileSize    int64        `json:"fileSize" validate:"required,min=1"`
	Category    FileCategory `json:"category" validate:"required,oneof=pdf audio video"`
}

type UploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	FileID    string `json:"fileId"`
	Key       string `json:"key,omitempty"`
	ExpiresIn int    `json:"expiresIn,omitempty"` // seconds
}

// MediaFile is one entry of the user's file list.
type MediaFile struct {
	ID          string       `json:"id"`
	FileName    string       `json:"fileName"`
	ContentType string       `json:"contentType"`
	Size        int64        `json:"size"`
	Category    FileCategory `json:"category,omitempty"`
	Status      string       `json:"status,omitempty"`
	JobID       string       `json:"jobId,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
}

type MediaFileList struct {
	Files []MediaFile `json:"files"`
}
