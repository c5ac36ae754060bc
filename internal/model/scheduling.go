package model

import "time"

type SchedulePostRequest struct {
	Platform    Platform  `json:"platform" validate:"required,oneof=twitter linkedin instagram facebook youtube tiktok"`
	Content     string    `json:"content" validate:"required,max=5000"`
	MediaURLs   []string  `json:"mediaUrls,omitempty" validate:"omitempty,max=10,dive,url"`
	ScheduledAt time.Time `json:"scheduledAt" validate:"required"`
	KitID       string    `json:"kitId,omitempty"`
}

type ScheduledPost struct {
	ID          string    `json:"id"`
	Platform    Platform  `json:"platform"`
	Content     string    `json:"content"`
	ScheduledAt time.Time `json:"scheduledAt"`
	Status      string    `json:"status"`
	PostURL     string    `json:"postUrl,omitempty"`
}

type ScheduledPostList struct {
	Posts []ScheduledPost `json:"posts"`
}
