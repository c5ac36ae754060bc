package model

import "time"

// ScrapeRequest starts a social profile import.
type ScrapeRequest struct {
	Platform   Platform `json:"platform" validate:"required,oneof=twitter linkedin instagram facebook youtube tiktok"`
	ProfileURL string   `json:"profileUrl" validate:"required,url,max=2048"`
	MaxPosts   int      `json:"maxPosts,omitempty" validate:"omitempty,min=1,max=500"`
}

type ImportStatus struct {
	JobID        string         `json:"jobId"`
	Status       JobStatus      `json:"status"`
	Progress     ImportProgress `json:"progress"`
	Results      ImportResults  `json:"results"`
	ErrorMessage string         `json:"errorMessage,omitempty"`
	CompletedAt  *time.Time     `json:"completedAt,omitempty"`
}

type ImportProgress struct {
	Processed  int `json:"processed"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

type ImportResults struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// SocialAccount is a connected OAuth account.
type SocialAccount struct {
	Platform    Platform   `json:"platform"`
	AccountID   string     `json:"accountId"`
	Username    string     `json:"username,omitempty"`
	DisplayName string     `json:"displayName,omitempty"`
	ConnectedAt time.Time  `json:"connectedAt"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
}

type SocialAccountList struct {
	Accounts []SocialAccount `json:"accounts"`
}

type PostRequest struct {
	Content   string   `json:"content" validate:"required,max=5000"`
	MediaURLs []string `json:"mediaUrls,omitempty" validate:"omitempty,max=10,dive,url"`
}

type PostResult struct {
	PostID   string    `json:"postId"`
	URL      string    `json:"url,omitempty"`
	Platform Platform  `json:"platform"`
	PostedAt time.Time `json:"postedAt"`
}
