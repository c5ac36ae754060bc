package model

import "time"

// GenerateContentRequest asks for a single piece of generated content.
type GenerateContentRequest struct {
	Prompt      string   `json:"prompt" validate:"required,max=10000"`
	ContentType string   `json:"contentType" validate:"required,oneof=blog social email newsletter script"`
	Platform    Platform `json:"platform,omitempty" validate:"omitempty,oneof=twitter linkedin instagram facebook youtube tiktok"`
	Tone        string   `json:"tone,omitempty" validate:"omitempty,max=50"`
	Length      string   `json:"length,omitempty" validate:"omitempty,oneof=short medium long"`
}

type ExtractRequest struct {
	URL string `json:"url" validate:"required,url,max=2048"`
}

type ExtractResult struct {
	URL         string     `json:"url"`
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	Author      string     `json:"author,omitempty"`
	SiteName    string     `json:"siteName,omitempty"`
	Image       string     `json:"image,omitempty"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	Text        string     `json:"text"`
	WordCount   int        `json:"wordCount,omitempty"`
}

// Suggestion is a content idea offered to the user; dismissed ids are
// remembered client-side.
type Suggestion struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Type        string    `json:"type,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type SuggestionList struct {
	Suggestions []Suggestion `json:"suggestions"`
}
