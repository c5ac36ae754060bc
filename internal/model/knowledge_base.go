package model

import "time"

type AddDocumentRequest struct {
	FileID string   `json:"fileId" validate:"required"`
	Title  string   `json:"title,omitempty" validate:"omitempty,max=200"`
	Tags   []string `json:"tags,omitempty" validate:"omitempty,max=20,dive,min=1,max=50"`
}

type KnowledgeDocument struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	FileID     string    `json:"fileId"`
	Status     JobStatus `json:"status"`
	ChunkCount int       `json:"chunkCount,omitempty"`
	Tags       []string  `json:"tags,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

type KnowledgeDocumentList struct {
	Documents []KnowledgeDocument `json:"documents"`
}

type SearchRequest struct {
	Query string `json:"query" validate:"required,max=1000"`
	TopK  int    `json:"topK,omitempty" validate:"omitempty,min=1,max=50"`
}

type SearchResult struct {
	DocumentID string  `json:"documentId"`
	Title      string  `json:"title,omitempty"`
	Snippet    string  `json:"snippet"`
	Score      float64 `json:"score"`
}

type SearchResponse struct {
	Results []SearchResult `json:"results"`
}
