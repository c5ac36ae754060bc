package client

import (
	"context"
	"fmt"

	"github.com/contentkit/studio/internal/config"
	"github.com/contentkit/studio/internal/model"
)

type KnowledgeBaseClient struct {
	*base
}

func NewKnowledgeBaseClient(cfg config.BackendConfig, opts Options) (*KnowledgeBaseClient, error) {
	b, err := newBase("knowledge-base", cfg, opts)
	if err != nil {
		return nil, err
	}
	return &KnowledgeBaseClient{base: b}, nil
}

func (c *KnowledgeBaseClient) AddDocument(ctx context.Context, req *model.AddDocumentRequest) (*model.KnowledgeDocument, error) {
	var result model.KnowledgeDocument
	if err := c.post(ctx, "/knowledge-base/documents", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *KnowledgeBaseClient) ListDocuments(ctx context.Context) ([]model.KnowledgeDocument, error) {
	var result model.KnowledgeDocumentList
	if err := c.get(ctx, "/knowledge-base/documents", nil, &result); err != nil {
		return nil, err
	}
	return result.Documents, nil
}

func (c *KnowledgeBaseClient) DeleteDocument(ctx context.Context, id string) error {
	return c.delete(ctx, fmt.Sprintf("/knowledge-base/documents/%s", escape(id)))
}

func (c *KnowledgeBaseClient) Search(ctx context.Context, req *model.SearchRequest) ([]model.SearchResult, error) {
	var result model.SearchResponse
	if err := c.post(ctx, "/knowledge-base/search", req, &result); err != nil {
		return nil, err
	}
	return result.Results, nil
}
