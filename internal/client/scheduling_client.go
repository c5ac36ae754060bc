package client

import (
	"context"
	"fmt"

	"github.com/contentkit/studio/internal/config"
	"github.com/contentkit/studio/internal/model"
)

type SchedulingClient struct {
	*base
}

func NewSchedulingClient(cfg config.BackendConfig, opts Options) (*SchedulingClient, error) {
	b, err := newBase("scheduling", cfg, opts)
	if err != nil {
		return nil, err
	}
	return &SchedulingClient{base: b}, nil
}

func (c *SchedulingClient) SchedulePost(ctx context.Context, req *model.SchedulePostRequest) (*model.ScheduledPost, error) {
	var result model.ScheduledPost
	if err := c.post(ctx, "/schedule/posts", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *SchedulingClient) ListScheduledPosts(ctx context.Context) ([]model.ScheduledPost, error) {
	var result model.ScheduledPostList
	if err := c.get(ctx, "/schedule/posts", nil, &result); err != nil {
		return nil, err
	}
	return result.Posts, nil
}

func (c *SchedulingClient) CancelScheduledPost(ctx context.Context, id string) error {
	return c.delete(ctx, fmt.Sprintf("/schedule/posts/%s", escape(id)))
}
