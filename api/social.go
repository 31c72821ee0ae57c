package api

import (
	"context"
	"net/url"
)

// Follow subscribes the account to another user's videos.
func (c *Client) Follow(ctx context.Context, targetID string) error {
	return c.simplePost(ctx, "/api/v1/follow", url.Values{"target_id": {targetID}})
}

// Unfollow removes a subscription.
func (c *Client) Unfollow(ctx context.Context, targetID string) error {
	return c.simplePost(ctx, "/api/v1/unfollow", url.Values{"target_id": {targetID}})
}

// Like marks a video as liked by the account.
func (c *Client) Like(ctx context.Context, videoID string) error {
	return c.simplePost(ctx, "/api/v1/like", url.Values{"video_id": {videoID}})
}

// Unlike removes a like.
func (c *Client) Unlike(ctx context.Context, videoID string) error {
	return c.simplePost(ctx, "/api/v1/unlike", url.Values{"video_id": {videoID}})
}

// CommentReceipt identifies a newly created comment.
type CommentReceipt struct {
	CommentID string
}

// Comment posts a comment under a video.
func (c *Client) Comment(ctx context.Context, videoID, text string) (*CommentReceipt, error) {
	values := url.Values{}
	values.Set("video_id", videoID)
	values.Set("text", text)

	var parsed struct {
		apiResponse
		CommentID string `json:"comment_id"`
	}
	if err := c.postForm(ctx, "/api/v1/comment", values, &parsed); err != nil {
		return nil, err
	}
	if err := parsed.reject(); err != nil {
		return nil, err
	}

	return &CommentReceipt{CommentID: parsed.CommentID}, nil
}

func (c *Client) simplePost(ctx context.Context, path string, values url.Values) error {
	var parsed apiResponse
	if err := c.postForm(ctx, path, values, &parsed); err != nil {
		return err
	}
	return parsed.reject()
}
