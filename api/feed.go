package api

import (
	"context"
	"net/url"
	"strconv"
)

// VideoInfo is one feed entry.
type VideoInfo struct {
	ID           string `json:"video_id"`
	OwnerID      string `json:"owner_id"`
	Title        string `json:"title"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url"`
	Likes        int    `json:"likes"`
	Comments     int    `json:"comments"`
	PublishedAt  string `json:"published_at"`
}

// Feed lists the most recent videos from followed accounts, newest first.
// limit <= 0 leaves paging to the backend's default.
func (c *Client) Feed(ctx context.Context, limit int) ([]VideoInfo, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var parsed struct {
		apiResponse
		Videos []VideoInfo `json:"videos"`
	}
	if err := c.getJSON(ctx, "/api/v1/feed", query, &parsed); err != nil {
		return nil, err
	}
	if err := parsed.reject(); err != nil {
		return nil, err
	}

	return parsed.Videos, nil
}

// UserVideos lists the videos published by one account.
func (c *Client) UserVideos(ctx context.Context, targetID string) ([]VideoInfo, error) {
	query := url.Values{}
	query.Set("target_id", targetID)

	var parsed struct {
		apiResponse
		Videos []VideoInfo `json:"videos"`
	}
	if err := c.getJSON(ctx, "/api/v1/videos/list", query, &parsed); err != nil {
		return nil, err
	}
	if err := parsed.reject(); err != nil {
		return nil, err
	}

	return parsed.Videos, nil
}
