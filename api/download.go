package api

import (
	"context"

	"github.com/melbahja/got"
)

// DownloadVideo fetches a published video file to the given destination path.
// The URL usually comes from a feed entry.
func (c *Client) DownloadVideo(ctx context.Context, url, destPath string) error {
	c.logger.Debugf("Downloading %s to %s", url, destPath)

	downloader := got.New()
	downloader.Client = c.httpClient.StandardClient()

	return downloader.Do(got.NewDownload(ctx, url, destPath))
}
