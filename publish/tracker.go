package publish

import (
	"time"

	"github.com/bitrise-io/go-utils/v2/analytics"
	"github.com/bitrise-io/go-utils/v2/env"
	"github.com/bitrise-io/go-utils/v2/log"
)

type uploadTracker struct {
	tracker analytics.Tracker
	logger  log.Logger
}

func newUploadTracker(envRepo env.Repository, logger log.Logger) uploadTracker {
	p := analytics.Properties{
		"client":   "go-clipstream",
		"owner_id": envRepo.Get(envKeyOwnerID),
	}
	return uploadTracker{
		tracker: analytics.NewDefaultTracker(logger, p),
		logger:  logger,
	}
}

func (t *uploadTracker) logVideoUploaded(uploadTime time.Duration, sizeBytes int64, chunkCount int) {
	properties := analytics.Properties{
		"upload_time_s":     uploadTime.Truncate(time.Second).Seconds(),
		"upload_size_bytes": sizeBytes,
		"chunk_count":       chunkCount,
	}
	t.tracker.Enqueue("client_video_uploaded", properties)
}

func (t *uploadTracker) logVideoUploadFailed(uploadTime time.Duration, sizeBytes int64) {
	properties := analytics.Properties{
		"upload_time_s":     uploadTime.Truncate(time.Second).Seconds(),
		"upload_size_bytes": sizeBytes,
	}
	t.tracker.Enqueue("client_video_upload_failed", properties)
}

func (t *uploadTracker) wait() {
	t.tracker.Wait()
}
