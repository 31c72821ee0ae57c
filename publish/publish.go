// Package publish is the high-level entry point for putting local video
// files onto the Clipstream service. It resolves file patterns, reads the
// service configuration from the environment and drives the chunked upload
// protocol in publish/network.
package publish

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bitrise-io/go-utils/v2/analytics"
	"github.com/bitrise-io/go-utils/v2/env"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/go-utils/v2/pathutil"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/docker/go-units"

	"github.com/clipstream-io/go-clipstream/publish/network"
)

const (
	envKeyAPIBaseURL  = "CLIPSTREAM_API_URL"
	envKeyAccessToken = "CLIPSTREAM_ACCESS_TOKEN"
	envKeyOwnerID     = "CLIPSTREAM_OWNER_ID"
)

// PublishVideoInput is the caller-facing description of one publish run.
type PublishVideoInput struct {
	Verbose bool
	// Paths are local video files to publish; doublestar glob patterns are
	// allowed.
	Paths []string
	Title string
	// ChunkSize overrides the upload chunk width, as a human-readable size
	// ("8MB", "512KiB"). Empty means the protocol default.
	ChunkSize string
}

// Publisher ...
type Publisher interface {
	Publish(ctx context.Context, input PublishVideoInput) error
}

type publishConfig struct {
	Verbose     bool
	Paths       []string
	Title       string
	ChunkSize   int64
	APIBaseURL  string
	AccessToken Secret
	OwnerID     string
}

type publisher struct {
	envRepo      env.Repository
	logger       log.Logger
	pathModifier pathutil.PathModifier
	pathChecker  pathutil.PathChecker
	uploader     network.Uploader

	// tracker is created per Publish call unless a test injects one.
	tracker analytics.Tracker
}

// NewPublisher creates a publisher instance. `uploader` can be nil, unless
// you want to provide a custom Uploader implementation.
func NewPublisher(
	envRepo env.Repository,
	logger log.Logger,
	pathModifier pathutil.PathModifier,
	pathChecker pathutil.PathChecker,
	uploader network.Uploader,
) *publisher {
	var uploaderImpl network.Uploader = uploader
	if uploader == nil {
		uploaderImpl = network.DefaultUploader{}
	}
	return &publisher{
		envRepo:      envRepo,
		logger:       logger,
		pathModifier: pathModifier,
		pathChecker:  pathChecker,
		uploader:     uploaderImpl,
	}
}

// Publish uploads every resolved file as its own video. Each upload is a
// fresh protocol run; a failed file fails the whole call without touching
// the remaining files.
func (p *publisher) Publish(ctx context.Context, input PublishVideoInput) error {
	config, err := p.createConfig(input)
	if err != nil {
		return fmt.Errorf("failed to parse inputs: %w", err)
	}

	tracker := uploadTracker{tracker: p.tracker, logger: p.logger}
	if p.tracker == nil {
		tracker = newUploadTracker(p.envRepo, p.logger)
	}
	defer tracker.wait()

	for _, path := range config.Paths {
		if err := p.publishOne(ctx, path, config, &tracker); err != nil {
			return err
		}
	}

	return nil
}

func (p *publisher) publishOne(ctx context.Context, path string, config publishConfig, tracker *uploadTracker) error {
	payload, err := network.PayloadFromFile(path)
	if err != nil {
		return fmt.Errorf("load video %s: %w", path, err)
	}

	title := config.Title
	if len(config.Paths) > 1 {
		title = fmt.Sprintf("%s (%s)", config.Title, payload.Name())
	}

	p.logger.Println()
	p.logger.Infof("Uploading %s...", payload.Name())
	p.logger.Printf("Video size: %s", units.HumanSizeWithPrecision(float64(payload.Size()), 3))

	params := network.UploadParams{
		APIBaseURL: config.APIBaseURL,
		OwnerID:    config.OwnerID,
		Token:      string(config.AccessToken),
		Title:      title,
		Payload:    payload,
		ChunkSize:  config.ChunkSize,
		OnProgress: p.progressLogger(payload.Size()),
	}

	uploadStartTime := time.Now()
	result, err := p.uploader.Upload(ctx, params, p.logger)
	uploadTime := time.Since(uploadStartTime).Round(time.Second)
	if err != nil {
		tracker.logVideoUploadFailed(uploadTime, payload.Size())
		return fmt.Errorf("video upload failed: %w", err)
	}

	tracker.logVideoUploaded(uploadTime, payload.Size(), result.ChunksUploaded)
	p.logger.Donef("Published %s as video %s in %s", payload.Name(), result.VideoID, uploadTime)

	return nil
}

func (p *publisher) progressLogger(totalSize int64) network.ProgressFunc {
	return func(s network.Snapshot) error {
		p.logger.Printf("Upload progress: %d%% (%s of %s, chunk %d/%d)",
			s.Progress,
			units.HumanSizeWithPrecision(float64(s.SizeUploaded), 3),
			units.HumanSizeWithPrecision(float64(totalSize), 3),
			s.ChunksUploaded, s.ChunksTotal)
		return nil
	}
}

func (p *publisher) createConfig(input PublishVideoInput) (publishConfig, error) {
	if strings.TrimSpace(input.Title) == "" {
		return publishConfig{}, fmt.Errorf("video title should not be empty")
	}

	finalPaths, err := p.evaluatePaths(input.Paths)
	if err != nil {
		return publishConfig{}, fmt.Errorf("failed to parse paths: %w", err)
	}
	if len(finalPaths) == 0 {
		return publishConfig{}, fmt.Errorf("no video file matched the provided paths")
	}

	apiBaseURL := p.envRepo.Get(envKeyAPIBaseURL)
	if apiBaseURL == "" {
		return publishConfig{}, fmt.Errorf("the variable '%s' is not defined", envKeyAPIBaseURL)
	}
	accessToken := p.envRepo.Get(envKeyAccessToken)
	if accessToken == "" {
		return publishConfig{}, fmt.Errorf("the secret '%s' is not defined", envKeyAccessToken)
	}
	ownerID := p.envRepo.Get(envKeyOwnerID)
	if ownerID == "" {
		return publishConfig{}, fmt.Errorf("the variable '%s' is not defined", envKeyOwnerID)
	}

	var chunkSize int64
	if input.ChunkSize != "" {
		chunkSize, err = units.RAMInBytes(input.ChunkSize)
		if err != nil {
			return publishConfig{}, fmt.Errorf("invalid chunk size %s: %w", input.ChunkSize, err)
		}
		if chunkSize <= 0 {
			return publishConfig{}, fmt.Errorf("chunk size should be positive, got %s", input.ChunkSize)
		}
	}

	return publishConfig{
		Verbose:     input.Verbose,
		Paths:       finalPaths,
		Title:       input.Title,
		ChunkSize:   chunkSize,
		APIBaseURL:  apiBaseURL,
		AccessToken: Secret(accessToken),
		OwnerID:     ownerID,
	}, nil
}

func (p *publisher) evaluatePaths(paths []string) ([]string, error) {
	// Expand wildcard paths
	var expandedPaths []string
	for _, path := range paths {
		if !strings.Contains(path, "*") {
			expandedPaths = append(expandedPaths, path)
			continue
		}

		base, pattern := doublestar.SplitPattern(path)
		absBase, err := p.pathModifier.AbsPath(base) // resolves ~/ and expands any envs
		if err != nil {
			return nil, err
		}
		matches, err := doublestar.Glob(os.DirFS(absBase), pattern, doublestar.WithNoFollow())
		if matches == nil {
			p.logger.Warnf("No match for path pattern: %s", path)
			continue
		}
		if err != nil {
			p.logger.Warnf("Error in path pattern '%s': %s", path, err)
			continue
		}

		for _, match := range matches {
			expandedPaths = append(expandedPaths, filepath.Join(base, match))
		}
	}

	// Validate and sanitize paths
	var finalPaths []string
	for _, path := range expandedPaths {
		absPath, err := p.pathModifier.AbsPath(path)
		if err != nil {
			p.logger.Warnf("Failed to parse path %s, error: %s", path, err)
			continue
		}

		exists, err := p.pathChecker.IsPathExists(absPath)
		if err != nil {
			p.logger.Warnf("Failed to check path %s, error: %s", absPath, err)
		}
		if !exists {
			p.logger.Warnf("Video path doesn't exist: %s", path)
			continue
		}

		finalPaths = append(finalPaths, absPath)
	}

	return finalPaths, nil
}
