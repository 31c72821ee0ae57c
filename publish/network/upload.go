package network

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bitrise-io/go-utils/v2/log"
)

// UploadParams describes one video upload. OwnerID, Token, Title and Payload
// are required; ChunkSize falls back to DefaultChunkSize when zero and
// OnProgress is optional.
type UploadParams struct {
	APIBaseURL string
	OwnerID    string
	Token      string
	Title      string
	Payload    *Payload
	ChunkSize  int64
	OnProgress ProgressFunc

	// HTTPClient overrides the client used for chunk transmission.
	// Leave nil for the default.
	HTTPClient *http.Client
}

// Result is the backend's terminal response once the final chunk has been
// assembled into the finished video.
type Result struct {
	Status         int
	Message        string
	VideoID        string
	ChunksUploaded int
	SizeUploaded   int64
}

// Uploader ...
type Uploader interface {
	Upload(ctx context.Context, params UploadParams, logger log.Logger) (*Result, error)
}

// DefaultUploader ...
type DefaultUploader struct{}

// Upload ...
func (u DefaultUploader) Upload(ctx context.Context, params UploadParams, logger log.Logger) (*Result, error) {
	return Upload(ctx, params, logger)
}

// sessionState holds the per-upload mutable state. Both counters mirror the
// backend's last acknowledgement; the client never counts bytes it merely
// wrote to the wire.
type sessionState struct {
	uploadID       string
	bytesUploaded  int64
	chunksUploaded int
	chunksTotal    int
}

func (s *sessionState) adopt(resp chunkResponse) {
	if resp.UploadID != "" {
		s.uploadID = resp.UploadID
	}
	s.bytesUploaded = resp.SizeUploaded
	s.chunksUploaded = resp.ChunksUploaded
}

// Upload transmits the payload to the backend, chunking it when it exceeds
// the chunk size or when progress reporting was requested. Chunks are sent
// strictly in order: each request after the first must carry the continuation
// identifier acknowledged by its predecessor. Nothing is retried here; on any
// failure the caller decides whether to re-invoke Upload, which always starts
// a fresh plan. The backend keeps partial chunks under the continuation
// identifier for about an hour, so an upload abandoned past that horizon is
// gone either way.
func Upload(ctx context.Context, params UploadParams, logger log.Logger) (*Result, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}

	chunkSize := params.ChunkSize
	if chunkSize == 0 {
		chunkSize = DefaultChunkSize
	}

	httpClient := params.HTTPClient
	if httpClient == nil {
		httpClient = DefaultHTTPClient()
	}
	client := newUploadClient(httpClient, params.APIBaseURL, logger)

	call := chunkCall{
		ownerID:     params.OwnerID,
		token:       params.Token,
		title:       params.Title,
		fileName:    params.Payload.Name(),
		contentType: params.Payload.ContentType(),
	}

	// Small payloads without a progress callback skip the chunking machinery:
	// one plain request, no per-chunk bookkeeping round trips.
	if params.Payload.Size() <= chunkSize && params.OnProgress == nil {
		logger.Debugf("Payload fits in one chunk, uploading without chunking")
		call.data = params.Payload.Bytes()
		resp, err := client.send(ctx, call)
		if err != nil {
			return nil, classifyChunkError(0, err)
		}
		return resultFromResponse(resp), nil
	}

	plan, err := PlanChunks(params.Payload.Size(), chunkSize)
	if err != nil {
		return nil, fmt.Errorf("plan chunks: %w", err)
	}

	state := sessionState{chunksTotal: len(plan.Ranges)}
	logger.Debugf("Uploading %d chunks, %dB each", state.chunksTotal, chunkSize)

	var resp chunkResponse
	for _, chunk := range plan.Ranges {
		call.data = params.Payload.Slice(chunk)
		call.contentRange = chunk.ContentRange()
		call.uploadID = state.uploadID

		logger.Debugf("Uploading chunk %d/%d (%s)", chunk.Index+1, state.chunksTotal, call.contentRange)
		resp, err = client.send(ctx, call)
		if err != nil {
			return nil, classifyChunkError(chunk.Index, err)
		}

		state.adopt(resp)

		if params.OnProgress != nil {
			terminal := chunk.Index == state.chunksTotal-1
			snapshot := newSnapshot(state.bytesUploaded, plan.TotalSize, state.chunksUploaded, state.chunksTotal, terminal)
			if err := params.OnProgress(snapshot); err != nil {
				return nil, &CallbackError{Err: err}
			}
		}
	}

	return resultFromResponse(resp), nil
}

func validateParams(params UploadParams) error {
	switch {
	case params.APIBaseURL == "":
		return &InvalidCallError{Field: "API base URL"}
	case params.OwnerID == "":
		return &InvalidCallError{Field: "owner id"}
	case params.Token == "":
		return &InvalidCallError{Field: "token"}
	case params.Title == "":
		return &InvalidCallError{Field: "title"}
	case params.Payload == nil:
		return &InvalidCallError{Field: "payload"}
	}
	return nil
}

// classifyChunkError keeps backend rejections typed as such and wraps every
// other failure as a transport error for the failed chunk.
func classifyChunkError(index int, err error) error {
	var rejection *BackendRejectionError
	if errors.As(err, &rejection) {
		return rejection
	}
	return &ChunkTransportError{ChunkIndex: index, Err: err}
}

func resultFromResponse(resp chunkResponse) *Result {
	return &Result{
		Status:         resp.Status,
		Message:        resp.Message,
		VideoID:        resp.VideoID,
		ChunksUploaded: resp.ChunksUploaded,
		SizeUploaded:   resp.SizeUploaded,
	}
}
