package network

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/bitrise-io/go-utils/v2/log"
)

const uploadPath = "/api/v1/videos"

// chunkResponse is the envelope the backend returns for every upload call.
// Intermediate chunks carry the continuation identifier and the cumulative
// counters; the final chunk additionally carries the created video's id.
type chunkResponse struct {
	Status         int    `json:"status"`
	Message        string `json:"msg"`
	UploadID       string `json:"upload_id"`
	VideoID        string `json:"video_id"`
	ChunksUploaded int    `json:"chunks_uploaded"`
	SizeUploaded   int64  `json:"size_uploaded"`
}

// chunkCall describes one upload request. The metadata fields are attached to
// every call because the backend is stateless between chunk calls apart from
// the continuation identifier.
type chunkCall struct {
	ownerID      string
	token        string
	title        string
	uploadID     string
	fileName     string
	contentType  string
	data         []byte
	contentRange string
}

type uploadClient struct {
	httpClient *http.Client
	baseURL    string
	logger     log.Logger
}

func newUploadClient(httpClient *http.Client, baseURL string, logger log.Logger) uploadClient {
	return uploadClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		logger:     logger,
	}
}

// send performs one upload call and decodes the response envelope. A domain
// rejection inside a well-formed response is returned as BackendRejectionError;
// every other failure is a plain error for the caller to classify.
func (c uploadClient) send(ctx context.Context, call chunkCall) (chunkResponse, error) {
	body, contentType, err := encodeMultipart(call)
	if err != nil {
		return chunkResponse{}, fmt.Errorf("encode request body: %w", err)
	}

	url := strings.TrimSuffix(c.baseURL, "/") + uploadPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return chunkResponse{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if call.contentRange != "" {
		req.Header.Set("Content-Range", call.contentRange)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return chunkResponse{}, fmt.Errorf("do request: %w", err)
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			c.logger.Printf(err.Error())
		}
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return chunkResponse{}, unwrapError(resp)
	}

	var parsed chunkResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return chunkResponse{}, fmt.Errorf("decode response: %w", err)
	}

	if parsed.Status != 0 && (parsed.Status < 200 || parsed.Status >= 300) {
		return chunkResponse{}, &BackendRejectionError{Status: parsed.Status, Message: parsed.Message}
	}

	return parsed, nil
}

func encodeMultipart(call chunkCall) (io.Reader, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fields := map[string]string{
		"owner_id": call.ownerID,
		"token":    call.token,
		"title":    call.title,
	}
	if call.uploadID != "" {
		fields["upload_id"] = call.uploadID
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", name, err)
		}
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="video"; filename="%s"`, call.fileName))
	header.Set("Content-Type", call.contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := part.Write(call.data); err != nil {
		return nil, "", fmt.Errorf("write file part: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}

	return &buf, writer.FormDataContentType(), nil
}

func unwrapError(resp *http.Response) error {
	errorResp, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return fmt.Errorf("HTTP %d: %s", resp.StatusCode, errorResp)
}
