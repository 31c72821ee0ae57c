// Package api implements the single-round-trip surface of the Clipstream
// video service: login, follow, comment, like and feed listing. Each
// operation is plain request/response glue over the service's form-encoded
// endpoints; the chunked video upload protocol lives in publish/network.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/go-utils/v2/retryhttp"
	"github.com/hashicorp/go-retryablehttp"
)

// Client calls the Clipstream REST API on behalf of one account.
type Client struct {
	httpClient  *retryablehttp.Client
	baseURL     string
	ownerID     string
	accessToken string
	logger      log.Logger
}

// NewClient ...
func NewClient(baseURL, ownerID, accessToken string, logger log.Logger) *Client {
	return &Client{
		httpClient:  retryhttp.NewClient(logger),
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		ownerID:     ownerID,
		accessToken: accessToken,
		logger:      logger,
	}
}

// apiResponse is the status/message envelope every endpoint responds with.
type apiResponse struct {
	Status  int    `json:"status"`
	Message string `json:"msg"`
}

func (r apiResponse) reject() error {
	if r.Status != 0 && (r.Status < 200 || r.Status >= 300) {
		return fmt.Errorf("backend error (status %d): %s", r.Status, r.Message)
	}
	return nil
}

// postForm sends a form-encoded POST and decodes the response into out, which
// must embed the envelope fields. The account's owner id and token are
// attached to every call.
func (c *Client) postForm(ctx context.Context, path string, values url.Values, out interface{}) error {
	if values == nil {
		values = url.Values{}
	}
	values.Set("owner_id", c.ownerID)
	values.Set("token", c.accessToken)

	return postForm(ctx, c.httpClient, c.baseURL+path, values, out, c.logger)
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("owner_id", c.ownerID)
	query.Set("token", c.accessToken)

	req, err := retryablehttp.NewRequest(http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return err
	}
	req = req.WithContext(ctx)

	return c.doJSON(req, out)
}

func (c *Client) doJSON(req *retryablehttp.Request, out interface{}) error {
	return doJSON(c.httpClient, req, out, c.logger)
}

func postForm(ctx context.Context, client *retryablehttp.Client, endpoint string, values url.Values, out interface{}, logger log.Logger) error {
	req, err := retryablehttp.NewRequest(http.MethodPost, endpoint, strings.NewReader(values.Encode()))
	if err != nil {
		return err
	}
	req = req.WithContext(ctx)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return doJSON(client, req, out, logger)
}

func doJSON(client *retryablehttp.Client, req *retryablehttp.Request, out interface{}, logger log.Logger) error {
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			logger.Printf(err.Error())
		}
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return unwrapError(resp)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func unwrapError(resp *http.Response) error {
	errorResp, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return fmt.Errorf("HTTP %d: %s", resp.StatusCode, errorResp)
}
