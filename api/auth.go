package api

import (
	"context"
	"net/url"
	"strings"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/go-utils/v2/retryhttp"
)

// Session is the credential pair issued by a successful login.
type Session struct {
	Token   string
	OwnerID string
}

// Login exchanges account credentials for an API session. The returned token
// and owner id are what NewClient and the upload protocol expect.
func Login(ctx context.Context, baseURL, username, password string, logger log.Logger) (*Session, error) {
	values := url.Values{}
	values.Set("username", username)
	values.Set("password", password)

	var parsed struct {
		apiResponse
		Token   string `json:"token"`
		OwnerID string `json:"owner_id"`
	}

	client := retryhttp.NewClient(logger)
	endpoint := strings.TrimSuffix(baseURL, "/") + "/api/v1/login"
	if err := postForm(ctx, client, endpoint, values, &parsed, logger); err != nil {
		return nil, err
	}
	if err := parsed.reject(); err != nil {
		return nil, err
	}

	return &Session{Token: parsed.Token, OwnerID: parsed.OwnerID}, nil
}

// Logout invalidates the client's session token.
func (c *Client) Logout(ctx context.Context) error {
	var parsed apiResponse
	if err := c.postForm(ctx, "/api/v1/logout", nil, &parsed); err != nil {
		return err
	}
	return parsed.reject()
}
