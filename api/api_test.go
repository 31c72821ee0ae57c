package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	method string
	path   string
	form   map[string]string
	query  map[string]string
}

func recordingServer(t *testing.T, responseBody string) (*httptest.Server, *[]recordedRequest) {
	var mu sync.Mutex
	var requests []recordedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())

		form := map[string]string{}
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}
		query := map[string]string{}
		for k := range r.URL.Query() {
			query[k] = r.URL.Query().Get(k)
		}
		mu.Lock()
		requests = append(requests, recordedRequest{
			method: r.Method,
			path:   r.URL.Path,
			form:   form,
			query:  query,
		})
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, responseBody)
	}))
	return server, &requests
}

func TestLogin(t *testing.T) {
	server, requests := recordingServer(t, `{"status":200,"msg":"ok","token":"tok-1","owner_id":"owner-9"}`)
	defer server.Close()

	session, err := Login(context.Background(), server.URL, "alice", "hunter2", log.NewLogger())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", session.Token)
	assert.Equal(t, "owner-9", session.OwnerID)

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, http.MethodPost, req.method)
	assert.Equal(t, "/api/v1/login", req.path)
	assert.Equal(t, "alice", req.form["username"])
	assert.Equal(t, "hunter2", req.form["password"])
}

func TestLogin_BadCredentials(t *testing.T) {
	server, _ := recordingServer(t, `{"status":401,"msg":"bad credentials"}`)
	defer server.Close()

	_, err := Login(context.Background(), server.URL, "alice", "wrong", log.NewLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad credentials")
}

func TestClient_Follow(t *testing.T) {
	server, requests := recordingServer(t, `{"status":200,"msg":"ok"}`)
	defer server.Close()

	client := NewClient(server.URL, "owner-9", "tok-1", log.NewLogger())
	require.NoError(t, client.Follow(context.Background(), "owner-3"))

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, "/api/v1/follow", req.path)
	assert.Equal(t, "owner-3", req.form["target_id"])
	// Account identity travels with every call.
	assert.Equal(t, "owner-9", req.form["owner_id"])
	assert.Equal(t, "tok-1", req.form["token"])
}

func TestClient_Comment(t *testing.T) {
	server, requests := recordingServer(t, `{"status":201,"msg":"created","comment_id":"c-77"}`)
	defer server.Close()

	client := NewClient(server.URL, "owner-9", "tok-1", log.NewLogger())
	receipt, err := client.Comment(context.Background(), "video-42", "nice clip")
	require.NoError(t, err)
	assert.Equal(t, "c-77", receipt.CommentID)

	req := (*requests)[0]
	assert.Equal(t, "/api/v1/comment", req.path)
	assert.Equal(t, "video-42", req.form["video_id"])
	assert.Equal(t, "nice clip", req.form["text"])
}

func TestClient_Like_Rejected(t *testing.T) {
	server, _ := recordingServer(t, `{"status":403,"msg":"invalid token"}`)
	defer server.Close()

	client := NewClient(server.URL, "owner-9", "expired", log.NewLogger())
	err := client.Like(context.Background(), "video-42")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")
}

func TestClient_Feed(t *testing.T) {
	body := `{"status":200,"msg":"ok","videos":[
		{"video_id":"v-1","owner_id":"owner-3","title":"first","url":"http://cdn/v-1.mp4","likes":3,"comments":1},
		{"video_id":"v-2","owner_id":"owner-5","title":"second","url":"http://cdn/v-2.mp4"}
	]}`
	server, requests := recordingServer(t, body)
	defer server.Close()

	client := NewClient(server.URL, "owner-9", "tok-1", log.NewLogger())
	videos, err := client.Feed(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, videos, 2)
	assert.Equal(t, "v-1", videos[0].ID)
	assert.Equal(t, "first", videos[0].Title)
	assert.Equal(t, 3, videos[0].Likes)

	req := (*requests)[0]
	assert.Equal(t, http.MethodGet, req.method)
	assert.Equal(t, "/api/v1/feed", req.path)
	assert.Equal(t, "2", req.query["limit"])
	assert.Equal(t, "owner-9", req.query["owner_id"])
}

func TestClient_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, "not here")
	}))
	defer server.Close()

	client := NewClient(server.URL, "owner-9", "tok-1", log.NewLogger())
	err := client.Follow(context.Background(), "owner-3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
}

func TestClient_DownloadVideo(t *testing.T) {
	content := strings.Repeat("v", 1024*1024)

	// The downloader probes the size with a bytes=0-0 range request before
	// fetching content chunks.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rangeHeader := strings.TrimPrefix(r.Header.Get("Range"), "bytes=")
		parts := strings.Split(rangeHeader, "-")
		require.Len(t, parts, 2)
		from, err := strconv.ParseUint(parts[0], 10, 64)
		require.NoError(t, err)
		to, err := strconv.ParseUint(parts[1], 10, 64)
		require.NoError(t, err)

		if from == 0 && to == 0 {
			w.Header().Add("content-range", fmt.Sprintf("bytes 0-0/%d", len(content)))
			fmt.Fprint(w, " ")
			return
		}
		chunk := content[from : to+1]
		w.Header().Add("Content-Length", fmt.Sprintf("%d", len(chunk)))
		fmt.Fprint(w, chunk)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "clip.mp4")
	client := NewClient(server.URL, "owner-9", "tok-1", log.NewLogger())
	require.NoError(t, client.DownloadVideo(context.Background(), server.URL+"/clip.mp4", dest))

	downloaded, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, content, string(downloaded))
}
