package network

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/bitrise-io/go-utils/pathutil"
)

const defaultContentType = "application/octet-stream"

// The stdlib's builtin table has no video types; common container formats are
// resolved here so payloads look the same on every platform.
var videoContentTypes = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/x-m4v",
	".mov":  "video/quicktime",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
	".flv":  "video/x-flv",
	".wmv":  "video/x-ms-wmv",
	".3gp":  "video/3gpp",
	".ts":   "video/mp2t",
}

func contentTypeForExtension(ext string) string {
	if contentType, ok := videoContentTypes[strings.ToLower(ext)]; ok {
		return contentType
	}
	return mime.TypeByExtension(ext)
}

// Payload is the normalized form of the video data handed to an upload call.
// Callers construct it once through RawBytes, NamedBlob or PayloadFromFile;
// the upload loop never branches on where the bytes came from.
type Payload struct {
	name        string
	contentType string
	data        []byte
}

// RawBytes wraps an anonymous byte slice as an upload payload.
func RawBytes(data []byte) *Payload {
	return &Payload{
		name:        "upload.bin",
		contentType: defaultContentType,
		data:        data,
	}
}

// NamedBlob wraps a byte slice together with its file name and content type.
// Empty name or content type fall back to the RawBytes defaults.
func NamedBlob(name, contentType string, data []byte) *Payload {
	p := RawBytes(data)
	if name != "" {
		p.name = name
	}
	if contentType != "" {
		p.contentType = contentType
	}
	return p
}

// PayloadFromFile reads a local file into an upload payload. The content type
// is derived from the file extension.
func PayloadFromFile(path string) (*Payload, error) {
	absPath, err := pathutil.AbsPath(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path %s: %w", path, err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	contentType := contentTypeForExtension(filepath.Ext(absPath))
	return NamedBlob(filepath.Base(absPath), contentType, data), nil
}

// Name returns the file name sent to the backend.
func (p *Payload) Name() string {
	return p.name
}

// ContentType returns the MIME type sent to the backend.
func (p *Payload) ContentType() string {
	return p.contentType
}

// Size returns the payload length in bytes.
func (p *Payload) Size() int64 {
	return int64(len(p.data))
}

// Slice returns the payload bytes addressed by the given range.
func (p *Payload) Slice(r ChunkRange) []byte {
	if r.Length() <= 0 {
		return nil
	}
	return p.data[r.Start : r.End+1]
}

// Bytes returns the whole payload.
func (p *Payload) Bytes() []byte {
	return p.data
}
