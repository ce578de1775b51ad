package storage

import (
	"errors"
	"io"
)

// ErrUnsupportedMedia is returned for uploads outside the accepted image and
// video types.
var ErrUnsupportedMedia = errors.New("only image and video files are allowed")

// BlobStore persists uploaded media and returns the name it is served under.
type BlobStore interface {
	Save(filename, contentType string, r io.Reader) (string, error)
}

// MediaKind maps an accepted MIME type to the media kind stored on a message.
// Returns "" for types outside the whitelist.
func MediaKind(contentType string) string {
	switch contentType {
	case "image/jpeg", "image/png", "image/gif":
		return "image"
	case "video/mp4", "video/webm":
		return "video"
	}
	return ""
}
