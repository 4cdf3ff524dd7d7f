// Package media stores uploaded post images and serves them by URL.
package media

import (
	"context"
	"strings"
)

// Asset describes a stored media object.
type Asset struct {
	Handle string `json:"handle"`
	URL    string `json:"url"`
}

// UploadInput carries the raw bytes of an upload along with the uploader.
type UploadInput struct {
	UserID      uint
	Filename    string
	ContentType string
	Content     []byte
}

// Store persists media assets and deletes them by handle.
type Store interface {
	Upload(ctx context.Context, in UploadInput) (*Asset, error)
	Delete(ctx context.Context, handle string) error
}

// HandleFromURL derives the storage handle from an asset URL: the last path
// segment with its extension stripped.
func HandleFromURL(url string) string {
	if url == "" {
		return ""
	}
	segment := url
	if idx := strings.LastIndex(segment, "/"); idx != -1 {
		segment = segment[idx+1:]
	}
	if idx := strings.Index(segment, "."); idx != -1 {
		segment = segment[:idx]
	}
	return segment
}
