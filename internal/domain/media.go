package domain

import (
	"context"
	"io"
)

// Upload is an in-flight multipart file upload.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Data        io.Reader
}

// MediaStore stores uploaded media (event banners, avatars) and returns a
// public URL for each stored object.
type MediaStore interface {
	Upload(ctx context.Context, folder string, upload *Upload) (url string, err error)
	// Delete removes a previously stored object by its public URL. Unknown
	// URLs are ignored.
	Delete(ctx context.Context, url string) error
}
