// Package storage persists accepted diagram images. The pipeline uploads
// exactly one object per accepted question.
package storage

import "context"

// Object describes one stored image.
type Object struct {
	// Key is the storage key, e.g. "a7f3/q002.png".
	Key string

	// URL locates the object: a file path for local storage, an s3-style
	// URL for bucket storage.
	URL string
}

// Uploader stores one image under a key. Implementations must be safe for
// concurrent use; the batch coordinator uploads from multiple goroutines.
type Uploader interface {
	Put(ctx context.Context, key string, image []byte) (Object, error)
}
