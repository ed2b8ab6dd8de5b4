// Package blobstore implements the coordinator's BlobStore interface on
// top of a Firebase Storage bucket.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	"github.com/shahriar-rahim/socialite/backend/internal/mediatx"
)

// FirebaseStorage uploads byte buffers to a bucket and deletes them by
// object key. Every remote call is bounded by the configured timeout; a
// timed-out upload surfaces as an ordinary upload failure to the caller.
type FirebaseStorage struct {
	bucket     *storage.BucketHandle
	bucketName string
	timeout    time.Duration
}

// NewFirebaseStorage creates a blob store over the given bucket handle.
func NewFirebaseStorage(bucket *storage.BucketHandle, bucketName string, timeout time.Duration) *FirebaseStorage {
	return &FirebaseStorage{bucket: bucket, bucketName: bucketName, timeout: timeout}
}

// Put uploads data under folder and returns the public URL together with
// the object key used for later deletion.
func (s *FirebaseStorage) Put(ctx context.Context, data []byte, originalName, folder string) (*mediatx.UploadedBlob, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	key := ObjectKey(folder, originalName)
	obj := s.bucket.Object(key)

	w := obj.NewWriter(ctx)
	w.ContentType = contentTypeFor(originalName)
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("writing object %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("uploading object %s: %w", key, err)
	}

	if err := obj.ACL().Set(ctx, storage.AllUsers, storage.RoleReader); err != nil {
		// The object exists but is unreadable, which is as bad as a
		// failed upload. Remove it and report the failure.
		_ = obj.Delete(ctx)
		return nil, fmt.Errorf("publishing object %s: %w", key, err)
	}

	return &mediatx.UploadedBlob{
		URL:       fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucketName, key),
		ObjectKey: key,
		Type:      strings.TrimPrefix(filepath.Ext(key), "."),
	}, nil
}

// Delete removes the object with the given key. A missing object is
// treated as success so compensation retries stay idempotent.
func (s *FirebaseStorage) Delete(ctx context.Context, objectKey string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := s.bucket.Object(objectKey).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("deleting object %s: %w", objectKey, err)
	}
	return nil
}

// ObjectKey builds a unique storage key under folder, preserving the
// original file extension.
func ObjectKey(folder, originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return folder + "/" + uuid.NewString() + ext
}

func contentTypeFor(originalName string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(originalName))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
