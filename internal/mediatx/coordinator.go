// Package mediatx keeps the blob store and the relational store consistent
// while posts with image attachments are created, edited and deleted.
//
// Every mutation runs in three strictly ordered phases: upload the new
// blobs, commit one relational transaction that reconciles the post_media
// rows, then delete any blobs the commit orphaned. A failure in an earlier
// phase triggers compensating deletes for the blobs uploaded so far, so a
// reader can never observe a post_media row whose blob does not exist.
// Orphaned blobs in the other direction are tolerated transiently and
// cleaned up best-effort.
package mediatx

import (
	"context"
	"errors"
	"log"
	"path/filepath"
	"strings"

	"github.com/shahriar-rahim/socialite/backend/internal/models"
)

// MaxImages is the media cap per post.
const MaxImages = 4

// File is one image submitted with a create or edit request.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// UploadedBlob is the result of a single blob upload: public URL, the
// deletion handle, and the blob-store-reported format. It is the unit of
// compensation when a later phase fails.
type UploadedBlob struct {
	URL       string
	ObjectKey string
	Type      string
}

// BlobStore is the remote object store the coordinator uploads to. Both
// calls must be bounded by the implementation's own timeout.
type BlobStore interface {
	Put(ctx context.Context, data []byte, originalName, folder string) (*UploadedBlob, error)
	Delete(ctx context.Context, objectKey string) error
}

// Store is the relational side. RunInTransaction executes fn against a
// transaction-scoped Store and commits only if fn returns nil; any error
// rolls the whole transaction back.
type Store interface {
	GetPostWithMedia(ctx context.Context, id uint) (*models.Post, error)
	CreatePost(ctx context.Context, post *models.Post) error
	UpdatePost(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, id uint) error
	CreateMedia(ctx context.Context, media []*models.PostMedia) error
	DeleteMedia(ctx context.Context, ids []uint) error
	CountMedia(ctx context.Context, postID uint) (int64, error)
	RunInTransaction(ctx context.Context, fn func(tx Store) error) error
}

// Coordinator drives post mutations across the two stores. It holds no
// per-request state; both collaborators are injected so tests can
// substitute fakes.
type Coordinator struct {
	blobs  BlobStore
	store  Store
	folder string
}

// New creates a Coordinator that stores post images under the given blob
// store folder.
func New(blobs BlobStore, store Store, folder string) *Coordinator {
	return &Coordinator{blobs: blobs, store: store, folder: folder}
}

// CreatePost validates the request, uploads the files, and commits the post
// row plus one media row per upload in a single relational transaction.
func (c *Coordinator) CreatePost(ctx context.Context, authorID uint, content string, files []File, isPrivate bool) (*models.Post, error) {
	body := normalizeContent(content)
	if body == nil && len(files) == 0 {
		return nil, &ValidationError{Msg: "post must contain text or at least one image"}
	}
	if len(files) > MaxImages {
		return nil, &ValidationError{Msg: "maximum 4 images are allowed"}
	}
	if err := validateImageFiles(files); err != nil {
		return nil, err
	}

	uploaded, err := c.uploadAll(ctx, files)
	if err != nil {
		return nil, err
	}

	var created *models.Post
	err = c.store.RunInTransaction(ctx, func(tx Store) error {
		post := &models.Post{AuthorID: authorID, Content: body, IsPrivate: isPrivate}
		if err := tx.CreatePost(ctx, post); err != nil {
			return err
		}
		if len(uploaded) > 0 {
			if err := tx.CreateMedia(ctx, mediaRows(post.ID, uploaded)); err != nil {
				return err
			}
		}
		n, err := tx.CountMedia(ctx, post.ID)
		if err != nil {
			return err
		}
		if n > MaxImages {
			return errMediaCapExceeded
		}
		created, err = tx.GetPostWithMedia(ctx, post.ID)
		return err
	})
	if err != nil {
		c.compensate(ctx, uploaded)
		if errors.Is(err, errMediaCapExceeded) {
			return nil, &ValidationError{Msg: "maximum 4 images are allowed"}
		}
		return nil, &PersistenceError{Err: err}
	}
	return created, nil
}

// EditPost reconciles a post's media set: rows not named in retainMediaIDs
// are deleted, one row is inserted per uploaded file, and the replaced
// blobs are removed from the blob store only after the transaction has
// committed. Retain ids that do not belong to the post are ignored so a
// stale client cannot turn an edit into an error.
func (c *Coordinator) EditPost(ctx context.Context, postID, callerID uint, content string, files []File, retainMediaIDs []uint, isPrivate bool) (*models.Post, error) {
	existing, err := c.store.GetPostWithMedia(ctx, postID)
	if err != nil {
		if errors.Is(err, ErrPostNotFound) {
			return nil, err
		}
		return nil, &PersistenceError{Err: err}
	}
	if existing.AuthorID != callerID {
		return nil, &AuthorizationError{Msg: "you can only edit your own posts"}
	}

	plan := planMedia(existing.Media, retainMediaIDs)
	body := normalizeContent(content)
	if body == nil && len(plan.retained)+len(files) == 0 {
		return nil, &ValidationError{Msg: "post must contain text or at least one image"}
	}
	if len(plan.retained)+len(files) > MaxImages {
		return nil, &ValidationError{Msg: "maximum 4 images are allowed"}
	}
	if err := validateImageFiles(files); err != nil {
		return nil, err
	}

	uploaded, err := c.uploadAll(ctx, files)
	if err != nil {
		return nil, err
	}

	var updated *models.Post
	err = c.store.RunInTransaction(ctx, func(tx Store) error {
		if ids := mediaIDs(plan.removed); len(ids) > 0 {
			if err := tx.DeleteMedia(ctx, ids); err != nil {
				return err
			}
		}
		existing.Content = body
		existing.IsPrivate = isPrivate
		if err := tx.UpdatePost(ctx, existing); err != nil {
			return err
		}
		if len(uploaded) > 0 {
			if err := tx.CreateMedia(ctx, mediaRows(postID, uploaded)); err != nil {
				return err
			}
		}
		n, err := tx.CountMedia(ctx, postID)
		if err != nil {
			return err
		}
		if n > MaxImages {
			return errMediaCapExceeded
		}
		updated, err = tx.GetPostWithMedia(ctx, postID)
		return err
	})
	if err != nil {
		c.compensate(ctx, uploaded)
		if errors.Is(err, errMediaCapExceeded) {
			return nil, &ValidationError{Msg: "maximum 4 images are allowed"}
		}
		return nil, &PersistenceError{Err: err}
	}

	// Replaced blobs are deleted only now that the new rows are durable.
	// Deleting earlier would let a failed commit leave the post with
	// neither the old nor the new media.
	cleanupCtx := context.WithoutCancel(ctx)
	for _, m := range plan.removed {
		c.deleteBlob(cleanupCtx, m.ObjectKey)
	}
	return updated, nil
}

// DeletePost removes the post and its media rows in one transaction, then
// deletes the backing blobs best-effort.
func (c *Coordinator) DeletePost(ctx context.Context, postID, callerID uint) error {
	existing, err := c.store.GetPostWithMedia(ctx, postID)
	if err != nil {
		if errors.Is(err, ErrPostNotFound) {
			return err
		}
		return &PersistenceError{Err: err}
	}
	if existing.AuthorID != callerID {
		return &AuthorizationError{Msg: "you can only delete your own posts"}
	}

	err = c.store.RunInTransaction(ctx, func(tx Store) error {
		if ids := mediaIDs(existing.Media); len(ids) > 0 {
			if err := tx.DeleteMedia(ctx, ids); err != nil {
				return err
			}
		}
		return tx.DeletePost(ctx, postID)
	})
	if err != nil {
		return &PersistenceError{Err: err}
	}

	cleanupCtx := context.WithoutCancel(ctx)
	for _, m := range existing.Media {
		c.deleteBlob(cleanupCtx, m.ObjectKey)
	}
	return nil
}

// uploadAll uploads the files sequentially in input order, so the final
// media ordering is deterministic and the compensation set on failure is
// exactly "everything uploaded so far". On the first failure it deletes
// those blobs and returns a MediaUploadError; no relational statement has
// been issued at that point.
func (c *Coordinator) uploadAll(ctx context.Context, files []File) ([]*UploadedBlob, error) {
	uploaded := make([]*UploadedBlob, 0, len(files))
	for _, f := range files {
		blob, err := c.blobs.Put(ctx, f.Data, f.Name, c.folder)
		if err != nil {
			c.compensate(ctx, uploaded)
			return nil, &MediaUploadError{Err: err}
		}
		blob.Type = mediaType(f.Name, blob.Type)
		uploaded = append(uploaded, blob)
	}
	return uploaded, nil
}

// compensate deletes the given blobs. It runs on a context detached from
// the caller's cancellation: leaving the blob store clean matters more
// than honoring cancellation quickly.
func (c *Coordinator) compensate(ctx context.Context, blobs []*UploadedBlob) {
	cleanupCtx := context.WithoutCancel(ctx)
	for _, b := range blobs {
		c.deleteBlob(cleanupCtx, b.ObjectKey)
	}
}

// deleteBlob attempts a blob delete with a single retry. An orphaned blob
// is a billing concern, not a correctness one, so failure is logged and
// never escalated.
func (c *Coordinator) deleteBlob(ctx context.Context, objectKey string) {
	if err := c.blobs.Delete(ctx, objectKey); err == nil {
		return
	}
	if err := c.blobs.Delete(ctx, objectKey); err != nil {
		log.Printf("cleanup warning: could not delete blob %s: %v", objectKey, err)
	}
}

// pendingMediaPlan splits a post's current media into the retain set and
// the replace set. It is computed before any side effect occurs.
type pendingMediaPlan struct {
	retained []models.PostMedia
	removed  []models.PostMedia
}

func planMedia(current []models.PostMedia, retainIDs []uint) pendingMediaPlan {
	keep := make(map[uint]bool, len(retainIDs))
	for _, id := range retainIDs {
		keep[id] = true
	}
	var plan pendingMediaPlan
	for _, m := range current {
		if keep[m.ID] {
			plan.retained = append(plan.retained, m)
		} else {
			plan.removed = append(plan.removed, m)
		}
	}
	return plan
}

func mediaRows(postID uint, uploaded []*UploadedBlob) []*models.PostMedia {
	rows := make([]*models.PostMedia, 0, len(uploaded))
	for _, b := range uploaded {
		rows = append(rows, &models.PostMedia{
			PostID:    postID,
			URL:       b.URL,
			ObjectKey: b.ObjectKey,
			Type:      b.Type,
		})
	}
	return rows
}

func mediaIDs(media []models.PostMedia) []uint {
	ids := make([]uint, 0, len(media))
	for _, m := range media {
		ids = append(ids, m.ID)
	}
	return ids
}

// normalizeContent trims the submitted text and maps the empty result to
// nil, so a post is stored with non-null content or none at all.
func normalizeContent(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func validateImageFiles(files []File) error {
	for _, f := range files {
		if !strings.HasPrefix(f.ContentType, "image/") {
			return &ValidationError{Msg: "only image files are allowed"}
		}
	}
	return nil
}

// mediaType derives the stored media type from the original filename
// extension, falling back to the blob-store-reported format.
func mediaType(originalName, blobFormat string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(originalName), "."))
	if ext != "" {
		return ext
	}
	if blobFormat != "" {
		return blobFormat
	}
	return "jpg"
}
