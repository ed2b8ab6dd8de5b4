package mediatx_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shahriar-rahim/socialite/backend/internal/mediatx"
	"github.com/shahriar-rahim/socialite/backend/internal/models"
)

// fakeBlobStore records every Put and Delete and can be scripted to fail
// the n-th upload or the first deletes of a given key.
type fakeBlobStore struct {
	puts        []string // original file names, in call order
	deletes     []string // object keys, in call order
	failPutAt   int      // 0-based index of the Put that fails, -1 for never
	failDeletes map[string]int
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{failPutAt: -1, failDeletes: map[string]int{}}
}

func (f *fakeBlobStore) Put(ctx context.Context, data []byte, originalName, folder string) (*mediatx.UploadedBlob, error) {
	if len(f.puts) == f.failPutAt {
		return nil, errors.New("bucket unavailable")
	}
	f.puts = append(f.puts, originalName)
	key := fmt.Sprintf("%s/blob-%d", folder, len(f.puts))
	return &mediatx.UploadedBlob{
		URL:       "https://blobs.test/" + key,
		ObjectKey: key,
		Type:      "png",
	}, nil
}

func (f *fakeBlobStore) Delete(ctx context.Context, objectKey string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.deletes = append(f.deletes, objectKey)
	if n := f.failDeletes[objectKey]; n > 0 {
		f.failDeletes[objectKey] = n - 1
		return errors.New("delete failed")
	}
	return nil
}

// fakeStore is an in-memory relational store whose RunInTransaction takes a
// snapshot and restores it when the callback fails.
type fakeStore struct {
	posts map[uint]models.Post
	media map[uint]models.PostMedia

	nextPostID  uint
	nextMediaID uint

	failCreatePost  error
	failCreateMedia error
	phantomMedia    int64 // extra rows reported by CountMedia, as if a rival request inserted them
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		posts: map[uint]models.Post{},
		media: map[uint]models.PostMedia{},
	}
}

func (s *fakeStore) GetPostWithMedia(ctx context.Context, id uint) (*models.Post, error) {
	post, ok := s.posts[id]
	if !ok {
		return nil, mediatx.ErrPostNotFound
	}
	post.Media = s.mediaFor(id)
	return &post, nil
}

func (s *fakeStore) CreatePost(ctx context.Context, post *models.Post) error {
	if s.failCreatePost != nil {
		return s.failCreatePost
	}
	s.nextPostID++
	post.ID = s.nextPostID
	s.posts[post.ID] = *post
	return nil
}

func (s *fakeStore) UpdatePost(ctx context.Context, post *models.Post) error {
	if _, ok := s.posts[post.ID]; !ok {
		return mediatx.ErrPostNotFound
	}
	stored := *post
	stored.Media = nil
	s.posts[post.ID] = stored
	return nil
}

func (s *fakeStore) DeletePost(ctx context.Context, id uint) error {
	delete(s.posts, id)
	return nil
}

func (s *fakeStore) CreateMedia(ctx context.Context, media []*models.PostMedia) error {
	if s.failCreateMedia != nil {
		return s.failCreateMedia
	}
	for _, m := range media {
		s.nextMediaID++
		m.ID = s.nextMediaID
		s.media[m.ID] = *m
	}
	return nil
}

func (s *fakeStore) DeleteMedia(ctx context.Context, ids []uint) error {
	for _, id := range ids {
		delete(s.media, id)
	}
	return nil
}

func (s *fakeStore) CountMedia(ctx context.Context, postID uint) (int64, error) {
	return int64(len(s.mediaFor(postID))) + s.phantomMedia, nil
}

func (s *fakeStore) RunInTransaction(ctx context.Context, fn func(tx mediatx.Store) error) error {
	snapPosts := make(map[uint]models.Post, len(s.posts))
	for k, v := range s.posts {
		snapPosts[k] = v
	}
	snapMedia := make(map[uint]models.PostMedia, len(s.media))
	for k, v := range s.media {
		snapMedia[k] = v
	}
	snapPostID, snapMediaID := s.nextPostID, s.nextMediaID

	if err := fn(s); err != nil {
		s.posts, s.media = snapPosts, snapMedia
		s.nextPostID, s.nextMediaID = snapPostID, snapMediaID
		return err
	}
	return nil
}

func (s *fakeStore) mediaFor(postID uint) []models.PostMedia {
	var rows []models.PostMedia
	for _, m := range s.media {
		if m.PostID == postID {
			rows = append(rows, m)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return rows
}

// seedPost inserts a post with one media row per object key.
func seedPost(t *testing.T, store *fakeStore, authorID uint, content string, objectKeys ...string) *models.Post {
	t.Helper()
	post := &models.Post{AuthorID: authorID}
	if content != "" {
		post.Content = &content
	}
	require.NoError(t, store.CreatePost(context.Background(), post))
	for _, key := range objectKeys {
		require.NoError(t, store.CreateMedia(context.Background(), []*models.PostMedia{{
			PostID:    post.ID,
			URL:       "https://blobs.test/" + key,
			ObjectKey: key,
			Type:      "png",
		}}))
	}
	seeded, err := store.GetPostWithMedia(context.Background(), post.ID)
	require.NoError(t, err)
	return seeded
}

func imageFiles(names ...string) []mediatx.File {
	files := make([]mediatx.File, 0, len(names))
	for _, name := range names {
		files = append(files, mediatx.File{Name: name, ContentType: "image/png", Data: []byte("img")})
	}
	return files
}

func TestCreatePostTextOnly(t *testing.T) {
	blobs := newFakeBlobStore()
	store := newFakeStore()
	coord := mediatx.New(blobs, store, "posts")

	post, err := coord.CreatePost(context.Background(), 1, "  hello world  ", nil, false)
	require.NoError(t, err)
	require.NotNil(t, post.Content)
	assert.Equal(t, "hello world", *post.Content)
	assert.Empty(t, post.Media)
	assert.Empty(t, blobs.puts, "text-only post must not touch the blob store")
}

func TestCreatePostValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		files   []mediatx.File
	}{
		{
			name:    "no text and no images",
			content: "   ",
		},
		{
			name:  "more than four images",
			files: imageFiles("a.png", "b.png", "c.png", "d.png", "e.png"),
		},
		{
			name:  "non-image attachment",
			files: []mediatx.File{{Name: "doc.pdf", ContentType: "application/pdf", Data: []byte("pdf")}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blobs := newFakeBlobStore()
			store := newFakeStore()
			coord := mediatx.New(blobs, store, "posts")

			_, err := coord.CreatePost(context.Background(), 1, tt.content, tt.files, false)

			var validationErr *mediatx.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Empty(t, blobs.puts, "validation must reject before any upload")
			assert.Empty(t, store.posts)
		})
	}
}

func TestCreatePostWithImages(t *testing.T) {
	blobs := newFakeBlobStore()
	store := newFakeStore()
	coord := mediatx.New(blobs, store, "posts")

	files := imageFiles("first.png", "second.jpg", "third.png", "fourth.png")
	post, err := coord.CreatePost(context.Background(), 7, "caption", files, true)
	require.NoError(t, err)

	assert.Equal(t, []string{"first.png", "second.jpg", "third.png", "fourth.png"}, blobs.puts,
		"uploads must run in input order")
	require.Len(t, post.Media, 4)
	assert.Equal(t, "png", post.Media[0].Type)
	assert.Equal(t, "jpg", post.Media[1].Type, "media type comes from the filename extension")
	assert.True(t, post.IsPrivate)
	for _, m := range post.Media {
		assert.Equal(t, post.ID, m.PostID)
		assert.NotEmpty(t, m.ObjectKey)
	}
}

func TestCreatePostUploadFailureCompensates(t *testing.T) {
	blobs := newFakeBlobStore()
	blobs.failPutAt = 2 // third upload fails
	store := newFakeStore()
	coord := mediatx.New(blobs, store, "posts")

	_, err := coord.CreatePost(context.Background(), 1, "", imageFiles("a.png", "b.png", "c.png"), false)

	var uploadErr *mediatx.MediaUploadError
	require.ErrorAs(t, err, &uploadErr)
	assert.Len(t, blobs.puts, 2)
	assert.ElementsMatch(t, []string{"posts/blob-1", "posts/blob-2"}, blobs.deletes,
		"every blob uploaded before the failure must get a compensating delete")
	assert.Empty(t, store.posts, "no relational write may happen before uploads finish")
	assert.Empty(t, store.media)
}

func TestCreatePostPersistenceFailureCompensates(t *testing.T) {
	blobs := newFakeBlobStore()
	store := newFakeStore()
	store.failCreateMedia = errors.New("unique constraint violated")
	coord := mediatx.New(blobs, store, "posts")

	_, err := coord.CreatePost(context.Background(), 1, "", imageFiles("a.png", "b.png"), false)

	var persistErr *mediatx.PersistenceError
	require.ErrorAs(t, err, &persistErr)
	assert.Empty(t, store.posts, "failed transaction must leave the store unchanged")
	assert.Empty(t, store.media)
	assert.ElementsMatch(t, []string{"posts/blob-1", "posts/blob-2"}, blobs.deletes)
}

func TestCreatePostCompensationSurvivesCancellation(t *testing.T) {
	blobs := newFakeBlobStore()
	store := newFakeStore()
	store.failCreateMedia = errors.New("connection reset")
	coord := mediatx.New(blobs, store, "posts")

	// The fake blob store refuses deletes on a cancelled context, so the
	// compensating deletes only show up if cleanup detaches from it.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := coord.CreatePost(ctx, 1, "", imageFiles("a.png", "b.png"), false)

	var persistErr *mediatx.PersistenceError
	require.ErrorAs(t, err, &persistErr)
	assert.ElementsMatch(t, []string{"posts/blob-1", "posts/blob-2"}, blobs.deletes)
}

func TestCreatePostCapRecheckInTransaction(t *testing.T) {
	blobs := newFakeBlobStore()
	store := newFakeStore()
	store.phantomMedia = 2 // concurrent writer slipped in two rows
	coord := mediatx.New(blobs, store, "posts")

	_, err := coord.CreatePost(context.Background(), 1, "", imageFiles("a.png", "b.png", "c.png"), false)

	var validationErr *mediatx.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Empty(t, store.posts, "cap breach inside the transaction must roll everything back")
	assert.ElementsMatch(t, []string{"posts/blob-1", "posts/blob-2", "posts/blob-3"}, blobs.deletes)
}

func TestEditPostNotFound(t *testing.T) {
	coord := mediatx.New(newFakeBlobStore(), newFakeStore(), "posts")

	_, err := coord.EditPost(context.Background(), 42, 1, "new", nil, nil, false)
	assert.ErrorIs(t, err, mediatx.ErrPostNotFound)
}

func TestEditPostWrongOwner(t *testing.T) {
	blobs := newFakeBlobStore()
	store := newFakeStore()
	seedPost(t, store, 1, "mine", "posts/old-1")
	coord := mediatx.New(blobs, store, "posts")

	_, err := coord.EditPost(context.Background(), 1, 2, "stolen", nil, nil, false)

	var authErr *mediatx.AuthorizationError
	require.ErrorAs(t, err, &authErr)
	assert.Empty(t, blobs.puts)
	assert.Empty(t, blobs.deletes)
}

func TestEditPostReplacesMedia(t *testing.T) {
	blobs := newFakeBlobStore()
	store := newFakeStore()
	existing := seedPost(t, store, 1, "caption", "posts/old-1", "posts/old-2")
	coord := mediatx.New(blobs, store, "posts")

	retained := existing.Media[0].ID
	post, err := coord.EditPost(context.Background(), existing.ID, 1, "new caption", imageFiles("new.png"), []uint{retained}, false)
	require.NoError(t, err)

	require.Len(t, post.Media, 2)
	assert.Equal(t, retained, post.Media[0].ID)
	assert.Equal(t, "posts/blob-1", post.Media[1].ObjectKey)
	require.NotNil(t, post.Content)
	assert.Equal(t, "new caption", *post.Content)

	assert.Equal(t, []string{"posts/old-2"}, blobs.deletes,
		"only the replaced blob is deleted, and only after the commit")
}

func TestEditPostUnknownRetainIDsIgnored(t *testing.T) {
	blobs := newFakeBlobStore()
	store := newFakeStore()
	existing := seedPost(t, store, 1, "caption", "posts/old-1")
	coord := mediatx.New(blobs, store, "posts")

	post, err := coord.EditPost(context.Background(), existing.ID, 1, "caption", nil, []uint{9999}, false)
	require.NoError(t, err)

	assert.Empty(t, post.Media, "an unknown retain id keeps nothing")
	assert.Equal(t, []string{"posts/old-1"}, blobs.deletes)
}

func TestEditPostRetainOnlyIsIdempotent(t *testing.T) {
	blobs := newFakeBlobStore()
	store := newFakeStore()
	existing := seedPost(t, store, 1, "caption", "posts/old-1", "posts/old-2")
	coord := mediatx.New(blobs, store, "posts")

	retain := []uint{existing.Media[0].ID, existing.Media[1].ID}
	first, err := coord.EditPost(context.Background(), existing.ID, 1, "caption", nil, retain, false)
	require.NoError(t, err)

	second, err := coord.EditPost(context.Background(), existing.ID, 1, "caption", nil, retain, false)
	require.NoError(t, err)

	assert.Equal(t, first.Media, second.Media,
		"repeating an edit with the same retain set must produce the same media set")
	assert.Empty(t, blobs.deletes, "a fully retained media set leaves the blob store alone")
	assert.Empty(t, blobs.puts)
}

func TestEditPostCapCountsRetainedMedia(t *testing.T) {
	blobs := newFakeBlobStore()
	store := newFakeStore()
	existing := seedPost(t, store, 1, "", "posts/old-1", "posts/old-2", "posts/old-3")
	coord := mediatx.New(blobs, store, "posts")

	retain := []uint{existing.Media[0].ID, existing.Media[1].ID, existing.Media[2].ID}
	_, err := coord.EditPost(context.Background(), existing.ID, 1, "", imageFiles("a.png", "b.png"), retain, false)

	var validationErr *mediatx.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Empty(t, blobs.puts, "cap check happens before any upload")
}

func TestEditPostPersistenceFailureKeepsOldMedia(t *testing.T) {
	blobs := newFakeBlobStore()
	store := newFakeStore()
	existing := seedPost(t, store, 1, "caption", "posts/old-1", "posts/old-2")
	store.failCreateMedia = errors.New("disk full")
	coord := mediatx.New(blobs, store, "posts")

	_, err := coord.EditPost(context.Background(), existing.ID, 1, "caption", imageFiles("new.png"), nil, false)

	var persistErr *mediatx.PersistenceError
	require.ErrorAs(t, err, &persistErr)

	after, getErr := store.GetPostWithMedia(context.Background(), existing.ID)
	require.NoError(t, getErr)
	assert.Len(t, after.Media, 2, "rollback must restore the replaced rows")
	assert.Equal(t, []string{"posts/blob-1"}, blobs.deletes,
		"only the new upload is compensated; old blobs survive a failed edit")
}

func TestDeletePost(t *testing.T) {
	blobs := newFakeBlobStore()
	store := newFakeStore()
	existing := seedPost(t, store, 1, "caption", "posts/old-1", "posts/old-2")
	coord := mediatx.New(blobs, store, "posts")

	require.NoError(t, coord.DeletePost(context.Background(), existing.ID, 1))

	assert.Empty(t, store.posts)
	assert.Empty(t, store.media)
	assert.ElementsMatch(t, []string{"posts/old-1", "posts/old-2"}, blobs.deletes)
}

func TestDeletePostWrongOwner(t *testing.T) {
	blobs := newFakeBlobStore()
	store := newFakeStore()
	existing := seedPost(t, store, 1, "caption", "posts/old-1")
	coord := mediatx.New(blobs, store, "posts")

	err := coord.DeletePost(context.Background(), existing.ID, 99)

	var authErr *mediatx.AuthorizationError
	require.ErrorAs(t, err, &authErr)
	assert.Len(t, store.posts, 1)
	assert.Empty(t, blobs.deletes)
}

func TestDeletePostRetriesBlobDeleteOnce(t *testing.T) {
	blobs := newFakeBlobStore()
	store := newFakeStore()
	existing := seedPost(t, store, 1, "caption", "posts/old-1")
	blobs.failDeletes["posts/old-1"] = 1
	coord := mediatx.New(blobs, store, "posts")

	require.NoError(t, coord.DeletePost(context.Background(), existing.ID, 1),
		"a failed blob cleanup never fails the request")
	assert.Equal(t, []string{"posts/old-1", "posts/old-1"}, blobs.deletes)
	assert.Empty(t, store.posts, "relational delete is already durable before cleanup runs")
}
