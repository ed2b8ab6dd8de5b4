package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/shahriar-rahim/socialite/backend/internal/mediatx"
	"github.com/shahriar-rahim/socialite/backend/internal/models"
)

// PostRepository defines the relational operations on posts and their media
// rows. It includes the transactional store surface the media coordinator
// drives, plus the read queries the feed needs.
type PostRepository interface {
	mediatx.Store
	GetPublicPosts(ctx context.Context, offset, limit int) ([]models.Post, error)
}

// PostgresPostRepository implements PostRepository for PostgreSQL
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

// RunInTransaction runs fn against a transaction-scoped repository. fn
// returning an error rolls the whole transaction back.
func (r *PostgresPostRepository) RunInTransaction(ctx context.Context, fn func(tx mediatx.Store) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresPostRepository{db: tx})
	})
}

// GetPostWithMedia retrieves a post and its media rows, ordered by creation.
func (r *PostgresPostRepository) GetPostWithMedia(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("Media", func(db *gorm.DB) *gorm.DB { return db.Order("post_media.id ASC") }).
		First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, mediatx.ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// CreatePost inserts a new post row.
func (r *PostgresPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

// UpdatePost updates the mutable columns of a post. The author is
// immutable and never touched here.
func (r *PostgresPostRepository) UpdatePost(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", post.ID).
		Updates(map[string]interface{}{
			"content":    post.Content,
			"is_private": post.IsPrivate,
		}).Error
}

// DeletePost removes a post row together with its comment tree and every
// like anywhere in that tree. Media rows are the coordinator's
// responsibility and must already be gone.
func (r *PostgresPostRepository) DeletePost(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx)
	commentIDs := func() *gorm.DB {
		return db.Model(&models.Comment{}).Select("id").Where("post_id = ?", id)
	}
	replyIDs := func() *gorm.DB {
		return db.Model(&models.Reply{}).Select("id").Where("comment_id IN (?)", commentIDs())
	}

	if err := db.Where("reply_id IN (?)", replyIDs()).Delete(&models.Like{}).Error; err != nil {
		return err
	}
	if err := db.Where("comment_id IN (?)", commentIDs()).Delete(&models.Like{}).Error; err != nil {
		return err
	}
	if err := db.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
		return err
	}
	if err := db.Where("comment_id IN (?)", commentIDs()).Delete(&models.Reply{}).Error; err != nil {
		return err
	}
	if err := db.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
		return err
	}
	return db.Delete(&models.Post{}, id).Error
}

// CreateMedia inserts media rows for a post.
func (r *PostgresPostRepository) CreateMedia(ctx context.Context, media []*models.PostMedia) error {
	return r.db.WithContext(ctx).Create(&media).Error
}

// DeleteMedia removes media rows by id.
func (r *PostgresPostRepository) DeleteMedia(ctx context.Context, ids []uint) error {
	return r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.PostMedia{}).Error
}

// CountMedia counts the media rows attached to a post.
func (r *PostgresPostRepository) CountMedia(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PostMedia{}).
		Where("post_id = ?", postID).Count(&count).Error
	return count, err
}

// GetPublicPosts retrieves non-private posts with their media, newest first.
func (r *PostgresPostRepository) GetPublicPosts(ctx context.Context, offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Preload("Media", func(db *gorm.DB) *gorm.DB { return db.Order("post_media.id ASC") }).
		Where("is_private = ?", false).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}
