package repositories

import (
	"github.com/shahriar-rahim/socialite/backend/internal/models"
	"gorm.io/gorm"
)

// LikeRepository defines the interface for like data operations
type LikeRepository interface {
	FindLike(userID uint, postID, commentID, replyID *uint) (*models.Like, error)
	CreateLike(like *models.Like) error
	DeleteLike(id uint) error
	GetLikesByPostID(postID uint) ([]models.Like, error)
	CountForPost(postID uint) (int64, error)
}

// PostgresLikeRepository implements LikeRepository for PostgreSQL
type PostgresLikeRepository struct {
	db *gorm.DB
}

// NewPostgresLikeRepository creates a new PostgresLikeRepository
func NewPostgresLikeRepository(db *gorm.DB) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: db}
}

// FindLike retrieves the user's like on the given target, if any. Returns
// gorm.ErrRecordNotFound when the user has not liked the target.
func (r *PostgresLikeRepository) FindLike(userID uint, postID, commentID, replyID *uint) (*models.Like, error) {
	q := r.db.Where("user_id = ?", userID)
	switch {
	case postID != nil:
		q = q.Where("post_id = ?", *postID)
	case commentID != nil:
		q = q.Where("comment_id = ?", *commentID)
	case replyID != nil:
		q = q.Where("reply_id = ?", *replyID)
	}

	var like models.Like
	if err := q.First(&like).Error; err != nil {
		return nil, err
	}
	return &like, nil
}

// CreateLike creates a new like in PostgreSQL
func (r *PostgresLikeRepository) CreateLike(like *models.Like) error {
	return r.db.Create(like).Error
}

// DeleteLike deletes a like by id
func (r *PostgresLikeRepository) DeleteLike(id uint) error {
	return r.db.Unscoped().Delete(&models.Like{}, id).Error
}

// GetLikesByPostID retrieves all likes for a specific post, newest first
func (r *PostgresLikeRepository) GetLikesByPostID(postID uint) ([]models.Like, error) {
	var likes []models.Like
	err := r.db.Where("post_id = ?", postID).
		Order("created_at DESC").
		Find(&likes).Error
	if err != nil {
		return nil, err
	}
	return likes, nil
}

// CountForPost counts the likes on a post
func (r *PostgresLikeRepository) CountForPost(postID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}
