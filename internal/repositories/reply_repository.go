package repositories

import (
	"github.com/shahriar-rahim/socialite/backend/internal/models"
	"gorm.io/gorm"
)

// ReplyRepository defines the interface for reply data operations
type ReplyRepository interface {
	CreateReply(reply *models.Reply) error
	GetReplyByID(id uint) (*models.Reply, error)
	GetRepliesByCommentID(commentID uint) ([]models.Reply, error)
	UpdateReply(reply *models.Reply) error
	DeleteReply(id uint) error
}

// PostgresReplyRepository implements ReplyRepository for PostgreSQL
type PostgresReplyRepository struct {
	db *gorm.DB
}

// NewPostgresReplyRepository creates a new PostgresReplyRepository
func NewPostgresReplyRepository(db *gorm.DB) *PostgresReplyRepository {
	return &PostgresReplyRepository{db: db}
}

// CreateReply creates a new reply in PostgreSQL
func (r *PostgresReplyRepository) CreateReply(reply *models.Reply) error {
	return r.db.Create(reply).Error
}

// GetReplyByID retrieves a reply by ID from PostgreSQL
func (r *PostgresReplyRepository) GetReplyByID(id uint) (*models.Reply, error) {
	var reply models.Reply
	if err := r.db.First(&reply, id).Error; err != nil {
		return nil, err
	}
	return &reply, nil
}

// GetRepliesByCommentID retrieves all replies for a comment, oldest first
func (r *PostgresReplyRepository) GetRepliesByCommentID(commentID uint) ([]models.Reply, error) {
	var replies []models.Reply
	err := r.db.Where("comment_id = ?", commentID).
		Order("created_at ASC").
		Find(&replies).Error
	if err != nil {
		return nil, err
	}
	return replies, nil
}

// UpdateReply updates an existing reply in PostgreSQL
func (r *PostgresReplyRepository) UpdateReply(reply *models.Reply) error {
	return r.db.Save(reply).Error
}

// DeleteReply deletes a reply and its likes
func (r *PostgresReplyRepository) DeleteReply(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("reply_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Reply{}, id).Error
	})
}
