package models

import "gorm.io/gorm"

// Like represents a like on a post, comment or reply. Exactly one of the
// three target ids is set.
type Like struct {
	gorm.Model
	UserID    uint  `json:"user_id" gorm:"index"`
	PostID    *uint `json:"post_id,omitempty" gorm:"index"`
	CommentID *uint `json:"comment_id,omitempty" gorm:"index"`
	ReplyID   *uint `json:"reply_id,omitempty" gorm:"index"`
}

// ToggleLikeRequest defines the request body for toggling a like. The
// caller must name exactly one target.
type ToggleLikeRequest struct {
	PostID    *uint `json:"post_id,omitempty"`
	CommentID *uint `json:"comment_id,omitempty"`
	ReplyID   *uint `json:"reply_id,omitempty"`
}
